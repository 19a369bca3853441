package database

import (
	"testing"
	"time"
)

func TestDeviceIDForName(t *testing.T) {
	id1 := DeviceIDForName("living-room-plug")
	id2 := DeviceIDForName("living-room-plug")
	if id1 != id2 {
		t.Fatalf("id not stable: %q vs %q", id1, id2)
	}
	if len(id1) != 32 {
		t.Fatalf("id length = %d, want 32 hex chars", len(id1))
	}
	if id1 == DeviceIDForName("other-device") {
		t.Fatal("different names must map to different ids")
	}
}

func TestUpsertDevice_UpdatesIP(t *testing.T) {
	setupTestDB(t)

	id := DeviceIDForName("plug")
	if err := UpsertDevice(id, "plug", "192.168.1.10"); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := UpsertDevice(id, "plug", "192.168.1.20"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	device, err := GetDeviceByID(id)
	if err != nil {
		t.Fatalf("GetDeviceByID: %v", err)
	}
	if device.IP != "192.168.1.20" {
		t.Fatalf("ip = %q, want updated ip", device.IP)
	}
	if device.Name != "plug" {
		t.Fatalf("name = %q", device.Name)
	}
}

func TestGetAllDevices_WithStats(t *testing.T) {
	setupTestDB(t)

	idA := DeviceIDForName("alpha")
	idB := DeviceIDForName("beta")
	if err := UpsertDevice(idA, "alpha", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := UpsertDevice(idB, "beta", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	at := time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	insertRecordAt(t, idA, `{}`, at)
	insertRecordAt(t, idA, `{}`, at.Add(time.Minute))

	devices, err := GetAllDevices()
	if err != nil {
		t.Fatalf("GetAllDevices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len = %d, want 2", len(devices))
	}

	// 按名称排序
	if devices[0].Name != "alpha" || devices[1].Name != "beta" {
		t.Fatalf("order = %q, %q", devices[0].Name, devices[1].Name)
	}
	if devices[0].MessageCount != 2 {
		t.Fatalf("alpha message_count = %d, want 2", devices[0].MessageCount)
	}
	if devices[0].LastSeen.IsZero() {
		t.Fatal("alpha last_seen must be set")
	}
	if devices[1].MessageCount != 0 {
		t.Fatalf("beta message_count = %d, want 0", devices[1].MessageCount)
	}
	if !devices[1].LastSeen.IsZero() {
		t.Fatal("beta last_seen must be zero")
	}
}

func TestDeleteDevice_Cascades(t *testing.T) {
	setupTestDB(t)

	id := DeviceIDForName("doomed")
	if err := UpsertDevice(id, "doomed", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := AddSubscription(id, "shellies/doomed/relay/0"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := AddSubscription(id, "shellies/doomed/events"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := SaveViewConfig(id, []string{"apower"}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	if err := SavePayloadRecord(id, "t", `{}`); err != nil {
		t.Fatalf("save record: %v", err)
	}

	topics, err := DeleteDevice(id)
	if err != nil {
		t.Fatalf("DeleteDevice: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("topics = %v, want 2 entries", topics)
	}

	if _, err := GetDeviceByID(id); err == nil {
		t.Fatal("device row must be gone")
	}
	remaining, _ := GetTopicsByDevice(id)
	if len(remaining) != 0 {
		t.Fatalf("subscriptions remain: %v", remaining)
	}
	fields, _ := GetViewConfig(id)
	if len(fields) != 0 {
		t.Fatalf("view config remains: %v", fields)
	}
	count, _ := CountRecords(id)
	if count != 0 {
		t.Fatalf("records remain: %d", count)
	}
}

func TestParseStoredTime(t *testing.T) {
	tests := []struct {
		input string
		zero  bool
	}{
		{"2026-08-01 10:30:00", false},
		{"2026-08-01T10:30:00Z", false},
		{"garbage", true},
		{"", true},
	}
	for _, tt := range tests {
		got := parseStoredTime(tt.input)
		if got.IsZero() != tt.zero {
			t.Fatalf("parseStoredTime(%q).IsZero() = %v, want %v", tt.input, got.IsZero(), tt.zero)
		}
	}
}
