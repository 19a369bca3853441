package database

import "testing"

func TestSettings_GetMissing(t *testing.T) {
	setupTestDB(t)

	value, err := GetSetting("nope")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if value != "" {
		t.Fatalf("value = %q, want empty", value)
	}
}

func TestSettings_SetAndOverwrite(t *testing.T) {
	setupTestDB(t)

	if err := SetSetting(SettingBrokerIP, "192.168.1.5"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := SetSetting(SettingBrokerIP, "192.168.1.9"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, err := GetSetting(SettingBrokerIP)
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if value != "192.168.1.9" {
		t.Fatalf("value = %q, want last write", value)
	}
}
