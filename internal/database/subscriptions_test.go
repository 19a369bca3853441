package database

import (
	"reflect"
	"testing"
)

func TestAddSubscription_Duplicate(t *testing.T) {
	setupTestDB(t)

	if err := AddSubscription("dev1", "shellies/room/relay/0"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	// 重复绑定不报错、不产生重复行
	if err := AddSubscription("dev1", "shellies/room/relay/0"); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	topics, err := GetTopicsByDevice("dev1")
	if err != nil {
		t.Fatalf("GetTopicsByDevice: %v", err)
	}
	if len(topics) != 1 {
		t.Fatalf("topics = %v, want single entry", topics)
	}
}

func TestGetTopicsByDevice_Order(t *testing.T) {
	setupTestDB(t)

	want := []string{"a/events", "b/status", "c/relay"}
	for _, topic := range want {
		if err := AddSubscription("dev1", topic); err != nil {
			t.Fatalf("add %q: %v", topic, err)
		}
	}

	got, err := GetTopicsByDevice("dev1")
	if err != nil {
		t.Fatalf("GetTopicsByDevice: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
}

func TestDeviceIDForTopic(t *testing.T) {
	setupTestDB(t)

	if err := AddSubscription("dev1", "shellies/room/relay/0"); err != nil {
		t.Fatalf("add: %v", err)
	}

	id, err := DeviceIDForTopic("shellies/room/relay/0")
	if err != nil {
		t.Fatalf("DeviceIDForTopic: %v", err)
	}
	if id != "dev1" {
		t.Fatalf("id = %q, want dev1", id)
	}

	// 未绑定主题返回空串而非错误
	id, err = DeviceIDForTopic("unknown/topic")
	if err != nil {
		t.Fatalf("DeviceIDForTopic unknown: %v", err)
	}
	if id != "" {
		t.Fatalf("id = %q, want empty", id)
	}
}

func TestGetAllTopics(t *testing.T) {
	setupTestDB(t)

	_ = AddSubscription("dev1", "b/topic")
	_ = AddSubscription("dev2", "a/topic")
	_ = AddSubscription("dev3", "a/topic") // 同一主题多设备绑定只回一次

	topics, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics: %v", err)
	}
	if !reflect.DeepEqual(topics, []string{"a/topic", "b/topic"}) {
		t.Fatalf("topics = %v", topics)
	}
}
