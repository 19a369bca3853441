package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Fatalf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.HistoryLimit != 50 {
		t.Fatalf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.DefaultFields != 3 {
		t.Fatalf("DefaultFields = %d, want 3", cfg.DefaultFields)
	}
}

func TestApplyYAML(t *testing.T) {
	cfg := DefaultConfig()
	data := []byte(`
server:
  addr: ":9090"
  read_timeout: 15s
mqtt:
  broker: tcp://10.0.0.5:1883
  username: shelly
  reconnect_interval: 10s
dashboard:
  history_limit: 100
retention:
  days: 7
log:
  level: debug
  json: true
`)

	if err := applyYAML(cfg, data); err != nil {
		t.Fatalf("applyYAML: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.HTTPReadTimeout != 15*time.Second {
		t.Fatalf("HTTPReadTimeout = %v", cfg.HTTPReadTimeout)
	}
	if cfg.MQTTBroker != "tcp://10.0.0.5:1883" {
		t.Fatalf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.MQTTUsername != "shelly" {
		t.Fatalf("MQTTUsername = %q", cfg.MQTTUsername)
	}
	if cfg.MQTTReconnectInterval != 10*time.Second {
		t.Fatalf("MQTTReconnectInterval = %v", cfg.MQTTReconnectInterval)
	}
	if cfg.HistoryLimit != 100 {
		t.Fatalf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if cfg.RetentionDays != 7 {
		t.Fatalf("RetentionDays = %d", cfg.RetentionDays)
	}
	if cfg.LogLevel != "debug" || !cfg.LogJSON {
		t.Fatalf("log config = %q/%v", cfg.LogLevel, cfg.LogJSON)
	}
	// 未覆盖的键保持默认值
	if cfg.HTTPWriteTimeout != 30*time.Second {
		t.Fatalf("HTTPWriteTimeout = %v", cfg.HTTPWriteTimeout)
	}
}

func TestApplyYAML_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	if err := applyYAML(cfg, []byte("server: [not a map")); err == nil {
		t.Fatal("invalid YAML must error")
	}
}

func TestLoadWithPath_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  addr: \":7070\"\ndatabase:\n  path: /tmp/test.db\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadWithPath(path)
	if err != nil {
		t.Fatalf("LoadWithPath: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadWithPath_MissingExplicitFile(t *testing.T) {
	if _, err := LoadWithPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit missing config file must error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":6060")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("HTTP_READ_TIMEOUT", "45s")

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	if cfg.ListenAddr != ":6060" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.MQTTBroker != "tcp://broker:1883" {
		t.Fatalf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	if cfg.HistoryLimit != 25 {
		t.Fatalf("HistoryLimit = %d", cfg.HistoryLimit)
	}
	if !cfg.LogJSON {
		t.Fatal("LogJSON not applied")
	}
	if cfg.HTTPReadTimeout != 45*time.Second {
		t.Fatalf("HTTPReadTimeout = %v", cfg.HTTPReadTimeout)
	}
}

func TestEnvInvalidValuesIgnored(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "-5")
	t.Setenv("HTTP_READ_TIMEOUT", "bogus")

	cfg := DefaultConfig()
	loadFromEnv(cfg)

	if cfg.HistoryLimit != 50 {
		t.Fatalf("HistoryLimit = %d, want default 50", cfg.HistoryLimit)
	}
	if cfg.HTTPReadTimeout != 30*time.Second {
		t.Fatalf("HTTPReadTimeout = %v, want default", cfg.HTTPReadTimeout)
	}
}
