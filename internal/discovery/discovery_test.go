package discovery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	goerrors "errors"

	"github.com/gonglijing/shellydash/internal/circuit"
)

// fakeGen2Server 模拟 Gen 2/3 设备的 RPC 接口
func fakeGen2Server(t *testing.T, prefix, name string, enabled bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/MQTT.GetConfig", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"enable":       enabled,
			"server":       "10.0.0.1:1883",
			"topic_prefix": prefix,
		})
	})
	mux.HandleFunc("/rpc/Shelly.GetConfig", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sys": map[string]interface{}{
				"device": map[string]interface{}{"name": name},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// serverHost 取 httptest 服务器的 host:port，探测接口以此作为设备地址
func serverHost(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	return u.Host
}

func TestProbe_Gen2(t *testing.T) {
	srv := fakeGen2Server(t, "shellyplus1pm-a8032ab12345", "Living Room Plug", true)
	c := NewClient(time.Second, time.Second)

	result, err := c.Probe(serverHost(t, srv))
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if !result.MQTTEnabled {
		t.Error("MQTTEnabled = false, want true")
	}
	if result.TopicPrefix != "shellyplus1pm-a8032ab12345" {
		t.Errorf("TopicPrefix = %v, want shellyplus1pm-a8032ab12345", result.TopicPrefix)
	}
	if result.DeviceName != "Living Room Plug" {
		t.Errorf("DeviceName = %v, want Living Room Plug", result.DeviceName)
	}
	if result.Generation != 2 {
		t.Errorf("Generation = %v, want 2", result.Generation)
	}

	wantFirst := "shellyplus1pm-a8032ab12345/events/rpc"
	if len(result.Suggestions) != 5 || result.Suggestions[0] != wantFirst {
		t.Errorf("Suggestions = %v, want 5 entries starting with %v", result.Suggestions, wantFirst)
	}
}

func TestProbe_Gen2_SysNameFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/MQTT.GetConfig", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"enable": true, "topic_prefix": "plug-1"})
	})
	mux.HandleFunc("/rpc/Shelly.GetConfig", func(w http.ResponseWriter, r *http.Request) {
		// 旧固件把名字放在 sys.name
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sys": map[string]interface{}{"name": "Old Firmware Plug"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(time.Second, time.Second)
	result, err := c.Probe(serverHost(t, srv))
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if result.DeviceName != "Old Firmware Plug" {
		t.Errorf("DeviceName = %v, want Old Firmware Plug", result.DeviceName)
	}
}

func TestProbe_Gen1Fallback(t *testing.T) {
	mux := http.NewServeMux()
	// Gen 2/3 接口不存在，返回 404 触发回退
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name": "Garage Relay",
			"mqtt": map[string]interface{}{"enable": false, "id": "shelly1-abc123"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(time.Second, time.Second)
	result, err := c.Probe(serverHost(t, srv))
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if result.MQTTEnabled {
		t.Error("MQTTEnabled = true, want false")
	}
	if result.TopicPrefix != "shellies/shelly1-abc123" {
		t.Errorf("TopicPrefix = %v, want shellies/shelly1-abc123", result.TopicPrefix)
	}
	if result.DeviceName != "Garage Relay" {
		t.Errorf("DeviceName = %v, want Garage Relay", result.DeviceName)
	}
	if result.Generation != 1 {
		t.Errorf("Generation = %v, want 1", result.Generation)
	}
	if result.Suggestions[2] != "shellies/shelly1-abc123/relay/0" {
		t.Errorf("Suggestions[2] = %v, want shellies/shelly1-abc123/relay/0", result.Suggestions[2])
	}
}

func TestProbe_EmptyPrefixGetsPlaceholder(t *testing.T) {
	srv := fakeGen2Server(t, "", "", true)
	c := NewClient(time.Second, time.Second)

	result, err := c.Probe(serverHost(t, srv))
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if result.TopicPrefix != UnknownPrefix {
		t.Errorf("TopicPrefix = %v, want %v", result.TopicPrefix, UnknownPrefix)
	}
	for _, s := range result.Suggestions {
		if !strings.HasPrefix(s, UnknownPrefix+"/") {
			t.Errorf("suggestion %v does not use placeholder prefix", s)
		}
	}
}

func TestProbe_UnreachableDevice(t *testing.T) {
	c := NewClient(200*time.Millisecond, time.Second)

	_, err := c.Probe("127.0.0.1:1")
	if err == nil {
		t.Fatal("Probe() error = nil, want error")
	}
}

func TestProbe_BreakerOpensForDeadHost(t *testing.T) {
	c := NewClient(200*time.Millisecond, time.Second)
	host := "127.0.0.1:1"

	for i := 0; i < 3; i++ {
		if _, err := c.Probe(host); err == nil {
			t.Fatal("Probe() error = nil, want error")
		}
	}

	_, err := c.Probe(host)
	var openErr *circuit.CircuitOpenError
	if !goerrors.As(err, &openErr) {
		t.Fatalf("Probe() error = %v, want CircuitOpenError", err)
	}

	// 其他地址不受影响
	srv := fakeGen2Server(t, "plug-2", "Other Plug", true)
	if _, err := c.Probe(serverHost(t, srv)); err != nil {
		t.Errorf("Probe() for healthy host error = %v", err)
	}
}

func TestConfigure_Gen2(t *testing.T) {
	var gotMethods []string
	var gotServer string
	var prefixIsNull bool

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			Params struct {
				Config map[string]json.RawMessage `json:"config"`
			} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode rpc request: %v", err)
		}
		gotMethods = append(gotMethods, req.Method)
		if req.Method == "MQTT.SetConfig" {
			json.Unmarshal(req.Params.Config["server"], &gotServer)
			prefixIsNull = string(req.Params.Config["topic_prefix"]) == "null"
		}
		w.Write([]byte(`{"id":1,"result":{}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(time.Second, time.Second)
	result, err := c.Configure(serverHost(t, srv), "192.168.1.10:1883", 0)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if result.Type != "gen2" {
		t.Errorf("Type = %v, want gen2", result.Type)
	}
	if result.Status != "configured" {
		t.Errorf("Status = %v, want configured", result.Status)
	}
	if len(gotMethods) != 2 || gotMethods[0] != "MQTT.SetConfig" || gotMethods[1] != "Shelly.Reboot" {
		t.Errorf("rpc methods = %v, want [MQTT.SetConfig Shelly.Reboot]", gotMethods)
	}
	if gotServer != "192.168.1.10:1883" {
		t.Errorf("server = %v, want 192.168.1.10:1883", gotServer)
	}
	if !prefixIsNull {
		t.Error("topic_prefix should be null to keep the existing prefix")
	}
}

func TestConfigure_Gen1Fallback(t *testing.T) {
	var gotQuery url.Values
	rebooted := false

	mux := http.NewServeMux()
	mux.HandleFunc("/settings/mqtt", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"enabled":true}`))
	})
	mux.HandleFunc("/reboot", func(w http.ResponseWriter, r *http.Request) {
		rebooted = true
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(time.Second, time.Second)
	result, err := c.Configure(serverHost(t, srv), "192.168.1.10:1883", 60)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if result.Type != "gen1" {
		t.Errorf("Type = %v, want gen1", result.Type)
	}
	if gotQuery.Get("mqtt_enable") != "true" {
		t.Errorf("mqtt_enable = %v, want true", gotQuery.Get("mqtt_enable"))
	}
	if gotQuery.Get("mqtt_server") != "192.168.1.10:1883" {
		t.Errorf("mqtt_server = %v, want 192.168.1.10:1883", gotQuery.Get("mqtt_server"))
	}
	if gotQuery.Get("mqtt_update_period") != "60" {
		t.Errorf("mqtt_update_period = %v, want 60", gotQuery.Get("mqtt_update_period"))
	}
	if !rebooted {
		t.Error("reboot endpoint was not called")
	}
}

func TestConfigure_DefaultInterval(t *testing.T) {
	var gotPeriod string
	mux := http.NewServeMux()
	mux.HandleFunc("/settings/mqtt", func(w http.ResponseWriter, r *http.Request) {
		gotPeriod = r.URL.Query().Get("mqtt_update_period")
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/reboot", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(time.Second, time.Second)
	if _, err := c.Configure(serverHost(t, srv), "192.168.1.10:1883", -5); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if gotPeriod != "30" {
		t.Errorf("mqtt_update_period = %v, want 30", gotPeriod)
	}
}

func TestConfigure_BothGenerationsFail(t *testing.T) {
	c := NewClient(200*time.Millisecond, 200*time.Millisecond)
	_, err := c.Configure("127.0.0.1:1", "192.168.1.10:1883", 30)
	if err == nil {
		t.Fatal("Configure() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "failed to configure device") {
		t.Errorf("error = %v, want configure failure message", err)
	}
}

func TestSuggestTopics(t *testing.T) {
	got := suggestTopics("shellies/room")
	want := []string{
		"shellies/room/events/rpc",
		"shellies/room/status/switch:0",
		"shellies/room/relay/0",
		"shellies/room/emeter/0",
		"shellies/room/temperature",
	}
	if len(got) != len(want) {
		t.Fatalf("suggestTopics() returned %d topics, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestTopics()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
