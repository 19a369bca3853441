package discovery

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gonglijing/shellydash/internal/errors"
	"github.com/gonglijing/shellydash/internal/logger"
	"github.com/gonglijing/shellydash/internal/models"
)

// gen2MQTTConfig Gen 2/3 /rpc/MQTT.GetConfig 响应
type gen2MQTTConfig struct {
	TopicPrefix string `json:"topic_prefix"`
	Enable      bool   `json:"enable"`
}

// gen2SysConfig Gen 2/3 /rpc/Shelly.GetConfig 响应（只取设备名）
// 部分固件版本把名字放在 sys.name 而不是 sys.device.name。
type gen2SysConfig struct {
	Sys struct {
		Device struct {
			Name string `json:"name"`
		} `json:"device"`
		Name string `json:"name"`
	} `json:"sys"`
}

// gen1Settings Gen 1 /settings 响应
type gen1Settings struct {
	Name string `json:"name"`
	MQTT struct {
		Enable bool   `json:"enable"`
		ID     string `json:"id"`
	} `json:"mqtt"`
}

// Probe 探测目标设备的 MQTT 配置
// host 形如 "192.168.1.20" 或 "192.168.1.20:80"。
// 先尝试 Gen 2/3 RPC，任何失败都回退 Gen 1 /settings。
func (c *Client) Probe(host string) (*models.ProbeResult, error) {
	var result *models.ProbeResult
	err := c.breakerFor(host).Execute(func() error {
		var probeErr error
		result, probeErr = c.probe(host)
		return probeErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) probe(host string) (*models.ProbeResult, error) {
	if result, ok := c.probeGen2(host); ok {
		return result, nil
	}

	result, err := c.probeGen1(host)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// probeGen2 探测 Gen 2/3 设备，失败返回 ok=false 以触发 Gen 1 回退
func (c *Client) probeGen2(host string) (*models.ProbeResult, bool) {
	resp, err := c.probeClient.Get(fmt.Sprintf("http://%s/rpc/MQTT.GetConfig", host))
	if err != nil {
		logger.Debug("Gen 2/3 probe failed", "host", host, "error", err.Error())
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("Gen 2/3 probe returned non-OK status", "host", host, "status", resp.StatusCode)
		return nil, false
	}

	var mqttCfg gen2MQTTConfig
	if err := json.NewDecoder(resp.Body).Decode(&mqttCfg); err != nil {
		logger.Debug("Gen 2/3 probe response parse failed", "host", host, "error", err.Error())
		return nil, false
	}

	result := &models.ProbeResult{
		MQTTEnabled: mqttCfg.Enable,
		TopicPrefix: mqttCfg.TopicPrefix,
		Generation:  2,
	}
	result.DeviceName = c.fetchGen2Name(host)
	finishProbe(result)

	logger.Info("Found Gen 2/3 device", "host", host, "prefix", result.TopicPrefix, "name", result.DeviceName)
	return result, true
}

// fetchGen2Name 读取设备名，失败不算探测失败
func (c *Client) fetchGen2Name(host string) string {
	resp, err := c.probeClient.Get(fmt.Sprintf("http://%s/rpc/Shelly.GetConfig", host))
	if err != nil {
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var sysCfg gen2SysConfig
	if err := json.NewDecoder(resp.Body).Decode(&sysCfg); err != nil {
		return ""
	}
	if sysCfg.Sys.Device.Name != "" {
		return sysCfg.Sys.Device.Name
	}
	return sysCfg.Sys.Name
}

func (c *Client) probeGen1(host string) (*models.ProbeResult, error) {
	resp, err := c.probeClient.Get(fmt.Sprintf("http://%s/settings", host))
	if err != nil {
		return nil, errors.NewErrorWithErr(errors.ErrCodeUpstreamError, "failed to contact device", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewError(errors.ErrCodeUpstreamError, fmt.Sprintf("device returned status %d", resp.StatusCode))
	}

	var settings gen1Settings
	if err := json.NewDecoder(resp.Body).Decode(&settings); err != nil {
		return nil, errors.NewErrorWithErr(errors.ErrCodeUpstreamError, "failed to parse Gen 1 device response", err)
	}

	result := &models.ProbeResult{
		MQTTEnabled: settings.MQTT.Enable,
		TopicPrefix: fmt.Sprintf("shellies/%s", settings.MQTT.ID),
		DeviceName:  settings.Name,
		Generation:  1,
	}
	finishProbe(result)

	logger.Info("Found Gen 1 device", "host", host, "id", settings.MQTT.ID, "name", settings.Name)
	return result, nil
}

// finishProbe 补齐前缀占位值并生成订阅建议
func finishProbe(result *models.ProbeResult) {
	if result.TopicPrefix == "" || result.TopicPrefix == "shellies/" {
		result.TopicPrefix = UnknownPrefix
	}
	result.Suggestions = suggestTopics(result.TopicPrefix)
}

// suggestTopics 按前缀生成常见遥测主题
// 同时覆盖 Gen 2/3（events/status）和 Gen 1（relay/emeter）的主题格式。
func suggestTopics(prefix string) []string {
	return []string{
		fmt.Sprintf("%s/events/rpc", prefix),
		fmt.Sprintf("%s/status/switch:0", prefix),
		fmt.Sprintf("%s/relay/0", prefix),
		fmt.Sprintf("%s/emeter/0", prefix),
		fmt.Sprintf("%s/temperature", prefix),
	}
}
