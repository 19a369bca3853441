package discovery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gonglijing/shellydash/internal/errors"
	"github.com/gonglijing/shellydash/internal/logger"
)

// ConfigureResult 设备配置结果
type ConfigureResult struct {
	Status string `json:"status"`
	Type   string `json:"type"`
}

// rpcRequest Gen 2/3 RPC 请求体
type rpcRequest struct {
	ID     int         `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Configure 把目标设备的 MQTT 上报指向给定 broker 地址并重启设备
// brokerAddr 形如 "192.168.1.10:1883"。interval 只对 Gen 1 生效，
// 非正值取默认 30 秒。
func (c *Client) Configure(host, brokerAddr string, interval int) (*ConfigureResult, error) {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}

	logger.Info("Configuring device MQTT", "host", host, "broker", brokerAddr, "interval", interval)

	gen2Err := c.configureGen2(host, brokerAddr)
	if gen2Err == nil {
		return &ConfigureResult{Status: "configured", Type: "gen2"}, nil
	}

	gen1Err := c.configureGen1(host, brokerAddr, interval)
	if gen1Err == nil {
		return &ConfigureResult{Status: "configured", Type: "gen1"}, nil
	}

	return nil, errors.NewError(errors.ErrCodeUpstreamError,
		fmt.Sprintf("failed to configure device: gen2: %v; gen1: %v", gen2Err, gen1Err))
}

// configureGen2 通过 RPC 下发 MQTT.SetConfig 并触发重启
// topic_prefix 传 null，保留设备已有前缀。
func (c *Client) configureGen2(host, brokerAddr string) error {
	req := rpcRequest{
		ID:     1,
		Method: "MQTT.SetConfig",
		Params: map[string]interface{}{
			"config": map[string]interface{}{
				"enable":       true,
				"server":       brokerAddr,
				"topic_prefix": nil,
				"rpc_ntf":      true,
				"status_ntf":   true,
			},
		},
	}

	if err := c.postRPC(host, req); err != nil {
		return err
	}

	logger.Info("Gen 2/3 device configured, triggering reboot", "host", host)
	// 重启失败不影响配置结果，设备通常在重启前就断开连接
	if err := c.postRPC(host, rpcRequest{ID: 1, Method: "Shelly.Reboot"}); err != nil {
		logger.Warn("Gen 2/3 reboot request failed", "host", host, "error", err.Error())
	}
	return nil
}

func (c *Client) postRPC(host string, req rpcRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	resp, err := c.configureClient.Post(fmt.Sprintf("http://%s/rpc", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc %s returned status %d", req.Method, resp.StatusCode)
	}
	return nil
}

// configureGen1 通过 /settings/mqtt 的 GET 参数写入配置并触发重启
// 多数 Gen 1 固件同时接受 GET 参数和表单提交，这里用 GET。
func (c *Client) configureGen1(host, brokerAddr string, interval int) error {
	url := fmt.Sprintf("http://%s/settings/mqtt?mqtt_enable=true&mqtt_server=%s&mqtt_update_period=%d",
		host, brokerAddr, interval)
	resp, err := c.configureClient.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("settings/mqtt returned status %d", resp.StatusCode)
	}

	logger.Info("Gen 1 device configured, triggering reboot", "host", host, "interval", interval)
	if rebootResp, rebootErr := c.configureClient.Get(fmt.Sprintf("http://%s/reboot", host)); rebootErr == nil {
		rebootResp.Body.Close()
	} else {
		logger.Warn("Gen 1 reboot request failed", "host", host, "error", rebootErr.Error())
	}
	return nil
}
