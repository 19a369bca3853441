// Package discovery 通过设备的本地 HTTP 接口探测和配置 Shelly 设备。
// 优先走 Gen 2/3 的 RPC 接口，失败后回退 Gen 1 的 /settings 接口。
package discovery

import (
	"net/http"
	"sync"
	"time"

	"github.com/gonglijing/shellydash/internal/circuit"
)

const (
	// DefaultProbeTimeout 探测请求超时
	DefaultProbeTimeout = 3 * time.Second
	// DefaultConfigureTimeout 配置请求超时
	DefaultConfigureTimeout = 5 * time.Second
	// DefaultUpdateInterval Gen 1 默认上报间隔（秒）
	DefaultUpdateInterval = 30
	// UnknownPrefix 无法确定主题前缀时的占位值
	UnknownPrefix = "shelly-unknown"
)

// Client 设备探测与配置客户端
// 每个目标地址独立熔断，掉线设备不会拖慢其他设备的探测。
type Client struct {
	probeClient     *http.Client
	configureClient *http.Client

	mu       sync.Mutex
	breakers map[string]*circuit.CircuitBreaker
}

// NewClient 创建客户端
func NewClient(probeTimeout, configureTimeout time.Duration) *Client {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if configureTimeout <= 0 {
		configureTimeout = DefaultConfigureTimeout
	}
	return &Client{
		probeClient:     &http.Client{Timeout: probeTimeout},
		configureClient: &http.Client{Timeout: configureTimeout},
		breakers:        make(map[string]*circuit.CircuitBreaker),
	}
}

// breakerFor 获取目标地址的熔断器
func (c *Client) breakerFor(host string) *circuit.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	cb, ok := c.breakers[host]
	if !ok {
		cb = circuit.NewCircuitBreaker(nil)
		c.breakers[host] = cb
	}
	return cb
}

// BreakerStats 各目标地址的熔断统计
func (c *Client) BreakerStats() map[string]map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]map[string]interface{}, len(c.breakers))
	for host, cb := range c.breakers {
		out[host] = cb.Stats()
	}
	return out
}
