// Package ingest 维护到 MQTT broker 的订阅连接，把收到的遥测报文写入数据库。
package ingest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/gonglijing/shellydash/internal/database"
	"github.com/gonglijing/shellydash/internal/logger"
)

const (
	defaultReconnectInterval = 5 * time.Second
	defaultConnectTimeout    = 10 * time.Second
	subscribeQOS             = 0
)

// UnknownDeviceID 找不到主题归属设备时的占位设备 ID
// 报文仍然入库，等设备订阅补齐后可以追溯。
const UnknownDeviceID = "unknown"

// Manager 入站 MQTT 连接管理器
type Manager struct {
	broker   string
	username string
	password string
	clientID string

	client  mqtt.Client
	timeout time.Duration

	// 已订阅主题，重连后用于恢复订阅
	topics   map[string]struct{}
	topicsMu sync.Mutex

	mu                sync.RWMutex
	connected         bool
	reconnectInterval time.Duration
}

// NewManager 创建管理器
// broker 形如 "tcp://192.168.1.10:1883" 或裸地址 "192.168.1.10:1883"。
func NewManager(broker, username, password string, reconnectInterval time.Duration) *Manager {
	if reconnectInterval <= 0 {
		reconnectInterval = defaultReconnectInterval
	}
	return &Manager{
		broker:            normalizeBroker(broker),
		username:          username,
		password:          password,
		clientID:          fmt.Sprintf("shellydash-%s", uuid.NewString()[:8]),
		timeout:           defaultConnectTimeout,
		topics:            make(map[string]struct{}),
		reconnectInterval: reconnectInterval,
	}
}

// normalizeBroker 补全 broker 地址的协议前缀
func normalizeBroker(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}

// Connect 连接 broker
// paho 自带自动重连，OnConnect 回调里恢复全部订阅。
func (m *Manager) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.broker).
		SetClientID(m.clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(m.reconnectInterval).
		SetConnectTimeout(m.timeout)

	if m.username != "" {
		opts.SetUsername(m.username)
	}
	if m.password != "" {
		opts.SetPassword(m.password)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		if err != nil {
			logger.Warn("MQTT connection lost", "broker", m.broker, "error", err.Error())
		}
		m.mu.Lock()
		m.connected = false
		m.mu.Unlock()
	}
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", "broker", m.broker, "client_id", m.clientID)
		m.mu.Lock()
		m.connected = true
		m.mu.Unlock()
		m.resubscribe(client)
	}

	client := mqtt.NewClient(opts)

	// 先登记 client 再等连接结果：broker 暂不可达时 paho 会持续重试，
	// 期间 Subscribe/Unsubscribe/Disconnect 仍要能拿到这个实例。
	m.mu.Lock()
	m.client = client
	m.mu.Unlock()

	token := client.Connect()
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("MQTT connect timeout: %s", m.broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT connect failed: %w", err)
	}
	return nil
}

// Disconnect 断开连接
func (m *Manager) Disconnect() {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.connected = false
	m.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
}

// IsConnected 当前连接状态
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Subscribe 订阅主题并登记，供重连后恢复
func (m *Manager) Subscribe(topic string) error {
	m.topicsMu.Lock()
	m.topics[topic] = struct{}{}
	m.topicsMu.Unlock()

	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return fmt.Errorf("MQTT client not connected")
	}

	token := client.Subscribe(topic, subscribeQOS, m.onMessage)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("subscribe timeout: %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe failed: %s: %w", topic, err)
	}

	logger.Info("Subscribed to topic", "topic", topic)
	return nil
}

// Unsubscribe 退订一组主题
func (m *Manager) Unsubscribe(topics ...string) error {
	m.topicsMu.Lock()
	for _, t := range topics {
		delete(m.topics, t)
	}
	m.topicsMu.Unlock()

	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil || len(topics) == 0 {
		return nil
	}

	token := client.Unsubscribe(topics...)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("unsubscribe timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("unsubscribe failed: %w", err)
	}

	logger.Info("Unsubscribed from topics", "count", len(topics))
	return nil
}

// resubscribe 恢复全部已登记主题的订阅
func (m *Manager) resubscribe(client mqtt.Client) {
	m.topicsMu.Lock()
	topics := make([]string, 0, len(m.topics))
	for t := range m.topics {
		topics = append(topics, t)
	}
	m.topicsMu.Unlock()

	for _, topic := range topics {
		token := client.Subscribe(topic, subscribeQOS, m.onMessage)
		if token.WaitTimeout(m.timeout) && token.Error() == nil {
			logger.Debug("Restored subscription", "topic", topic)
		} else {
			logger.Warn("Failed to restore subscription", "topic", topic)
		}
	}
}

// onMessage paho 消息回调
func (m *Manager) onMessage(_ mqtt.Client, msg mqtt.Message) {
	m.Ingest(msg.Topic(), msg.Payload())
}

// Ingest 处理一条入站报文：解析归属设备，规范化后入库
func (m *Manager) Ingest(topic string, payload []byte) {
	deviceID, err := database.DeviceIDForTopic(topic)
	if err != nil {
		logger.Error("Failed to resolve device for topic", err, "topic", topic)
		return
	}
	if deviceID == "" {
		deviceID = UnknownDeviceID
	}

	normalized := NormalizePayload(payload)
	if err := database.SavePayloadRecord(deviceID, topic, normalized); err != nil {
		logger.Error("Failed to save payload record", err, "topic", topic, "device_id", deviceID)
		return
	}

	logger.Debug("Payload recorded", "topic", topic, "device_id", deviceID, "bytes", len(normalized))
}
