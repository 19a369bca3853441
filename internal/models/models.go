package models

import "time"

// Device 设备模型
// ID 为设备名的 md5 哈希，由后端在订阅时生成，前端只读。
type Device struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	IP           string    `json:"ip" db:"ip"`
	LastSeen     time.Time `json:"last_seen,omitempty"`
	MessageCount int64     `json:"message_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PayloadRecord 一条已入库的遥测消息
// Payload 保存原始 JSON 文本，入库后不可变。
type PayloadRecord struct {
	ID        int64     `json:"id" db:"id"`
	DeviceID  string    `json:"device_id" db:"device_id"`
	Topic     string    `json:"topic" db:"topic"`
	Payload   string    `json:"payload" db:"payload"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ViewConfig 每设备的仪表盘字段配置
// VisibleFields 保持用户保存时的顺序，允许引用当前报文中不存在的字段。
type ViewConfig struct {
	DeviceID      string   `json:"device_id" db:"device_id"`
	VisibleFields []string `json:"visible_fields"`
}

// Subscription 设备与 MQTT 主题的绑定
type Subscription struct {
	ID        int64     `json:"id" db:"id"`
	DeviceID  string    `json:"device_id" db:"device_id"`
	Topic     string    `json:"topic" db:"topic"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SubscribeRequest 订阅请求
type SubscribeRequest struct {
	Topic      string `json:"topic"`
	DeviceName string `json:"device_name"`
	DeviceIP   string `json:"device_ip"`
}

// SystemInfo Broker 连接信息
// IP 为生效值：settings 覆盖优先，否则取本机出口地址。
type SystemInfo struct {
	IP       string `json:"ip"`
	Detected string `json:"detected"`
	Override string `json:"override"`
	Port     int    `json:"port"`
}

// ProbeResult 设备探测结果
type ProbeResult struct {
	MQTTEnabled bool     `json:"mqtt_enabled"`
	TopicPrefix string   `json:"topic_prefix"`
	DeviceName  string   `json:"device_name"`
	Generation  int      `json:"generation"`
	Suggestions []string `json:"suggestions"`
}

// ConfigureRequest 设备自动配置请求
type ConfigureRequest struct {
	DeviceIP string `json:"device_ip"`
	Interval int    `json:"interval"`
}
