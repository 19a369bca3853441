package database

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gonglijing/shellydash/internal/models"
)

// DeviceIDForName 由设备名生成稳定ID
// 同名设备总是映射到同一条记录，重复订阅只更新IP。
func DeviceIDForName(name string) string {
	hash := md5.Sum([]byte(name))
	return hex.EncodeToString(hash[:])
}

// UpsertDevice 创建或更新设备
func UpsertDevice(id, name, ip string) error {
	_, err := DB.Exec(
		`INSERT INTO devices (id, name, ip) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ip = excluded.ip`,
		id, name, ip,
	)
	return err
}

// GetDeviceByID 根据ID获取设备
func GetDeviceByID(id string) (*models.Device, error) {
	device := &models.Device{}
	var ip sql.NullString
	err := DB.QueryRow(
		`SELECT id, name, ip, created_at FROM devices WHERE id = ?`,
		id,
	).Scan(&device.ID, &device.Name, &ip, &device.CreatedAt)
	if err != nil {
		return nil, err
	}
	if ip.Valid {
		device.IP = ip.String
	}
	return device, nil
}

// GetAllDevices 获取所有设备，附带最近上报时间与消息数
func GetAllDevices() ([]*models.Device, error) {
	rows, err := DB.Query(
		`SELECT d.id, d.name, d.ip, d.created_at,
			MAX(r.created_at) AS last_seen,
			COUNT(r.id) AS message_count
		FROM devices d
		LEFT JOIN payload_records r ON r.device_id = d.id
		GROUP BY d.id
		ORDER BY d.name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		device := &models.Device{}
		var ip sql.NullString
		// MAX() 表达式没有列类型声明，驱动按 TEXT 返回，手工解析
		var lastSeen sql.NullString
		if err := rows.Scan(&device.ID, &device.Name, &ip, &device.CreatedAt,
			&lastSeen, &device.MessageCount); err != nil {
			return nil, err
		}
		if ip.Valid {
			device.IP = ip.String
		}
		if lastSeen.Valid {
			device.LastSeen = parseStoredTime(lastSeen.String)
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

// parseStoredTime 解析 SQLite 存储的时间文本
func parseStoredTime(value string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
	} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// DeleteDevice 删除设备及其订阅、配置和历史记录
// 返回被删除的订阅主题，调用方据此执行 MQTT 退订。
func DeleteDevice(id string) ([]string, error) {
	topics, err := GetTopicsByDevice(id)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM devices WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("delete device: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM subscriptions WHERE device_id = ?", id); err != nil {
		return nil, fmt.Errorf("delete subscriptions: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM view_configs WHERE device_id = ?", id); err != nil {
		return nil, fmt.Errorf("delete view configs: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM payload_records WHERE device_id = ?", id); err != nil {
		return nil, fmt.Errorf("delete payload records: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return topics, nil
}
