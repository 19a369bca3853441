package database

import (
	"database/sql"

	"github.com/gonglijing/shellydash/internal/models"
)

// AddSubscription 记录设备与主题的绑定，重复绑定忽略
func AddSubscription(deviceID, topic string) error {
	_, err := DB.Exec(
		`INSERT OR IGNORE INTO subscriptions (device_id, topic) VALUES (?, ?)`,
		deviceID, topic,
	)
	return err
}

// GetTopicsByDevice 获取设备的所有订阅主题
func GetTopicsByDevice(deviceID string) ([]string, error) {
	rows, err := DB.Query(
		`SELECT topic FROM subscriptions WHERE device_id = ? ORDER BY id`,
		deviceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// GetAllTopics 获取全部订阅主题，启动时恢复订阅用
func GetAllTopics() ([]string, error) {
	rows, err := DB.Query(`SELECT DISTINCT topic FROM subscriptions ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// DeviceIDForTopic 根据主题查找设备ID，未绑定时返回空串
func DeviceIDForTopic(topic string) (string, error) {
	var deviceID string
	err := DB.QueryRow(
		`SELECT device_id FROM subscriptions WHERE topic = ?`,
		topic,
	).Scan(&deviceID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return deviceID, nil
}

// GetAllSubscriptions 获取全部订阅
func GetAllSubscriptions() ([]*models.Subscription, error) {
	rows, err := DB.Query(
		`SELECT id, device_id, topic, created_at FROM subscriptions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		if err := rows.Scan(&sub.ID, &sub.DeviceID, &sub.Topic, &sub.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
