package database

import (
	"database/sql"
	"time"

	"github.com/gonglijing/shellydash/internal/models"
)

// SavePayloadRecord 保存一条遥测消息
func SavePayloadRecord(deviceID, topic, payload string) error {
	_, err := DB.Exec(
		`INSERT INTO payload_records (device_id, topic, payload, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		deviceID, topic, payload,
	)
	return err
}

// GetRecentRecords 获取设备最近的消息，按时间倒序（最新在前）
func GetRecentRecords(deviceID string, limit int) ([]models.PayloadRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := DB.Query(
		`SELECT id, device_id, topic, payload, created_at
		FROM payload_records
		WHERE device_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		deviceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PayloadRecord
	for rows.Next() {
		var record models.PayloadRecord
		if err := rows.Scan(&record.ID, &record.DeviceID, &record.Topic,
			&record.Payload, &record.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// LastSeen 设备最近一条消息的时间，无记录时返回零值
func LastSeen(deviceID string) (time.Time, error) {
	// 聚合表达式无声明类型，驱动按 TEXT 返回，手动解析
	var raw sql.NullString
	err := DB.QueryRow(
		`SELECT MAX(created_at) FROM payload_records WHERE device_id = ?`,
		deviceID,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, err
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, nil
	}
	return parseStoredTime(raw.String), nil
}

// CountRecords 设备消息总数
func CountRecords(deviceID string) (int64, error) {
	var count int64
	err := DB.QueryRow(
		`SELECT COUNT(*) FROM payload_records WHERE device_id = ?`,
		deviceID,
	).Scan(&count)
	return count, err
}

// DeleteRecordsByDevice 删除设备的全部历史记录
func DeleteRecordsByDevice(deviceID string) (int64, error) {
	result, err := DB.Exec(
		`DELETE FROM payload_records WHERE device_id = ?`,
		deviceID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
