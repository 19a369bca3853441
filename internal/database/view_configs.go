package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// GetViewConfig 获取设备的可见字段配置
// 从未配置过的设备返回空序列而非错误。
func GetViewConfig(deviceID string) ([]string, error) {
	var fieldsJSON string
	err := DB.QueryRow(
		`SELECT visible_fields FROM view_configs WHERE device_id = ?`,
		deviceID,
	).Scan(&fieldsJSON)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	var fields []string
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("corrupt view config for device %s: %w", deviceID, err)
	}
	if fields == nil {
		fields = []string{}
	}
	return fields, nil
}

// SaveViewConfig 保存设备的可见字段配置
// 整体替换旧配置，后写覆盖先写，不做冲突检测。
func SaveViewConfig(deviceID string, fields []string) error {
	if fields == nil {
		fields = []string{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	_, err = DB.Exec(
		`INSERT INTO view_configs (device_id, visible_fields, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(device_id) DO UPDATE SET
			visible_fields = excluded.visible_fields,
			updated_at = CURRENT_TIMESTAMP`,
		deviceID, string(fieldsJSON),
	)
	return err
}
