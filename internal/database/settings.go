package database

import "database/sql"

// 设置键
const (
	SettingBrokerIP = "mqtt_broker_ip" // 对设备下发的broker地址覆盖
)

// GetSetting 读取设置项，不存在时返回空串
func GetSetting(key string) (string, error) {
	var value string
	err := DB.QueryRow(
		`SELECT value FROM settings WHERE key = ?`,
		key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting 写入设置项
func SetSetting(key, value string) error {
	_, err := DB.Exec(
		`INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}
