package ingest

import "encoding/json"

// NormalizePayload 把任意报文规范化为 JSON 文本
// 合法 JSON 原样保留，非 JSON（Gen 1 设备常见的裸数值或文本）
// 包装成 {"raw_value":"..."}，保证库里每条记录都可以按 JSON 解析。
func NormalizePayload(payload []byte) string {
	if json.Valid(payload) {
		return string(payload)
	}

	quoted, err := json.Marshal(string(payload))
	if err != nil {
		// string 的 Marshal 不会失败，保底返回空对象
		return "{}"
	}
	return `{"raw_value":` + string(quoted) + `}`
}
