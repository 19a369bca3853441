package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object 有序 JSON 对象
// encoding/json 的 map 不保留键顺序，而字段发现要求按报文原始顺序枚举键，
// 因此用 Decoder 逐 token 解析并记录键的出现顺序。
type Object struct {
	keys   []string
	values map[string]interface{}
}

// Keys 返回按文档顺序排列的键
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Get 获取键对应的值
func (o *Object) Get(key string) (interface{}, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Len 键数量
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// MarshalJSON 按原始键顺序序列化
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyData, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyData)
		buf.WriteByte(':')
		valData, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valData)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseObject 解析 JSON 文本为有序对象
// 根节点不是对象、或文本不可解析时返回 (nil, false)，不向调用方抛错：
// 上层把这种报文当作"无可发现字段"处理。
func ParseObject(data []byte) (*Object, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, false
	}
	obj, err := decodeObject(dec)
	if err != nil {
		return nil, false
	}
	return obj, true
}

// decodeObject 解析对象体，调用前 '{' 已被消费
func decodeObject(dec *json.Decoder) (*Object, error) {
	obj := &Object{values: make(map[string]interface{})}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key token: %v", tok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		// 重复键：后者覆盖，顺序取首次出现位置
		if _, exists := obj.values[key]; !exists {
			obj.keys = append(obj.keys, key)
		}
		obj.values[key] = value
	}
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter: %v", t)
		}
	default:
		// bool / float64 / string / nil
		return tok, nil
	}
}

func decodeArray(dec *json.Decoder) ([]interface{}, error) {
	arr := make([]interface{}, 0)
	for {
		if !dec.More() {
			// 消费 ']'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
}
