package payload

import "encoding/json"

// Kind 值类型
type Kind int

const (
	KindAbsent Kind = iota // 路径无法解析到值
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// KindNames 类型名称映射
var KindNames = map[Kind]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

// String 返回类型字符串
func (k Kind) String() string {
	if name, ok := KindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value 带类型标签的解析结果
// Absent 与 Null 是不同的结果：前者表示路径不存在，后者表示存在且值为 null。
// 渲染层据此区分"无数据"与"值为零/空"。
type Value struct {
	kind Kind
	data interface{}
}

// Absent 路径缺失的哨兵值
var Absent = Value{kind: KindAbsent}

// valueOf 根据解码后的 Go 值构造 Value
func valueOf(v interface{}) Value {
	switch v.(type) {
	case nil:
		return Value{kind: KindNull}
	case bool:
		return Value{kind: KindBool, data: v}
	case float64:
		return Value{kind: KindNumber, data: v}
	case string:
		return Value{kind: KindString, data: v}
	case []interface{}:
		return Value{kind: KindArray, data: v}
	case *Object:
		return Value{kind: KindObject, data: v}
	default:
		return Value{kind: KindNull}
	}
}

// Kind 值类型
func (v Value) Kind() Kind {
	return v.kind
}

// IsAbsent 是否缺失
func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

// IsNumeric 是否为数值，只有数值字段参与时序图渲染
func (v Value) IsNumeric() bool {
	return v.kind == KindNumber
}

// Float 数值内容，非数值时 ok 为 false
func (v Value) Float() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok
}

// Interface 原始解码值，Absent 返回 nil
func (v Value) Interface() interface{} {
	return v.data
}

// MarshalJSON 序列化底层值
// Absent 序列化为 null 仅用于调试输出，API 层通过省略键来表达缺失。
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.data)
}
