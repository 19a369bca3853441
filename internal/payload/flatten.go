package payload

import "strings"

// Flatten 深度优先展开对象为叶子字段路径
// 路径用 '.' 连接，键按文档顺序枚举。非空对象值继续下钻，中间对象键
// 本身不产生路径；标量、null、数组都是叶子（数组不再展开）。
func Flatten(obj *Object) []string {
	paths := make([]string, 0, obj.Len())
	flattenInto(obj, "", &paths)
	return paths
}

// FlattenJSON 解析并展开 JSON 文本
// 非对象根或不可解析文本视为无可发现字段，返回空序列。
func FlattenJSON(data []byte) []string {
	obj, ok := ParseObject(data)
	if !ok {
		return []string{}
	}
	return Flatten(obj)
}

func flattenInto(obj *Object, prefix string, paths *[]string) {
	for _, key := range obj.Keys() {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		value, _ := obj.Get(key)
		if child, ok := value.(*Object); ok {
			flattenInto(child, path, paths)
			continue
		}
		*paths = append(*paths, path)
	}
}

// Resolve 按字段路径取值
// 路径按 '.' 切分逐段下钻；任一中间段缺失或不是对象、或末段缺失时
// 返回 Absent，永不报错。
func Resolve(obj *Object, path string) Value {
	if obj == nil || path == "" {
		return Absent
	}

	segments := strings.Split(path, ".")
	current := obj
	for _, segment := range segments[:len(segments)-1] {
		value, ok := current.Get(segment)
		if !ok {
			return Absent
		}
		child, ok := value.(*Object)
		if !ok {
			return Absent
		}
		current = child
	}

	value, ok := current.Get(segments[len(segments)-1])
	if !ok {
		return Absent
	}
	return valueOf(value)
}

// ResolveJSON 解析 JSON 文本后按路径取值
func ResolveJSON(data []byte, path string) Value {
	obj, ok := ParseObject(data)
	if !ok {
		return Absent
	}
	return Resolve(obj, path)
}
