package payload

import (
	"reflect"
	"testing"
)

func TestFlattenJSON_DocumentOrder(t *testing.T) {
	data := []byte(`{"apower": 12.5, "voltage": 230, "status": {"on": true}}`)

	got := FlattenJSON(data)
	want := []string{"apower", "voltage", "status.on"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FlattenJSON = %v, want %v", got, want)
	}
}

func TestFlattenJSON_NestedObjects(t *testing.T) {
	data := []byte(`{"status": {"switch:0": {"apower": 3.2, "output": true}, "temperature": {"tC": 41.5}}, "ts": 1700000000}`)

	got := FlattenJSON(data)
	want := []string{
		"status.switch:0.apower",
		"status.switch:0.output",
		"status.temperature.tC",
		"ts",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FlattenJSON = %v, want %v", got, want)
	}
}

func TestFlattenJSON_ArraysAreLeaves(t *testing.T) {
	data := []byte(`{"readings": [1, 2, 3], "meta": {"tags": ["a", "b"]}}`)

	got := FlattenJSON(data)
	want := []string{"readings", "meta.tags"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FlattenJSON = %v, want %v", got, want)
	}
}

func TestFlattenJSON_NullAndScalars(t *testing.T) {
	data := []byte(`{"a": null, "b": "text", "c": false}`)

	got := FlattenJSON(data)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FlattenJSON = %v, want %v", got, want)
	}
}

func TestFlattenJSON_EmptyAndInvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty object", data: `{}`},
		{name: "bare number", data: `42`},
		{name: "bare array", data: `[1, 2]`},
		{name: "bare string", data: `"hello"`},
		{name: "malformed", data: `{"a": `},
		{name: "empty input", data: ``},
		{name: "not json", data: `ON`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlattenJSON([]byte(tt.data))
			if len(got) != 0 {
				t.Fatalf("FlattenJSON(%q) = %v, want empty", tt.data, got)
			}
		})
	}
}

func TestFlattenJSON_Deterministic(t *testing.T) {
	data := []byte(`{"z": 1, "a": {"y": 2, "b": 3}, "m": [4]}`)

	first := FlattenJSON(data)
	second := FlattenJSON(data)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("flatten not deterministic: %v vs %v", first, second)
	}
}

func TestFlatten_NoIntermediateKeys(t *testing.T) {
	data := []byte(`{"status": {"switch:0": {"apower": 1}}}`)

	got := FlattenJSON(data)
	for _, path := range got {
		if path == "status" || path == "status.switch:0" {
			t.Fatalf("intermediate key %q emitted as field path", path)
		}
	}
}

// 每个展开出的路径都必须能解析回非缺失值
func TestFlatten_AllPathsResolve(t *testing.T) {
	data := []byte(`{"apower": 12.5, "status": {"on": true, "sub": {"v": null}}, "tags": ["x"]}`)

	obj, ok := ParseObject(data)
	if !ok {
		t.Fatal("ParseObject failed")
	}
	for _, path := range Flatten(obj) {
		if v := Resolve(obj, path); v.IsAbsent() {
			t.Fatalf("path %q from Flatten resolves to absent", path)
		}
	}
}

func TestParseObject_DuplicateKeys(t *testing.T) {
	data := []byte(`{"a": 1, "b": 2, "a": 3}`)

	obj, ok := ParseObject(data)
	if !ok {
		t.Fatal("ParseObject failed")
	}
	if got, want := obj.Keys(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys = %v, want %v", got, want)
	}
	v := Resolve(obj, "a")
	if f, _ := v.Float(); f != 3 {
		t.Fatalf("duplicate key value = %v, want 3", f)
	}
}

func TestObject_MarshalPreservesOrder(t *testing.T) {
	data := []byte(`{"z": 1, "a": {"y": "s", "b": true}}`)

	obj, ok := ParseObject(data)
	if !ok {
		t.Fatal("ParseObject failed")
	}
	out, err := obj.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"z":1,"a":{"y":"s","b":true}}`
	if string(out) != want {
		t.Fatalf("MarshalJSON = %s, want %s", out, want)
	}
}
