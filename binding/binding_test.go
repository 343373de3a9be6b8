package binding

import "testing"

func TestInterpolateReplacesKnownPaths(t *testing.T) {
	data := map[string]any{
		"summary": map[string]any{"activeFormat": "A6", "panelCount": 4},
		"tags":    []any{"outside", "inside"},
	}
	got := Interpolate("Format: ${summary.activeFormat} · ${summary.panelCount} Panels · ${tags[1]}", data)
	want := "Format: A6 · 4 Panels · inside"
	if got != want {
		t.Fatalf("插值结果错误: got=%q want=%q", got, want)
	}
}

func TestInterpolateKeepsUnresolved(t *testing.T) {
	data := map[string]any{"a": 1}
	if got := Interpolate("${b.c} ${tags[9]}", data); got != "${b.c} ${tags[9]}" {
		t.Fatalf("未解析的占位符应原样保留: %q", got)
	}
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("data 为空时应原样返回: %q", got)
	}
}

func TestResolveSegments(t *testing.T) {
	data := map[string]any{
		"panels": map[string]any{"1": map[string]any{"heading": "Hallo"}},
		"list":   []any{"x", "y"},
	}
	v, ok := Resolve(data, "panels", "1", "heading")
	if !ok || v != "Hallo" {
		t.Fatalf("路径解析失败: %v %v", v, ok)
	}
	if v, ok := Resolve(data, "list", "1"); !ok || v != "y" {
		t.Fatalf("数组下标解析失败: %v %v", v, ok)
	}
	if _, ok := Resolve(data, "list", "x"); ok {
		t.Fatalf("非数字下标不应解析成功")
	}
	if _, ok := Resolve(data, "panels", "2", "heading"); ok {
		t.Fatalf("缺失键不应解析成功")
	}
}
