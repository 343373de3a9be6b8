package canvasrenderer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/flyer/config"
	"github.com/ByLCY/flyer/fonts"
	"github.com/ByLCY/flyer/layout"
)

func compose(t *testing.T, layoutName string) *layout.Result {
	t.Helper()
	cfg := config.Default()
	cfg.Layout.Active = layoutName
	cfg.Panels = map[string]config.PanelContent{
		"1": {Role: "cover", Heading: "Café Sunshine", Body: "<p>Frisch gebrüht</p><ul><li>Espresso</li></ul>"},
		"2": {Footer: "Hauptstraße 1"},
	}
	return layout.Compose(cfg, layout.DefaultFormatSpec, layout.Options{})
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer(t.TempDir())
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil 结果应返回错误")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("没有 spread 时应返回错误")
	}
}

// 找不到字体时跳过文字，仍输出每个 spread 一页的 PDF。
func TestRenderWritesPDF(t *testing.T) {
	for _, name := range []string{"simple", "2-fold", "3-fold"} {
		t.Run(name, func(t *testing.T) {
			r := NewRenderer(t.TempDir())
			data, err := r.Render(compose(t, name))
			if err != nil {
				t.Fatalf("渲染失败: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF")) {
				t.Fatalf("输出不是 PDF: %q", data[:min(len(data), 16)])
			}
		})
	}
}

func TestFontFaceMissingFont(t *testing.T) {
	r := NewRendererWithOptions(Options{
		FontDirs: []string{t.TempDir()},
		Fonts:    map[string]Resource{"Broken": {Bytes: []byte("not a font")}},
	})
	_, err := r.fontFace("'Broken', 'NoSuchFontFamilyXYZ', sans-serif", 10, canvas.Black)
	if !errors.Is(err, errNoFont) {
		t.Fatalf("期望 errNoFont，得到 %v", err)
	}
	if family, ok := r.fontFamilies["broken"]; !ok || family != nil {
		t.Fatalf("加载失败的字体应被缓存为缺失")
	}
}

// 系统中存在常见字体时，验证真实字体面的换行。
func TestGreedyWrapWithSystemFont(t *testing.T) {
	var path string
	for _, family := range []string{"DejaVu Sans", "Liberation Sans", "Arial", "Inter"} {
		if p, err := fonts.Locate(family); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		t.Skip("no system font available")
	}
	r := NewRendererWithOptions(Options{Fonts: map[string]Resource{"Test": {Path: path}}})
	face, err := r.fontFace("Test", 12, canvas.Black)
	if err != nil {
		t.Fatalf("加载字体失败: %v", err)
	}
	lines := greedyWrapTokens("hello world again", 10, face)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Width > 10+1e-6 && len([]rune(ln.Content)) > 1 {
			t.Fatalf("line %d width exceeds limit: %g", i, ln.Width)
		}
	}
}
