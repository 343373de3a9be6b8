package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/flyer/config"
)

// composeWith 是测试辅助：在默认配置上应用 mutate 后组版。
func composeWith(t *testing.T, mutate func(*config.Configuration)) *Result {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	return Compose(cfg, DefaultFormatSpec, Options{})
}

// TestScenarioA6Orientation 验证 A6 纵向为 105×148，切换横向后为 148×105。
func TestScenarioA6Orientation(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) { c.Format.Active = "A6" })
	if res.Format.WidthMM != 105 || res.Format.HeightMM != 148 {
		t.Fatalf("A6 纵向尺寸错误: %+v", res.Format)
	}
	res = composeWith(t, func(c *config.Configuration) {
		c.Format.Active = "A6"
		c.Format.Orientation = "landscape"
	})
	if res.Format.WidthMM != 148 || res.Format.HeightMM != 105 {
		t.Fatalf("A6 横向尺寸错误: %+v", res.Format)
	}
	if res.Format.Orientation != Landscape {
		t.Fatalf("方向应为 landscape，实际 %v", res.Format.Orientation)
	}
}

// TestScenarioTwoFold 验证 2-fold：两个各含 2 面板的 spread，外侧镜像、内侧不镜像。
func TestScenarioTwoFold(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) { c.Layout.Active = "2-fold" })
	if len(res.Spreads) != 2 {
		t.Fatalf("spread 数量错误: %d", len(res.Spreads))
	}
	s1, s2 := res.Spreads[0], res.Spreads[1]
	if !reflect.DeepEqual(s1.Panels, []int{1, 2}) || !s1.Reversed {
		t.Fatalf("spread 1 错误: panels=%v reversed=%v", s1.Panels, s1.Reversed)
	}
	if !reflect.DeepEqual(s2.Panels, []int{3, 4}) || s2.Reversed {
		t.Fatalf("spread 2 错误: panels=%v reversed=%v", s2.Panels, s2.Reversed)
	}
	if !reflect.DeepEqual(s1.VisualOrder(), []int{2, 1}) {
		t.Fatalf("外侧视觉顺序应为 [2 1]，实际 %v", s1.VisualOrder())
	}
	if res.Layout.PanelCount != 4 || res.Summary.PanelCount != 4 {
		t.Fatalf("面板数量错误: layout=%d summary=%d", res.Layout.PanelCount, res.Summary.PanelCount)
	}
	if s1.WidthMM != 210 || s1.HeightMM != 148 {
		t.Fatalf("spread 宽高错误: %gx%g", s1.WidthMM, s1.HeightMM)
	}
}

// TestScenarioSimplePlaceholder 验证 simple 版式下无内容的面板 1 使用占位内容且没有折线。
func TestScenarioSimplePlaceholder(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "simple"
		c.Panels["2"] = config.PanelContent{Role: "back", Body: "<p>Rückseite</p>"}
	})
	if len(res.Spreads) != 1 {
		t.Fatalf("simple 应只有一个 spread，实际 %d", len(res.Spreads))
	}
	sp := res.Spreads[0]
	if sp.Reversed || len(sp.FoldLines) != 0 {
		t.Fatalf("simple 不应镜像或带折线: %+v", sp)
	}
	p1 := sp.Items[0]
	if !p1.Placeholder || !strings.Contains(p1.BodyHTML, "Panel 1") || !strings.Contains(p1.BodyHTML, "content") {
		t.Fatalf("面板 1 占位内容错误: %+v", p1)
	}
	if p1.Heading != "" || p1.Footer != "" {
		t.Fatalf("缺失的标题/页脚应省略: %+v", p1)
	}
	p2 := sp.Items[1]
	if p2.Placeholder || p2.BodyHTML != "<p>Rückseite</p>" {
		t.Fatalf("正文应原样使用: %+v", p2)
	}
	// 2×105mm + 10mm 间距
	if sp.WidthMM != 220 || sp.GapMM != SimpleGapMM {
		t.Fatalf("simple spread 宽度错误: %g gap=%g", sp.WidthMM, sp.GapMM)
	}
	if p2.XMM != 115 {
		t.Fatalf("面板 2 应位于 115mm，实际 %g", p2.XMM)
	}
}

func TestPlaceholderUsesRole(t *testing.T) {
	p := MapPanel(3, &config.PanelContent{Role: "<contact>", Heading: "Kontakt", Footer: "© 2026"})
	if !p.Placeholder || !strings.Contains(p.BodyHTML, "Panel 3") || !strings.Contains(p.BodyHTML, "&lt;contact&gt;") {
		t.Fatalf("占位内容应包含序号与转义后的角色: %s", p.BodyHTML)
	}
	if p.Heading != "Kontakt" || p.Footer != "© 2026" || p.Role != "<contact>" {
		t.Fatalf("字段应原样复制: %+v", p)
	}
}

// TestThreeFoldFoldLines 验证 3-fold 每个 spread 有两条折线，且不在最后一个面板之后。
func TestThreeFoldFoldLines(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) { c.Layout.Active = "3-fold" })
	if len(res.Spreads) != 2 {
		t.Fatalf("spread 数量错误: %d", len(res.Spreads))
	}
	outside := res.Spreads[0]
	if !outside.Reversed || res.Spreads[1].Reversed {
		t.Fatalf("镜像标记错误")
	}
	if len(outside.FoldLines) != 2 {
		t.Fatalf("折线数量错误: %d", len(outside.FoldLines))
	}
	first := outside.FoldLines[0]
	if first.Left != 3 || first.Right != 2 || first.XMM != 105 {
		t.Fatalf("外侧第一条折线错误: %+v", first)
	}
	for _, fl := range outside.FoldLines {
		if fl.Position >= len(outside.Panels)-1 {
			t.Fatalf("折线不能位于最后一个面板之后: %+v", fl)
		}
	}
	for _, p := range outside.Items {
		if p.Index == 3 && p.Position != 0 {
			t.Fatalf("镜像后面板 3 应位于最左侧，实际槽位 %d", p.Position)
		}
	}
}

// TestBilingualAliases 验证德语别名与规范名称等价。
func TestBilingualAliases(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "3-falz"
		c.Format.Orientation = "Querformat"
	})
	if res.Layout.Kind != LayoutThreeFold || res.Layout.Name != "3-fold" {
		t.Fatalf("3-falz 应映射为 3-fold: %+v", res.Layout)
	}
	if res.Format.Orientation != Landscape {
		t.Fatalf("Querformat 应识别为横向")
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("不应产生警告: %v", res.Warnings)
	}

	for _, in := range []string{"hochformat", "PORTRAIT", "sideways", ""} {
		if o, _ := NormalizeOrientation(in); o != Portrait {
			t.Fatalf("%q 不应被识别为横向", in)
		}
	}
	if _, ok := NormalizeOrientation("sideways"); ok {
		t.Fatalf("未知方向不应返回 ok")
	}
}

// TestUnknownFormatRetainsPrevious 验证未知格式保留上一次的尺寸并产生警告。
func TestUnknownFormatRetainsPrevious(t *testing.T) {
	cfg := config.Default()
	cfg.Format.Active = "A5"
	first := Compose(cfg, DefaultFormatSpec, Options{})
	if first.Format.WidthMM != 148 {
		t.Fatalf("A5 宽度错误: %g", first.Format.WidthMM)
	}
	cfg.Format.Active = "B7"
	cfg.Format.Orientation = "landscape"
	second := Compose(cfg, first.Format, Options{})
	if second.Format != first.Format {
		t.Fatalf("未知格式应保留上次尺寸: got=%+v want=%+v", second.Format, first.Format)
	}
	if len(second.Warnings) != 1 || second.Warnings[0].Kind != FormatNotFound || second.Warnings[0].Name != "B7" {
		t.Fatalf("应产生 FormatNotFound 警告: %v", second.Warnings)
	}
	if second.Summary.ActiveFormat != "B7" {
		t.Fatalf("摘要应显示配置中的格式名: %s", second.Summary.ActiveFormat)
	}
	if len(second.Spreads) == 0 {
		t.Fatalf("其余部分仍应正常组版")
	}
}

// TestUnknownLayoutFallback 验证未知版式退化为单个顺序 spread。
func TestUnknownLayoutFallback(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "zickzack"
		c.Panels["1"] = config.PanelContent{Heading: "A"}
		c.Panels["5"] = config.PanelContent{Heading: "E"}
	})
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != LayoutNotFound {
		t.Fatalf("应产生 LayoutNotFound 警告: %v", res.Warnings)
	}
	if len(res.Spreads) != 1 {
		t.Fatalf("应只有一个回退 spread: %d", len(res.Spreads))
	}
	sp := res.Spreads[0]
	if !reflect.DeepEqual(sp.Panels, []int{1, 2, 3, 4, 5}) || sp.Reversed {
		t.Fatalf("回退 spread 错误: %+v", sp.Panels)
	}
	if res.Summary.ActiveLayoutLabel != "–" || res.Summary.PanelCount != 0 {
		t.Fatalf("未知版式的摘要错误: %+v", res.Summary)
	}
}

// TestCustomLayoutOptionFallsBackWithoutWarning 验证配置中存在但拼版表中没有的版式。
func TestCustomLayoutOptionFallsBackWithoutWarning(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "leporello"
		c.Layout.Options["leporello"] = config.LayoutOption{Label: "Leporello", Panels: 8}
	})
	if len(res.Warnings) != 0 {
		t.Fatalf("不应产生警告: %v", res.Warnings)
	}
	if len(res.Spreads) != 1 || len(res.Spreads[0].Panels) != 8 {
		t.Fatalf("应回退为 8 面板的单个 spread: %+v", res.Spreads)
	}
	if len(res.Spreads[0].FoldLines) != 7 {
		t.Fatalf("折线数量应为 7，实际 %d", len(res.Spreads[0].FoldLines))
	}
	if res.Summary.ActiveLayoutLabel != "Leporello" || res.Summary.PanelCount != 8 {
		t.Fatalf("摘要错误: %+v", res.Summary)
	}
}

func TestPanelCountMismatchWarns(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "2-fold"
		c.Layout.Options["2-fold"] = config.LayoutOption{Label: "2-Fold", Panels: 6}
	})
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != PanelCountMismatch {
		t.Fatalf("应产生 PanelCountMismatch 警告: %v", res.Warnings)
	}
	if res.Layout.PanelCount != 4 {
		t.Fatalf("应以拼版规则为准: %d", res.Layout.PanelCount)
	}
}

// TestComposeIdempotent 验证相同配置两次组版得到结构相同的结果。
func TestComposeIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.Layout.Active = "3-fold"
	cfg.Panels["4"] = config.PanelContent{Heading: "Innen", Body: "<ul><li>x</li></ul>"}
	a := Compose(cfg, DefaultFormatSpec, Options{})
	b := Compose(cfg, DefaultFormatSpec, Options{})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("两次组版结果不一致")
	}
	// 结果之间不共享切片
	a.Spreads[0].Panels[0] = 99
	if b.Spreads[0].Panels[0] == 99 {
		t.Fatalf("不同结果不应共享底层数组")
	}
}

func TestThemeVariables(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Fonts["heading"] = "'Archivo Black', sans-serif"
	})
	want := map[string]string{
		"--color-primary":      "#FFC700",
		"--color-primary-text": "#050505",
		"--font-heading":       "'Archivo Black', sans-serif",
		"--font-heading-name":  "Archivo Black",
		"--page-width":         "105mm",
		"--page-height":        "148mm",
	}
	for name, v := range want {
		got, ok := res.Theme.Get(name)
		if !ok || got != v {
			t.Fatalf("%s: got=%q ok=%v want=%q", name, got, ok, v)
		}
	}
	css := res.Theme.CSS(".flyer")
	if !strings.HasPrefix(css, ".flyer {\n") || !strings.Contains(css, "  --color-primary: #FFC700;\n") {
		t.Fatalf("CSS 输出错误:\n%s", css)
	}
}

func TestPageDirectiveAndSummaryLine(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "2-fold"
		c.Branding.CompanyName = "Café Sunshine"
	})
	if got := res.Page.String(); got != "@page { size: 105mm 148mm; margin: 0; }" {
		t.Fatalf("页面指令错误: %s", got)
	}
	if got := res.Summary.Line(); got != "Café Sunshine · Format: A6 · Layout: 2-Fold · 4 Panels" {
		t.Fatalf("状态行错误: %s", got)
	}
	res = composeWith(t, nil)
	if res.Summary.CompanyName != "Flyer Template" {
		t.Fatalf("缺省公司名错误: %s", res.Summary.CompanyName)
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) { c.Layout.Active = "2-fold" })
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("写入调试 JSON 失败: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	format := doc["format"].(map[string]any)
	if format["orientation"] != "portrait" {
		t.Fatalf("方向应序列化为名称: %v", format["orientation"])
	}
}

// TestOversizedPanelKeysAreIgnored 验证超过上限的面板序号不会撑大回退 spread。
func TestOversizedPanelKeysAreIgnored(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "unknown"
		c.Panels["3"] = config.PanelContent{Heading: "C"}
		c.Panels["9223372036854775807"] = config.PanelContent{Heading: "huge"}
		c.Panels["99999999999999999999999"] = config.PanelContent{Heading: "overflow"}
	})
	if len(res.Spreads) != 1 || len(res.Spreads[0].Panels) != 3 {
		t.Fatalf("应只包含 1..3: %+v", res.Spreads)
	}
	if len(res.Warnings) != 2 || res.Warnings[1].Kind != PanelLimitExceeded {
		t.Fatalf("应产生 PanelLimitExceeded 警告: %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[1].Message, "9223372036854775807") {
		t.Fatalf("警告应列出被忽略的键: %s", res.Warnings[1].Message)
	}
}

// TestOversizedLayoutCountIsClamped 验证声明的面板数量按上限截断。
func TestOversizedLayoutCountIsClamped(t *testing.T) {
	const maxInt = int(^uint(0) >> 1)
	res := composeWith(t, func(c *config.Configuration) {
		c.Layout.Active = "custom"
		c.Layout.Options["custom"] = config.LayoutOption{Label: "Custom", Panels: maxInt}
	})
	if len(res.Spreads) != 1 || len(res.Spreads[0].Panels) != MaxPanels {
		t.Fatalf("应截断为 %d 个面板: %d spreads", MaxPanels, len(res.Spreads))
	}
	if res.Layout.PanelCount != MaxPanels || res.Summary.PanelCount != MaxPanels {
		t.Fatalf("面板数量应为上限: %+v", res.Layout)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Kind != PanelLimitExceeded {
		t.Fatalf("应产生 PanelLimitExceeded 警告: %v", res.Warnings)
	}
}

// TestThemeVariableNamesAreUnique 验证映射到同一变量名的键只保留一个，按键名排序靠后的生效。
func TestThemeVariableNamesAreUnique(t *testing.T) {
	res := composeWith(t, func(c *config.Configuration) {
		c.Colors["primaryText"] = "#111111"
		c.Colors["primary-text"] = "#222222"
		c.Fonts["heading-name"] = "'Override', serif"
	})
	seen := map[string]bool{}
	for _, v := range res.Theme {
		if seen[v.Name] {
			t.Fatalf("变量名重复: %s", v.Name)
		}
		seen[v.Name] = true
	}
	// "primary-text" < "primaryText"，后者后写入
	if got, _ := res.Theme.Get("--color-primary-text"); got != "#111111" {
		t.Fatalf("--color-primary-text = %q", got)
	}
	// 字体组内 "heading-name" 排在 "heading" 之后
	if got, _ := res.Theme.Get("--font-heading-name"); got != "'Override', serif" {
		t.Fatalf("--font-heading-name = %q", got)
	}
}
