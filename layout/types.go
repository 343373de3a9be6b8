package layout

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/flyer/binding"
)

// 该文件定义组版结果树，供引擎、PDF 渲染器与调试 JSON 共用。所有尺寸单位均为 mm。

// Result 是一次组版的完整输出。每次渲染都重新分配，不与上一次共享。
type Result struct {
	Format   FormatSpec     `json:"format"`
	Layout   LayoutSpec     `json:"layout"`
	Spreads  []Spread       `json:"spreads"`
	Summary  Summary        `json:"summary"`
	Theme    ThemeVariables `json:"theme"`
	Page     PageDirective  `json:"page"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

// FormatSpec 是解析后的单个面板尺寸（已按方向交换宽高）。
type FormatSpec struct {
	Name        string      `json:"name"`
	Orientation Orientation `json:"orientation"`
	WidthMM     float64     `json:"widthMM"`
	HeightMM    float64     `json:"heightMM"`
}

// LayoutSpec 描述当前版式；PanelCount 恒等于分组产生的面板序号数量。
type LayoutSpec struct {
	Name       string     `json:"name"`
	Kind       LayoutKind `json:"kind"`
	Label      string     `json:"label"`
	PanelCount int        `json:"panelCount"`
}

// Spread 表示纸张的一面。Panels 为逻辑顺序的面板序号；Reversed 为 true 时
// 从右向左排列，折叠后阅读顺序才正确。
type Spread struct {
	Label     string     `json:"label"`
	Panels    []int      `json:"panels"`
	Reversed  bool       `json:"reversed"`
	WidthMM   float64    `json:"widthMM"`
	HeightMM  float64    `json:"heightMM"`
	GapMM     float64    `json:"gapMM,omitempty"`
	Items     []Panel    `json:"items"`
	FoldLines []FoldLine `json:"foldLines,omitempty"`
}

// VisualOrder 返回从左到右的面板序号。
func (s Spread) VisualOrder() []int {
	out := make([]int, len(s.Panels))
	for i, idx := range s.Panels {
		if s.Reversed {
			out[len(s.Panels)-1-i] = idx
		} else {
			out[i] = idx
		}
	}
	return out
}

// Panel 是 spread 中的一个可打印区域。Position 为从左数的槽位，XMM 为槽位左边缘。
type Panel struct {
	Index       int     `json:"index"`
	Role        string  `json:"role,omitempty"`
	Heading     string  `json:"heading,omitempty"`
	Subheading  string  `json:"subheading,omitempty"`
	BodyHTML    string  `json:"bodyHTML"`
	Footer      string  `json:"footer,omitempty"`
	Placeholder bool    `json:"placeholder,omitempty"`
	Position    int     `json:"position"`
	XMM         float64 `json:"xMM"`
	WidthMM     float64 `json:"widthMM"`
	HeightMM    float64 `json:"heightMM"`
}

// FoldLine 位于视觉上相邻的两个面板之间。
type FoldLine struct {
	Position int     `json:"position"` // 左侧面板的槽位
	Left     int     `json:"left"`
	Right    int     `json:"right"`
	XMM      float64 `json:"xMM"`
}

// Summary 供状态栏展示。
type Summary struct {
	ActiveFormat      string `json:"activeFormat"`
	ActiveLayoutLabel string `json:"activeLayoutLabel"`
	PanelCount        int    `json:"panelCount"`
	CompanyName       string `json:"companyName"`
}

const summaryTemplate = "${companyName} · Format: ${activeFormat} · Layout: ${activeLayoutLabel} · ${panelCount} Panels"

// Line 渲染一行状态文本。
func (s Summary) Line() string {
	return binding.Interpolate(summaryTemplate, map[string]any{
		"companyName":       s.CompanyName,
		"activeFormat":      s.ActiveFormat,
		"activeLayoutLabel": s.ActiveLayoutLabel,
		"panelCount":        s.PanelCount,
	})
}

// PageDirective 是交给打印管线的页面尺寸指令，边距恒为 0。
type PageDirective struct {
	WidthMM  float64 `json:"widthMM"`
	HeightMM float64 `json:"heightMM"`
}

func (p PageDirective) String() string {
	return fmt.Sprintf("@page { size: %s %s; margin: 0; }", FormatMM(p.WidthMM), FormatMM(p.HeightMM))
}

// ThemeVariable 是一个 CSS 自定义属性。
type ThemeVariable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ThemeVariables 按名称排序，由展示层通过一次 CSS 调用作用到指定选择器上，
// 组版本身不修改任何全局样式。
type ThemeVariables []ThemeVariable

// Get 返回指定变量的值。
func (t ThemeVariables) Get(name string) (string, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Name >= name })
	if i < len(t) && t[i].Name == name {
		return t[i].Value, true
	}
	return "", false
}

// CSS 生成作用于 selector 的声明块，例如 `.flyer { --color-primary: #FFC700; }`。
func (t ThemeVariables) CSS(selector string) string {
	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, v := range t {
		fmt.Fprintf(&b, "  %s: %s;\n", v.Name, v.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

// WarningKind 区分可降级处理的异常。
type WarningKind string

const (
	FormatNotFound     WarningKind = "FormatNotFound"
	LayoutNotFound     WarningKind = "LayoutNotFound"
	PanelCountMismatch WarningKind = "PanelCountMismatch"
	PanelLimitExceeded WarningKind = "PanelLimitExceeded"
)

// Warning 记录一次降级：渲染继续，受影响部分使用回退值。
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Name    string      `json:"name"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return fmt.Sprintf("%s(%s): %s", w.Kind, w.Name, w.Message) }
