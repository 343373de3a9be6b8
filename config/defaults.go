package config

// 默认值只填补缺失的嵌套字段，已有的值（即便格式不合法）原样保留。

const (
	DefaultFormat      = "A6"
	DefaultOrientation = "portrait"
	DefaultLayout      = "simple"
)

var defaultColors = map[string]string{
	"primary":       "#FFC700",
	"primaryText":   "#050505",
	"secondary":     "#050505",
	"secondaryText": "#FCFCFC",
	"background":    "#FCFCFC",
	"textMain":      "#050505",
	"textMuted":     "#64748B",
	"accent":        "#FFC700",
	"border":        "#E2E8F0",
}

var defaultFonts = map[string]string{
	"heading": "'Inter', sans-serif",
	"body":    "'Inter', sans-serif",
	"mono":    "'JetBrains Mono', monospace",
}

func defaultFormatOptions() map[string]Dimensions {
	return map[string]Dimensions{
		"A5": {Width: "148mm", Height: "210mm"},
		"A6": {Width: "105mm", Height: "148mm"},
	}
}

func defaultLayoutOptions() map[string]LayoutOption {
	return map[string]LayoutOption{
		"simple": {Label: "Simple Greeting Card", Panels: 2},
		"2-fold": {Label: "2-Fold", Panels: 4},
		"3-fold": {Label: "3-Fold (Tri-Fold)", Panels: 6},
	}
}

// Default 返回一份完全由默认值组成的配置。
func Default() Configuration {
	return Normalize(Configuration{})
}

// Normalize 返回补齐默认值后的副本，输入不会被修改。
func Normalize(c Configuration) Configuration {
	out := c.Clone()
	if out.Colors == nil {
		out.Colors = map[string]string{}
	}
	for k, v := range defaultColors {
		if _, ok := out.Colors[k]; !ok {
			out.Colors[k] = v
		}
	}
	if out.Fonts == nil {
		out.Fonts = map[string]string{}
	}
	for k, v := range defaultFonts {
		if _, ok := out.Fonts[k]; !ok {
			out.Fonts[k] = v
		}
	}
	if out.Format.Active == "" {
		out.Format.Active = DefaultFormat
	}
	if out.Format.Orientation == "" {
		out.Format.Orientation = DefaultOrientation
	}
	if out.Format.Options == nil {
		out.Format.Options = defaultFormatOptions()
	}
	if out.Layout.Active == "" {
		out.Layout.Active = DefaultLayout
	}
	if out.Layout.Options == nil {
		out.Layout.Options = defaultLayoutOptions()
	}
	if out.Panels == nil {
		out.Panels = map[string]PanelContent{}
	}
	return out
}
