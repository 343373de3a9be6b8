package config

// 该文件定义 flyer 配置文档的结构，JSON 与 YAML 共用同一套字段名。

// Configuration 是完整的设计意图：颜色、字体、纸张格式、版式、各面板内容与品牌信息。
type Configuration struct {
	Colors   map[string]string       `json:"colors" yaml:"colors"`
	Fonts    map[string]string       `json:"fonts" yaml:"fonts"`
	Format   FormatConfig            `json:"format" yaml:"format"`
	Layout   LayoutConfig            `json:"layout" yaml:"layout"`
	Panels   map[string]PanelContent `json:"panels" yaml:"panels"`
	Branding Branding                `json:"branding" yaml:"branding"`
}

// FormatConfig 记录当前格式、方向以及格式名到尺寸的映射。
type FormatConfig struct {
	Active      string                `json:"active" yaml:"active"`
	Orientation string                `json:"orientation" yaml:"orientation"`
	Options     map[string]Dimensions `json:"options" yaml:"options"`
}

// Dimensions 保存带单位的宽高字符串，例如 "148mm"。
type Dimensions struct {
	Width  string `json:"width" yaml:"width"`
	Height string `json:"height" yaml:"height"`
}

// LayoutConfig 记录当前版式以及版式名到面板数量的映射。
type LayoutConfig struct {
	Active  string                  `json:"active" yaml:"active"`
	Options map[string]LayoutOption `json:"options" yaml:"options"`
}

// LayoutOption 描述一个版式的显示名称与面板数量。
type LayoutOption struct {
	Label  string `json:"label" yaml:"label"`
	Panels int    `json:"panels" yaml:"panels"`
}

// PanelContent 是单个面板的内容记录，键为从 1 开始的面板序号。
// Body 为受信任的富文本标记，原样透传。
type PanelContent struct {
	Role       string `json:"role,omitempty" yaml:"role,omitempty"`
	Heading    string `json:"heading,omitempty" yaml:"heading,omitempty"`
	Subheading string `json:"subheading,omitempty" yaml:"subheading,omitempty"`
	Body       string `json:"body,omitempty" yaml:"body,omitempty"`
	Footer     string `json:"footer,omitempty" yaml:"footer,omitempty"`
}

// Branding 保存公司名称与口号。
type Branding struct {
	CompanyName string `json:"companyName" yaml:"companyName"`
	Slogan      string `json:"slogan" yaml:"slogan"`
}

// Clone 返回深拷贝，保证快照之间不共享 map。
func (c Configuration) Clone() Configuration {
	out := c
	out.Colors = cloneStrings(c.Colors)
	out.Fonts = cloneStrings(c.Fonts)
	if c.Format.Options != nil {
		out.Format.Options = make(map[string]Dimensions, len(c.Format.Options))
		for k, v := range c.Format.Options {
			out.Format.Options[k] = v
		}
	}
	if c.Layout.Options != nil {
		out.Layout.Options = make(map[string]LayoutOption, len(c.Layout.Options))
		for k, v := range c.Layout.Options {
			out.Layout.Options[k] = v
		}
	}
	if c.Panels != nil {
		out.Panels = make(map[string]PanelContent, len(c.Panels))
		for k, v := range c.Panels {
			out.Panels[k] = v
		}
	}
	return out
}

func cloneStrings(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
