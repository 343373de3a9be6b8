package config

import (
	"context"
	"sort"
)

// Preset 是可选的预设，只包含 colors、branding、panels 三类字段。
type Preset struct {
	Label    string                  `json:"label" yaml:"label"`
	Colors   map[string]string       `json:"colors,omitempty" yaml:"colors,omitempty"`
	Branding *PresetBranding         `json:"branding,omitempty" yaml:"branding,omitempty"`
	Panels   map[string]PanelContent `json:"panels,omitempty" yaml:"panels,omitempty"`
}

// PresetBranding 使用指针区分“未指定”与“指定为空字符串”。
type PresetBranding struct {
	CompanyName *string `json:"companyName,omitempty" yaml:"companyName,omitempty"`
	Slogan      *string `json:"slogan,omitempty" yaml:"slogan,omitempty"`
}

// PresetSet 将预设 id 映射到预设内容。
type PresetSet map[string]Preset

// IDs 返回排序后的预设 id。
func (s PresetSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadPresets 读取预设文档，错误同样以 LoadError 返回。
func LoadPresets(ctx context.Context, source string) (PresetSet, error) {
	data, err := fetch(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	var set PresetSet
	if err := decodeDocument(data, formatOf(source), &set); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return set, nil
}

// Merge 将预设浅合并进 cfg 并返回新配置：颜色按键覆盖，品牌按字段覆盖，
// 面板按序号整条替换；预设未指定的字段保持不变。
func (p Preset) Merge(cfg Configuration) Configuration {
	out := cfg.Clone()
	if len(p.Colors) > 0 {
		if out.Colors == nil {
			out.Colors = map[string]string{}
		}
		for k, v := range p.Colors {
			out.Colors[k] = v
		}
	}
	if p.Branding != nil {
		if p.Branding.CompanyName != nil {
			out.Branding.CompanyName = *p.Branding.CompanyName
		}
		if p.Branding.Slogan != nil {
			out.Branding.Slogan = *p.Branding.Slogan
		}
	}
	if len(p.Panels) > 0 {
		if out.Panels == nil {
			out.Panels = map[string]PanelContent{}
		}
		for k, v := range p.Panels {
			out.Panels[k] = v
		}
	}
	return out
}
