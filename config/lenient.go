package config

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// 配置中的取值不做校验：格式尺寸写成数字（105）或面板数量写成字符串（"4"）
// 都应原样读入，由组版阶段再解析。

// scalar 接受 JSON/YAML 中任意标量，统一保存为其文本形式；null 与非标量得到空串。
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = scalar(str)
	case '{', '[', 'n':
		*s = ""
	default:
		// 数字与布尔值保留原文
		*s = scalar(b)
	}
	return nil
}

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag != "!!null" {
		*s = scalar(value.Value)
	} else {
		*s = ""
	}
	return nil
}

// panelCount 把文本形式的面板数量转为整数，无法解析时为 0。
func (s scalar) panelCount() int {
	v := strings.TrimSpace(string(s))
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}

type rawDimensions struct {
	Width  scalar `json:"width" yaml:"width"`
	Height scalar `json:"height" yaml:"height"`
}

func (d *Dimensions) set(raw rawDimensions) {
	d.Width, d.Height = string(raw.Width), string(raw.Height)
}

// UnmarshalJSON 接受数字或字符串形式的宽高；非对象的取值视为空尺寸。
func (d *Dimensions) UnmarshalJSON(b []byte) error {
	var raw rawDimensions
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '{' {
		if err := json.Unmarshal(t, &raw); err != nil {
			return err
		}
	}
	d.set(raw)
	return nil
}

func (d *Dimensions) UnmarshalYAML(value *yaml.Node) error {
	var raw rawDimensions
	if value.Kind == yaml.MappingNode {
		if err := value.Decode(&raw); err != nil {
			return err
		}
	}
	d.set(raw)
	return nil
}

type rawLayoutOption struct {
	Label  scalar `json:"label" yaml:"label"`
	Panels scalar `json:"panels" yaml:"panels"`
}

func (o *LayoutOption) set(raw rawLayoutOption) {
	o.Label, o.Panels = string(raw.Label), raw.Panels.panelCount()
}

// UnmarshalJSON 接受数字或字符串形式的面板数量。
func (o *LayoutOption) UnmarshalJSON(b []byte) error {
	var raw rawLayoutOption
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '{' {
		if err := json.Unmarshal(t, &raw); err != nil {
			return err
		}
	}
	o.set(raw)
	return nil
}

func (o *LayoutOption) UnmarshalYAML(value *yaml.Node) error {
	var raw rawLayoutOption
	if value.Kind == yaml.MappingNode {
		if err := value.Decode(&raw); err != nil {
			return err
		}
	}
	o.set(raw)
	return nil
}
