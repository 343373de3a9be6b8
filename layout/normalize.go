package layout

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
)

// 方向与版式名称支持中英德多种写法，比较前一律先归一化为规范枚举。

// Orientation 是规范化后的纸张方向。
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// MarshalJSON 输出规范名称而不是数字。
func (o Orientation) MarshalJSON() ([]byte, error) { return json.Marshal(o.String()) }

var orientationAliases = map[string]Orientation{
	"portrait":   Portrait,
	"hochformat": Portrait,
	"landscape":  Landscape,
	"querformat": Landscape,
}

// NormalizeOrientation 将方向字符串映射为规范枚举。无法识别的取值按纵向处理，
// ok 为 false。
func NormalizeOrientation(s string) (Orientation, bool) {
	o, ok := orientationAliases[fold(s)]
	if !ok {
		return Portrait, false
	}
	return o, true
}

// LayoutKind 是规范化后的版式名称。内置三种，其余来自 RegisterImposition 或配置。
type LayoutKind string

const (
	LayoutSimple    LayoutKind = "simple"
	LayoutTwoFold   LayoutKind = "2-fold"
	LayoutThreeFold LayoutKind = "3-fold"
)

var layoutAliases = map[string]LayoutKind{
	"simple":  LayoutSimple,
	"einfach": LayoutSimple,
	"2-fold":  LayoutTwoFold,
	"2-falz":  LayoutTwoFold,
	"3-fold":  LayoutThreeFold,
	"3-falz":  LayoutThreeFold,
}

// NormalizeLayout 将版式名称映射为规范枚举；未知名称按大小写折叠后原样返回。
func NormalizeLayout(name string) LayoutKind {
	key := fold(name)
	if k, ok := layoutAliases[key]; ok {
		return k
	}
	return LayoutKind(key)
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
