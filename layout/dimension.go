package layout

import (
	"fmt"

	"github.com/ByLCY/flyer/config"
)

// DefaultFormatSpec 是尚未成功解析过任何格式时使用的尺寸（A6 纵向）。
var DefaultFormatSpec = FormatSpec{Name: "A6", Orientation: Portrait, WidthMM: 105, HeightMM: 148}

// ResolveFormat 解析当前格式的面板尺寸。格式不存在时返回 prev（保留上一次的
// 有效值）并附带 FormatNotFound 警告；横向时交换宽高。
func ResolveFormat(format config.FormatConfig, prev FormatSpec) (FormatSpec, *Warning) {
	dims, name, ok := lookupFormat(format)
	if !ok {
		return prev, &Warning{
			Kind:    FormatNotFound,
			Name:    format.Active,
			Message: fmt.Sprintf("格式 %q 不存在，保留 %s %s×%s", format.Active, prev.Name, FormatMM(prev.WidthMM), FormatMM(prev.HeightMM)),
		}
	}
	orientation, _ := NormalizeOrientation(format.Orientation)
	w := ParseLength(dims.Width).ToMM()
	h := ParseLength(dims.Height).ToMM()
	if orientation == Landscape {
		w, h = h, w
	}
	return FormatSpec{Name: name, Orientation: orientation, WidthMM: w, HeightMM: h}, nil
}

func lookupFormat(format config.FormatConfig) (config.Dimensions, string, bool) {
	if d, ok := format.Options[format.Active]; ok {
		return d, format.Active, true
	}
	want := fold(format.Active)
	if want == "" {
		return config.Dimensions{}, "", false
	}
	for name, d := range format.Options {
		if fold(name) == want {
			return d, name, true
		}
	}
	return config.Dimensions{}, "", false
}
