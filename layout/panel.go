package layout

import (
	"fmt"
	"html"

	"github.com/ByLCY/flyer/config"
)

const defaultPlaceholderRole = "content"

// MapPanel 将面板序号与内容记录映射为 Panel。标题、副标题、页脚原样复制，
// 缺失时省略；正文缺失时生成显示序号与角色的占位块。位置与尺寸由调用方填写。
func MapPanel(index int, content *config.PanelContent) Panel {
	var c config.PanelContent
	if content != nil {
		c = *content
	}
	p := Panel{
		Index:      index,
		Role:       c.Role,
		Heading:    c.Heading,
		Subheading: c.Subheading,
		Footer:     c.Footer,
	}
	if c.Body != "" {
		p.BodyHTML = c.Body
	} else {
		p.BodyHTML = placeholderHTML(index, c.Role)
		p.Placeholder = true
	}
	return p
}

func placeholderHTML(index int, role string) string {
	if role == "" {
		role = defaultPlaceholderRole
	}
	return fmt.Sprintf(`<div class="panel-placeholder">Panel %d<br><span>%s</span></div>`, index, html.EscapeString(role))
}
