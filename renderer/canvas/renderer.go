package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/flyer/fonts"
	"github.com/ByLCY/flyer/layout"
	"github.com/ByLCY/flyer/renderer"
)

const (
	frameWidth   = 0.2 // mm
	foldWidth    = 0.3 // mm
	panelPadding = 6.0 // mm

	headingSizePt    = 16
	subheadingSizePt = 11
	bodySizePt       = 9
	footerSizePt     = 7
	lineSpacing      = 1.25
)

// foldDash 为折线的虚线样式（mm）。
var foldDash = []float64{2, 1.5}

var errNoFont = errors.New("没有可用的字体")

// Renderer draws composed spreads via github.com/tdewolff/canvas.
type Renderer struct {
	fontDirs []string
	logger   *log.Logger

	// injected resources, keyed by family name
	fontBlobs map[string][]byte

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily // nil entry: family known to be missing
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	FontDirs []string            // searched before system font directories
	Fonts    map[string]Resource // font family name → font file
	Logger   *log.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a renderer that looks up fonts in fontDirs and the system font directories.
func NewRenderer(fontDirs ...string) *Renderer {
	return NewRendererWithOptions(Options{FontDirs: fontDirs})
}

// NewRendererWithOptions creates a renderer with injected resources.
func NewRendererWithOptions(opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := &Renderer{
		fontDirs:     opts.FontDirs,
		logger:       logger,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[strings.ToLower(name)] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 读取失败时按未提供处理，查找会继续走字体目录
			if len(data) > 0 {
				r.fontBlobs[strings.ToLower(name)] = data
			}
		}
	}
	return r
}

// Render renders every spread as one PDF page.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Spreads) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Spreads[0]
	writer := pdf.New(&buf, first.WidthMM, first.HeightMM, nil)
	writer.SetInfo(result.Summary.CompanyName, result.Summary.Line(), result.Layout.Label, result.Summary.CompanyName, "flyer")
	for i, spread := range result.Spreads {
		if i > 0 {
			writer.NewPage(spread.WidthMM, spread.HeightMM)
		}
		c := canvas.New(spread.WidthMM, spread.HeightMM)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与组版结果一致，左上角为原点

		r.drawSpread(ctx, spread, result.Theme)
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawSpread(ctx *canvas.Context, spread layout.Spread, theme layout.ThemeVariables) {
	// 先画背景与面板边框，再画文字，最后画折线，保证折线在最上层
	ctx.SetFillColor(themeColor(theme, "--color-background", canvas.White))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(spread.WidthMM, spread.HeightMM))

	for _, p := range spread.Items {
		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(themeColor(theme, "--color-border", canvas.Lightgray))
		ctx.SetStrokeWidth(frameWidth)
		ctx.DrawPath(p.XMM, 0, canvas.Rectangle(p.WidthMM, p.HeightMM))
		r.drawPanel(ctx, p, theme)
	}

	ctx.SetStrokeColor(themeColor(theme, "--color-text-muted", canvas.Gray))
	ctx.SetStrokeWidth(foldWidth)
	ctx.SetDashes(0, foldDash...)
	for _, fl := range spread.FoldLines {
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(0, spread.HeightMM)
		ctx.DrawPath(fl.XMM, 0, p)
	}
	ctx.SetDashes(0)
}

// drawPanel 在面板内自上而下排布标题、副标题与正文，页脚贴底。
// 找不到字体时只跳过文字，几何图形照常输出。
func (r *Renderer) drawPanel(ctx *canvas.Context, p layout.Panel, theme layout.ThemeVariables) {
	x := p.XMM + panelPadding
	width := p.WidthMM - 2*panelPadding
	top := panelPadding
	bottom := p.HeightMM - panelPadding
	if width <= 0 || bottom <= top {
		return
	}

	headingFont := themeFont(theme, "--font-heading")
	bodyFont := themeFont(theme, "--font-body")

	if p.Footer != "" {
		if face, err := r.fontFace(bodyFont, footerSizePt, themeColor(theme, "--color-text-muted", canvas.Gray)); err == nil {
			lines := greedyWrapTokens(p.Footer, width, face)
			height := blockHeight(face, len(lines))
			r.drawLines(ctx, face, lines, x, bottom-height, bottom)
			bottom -= height + face.Metrics().LineHeight
		} else {
			r.logger.Debug("skip footer text", "panel", p.Index, "err", err)
		}
	}

	blocks := []struct {
		text   string
		font   string
		sizePt float64
		color  color.Color
	}{
		{p.Heading, headingFont, headingSizePt, themeColor(theme, "--color-text-main", canvas.Black)},
		{p.Subheading, headingFont, subheadingSizePt, themeColor(theme, "--color-primary", canvas.Black)},
		{flattenMarkup(p.BodyHTML), bodyFont, bodySizePt, themeColor(theme, "--color-text-main", canvas.Black)},
	}
	y := top
	for _, b := range blocks {
		if strings.TrimSpace(b.text) == "" {
			continue
		}
		face, err := r.fontFace(b.font, b.sizePt, b.color)
		if err != nil {
			r.logger.Debug("skip panel text", "panel", p.Index, "font", b.font, "err", err)
			continue
		}
		y = r.drawLines(ctx, face, greedyWrapTokens(b.text, width, face), x, y, bottom)
		y += face.Metrics().LineHeight * (lineSpacing - 1) * 2
	}
}

// drawLines 从 y 开始逐行绘制，超出 limit 的行被截断，返回下一行的起点。
func (r *Renderer) drawLines(ctx *canvas.Context, face *canvas.FontFace, lines []textLine, x, y, limit float64) float64 {
	metrics := face.Metrics()
	step := metrics.LineHeight * lineSpacing
	for _, line := range lines {
		if y+metrics.LineHeight > limit {
			break
		}
		// 基线位置：行顶部加上字体上升部
		ctx.DrawText(x, y+metrics.Ascent, canvas.NewTextLine(face, line.Content, canvas.Left))
		y += step
	}
	return y
}

func blockHeight(face *canvas.FontFace, n int) float64 {
	if n == 0 {
		return 0
	}
	m := face.Metrics()
	return m.LineHeight*lineSpacing*float64(n-1) + m.LineHeight
}

// fontFace 按 CSS font-family 列表依次尝试，使用第一个能加载的字体。
func (r *Renderer) fontFace(css string, sizePt float64, col color.Color) (*canvas.FontFace, error) {
	for _, name := range fonts.Families(css) {
		family, err := r.ensureFontFamily(name)
		if err != nil {
			continue
		}
		return family.Face(sizePt, col, canvas.FontRegular, canvas.FontNormal), nil
	}
	return nil, fmt.Errorf("%w: %s", errNoFont, css)
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	key := strings.ToLower(name)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		if family == nil {
			return nil, fmt.Errorf("找不到字体 %s", name)
		}
		return family, nil
	}

	data, err := r.loadFontBytes(name)
	if err == nil {
		family := canvas.NewFontFamily(name)
		if err = family.LoadFont(data, 0, canvas.FontRegular); err == nil {
			r.fontFamilies[key] = family
			return family, nil
		}
	}
	r.fontFamilies[key] = nil
	return nil, err
}

func (r *Renderer) loadFontBytes(name string) ([]byte, error) {
	if blob, ok := r.fontBlobs[strings.ToLower(name)]; ok {
		return blob, nil
	}
	switch strings.ToLower(name) {
	case "serif", "sans-serif", "monospace", "cursive", "fantasy", "system-ui":
		return nil, fmt.Errorf("通用字体族 %s 无对应文件", name)
	}
	return fonts.Load(name, r.fontDirs...)
}

func themeFont(theme layout.ThemeVariables, name string) string {
	v, _ := theme.Get(name)
	return v
}

func themeColor(theme layout.ThemeVariables, name string, fallback color.Color) color.Color {
	v, ok := theme.Get(name)
	v = strings.TrimSpace(v)
	if !ok || !strings.HasPrefix(v, "#") {
		return fallback
	}
	return canvas.Hex(v)
}
