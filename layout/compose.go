package layout

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ByLCY/flyer/config"
	"github.com/ByLCY/flyer/fonts"
)

const (
	unknownLayoutLabel = "–"
	defaultCompanyName = "Flyer Template"
)

// Compose 根据配置快照计算完整的 spread/panel 树。它是纯函数：prev 为上一次
// 成功解析的格式，仅在当前格式不存在时沿用；相同输入总得到结构相同的输出。
func Compose(cfg config.Configuration, prev FormatSpec, opts Options) *Result {
	cfg = config.Normalize(cfg)
	res := &Result{}

	format, warn := ResolveFormat(cfg.Format, prev)
	if warn != nil {
		res.addWarning(*warn, opts)
	}
	res.Format = format

	spec, imp, found, warns := resolveLayout(cfg)
	for _, w := range warns {
		res.addWarning(w, opts)
	}
	res.Layout = spec
	res.Spreads = buildSpreads(imp, format, cfg.Panels)
	res.Theme = buildTheme(cfg, format)
	res.Page = PageDirective{WidthMM: format.WidthMM, HeightMM: format.HeightMM}

	res.Summary = Summary{
		ActiveFormat:      cfg.Format.Active,
		ActiveLayoutLabel: unknownLayoutLabel,
		CompanyName:       cfg.Branding.CompanyName,
	}
	if found {
		if spec.Label != "" {
			res.Summary.ActiveLayoutLabel = spec.Label
		}
		res.Summary.PanelCount = spec.PanelCount
	}
	if res.Summary.CompanyName == "" {
		res.Summary.CompanyName = defaultCompanyName
	}
	return res
}

func (r *Result) addWarning(w Warning, opts Options) {
	r.Warnings = append(r.Warnings, w)
	opts.warn(w)
}

// resolveLayout 在配置的版式表中查找当前版式，再到拼版表中取分组规则。
// found 表示版式存在于配置的版式表中。
func resolveLayout(cfg config.Configuration) (LayoutSpec, Imposition, bool, []Warning) {
	active := cfg.Layout.Active
	kind := NormalizeLayout(active)
	name, opt, ok := lookupLayoutOption(cfg.Layout, kind)
	if !ok {
		n, ignored := declaredPanels(cfg.Panels)
		warns := []Warning{{
			Kind:    LayoutNotFound,
			Name:    active,
			Message: fmt.Sprintf("版式 %q 不存在，按序号将 %d 个面板放入单个 spread", active, n),
		}}
		if len(ignored) > 0 {
			warns = append(warns, Warning{
				Kind:    PanelLimitExceeded,
				Name:    active,
				Message: fmt.Sprintf("面板序号 %v 超过上限 %d，已忽略", ignored, MaxPanels),
			})
		}
		spec := LayoutSpec{Name: active, Kind: kind, PanelCount: n}
		return spec, fallbackImposition(n), false, warns
	}

	var warns []Warning
	if opt.Panels > MaxPanels {
		if _, registered := LookupImposition(kind); !registered {
			warns = append(warns, Warning{
				Kind:    PanelLimitExceeded,
				Name:    name,
				Message: fmt.Sprintf("版式 %q 声明 %d 个面板，超过上限 %d，按 %d 个处理", name, opt.Panels, MaxPanels, MaxPanels),
			})
		}
	}
	imp, known := Partition(kind, min(opt.Panels, MaxPanels))
	if known && opt.Panels != imp.PanelCount {
		warns = append(warns, Warning{
			Kind:    PanelCountMismatch,
			Name:    name,
			Message: fmt.Sprintf("版式 %q 声明 %d 个面板，拼版规则为 %d 个，以拼版规则为准", name, opt.Panels, imp.PanelCount),
		})
	}
	spec := LayoutSpec{Name: name, Kind: kind, Label: opt.Label, PanelCount: imp.PanelCount}
	return spec, imp, true, warns
}

func lookupLayoutOption(layout config.LayoutConfig, kind LayoutKind) (string, config.LayoutOption, bool) {
	if opt, ok := layout.Options[layout.Active]; ok {
		return layout.Active, opt, true
	}
	names := make([]string, 0, len(layout.Options))
	for name := range layout.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if NormalizeLayout(name) == kind {
			return name, layout.Options[name], true
		}
	}
	return "", config.LayoutOption{}, false
}

// declaredPanels 返回内容记录中不超过 MaxPanels 的最大面板序号，
// 以及因超过上限而被忽略的键（已排序）。
func declaredPanels(panels map[string]config.PanelContent) (int, []string) {
	n := 0
	var ignored []string
	for key := range panels {
		idx, err := strconv.Atoi(key)
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(key, "-") {
			ignored = append(ignored, key)
			continue
		}
		if err != nil || idx <= 0 {
			continue
		}
		if idx > MaxPanels {
			ignored = append(ignored, key)
			continue
		}
		n = max(n, idx)
	}
	sort.Strings(ignored)
	return n, ignored
}

func buildSpreads(imp Imposition, f FormatSpec, panels map[string]config.PanelContent) []Spread {
	spreads := make([]Spread, 0, len(imp.Spreads))
	for _, sp := range imp.Spreads {
		n := len(sp.Panels)
		s := Spread{
			Label:    sp.Label,
			Panels:   append([]int(nil), sp.Panels...),
			Reversed: sp.Reversed,
			WidthMM:  f.WidthMM*float64(n) + imp.GapMM*float64(n-1),
			HeightMM: f.HeightMM,
			GapMM:    imp.GapMM,
		}
		visual := s.VisualOrder()
		slots := make(map[int]int, n)
		for slot, idx := range visual {
			slots[idx] = slot
		}
		step := f.WidthMM + imp.GapMM
		s.Items = make([]Panel, 0, n)
		for _, idx := range sp.Panels {
			var content *config.PanelContent
			if c, ok := panels[strconv.Itoa(idx)]; ok {
				content = &c
			}
			p := MapPanel(idx, content)
			p.Position = slots[idx]
			p.XMM = float64(p.Position) * step
			p.WidthMM = f.WidthMM
			p.HeightMM = f.HeightMM
			s.Items = append(s.Items, p)
		}
		if imp.Folded {
			for slot := 0; slot < n-1; slot++ {
				s.FoldLines = append(s.FoldLines, FoldLine{
					Position: slot,
					Left:     visual[slot],
					Right:    visual[slot+1],
					XMM:      float64(slot)*step + f.WidthMM,
				})
			}
		}
		spreads = append(spreads, s)
	}
	return spreads
}

// buildTheme 生成 CSS 自定义属性：--color-*、--font-*、--font-*-name、--page-*。
// 不同的键可能映射到同一个变量名（primaryText 与 primary-text）。此时按
// 颜色、字体、页面的顺序、组内按键名排序依次写入，后写入的值生效，
// 因此结果中每个变量名只出现一次。
func buildTheme(cfg config.Configuration, f FormatSpec) ThemeVariables {
	values := make(map[string]string, len(cfg.Colors)+2*len(cfg.Fonts)+2)
	for _, key := range sortedKeys(cfg.Colors) {
		values["--color-"+kebab(key)] = cfg.Colors[key]
	}
	for _, key := range sortedKeys(cfg.Fonts) {
		v := cfg.Fonts[key]
		values["--font-"+kebab(key)] = v
		values["--font-"+kebab(key)+"-name"] = fonts.FamilyName(v)
	}
	values["--page-width"] = FormatMM(f.WidthMM)
	values["--page-height"] = FormatMM(f.HeightMM)

	vars := make(ThemeVariables, 0, len(values))
	for name, v := range values {
		vars = append(vars, ThemeVariable{Name: name, Value: v})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// kebab 将 camelCase 转为 kebab-case：primaryText → primary-text。
func kebab(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
