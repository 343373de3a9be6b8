package layout

import (
	"fmt"
	"sort"
	"sync"
)

// SimpleGapMM 是 simple 版式两面板之间预留的间距。它是视觉上的排版约定，
// 不是由纸张尺寸推导出的物理量。
const SimpleGapMM = 10.0

// SpreadSpec 是拼版表中的一行：一面纸上的面板序号及是否镜像。
type SpreadSpec struct {
	Label    string
	Panels   []int
	Reversed bool
}

// Imposition 描述一种版式的拼版规则。
// Folded 为 false 表示单张不折叠的卡片，不生成折线。
type Imposition struct {
	PanelCount int
	GapMM      float64
	Folded     bool
	Spreads    []SpreadSpec
}

const fallbackLabel = "All Panels"

// MaxPanels 是回退拼版允许的最大面板数。超出的面板序号或声明数量会被截断并产生警告。
const MaxPanels = 64

var (
	impositionMu sync.RWMutex
	impositions  = map[LayoutKind]Imposition{
		LayoutSimple: {
			PanelCount: 2,
			GapMM:      SimpleGapMM,
			Spreads: []SpreadSpec{
				{Label: "Greeting Card – Outside", Panels: []int{1, 2}},
			},
		},
		LayoutTwoFold: {
			PanelCount: 4,
			Folded:     true,
			Spreads: []SpreadSpec{
				{Label: "Page 1: Outside", Panels: []int{1, 2}, Reversed: true},
				{Label: "Page 2: Inside", Panels: []int{3, 4}},
			},
		},
		LayoutThreeFold: {
			PanelCount: 6,
			Folded:     true,
			Spreads: []SpreadSpec{
				{Label: "Page 1: Outside", Panels: []int{1, 2, 3}, Reversed: true},
				{Label: "Page 2: Inside", Panels: []int{4, 5, 6}},
			},
		},
	}
)

// LookupImposition 返回指定版式的拼版规则。
func LookupImposition(kind LayoutKind) (Imposition, bool) {
	impositionMu.RLock()
	defer impositionMu.RUnlock()
	imp, ok := impositions[kind]
	return imp, ok
}

// RegisterImposition 注册新的版式或替换已有版式；name 会先被归一化。
// 不满足分组不变式或折页镜像规则的表会被拒绝。
func RegisterImposition(name string, imp Imposition) error {
	kind := NormalizeLayout(name)
	if kind == "" {
		return fmt.Errorf("版式名称为空")
	}
	if err := imp.Validate(); err != nil {
		return fmt.Errorf("版式 %s: %w", name, err)
	}
	impositionMu.Lock()
	defer impositionMu.Unlock()
	impositions[kind] = imp.clone()
	return nil
}

// Validate 检查：所有 spread 的面板序号恰好覆盖 1..PanelCount 且无重复；
// 折页且多面的版式第一面（外侧）镜像、其余面（内侧）不镜像；不折叠的版式不镜像。
func (imp Imposition) Validate() error {
	if imp.PanelCount <= 0 {
		return fmt.Errorf("面板数量必须为正数")
	}
	if len(imp.Spreads) == 0 {
		return fmt.Errorf("缺少 spread 定义")
	}
	if imp.GapMM < 0 {
		return fmt.Errorf("间距不能为负")
	}
	var all []int
	for _, sp := range imp.Spreads {
		if len(sp.Panels) == 0 {
			return fmt.Errorf("spread %q 不含面板", sp.Label)
		}
		all = append(all, sp.Panels...)
	}
	if err := checkCover(all, imp.PanelCount); err != nil {
		return err
	}
	if !imp.Folded {
		for _, sp := range imp.Spreads {
			if sp.Reversed {
				return fmt.Errorf("不折叠的版式中 spread %q 不能镜像", sp.Label)
			}
		}
	}
	if imp.Folded && len(imp.Spreads) > 1 {
		for i, sp := range imp.Spreads {
			if want := i == 0; sp.Reversed != want {
				return fmt.Errorf("spread %q 的镜像标记应为 %v", sp.Label, want)
			}
		}
	}
	return nil
}

func checkCover(indices []int, n int) error {
	if len(indices) != n {
		return fmt.Errorf("面板序号数量 %d 与面板数量 %d 不一致", len(indices), n)
	}
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i+1 {
			return fmt.Errorf("面板序号必须恰好覆盖 1..%d，实际 %v", n, indices)
		}
	}
	return nil
}

func (imp Imposition) clone() Imposition {
	out := imp
	out.Spreads = make([]SpreadSpec, len(imp.Spreads))
	for i, sp := range imp.Spreads {
		sp.Panels = append([]int(nil), sp.Panels...)
		out.Spreads[i] = sp
	}
	return out
}

// fallbackImposition 用于拼版表中没有的版式：一个不镜像的 spread 按序包含 1..n，
// n 不超过 MaxPanels。
func fallbackImposition(n int) Imposition {
	if n <= 0 {
		return Imposition{Folded: true}
	}
	n = min(n, MaxPanels)
	panels := make([]int, n)
	for i := range panels {
		panels[i] = i + 1
	}
	return Imposition{
		PanelCount: n,
		Folded:     true,
		Spreads:    []SpreadSpec{{Label: fallbackLabel, Panels: panels}},
	}
}

// Partition 将版式映射为有序的 spread 描述（尚未填充面板内容与尺寸）。
// 拼版表中没有的版式退化为单个顺序 spread，覆盖 1..panelCount。
func Partition(kind LayoutKind, panelCount int) (Imposition, bool) {
	if imp, ok := LookupImposition(kind); ok {
		return imp.clone(), true
	}
	return fallbackImposition(panelCount), false
}
