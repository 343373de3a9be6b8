package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ByLCY/flyer/binding"
	"github.com/ByLCY/flyer/fieldpath"
)

// ErrUnknownField 表示字段路径不指向任何可编辑的标量字段。
var ErrUnknownField = errors.New("未知的配置字段")

// ChangeFunc 在每次成功变更后以新快照被调用一次。
type ChangeFunc func(Configuration)

// Store 独占持有当前配置。所有变更与变更回调在同一把锁内串行执行，
// 因此两次编辑触发的渲染不会交错。
type Store struct {
	mu        sync.Mutex
	cfg       Configuration
	presets   PresetSet
	listeners []ChangeFunc
}

// NewStore 以 cfg 作为基线配置创建 Store，presets 可以为空。
func NewStore(cfg Configuration, presets PresetSet) *Store {
	return &Store{cfg: Normalize(cfg), presets: presets}
}

// OnChange 注册变更回调。回调在 Store 的锁内执行，不能再调用 Store 的方法。
func (s *Store) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Watch 注册回调并立即以当前配置调用一次，两步在同一把锁内完成，
// 因此首次调用与后续变更回调之间不会插入其他编辑。
func (s *Store) Watch(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	fn(s.cfg.Clone())
}

// Snapshot 返回当前配置的深拷贝。
func (s *Store) Snapshot() Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// Presets 返回已加载的预设 id。
func (s *Store) Presets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presets.IDs()
}

// Replace 整体替换配置（例如文件变更后的重新加载）。
func (s *Store) Replace(cfg Configuration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(Normalize(cfg))
}

// ApplyPreset 合并指定预设。未知 id 静默忽略并返回 false，不触发回调。
func (s *Store) ApplyPreset(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presets[id]
	if !ok {
		return false
	}
	s.commit(p.Merge(s.cfg))
	return true
}

// SetField 按结构化路径修改单个标量字段，不校验取值范围。
func (s *Store) SetField(path, value string) error {
	segs, err := fieldpath.Split(path)
	if err != nil {
		return fmt.Errorf("解析字段路径 %q 失败: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg.Clone()
	if err := setField(&next, segs, value); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	s.commit(next)
	return nil
}

// Get 按路径读取字段值；值来自补齐默认值后的快照。
func (s *Store) Get(path string) (any, bool) {
	segs, err := fieldpath.Split(path)
	if err != nil {
		return nil, false
	}
	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		return nil, false
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	return binding.Resolve(doc, segs...)
}

// commit 必须在持锁时调用。
func (s *Store) commit(next Configuration) {
	s.cfg = next
	for _, fn := range s.listeners {
		fn(s.cfg.Clone())
	}
}

func setField(cfg *Configuration, segs []string, value string) error {
	switch {
	case len(segs) == 2 && segs[0] == "colors":
		cfg.Colors[segs[1]] = value
	case len(segs) == 2 && segs[0] == "fonts":
		cfg.Fonts[segs[1]] = value
	case len(segs) == 2 && segs[0] == "format":
		switch segs[1] {
		case "active":
			cfg.Format.Active = value
		case "orientation":
			cfg.Format.Orientation = value
		default:
			return ErrUnknownField
		}
	case len(segs) == 4 && segs[0] == "format" && segs[1] == "options":
		dims := cfg.Format.Options[segs[2]]
		switch segs[3] {
		case "width":
			dims.Width = value
		case "height":
			dims.Height = value
		default:
			return ErrUnknownField
		}
		cfg.Format.Options[segs[2]] = dims
	case len(segs) == 2 && segs[0] == "layout" && segs[1] == "active":
		cfg.Layout.Active = value
	case len(segs) == 4 && segs[0] == "layout" && segs[1] == "options":
		opt := cfg.Layout.Options[segs[2]]
		switch segs[3] {
		case "label":
			opt.Label = value
		case "panels":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("面板数量必须为整数: %w", err)
			}
			opt.Panels = n
		default:
			return ErrUnknownField
		}
		cfg.Layout.Options[segs[2]] = opt
	case len(segs) == 3 && segs[0] == "panels":
		idx, err := strconv.Atoi(segs[1])
		if err != nil || idx < 1 {
			return fmt.Errorf("面板序号 %q 无效: %w", segs[1], ErrUnknownField)
		}
		key := strconv.Itoa(idx)
		pc := cfg.Panels[key]
		switch segs[2] {
		case "role":
			pc.Role = value
		case "heading":
			pc.Heading = value
		case "subheading":
			pc.Subheading = value
		case "body":
			pc.Body = value
		case "footer":
			pc.Footer = value
		default:
			return ErrUnknownField
		}
		cfg.Panels[key] = pc
	case len(segs) == 2 && segs[0] == "branding":
		switch segs[1] {
		case "companyName":
			cfg.Branding.CompanyName = value
		case "slogan":
			cfg.Branding.Slogan = value
		default:
			return ErrUnknownField
		}
	default:
		return ErrUnknownField
	}
	return nil
}
