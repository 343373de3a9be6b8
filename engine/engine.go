// Package engine drives composition: it owns the configuration store, re-runs
// layout.Compose exactly once per store mutation, and keeps the last
// successfully resolved page format for degrade-gracefully rendering.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/flyer/config"
	"github.com/ByLCY/flyer/layout"
)

// State is the driver's lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateIdle
	StateRendering
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotStarted is returned by edits issued before a successful Start.
var ErrNotStarted = errors.New("engine not started")

// RenderFunc receives every freshly composed tree. It runs while edits are
// serialized, so two renders' side effects never interleave; it must not
// issue edits itself.
type RenderFunc func(*layout.Result)

// Options configures an Engine.
type Options struct {
	ConfigSource string // file path or http(s) URL
	PresetSource string // optional
	Logger       *log.Logger
}

// Engine is the composition driver.
type Engine struct {
	opts   Options
	logger *log.Logger

	mu      sync.RWMutex
	state   State
	err     error
	store   *config.Store
	current *layout.Result
	format  layout.FormatSpec
	hooks   []RenderFunc
}

// New creates an engine. Nothing is loaded until Start.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{opts: opts, logger: logger, format: layout.DefaultFormatSpec}
}

// OnRender registers a hook called with each new result tree.
func (e *Engine) OnRender(fn RenderFunc) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Start loads the configuration (and presets, if configured) and renders the
// first tree. A load failure is terminal: the engine moves to StateFailed and
// never produces a tree.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return fmt.Errorf("engine already started (state %s)", e.state)
	}
	e.mu.Unlock()

	cfg, presets, err := e.load(ctx)
	if err != nil {
		e.mu.Lock()
		e.state = StateFailed
		e.err = err
		e.mu.Unlock()
		e.logger.Error("configuration load failed", "err", err)
		return err
	}
	return e.StartWith(cfg, presets)
}

// StartWith starts from an already loaded configuration.
func (e *Engine) StartWith(cfg config.Configuration, presets config.PresetSet) error {
	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return fmt.Errorf("engine already started (state %s)", e.state)
	}
	// The store is published before the first render; liveStore keeps
	// returning ErrNotStarted until that render has produced a tree.
	store := config.NewStore(cfg, presets)
	e.state = StateRendering
	e.store = store
	e.mu.Unlock()

	store.Watch(e.render)
	return nil
}

func (e *Engine) load(ctx context.Context) (config.Configuration, config.PresetSet, error) {
	cfg, err := config.Load(ctx, e.opts.ConfigSource)
	if err != nil {
		return config.Configuration{}, nil, err
	}
	var presets config.PresetSet
	if e.opts.PresetSource != "" {
		presets, err = config.LoadPresets(ctx, e.opts.PresetSource)
		if err != nil {
			return config.Configuration{}, nil, err
		}
	}
	return cfg, presets, nil
}

// render is the Idle→Rendering→Idle transition. It only runs as the store's
// change listener, under the store lock, so renders are strictly sequential.
func (e *Engine) render(cfg config.Configuration) {
	e.mu.Lock()
	e.state = StateRendering
	prev := e.format
	hooks := append([]RenderFunc(nil), e.hooks...)
	e.mu.Unlock()

	res := layout.Compose(cfg, prev, layout.Options{Logger: e.logger})
	e.logger.Debug("composed", "format", res.Format.Name, "layout", res.Layout.Name, "spreads", len(res.Spreads), "warnings", len(res.Warnings))

	e.mu.Lock()
	e.current = res
	e.format = res.Format
	e.state = StateIdle
	e.mu.Unlock()

	for _, fn := range hooks {
		fn(res)
	}
}

// ApplyPreset merges the named preset. Unknown ids are a silent no-op and
// report false.
func (e *Engine) ApplyPreset(id string) (bool, error) {
	store, err := e.liveStore()
	if err != nil {
		return false, err
	}
	return store.ApplyPreset(id), nil
}

// SetField applies a single scalar edit by structural path.
func (e *Engine) SetField(path, value string) error {
	store, err := e.liveStore()
	if err != nil {
		return err
	}
	return store.SetField(path, value)
}

// Reload re-reads the configuration source and replaces the store content.
// A failing reload after a successful start keeps the current tree.
func (e *Engine) Reload(ctx context.Context) error {
	store, err := e.liveStore()
	if err != nil {
		return err
	}
	cfg, err := config.Load(ctx, e.opts.ConfigSource)
	if err != nil {
		e.logger.Warn("reload failed, keeping current layout", "err", err)
		return err
	}
	store.Replace(cfg)
	return nil
}

func (e *Engine) liveStore() (*config.Store, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == StateFailed {
		return nil, fmt.Errorf("engine failed: %w", e.err)
	}
	if e.store == nil || e.current == nil {
		return nil, ErrNotStarted
	}
	return e.store, nil
}

// Current returns the last rendered tree, or nil before the first render.
func (e *Engine) Current() *layout.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Err returns the fatal load error, if any.
func (e *Engine) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.err
}

// Snapshot returns a copy of the current configuration.
func (e *Engine) Snapshot() (config.Configuration, error) {
	store, err := e.liveStore()
	if err != nil {
		return config.Configuration{}, err
	}
	return store.Snapshot(), nil
}

// Presets returns the loaded preset ids in sorted order.
func (e *Engine) Presets() ([]string, error) {
	store, err := e.liveStore()
	if err != nil {
		return nil, err
	}
	return store.Presets(), nil
}
