package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/flyer/engine"
	"github.com/ByLCY/flyer/layout"
	"github.com/ByLCY/flyer/renderer"
	canvasrenderer "github.com/ByLCY/flyer/renderer/canvas"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "flyer",
		Short:        "flyer 根据配置文档组版折页传单并输出 PDF",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newWatchCmd())
	return root
}

// runOptions 是各子命令共用的参数。
type runOptions struct {
	configPath  string
	presetsPath string
	preset      string
	sets        []string
	out         string
	debug       string
	fontDirs    []string
}

func (o *runOptions) bind(cmd *cobra.Command, withOutput bool) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "flyer-config.json", "配置文档路径或 http(s) 地址")
	f.StringVar(&o.presetsPath, "presets", "", "预设文档路径或 http(s) 地址")
	f.StringVar(&o.preset, "preset", "", "启动后应用的预设 id")
	f.StringArrayVar(&o.sets, "set", nil, "按字段路径修改配置，形如 panels.1.heading=Hallo，可重复")
	if withOutput {
		f.StringVarP(&o.out, "out", "o", "output/flyer.pdf", "PDF 输出路径")
		f.StringVar(&o.debug, "debug", "", "组版结果树 JSON 输出路径")
		f.StringSliceVar(&o.fontDirs, "font-dir", nil, "字体目录，优先于系统字体目录")
	}
}

// startEngine 加载配置并依次应用预设与字段修改。
func startEngine(ctx context.Context, opts *runOptions, logger *log.Logger, hooks ...engine.RenderFunc) (*engine.Engine, error) {
	e := engine.New(engine.Options{
		ConfigSource: opts.configPath,
		PresetSource: opts.presetsPath,
		Logger:       logger,
	})
	for _, h := range hooks {
		e.OnRender(h)
	}
	if err := e.Start(ctx); err != nil {
		return nil, err
	}
	if opts.preset != "" {
		ok, err := e.ApplyPreset(opts.preset)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Warn("unknown preset, ignored", "preset", opts.preset)
		}
	}
	for _, set := range opts.sets {
		path, value, err := parseSet(set)
		if err != nil {
			return nil, err
		}
		if err := e.SetField(path, value); err != nil {
			return nil, fmt.Errorf("修改字段 %s 失败: %w", path, err)
		}
	}
	return e, nil
}

// parseSet 解析 --set 参数：等号左侧为字段路径，右侧原样作为值。
func parseSet(s string) (string, string, error) {
	path, value, ok := strings.Cut(s, "=")
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return "", "", fmt.Errorf("无效的 --set 参数 %q，应为 path=value", s)
	}
	return path, value, nil
}

func newRenderCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "组版并输出 PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			e, err := startEngine(ctx, opts, logger)
			if err != nil {
				return err
			}
			r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{FontDirs: opts.fontDirs, Logger: logger})
			if err := writeOutputs(e.Current(), opts.out, opts.debug, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", opts.out)
			return nil
		},
	}
	opts.bind(cmd, true)
	return cmd
}

// writeOutputs 写出调试 JSON（如指定）与 PDF。
func writeOutputs(result *layout.Result, outputPath, debugPath string, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	if result == nil {
		return fmt.Errorf("没有可输出的组版结果")
	}
	if debugPath != "" {
		if err := writeDebug(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
