package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/flyer/layout"
	canvasrenderer "github.com/ByLCY/flyer/renderer/canvas"
	"github.com/ByLCY/flyer/watch"
)

func newWatchCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "配置文件变化时重新组版并输出 PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWatch(ctx, opts)
		},
	}
	opts.bind(cmd, true)
	return cmd
}

// runWatch 把组版结果交给独立的输出协程，渲染 PDF 不占用配置存储的锁；
// 输出跟不上时只保留最新一次结果。
func runWatch(ctx context.Context, opts *runOptions) error {
	logger := loggerFromContext(ctx)
	results := make(chan *layout.Result, 1)
	latest := func(res *layout.Result) {
		select {
		case <-results:
		default:
		}
		results <- res
	}

	e, err := startEngine(ctx, opts, logger, latest)
	if err != nil {
		return err
	}
	w, err := watch.New(opts.configPath, 0, logger)
	if err != nil {
		return err
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{FontDirs: opts.fontDirs, Logger: logger})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(ctx, func(ctx context.Context, events []watch.ChangeEvent) error {
			return e.Reload(ctx)
		})
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case res := <-results:
				if err := writeOutputs(res, opts.out, opts.debug, r); err != nil {
					logger.Error("output failed", "err", err)
					continue
				}
				logger.Info("rendered", "out", opts.out, "summary", res.Summary.Line())
			}
		}
	})
	logger.Info("watching", "config", w.Path())
	return g.Wait()
}
