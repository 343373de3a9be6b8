package layout

import "github.com/charmbracelet/log"

// Options 配置组版阶段的依赖。
type Options struct {
	// Logger 接收降级警告；为空时不输出日志，警告仍记录在 Result.Warnings 中。
	Logger *log.Logger
}

func (o Options) warn(w Warning) {
	if o.Logger == nil {
		return
	}
	o.Logger.Warn(w.Message, "kind", string(w.Kind), "name", w.Name)
}
