package xrun

import (
	"os"
	"slices"

	"github.com/omeyang/xapm/pkg/observability/xlog"
)

// Option 配置 Group。
type Option func(*groupOptions)

type groupOptions struct {
	name            string
	logger          xlog.Logger
	signals         []os.Signal
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		name:   "xrun",
		logger: xlog.Default(),
	}
}

// WithLogger 设置日志记录器，nil 忽略。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 设置组名，出现在日志的 group 字段。空字符串忽略。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 自定义 Run 监听的信号，空列表等同于 DefaultSignals。
func WithSignals(signals []os.Signal) Option {
	return func(o *groupOptions) {
		o.signals = slices.Clone(signals)
	}
}

// WithoutSignalHandler 禁用 Run 的信号监听。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
