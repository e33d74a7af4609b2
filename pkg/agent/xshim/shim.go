package xshim

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/omeyang/xapm/pkg/config/xconf"
	"github.com/omeyang/xapm/pkg/observability/xlog"
	"github.com/omeyang/xapm/pkg/observability/xmetrics"
	"github.com/omeyang/xapm/pkg/observability/xsampling"
)

const (
	// FrameworkNext Next.js 框架名，同时是 span 名称的框架前缀。
	FrameworkNext = "Nextjs"

	// TypeMiddleware 中间件 segment 类型。
	TypeMiddleware = "middleware"

	// DefaultMiddlewareNamespace 中间件 span 名称的默认命名空间。
	DefaultMiddlewareNamespace = xconf.DefaultMiddlewareNamespace
)

// MetricNames span 命名常量。
// 中间件 span 名称为 Middleware + Prefix + 中间件名，
// 例如 "Middleware/" + "Nextjs/" + "/api/foo"。
type MetricNames struct {
	Middleware string
	Prefix     string
}

// settings 运行期可热更新的状态，整体替换，读路径无锁。
type settings struct {
	enabled    bool
	middleware bool
	framework  string
	names      MetricNames
	sampler    xsampling.Sampler
}

// Option Shim 配置选项
type Option func(*options)

type options struct {
	observer xmetrics.Observer
	logger   xlog.Logger
	sampler  xsampling.Sampler
	names    *MetricNames
	enabled  bool
}

// WithObserver 设置 segment 记录使用的 Observer，nil 被忽略。
// 默认使用全局 OTel provider 上的 [xmetrics.NewOTelObserver]。
func WithObserver(o xmetrics.Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithLogger 设置日志，nil 被忽略，默认 [xlog.Default]。
func WithLogger(l xlog.Logger) Option {
	return func(opts *options) {
		if l != nil {
			opts.logger = l
		}
	}
}

// WithSampler 设置采样器，nil 被忽略，默认全采样。
func WithSampler(s xsampling.Sampler) Option {
	return func(opts *options) {
		if s != nil {
			opts.sampler = s
		}
	}
}

// WithMetricNames 覆盖 span 命名常量，空字段保留默认值。
func WithMetricNames(names MetricNames) Option {
	return func(opts *options) {
		opts.names = &names
	}
}

// WithEnabled 设置是否记录 segment，默认 true。关闭时 Record 的函数直接透传。
func WithEnabled(enabled bool) Option {
	return func(opts *options) {
		opts.enabled = enabled
	}
}

// Shim 插桩记录器，并发安全。
type Shim struct {
	observer xmetrics.Observer
	logger   xlog.Logger

	state atomic.Pointer[settings]

	// mu 保护 state 的写入和 wrapped
	mu      sync.Mutex
	wrapped map[any]wrapEntry
}

// New 创建 Shim。
func New(opts ...Option) (*Shim, error) {
	o := options{enabled: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if o.observer == nil {
		obs, err := xmetrics.NewOTelObserver()
		if err != nil {
			return nil, fmt.Errorf("xshim: create observer: %w", err)
		}
		o.observer = obs
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}
	if o.sampler == nil {
		o.sampler = xsampling.Always()
	}

	names := MetricNames{Middleware: DefaultMiddlewareNamespace}
	if o.names != nil {
		if o.names.Middleware != "" {
			names.Middleware = o.names.Middleware
		}
		names.Prefix = o.names.Prefix
	}

	s := &Shim{
		observer: o.observer,
		logger:   o.logger.With(xlog.Component("xshim")),
		wrapped:  make(map[any]wrapEntry),
	}
	s.state.Store(&settings{
		enabled:    o.enabled,
		middleware: true,
		names:      names,
		sampler:    o.sampler,
	})
	return s, nil
}

func (s *Shim) settings() *settings {
	return s.state.Load()
}

// update 在锁内以拷贝修改 settings 后整体替换。
func (s *Shim) update(fn func(st *settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := *s.state.Load()
	fn(&next)
	s.state.Store(&next)
}

// SetFramework 声明宿主使用的框架，Metrics().Prefix 随之变为 name + "/"。
func (s *Shim) SetFramework(name string) {
	changed := false
	s.update(func(st *settings) {
		if st.framework == name {
			return
		}
		changed = true
		st.framework = name
		st.names.Prefix = name + "/"
	})
	if changed {
		s.logger.Info(context.Background(), "framework registered", xlog.Framework(name))
	}
}

// Framework 返回当前注册的框架名，未注册时为空。
func (s *Shim) Framework() string {
	return s.settings().framework
}

// Metrics 返回 span 命名常量的副本。
func (s *Shim) Metrics() MetricNames {
	return s.settings().names
}

// Logger 返回 Shim 的日志，插桩代码共用。
func (s *Shim) Logger() xlog.Logger {
	return s.logger
}

// Enabled 是否记录 segment。
func (s *Shim) Enabled() bool {
	return s.settings().enabled
}

// Apply 以 agent 配置热更新 Shim：总开关、中间件开关、采样率和命名空间；
// logger 实现 [xlog.Leveler] 时同时更新日志级别。
// 配置无效时返回错误，Shim 保持原状态。
func (s *Shim) Apply(cfg xconf.Agent) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	sampler, err := xsampling.NewKeyBasedSampler(cfg.Middleware.SampleRate, xsampling.RouteKey)
	if err != nil {
		return fmt.Errorf("xshim: build sampler: %w", err)
	}

	namespace := cfg.Middleware.Namespace
	if namespace == "" {
		namespace = DefaultMiddlewareNamespace
	}
	s.update(func(st *settings) {
		st.enabled = cfg.Enabled
		st.middleware = cfg.Middleware.Enabled
		st.sampler = sampler
		st.names.Middleware = namespace
		if cfg.Framework != "" && cfg.Framework != st.framework {
			st.framework = cfg.Framework
			st.names.Prefix = cfg.Framework + "/"
		}
	})

	if lv, ok := s.logger.(xlog.Leveler); ok && cfg.Log.Level != "" {
		// Validate 已校验级别
		if level, err := xlog.ParseLevel(cfg.Log.Level); err == nil && lv.GetLevel() != level {
			lv.SetLevel(level)
		}
	}

	s.logger.Info(context.Background(), "agent settings applied",
		xlog.Framework(s.Framework()),
		xlog.Segment(namespace),
	)
	return nil
}
