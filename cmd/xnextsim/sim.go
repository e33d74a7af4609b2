package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xapm/pkg/agent/xshim"
	"github.com/omeyang/xapm/pkg/config/xconf"
	"github.com/omeyang/xapm/pkg/context/xctx"
	"github.com/omeyang/xapm/pkg/instrument/xnext"
	"github.com/omeyang/xapm/pkg/lifecycle/xrun"
	"github.com/omeyang/xapm/pkg/observability/xlog"
	"github.com/omeyang/xapm/pkg/observability/xmetrics"
	"github.com/omeyang/xapm/pkg/observability/xtrace"
	"github.com/omeyang/xapm/pkg/util/xfuture"
)

const (
	defaultRequests    = 10
	defaultConcurrency = 4

	simBaseURL = "http://localhost:3000"
)

type simOptions struct {
	configPath  string
	routes      []string
	requests    int
	concurrency int
	async       bool
	watch       bool
	environ     []string
	out         io.Writer
}

func (o simOptions) validate() error {
	if len(o.routes) == 0 {
		return newUsageError("至少需要一个 --routes")
	}
	if o.requests <= 0 {
		return newUsageError("--requests 必须大于 0，当前 %d", o.requests)
	}
	if o.concurrency <= 0 {
		return newUsageError("--concurrency 必须大于 0，当前 %d", o.concurrency)
	}
	if o.watch && o.configPath == "" {
		return newUsageError("--watch 需要 --config")
	}
	return nil
}

// runSimulation 模拟宿主：插桩、注册中间件、并发请求，最后输出 span 统计。
func runSimulation(ctx context.Context, opts simOptions) (err error) {
	if err := opts.validate(); err != nil {
		return err
	}

	agent, cfg, err := loadAgent(opts.configPath, opts.environ)
	if err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(agent)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, cleanup()) }()

	exporter := newLogExporter(logger)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err = errors.Join(err, tp.Shutdown(shutdownCtx), mp.Shutdown(shutdownCtx))
	}()

	observer, err := xmetrics.NewOTelObserver(
		xmetrics.WithInstrumentationName("github.com/omeyang/xapm/cmd/xnextsim"),
		xmetrics.WithTracerProvider(tp),
		xmetrics.WithMeterProvider(mp),
	)
	if err != nil {
		return err
	}

	shim, err := xshim.New(xshim.WithObserver(observer), xshim.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := shim.Apply(agent); err != nil {
		return err
	}

	if opts.watch {
		watcher, werr := xconf.Watch(cfg, func(next xconf.Agent, reloadErr error) {
			if reloadErr != nil {
				logger.Warn(ctx, "config reload failed, keeping previous settings", xlog.Err(reloadErr))
				return
			}
			if applyErr := shim.Apply(next); applyErr != nil {
				logger.Warn(ctx, "config rejected", xlog.Err(applyErr))
			}
		})
		if werr != nil {
			return werr
		}
		defer func() { err = errors.Join(err, watcher.Stop()) }()
	}

	host := newSimHost(opts.async)
	if err := xnext.Instrument(shim, host); err != nil {
		return err
	}

	if err := registerMiddleware(ctx, host, opts.routes, logger); err != nil {
		return err
	}
	if err := driveRequests(ctx, host, opts, logger); err != nil {
		return err
	}

	return printSummary(ctx, opts.out, exporter, reader)
}

// loadAgent 加载配置文件（可选），再以 XAPM_* 环境变量覆盖。
func loadAgent(path string, environ []string) (xconf.Agent, xconf.Config, error) {
	if path != "" {
		return xconf.LoadAgentFile(path, xconf.WithEnv(environ))
	}
	cfg, err := xconf.NewFromBytes(nil, xconf.FormatYAML, xconf.WithEnv(environ))
	if err != nil {
		return xconf.Agent{}, nil, err
	}
	agent, err := xconf.LoadAgent(cfg)
	return agent, cfg, err
}

func buildLogger(agent xconf.Agent) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(agent.Log.Level).
		SetFormat(agent.Log.Format).
		SetEnrich(true).
		SetAddSource(agent.Log.AddSource)
	if agent.AppName != "" {
		b = b.SetAttrs(slog.String("app", agent.AppName))
	}
	if agent.Log.File != "" {
		b = b.SetRotation(agent.Log.File, agent.Log.MaxSizeMB, agent.Log.MaxBackups)
	}
	return b.Build()
}

// newSimHost 创建宿主，每次 getModuleContext 返回共用同一沙箱的新上下文，
// 与 Next.js 的模块缓存一致。
func newSimHost(async bool) *xnext.Host {
	sandbox := xnext.NewSandbox(nil)
	sandbox.SetGlobal("process.env.NEXT_RUNTIME", "edge")

	module := func(params xnext.FetchParams) *xnext.ModuleContext {
		return &xnext.ModuleContext{
			Context: sandbox,
			Paths:   map[string]string{params.ModuleName: params.DistDir + "/server/" + params.ModuleName + ".js"},
		}
	}

	if async {
		return &xnext.Host{GetModuleContext: xnext.AsyncFetcher(
			func(ctx context.Context, params xnext.FetchParams) *xfuture.Future[*xnext.ModuleContext] {
				return xfuture.Go(ctx, func(context.Context) (*xnext.ModuleContext, error) {
					return module(params), nil
				})
			},
		)}
	}
	return &xnext.Host{GetModuleContext: xnext.SyncFetcher(
		func(_ context.Context, params xnext.FetchParams) (*xnext.ModuleContext, error) {
			return module(params), nil
		},
	)}
}

var middlewareParams = xnext.FetchParams{ModuleName: "middleware", DistDir: ".next", UseCache: true}

// registerMiddleware 以宿主的方式把每个路由的中间件写入入口表。
func registerMiddleware(ctx context.Context, host *xnext.Host, routes []string, logger xlog.Logger) error {
	mc, err := host.Fetch(ctx, middlewareParams)
	if err != nil {
		return err
	}
	entries := mc.Context.Entries()
	for _, route := range routes {
		d := &xnext.Descriptor{
			Default: simMiddleware(route, logger),
			Exports: map[string]any{"config": map[string]any{"matcher": route}},
		}
		if err := entries.Set(xnext.EntryKey(route), d); err != nil {
			return fmt.Errorf("register %s: %w", route, err)
		}
	}
	logger.Debug(ctx, "middleware registered", xlog.Count(entries.Len()))
	return nil
}

func simMiddleware(route string, logger xlog.Logger) xnext.Handler {
	return func(ctx context.Context, args *xnext.Args) *xfuture.Future[*xnext.Result] {
		return xfuture.Go(ctx, func(ctx context.Context) (*xnext.Result, error) {
			attrs := []slog.Attr{xlog.Route(route)}
			if args != nil && args.Request != nil {
				attrs = append(attrs, xlog.Method(args.Request.Method), xlog.Path(args.Request.URL.Path))
			}
			logger.Debug(ctx, "middleware executed", attrs...)
			return &xnext.Result{}, nil
		})
	}
}

// driveRequests 并发发起请求：每个请求重新获取模块上下文，再执行对应路由的中间件。
func driveRequests(ctx context.Context, host *xnext.Host, opts simOptions, logger xlog.Logger) error {
	g, _ := xrun.NewGroup(ctx, xrun.WithName("requests"), xrun.WithLogger(logger))
	g.SetLimit(opts.concurrency)

	for i := range opts.requests {
		route := opts.routes[i%len(opts.routes)]
		g.Go(route, func(gctx context.Context) error {
			mc, err := host.Fetch(gctx, middlewareParams)
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(gctx, http.MethodGet, simBaseURL+route, nil)
			if err != nil {
				return err
			}
			// 模拟上游调用方：携带 traceparent 与请求 ID
			upstream := trace.ContextWithSpanContext(gctx, xtrace.NewRemoteParent())
			if upstream, err = xctx.WithRequestID(upstream, uuid.NewString()); err != nil {
				return err
			}
			xtrace.Inject(upstream, req.Header)

			pending, err := xnext.RunMiddleware(gctx, mc.Context.Entries(), route, &xnext.Args{Request: req, Page: route})
			if err != nil {
				return err
			}
			// 失败由 xrun 按任务名（路由）记录
			_, err = pending.Await(gctx)
			return err
		})
	}
	return g.Wait()
}

func printSummary(ctx context.Context, out io.Writer, exporter *logExporter, reader *sdkmetric.ManualReader) error {
	counts := exporter.Counts()
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		if _, err := fmt.Fprintf(out, "%s\t%d\n", name, counts[name]); err != nil {
			return err
		}
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "segments\t%d\tactive\t%d\terrors\t%d\n",
		sumMetric(rm, xmetrics.MetricSegmentTotal), sumMetric(rm, xmetrics.MetricSegmentActive), exporter.Errors())
	return err
}

// sumMetric 汇总 int64 Sum 指标的全部数据点。
func sumMetric(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
