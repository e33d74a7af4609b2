//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/xapm/pkg/agent/xshim"
	"github.com/omeyang/xapm/pkg/context/xctx"
	"github.com/omeyang/xapm/pkg/instrument/xnext"
	"github.com/omeyang/xapm/pkg/observability/xlog"
	"github.com/omeyang/xapm/pkg/observability/xmetrics"
	"github.com/omeyang/xapm/pkg/util/xfuture"
)

type captureHandler struct {
	mu    sync.Mutex
	attrs map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Resolve()
		return true
	})

	h.mu.Lock()
	h.attrs = attrs
	h.mu.Unlock()

	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

func (h *captureHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *captureHandler) snapshot() map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.attrs)
}

func attrValue(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestMiddlewareTrace_E2E(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	obs, err := xmetrics.NewOTelObserver(xmetrics.WithTracerProvider(tp), xmetrics.WithMeterProvider(mp))
	require.NoError(t, err)
	shim, err := xshim.New(xshim.WithObserver(obs))
	require.NoError(t, err)

	// { context: { _ENTRIES: {} } }，异步获取
	sandbox := xnext.NewSandbox(xnext.NewMapEntryTable())
	host := &xnext.Host{
		GetModuleContext: xnext.AsyncFetcher(func(ctx context.Context, _ xnext.FetchParams) *xfuture.Future[*xnext.ModuleContext] {
			return xfuture.Go(ctx, func(context.Context) (*xnext.ModuleContext, error) {
				return &xnext.ModuleContext{Context: sandbox}, nil
			})
		}),
	}
	require.NoError(t, xnext.Instrument(shim, host))

	mc, err := host.Fetch(context.Background(), xnext.FetchParams{ModuleName: "middleware"})
	require.NoError(t, err)
	require.True(t, xnext.IsLayered(mc.Context.Entries()))

	capture := &captureHandler{}
	enrich, err := xlog.NewEnrichHandler(capture)
	require.NoError(t, err)
	logger := slog.New(enrich)

	pending, resolve, _ := xfuture.New[*xnext.Result]()
	var handlerCtx context.Context
	var gotArgs *xnext.Args
	fn := func(ctx context.Context, args *xnext.Args) *xfuture.Future[*xnext.Result] {
		handlerCtx, gotArgs = ctx, args
		logger.InfoContext(ctx, "middleware ran")
		return pending
	}
	// 宿主写入 _ENTRIES["middleware_pages/x"] = { default: fn }
	require.NoError(t, mc.Context.Entries().Set("middleware_pages/x", &xnext.Descriptor{Default: fn}))

	req := httptest.NewRequest(http.MethodGet, "http://example/x", nil)
	req.Header.Set(xshim.HeaderRequestID, "req-789")
	args := &xnext.Args{Request: req}
	result, err := xnext.RunMiddleware(context.Background(), mc.Context.Entries(), "/x", args)
	require.NoError(t, err)
	assert.Same(t, pending, result)
	assert.Same(t, args, gotArgs)
	assert.Empty(t, exporter.GetSpans(), "span ends only after the handler's result settles")

	resolve(&xnext.Result{})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "Middleware/Nextjs//x", span.Name)
	assert.Equal(t, xshim.TypeMiddleware, attrValue(span.Attributes, xmetrics.AttrSegmentType))
	assert.Equal(t, http.MethodGet, attrValue(span.Attributes, xshim.AttrHTTPMethod))
	assert.Equal(t, "/x", attrValue(span.Attributes, xshim.AttrURLPath))
	assert.Equal(t, "Nextjs", attrValue(span.Attributes, "component"))

	logged := capture.snapshot()
	assert.Equal(t, span.SpanContext.TraceID().String(), logged[xctx.KeyTraceID].String())
	assert.Equal(t, span.SpanContext.SpanID().String(), logged[xctx.KeySpanID].String())
	assert.Equal(t, "req-789", logged[xctx.KeyRequestID].String())
	assert.Equal(t, "/x", logged[xctx.KeyRoute].String())
	assert.Equal(t, "/x", xctx.Route(handlerCtx))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != xmetrics.MetricSegmentTotal {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), total)
}
