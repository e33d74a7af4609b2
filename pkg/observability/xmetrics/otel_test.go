package xmetrics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xapm/pkg/context/xctx"
)

type testProviders struct {
	tp       *sdktrace.TracerProvider
	exporter *tracetest.InMemoryExporter
	mp       *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

func newTestObserver(t *testing.T) (Observer, testProviders) {
	t.Helper()
	p := testProviders{exporter: tracetest.NewInMemoryExporter(), reader: sdkmetric.NewManualReader()}
	p.tp = sdktrace.NewTracerProvider(sdktrace.WithSyncer(p.exporter))
	p.mp = sdkmetric.NewMeterProvider(sdkmetric.WithReader(p.reader))
	t.Cleanup(func() {
		_ = p.tp.Shutdown(context.Background())
		_ = p.mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(WithTracerProvider(p.tp), WithMeterProvider(p.mp))
	require.NoError(t, err)
	return obs, p
}

func attrValue(attrs []attribute.KeyValue, key string) (string, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

// sumInt64 汇总名为 name 的 int64 Sum 指标中满足 match 的数据点。
func sumInt64(t *testing.T, reader *sdkmetric.ManualReader, name string, match func(attribute.Set) bool) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if match == nil || match(dp.Attributes) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestNewOTelObserver_Default(t *testing.T) {
	obs, err := NewOTelObserver(WithInstrumentationName(""), WithTracerProvider(nil), WithMeterProvider(nil), nil)
	require.NoError(t, err)
	require.NotNil(t, obs)
}

func TestOTelObserver_StartEnd(t *testing.T) {
	obs, p := newTestObserver(t)

	ctx, span := obs.Start(context.Background(), Segment{
		Name:      "Middleware/Nextjs//api/foo",
		Component: "Nextjs",
		Type:      "middleware",
		Attrs:     []attribute.KeyValue{attribute.String("http.route", "/api/foo")},
	})
	assert.NotEmpty(t, xctx.TraceID(ctx), "span ids are synced into xctx")
	assert.NotEmpty(t, xctx.SpanID(ctx))
	assert.Equal(t, "01", xctx.TraceFlags(ctx))

	span.End(Result{Attrs: []attribute.KeyValue{attribute.Bool("cached", true)}})
	span.End(Result{Err: errors.New("ignored")})

	spans := p.exporter.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "Middleware/Nextjs//api/foo", got.Name)
	assert.Equal(t, trace.SpanKindInternal, got.SpanKind)
	assert.Equal(t, codes.Ok, got.Status.Code)

	for key, want := range map[string]string{
		AttrComponent:   "Nextjs",
		AttrSegmentType: "middleware",
		"http.route":    "/api/foo",
		"cached":        "true",
	} {
		v, ok := attrValue(got.Attributes, key)
		require.True(t, ok, key)
		assert.Equal(t, want, v, key)
	}
}

func TestOTelSpan_EndWithError(t *testing.T) {
	obs, p := newTestObserver(t)

	_, span := obs.Start(context.Background(), Segment{})
	span.End(Result{Err: errors.New("boom")})

	spans := p.exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, unknown, spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
	require.Len(t, spans[0].Events, 1)

	failed := sumInt64(t, p.reader, MetricSegmentTotal, func(s attribute.Set) bool {
		v, _ := s.Value(AttrStatus)
		return v.AsString() == statusError
	})
	assert.Equal(t, int64(1), failed)
}

func TestOTelObserver_ParentFromContext(t *testing.T) {
	obs, p := newTestObserver(t)

	ctx1, parent := obs.Start(context.Background(), Segment{Name: "parent"})
	_, child := obs.Start(ctx1, Segment{Name: "child"})
	child.End(Result{})
	parent.End(Result{})

	spans := p.exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestOTelObserver_Metrics(t *testing.T) {
	obs, p := newTestObserver(t)

	for range 3 {
		_, span := obs.Start(context.Background(), Segment{Name: "seg", Type: "middleware"})
		span.End(Result{})
	}
	assert.Equal(t, int64(3), sumInt64(t, p.reader, MetricSegmentTotal, nil))
	assert.Equal(t, int64(0), sumInt64(t, p.reader, MetricSegmentActive, nil))
}

func TestOTelObserver_ActiveUntilEnd(t *testing.T) {
	obs, p := newTestObserver(t)

	ctx, cancel := context.WithCancel(context.Background())
	_, span := obs.Start(ctx, Segment{Name: "pending", Type: "middleware"})
	assert.Equal(t, int64(1), sumInt64(t, p.reader, MetricSegmentActive, nil))

	// 请求 context 结束后 segment 仍可正常结束并计数
	cancel()
	span.End(Result{})
	assert.Equal(t, int64(0), sumInt64(t, p.reader, MetricSegmentActive, nil))
	assert.Equal(t, int64(1), sumInt64(t, p.reader, MetricSegmentTotal, nil))
}

func TestOTelObserver_Concurrent(t *testing.T) {
	obs, p := newTestObserver(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, span := obs.Start(context.Background(), Segment{Name: "c"})
			span.End(Result{})
		})
	}
	wg.Wait()
	assert.Len(t, p.exporter.GetSpans(), 20)
	assert.Equal(t, int64(20), sumInt64(t, p.reader, MetricSegmentTotal, nil))
}

func TestStart_Fallbacks(t *testing.T) {
	//nolint:staticcheck // nil context 是被测场景
	ctx, span := Start(nil, nil, Segment{})
	assert.NotNil(t, ctx)
	assert.IsType(t, NoopSpan{}, span)

	ctx, span = Start(context.Background(), NoopObserver{}, Segment{})
	assert.NotNil(t, ctx)
	span.End(Result{})
}
