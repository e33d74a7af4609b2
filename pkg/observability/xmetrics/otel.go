package xmetrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xapm/pkg/context/xctx"
)

// 指标名
const (
	MetricSegmentTotal    = "xapm.segment.total"
	MetricSegmentDuration = "xapm.segment.duration"
	MetricSegmentActive   = "xapm.segment.active"
)

// 属性名
const (
	AttrComponent   = "component"
	AttrOperation   = "operation"
	AttrSegmentType = "segment.type"
	AttrStatus      = "status"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xapm"
	unknown                    = "unknown"

	statusOK    = "ok"
	statusError = "error"
)

type otelConfig struct {
	instrumentationName string
	tracerProvider      trace.TracerProvider
	meterProvider       metric.MeterProvider
}

// Option 配置 OTel Observer。
type Option func(*otelConfig)

// WithInstrumentationName 设置 instrumentation 名称，空值忽略。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider，nil 忽略。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider，nil 忽略。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer，默认使用全局 provider。
//
// 每个 segment 对应一个 internal span，并记录三个指标：
// total（结束数）、duration（秒）、active（已开启未结束，promise segment 在结算前计入）。
func NewOTelObserver(opts ...Option) (Observer, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		tracerProvider:      otel.GetTracerProvider(),
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)
	total, err := meter.Int64Counter(MetricSegmentTotal,
		metric.WithDescription("finished segments"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, MetricSegmentTotal, err)
	}
	duration, err := meter.Float64Histogram(MetricSegmentDuration,
		metric.WithDescription("segment duration"), metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, MetricSegmentDuration, err)
	}
	active, err := meter.Int64UpDownCounter(MetricSegmentActive,
		metric.WithDescription("segments started but not yet ended"), metric.WithUnit("1"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateInstrument, MetricSegmentActive, err)
	}

	return &otelObserver{
		tracer:   cfg.tracerProvider.Tracer(cfg.instrumentationName),
		total:    total,
		duration: duration,
		active:   active,
	}, nil
}

type otelObserver struct {
	tracer   trace.Tracer
	total    metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// Start 开启 segment。新 span 的 ID 同步进 xctx，日志 enrich 因此带上当前 segment。
func (o *otelObserver) Start(ctx context.Context, seg Segment) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &otelSpan{
		observer:  o,
		component: orUnknown(seg.Component),
		operation: orUnknown(seg.Name),
		segType:   seg.Type,
	}

	attrs := make([]attribute.KeyValue, 0, 3+len(seg.Attrs))
	attrs = append(attrs,
		attribute.String(AttrComponent, s.component),
		attribute.String(AttrOperation, s.operation),
	)
	if seg.Type != "" {
		attrs = append(attrs, attribute.String(AttrSegmentType, seg.Type))
	}
	attrs = append(attrs, seg.Attrs...)

	ctx, s.span = o.tracer.Start(ctx, s.operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	ctx = syncXctx(ctx, s.span.SpanContext())
	s.ctx = context.WithoutCancel(ctx)
	s.start = time.Now()

	o.active.Add(s.ctx, 1, metric.WithAttributes(s.baseAttrs()...))
	return ctx, s
}

// otelSpan.ctx 不可取消：promise segment 结算时请求 context 可能已结束。
type otelSpan struct {
	observer  *otelObserver
	span      trace.Span
	ctx       context.Context
	component string
	operation string
	segType   string
	start     time.Time
	endOnce   sync.Once
}

// End 结束 segment，幂等。
func (s *otelSpan) End(result Result) {
	if s == nil {
		return
	}
	s.endOnce.Do(func() {
		status := statusOK
		if result.Err != nil {
			status = statusError
			s.span.RecordError(result.Err)
			s.span.SetStatus(codes.Error, result.Err.Error())
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
		if len(result.Attrs) > 0 {
			s.span.SetAttributes(result.Attrs...)
		}
		s.span.End()

		base := s.baseAttrs()
		s.observer.active.Add(s.ctx, -1, metric.WithAttributes(base...))
		withStatus := metric.WithAttributes(append(base, attribute.String(AttrStatus, status))...)
		s.observer.total.Add(s.ctx, 1, withStatus)
		s.observer.duration.Record(s.ctx, time.Since(s.start).Seconds(), withStatus)
	})
}

func (s *otelSpan) baseAttrs() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrComponent, s.component),
		attribute.String(AttrOperation, s.operation),
		attribute.String(AttrSegmentType, s.segType),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func syncXctx(ctx context.Context, sc trace.SpanContext) context.Context {
	if !sc.IsValid() {
		return ctx
	}
	// ctx 非 nil，WithTrace 不会失败
	synced, err := xctx.WithTrace(ctx, xctx.Trace{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		TraceFlags: sc.TraceFlags().String(),
	})
	if err != nil {
		return ctx
	}
	return synced
}
