package xmetrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// Segment 一次被记录调用的描述。
type Segment struct {
	// Name span 名称，如 "Middleware/Nextjs//api/foo"。
	Name string
	// Component 宿主框架名，如 "Nextjs"。
	Component string
	// Type segment 分类（如 "middleware"），为空时不设置。
	Type string
	// Attrs 附加 span 属性，不进入指标。
	Attrs []attribute.KeyValue
}

// Result segment 结束时的结果，Err 非 nil 记为失败。
type Result struct {
	Err   error
	Attrs []attribute.KeyValue
}

// Span 进行中的 segment。
type Span interface {
	// End 结束 segment，多次调用只生效一次。
	End(result Result)
}

// Observer 开启 segment。
type Observer interface {
	Start(ctx context.Context, seg Segment) (context.Context, Span)
}

// NoopObserver 不记录任何内容。
type NoopObserver struct{}

// Start 返回 ctx 和 NoopSpan。
func (NoopObserver) Start(ctx context.Context, _ Segment) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx, NoopSpan{}
}

// NoopSpan 空 segment。
type NoopSpan struct{}

// End 空实现。
func (NoopSpan) End(Result) {}

// Start 用 observer 开启 segment，保证返回非 nil 的 context 和 Span。
func Start(ctx context.Context, observer Observer, seg Segment) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if observer == nil {
		return ctx, NoopSpan{}
	}
	retCtx, span := observer.Start(ctx, seg)
	if retCtx == nil {
		retCtx = ctx
	}
	if span == nil {
		span = NoopSpan{}
	}
	return retCtx, span
}
