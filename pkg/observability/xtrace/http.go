package xtrace

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xapm/pkg/context/xctx"
)

// HTTP header 名称
const (
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceparent = "traceparent"
	HeaderTracestate  = "tracestate"
)

var traceContext = propagation.TraceContext{}

// Extract 从 h 提取链路信息写入 ctx。
//
// ctx 已有有效 span 时保留，不被 traceparent 覆盖；
// ctx 已有请求 ID 时同样保留。ctx 为 nil 时使用 context.Background()。
func Extract(ctx context.Context, h http.Header) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if h == nil {
		return ctx
	}
	if !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = traceContext.Extract(ctx, propagation.HeaderCarrier(h))
	}
	if xctx.RequestID(ctx) == "" {
		if id := h.Get(HeaderRequestID); id != "" {
			// ctx 非 nil，不会失败
			if next, err := xctx.WithRequestID(ctx, id); err == nil {
				ctx = next
			}
		}
	}
	return ctx
}

// FromRequest 为处理 req 的调用准备父 context。
// 父 span 的优先级：ctx 中的 span，其次 req.Context() 中的 span，最后 traceparent header。
func FromRequest(ctx context.Context, req *http.Request) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return ctx
	}
	if !trace.SpanContextFromContext(ctx).IsValid() {
		if sc := trace.SpanContextFromContext(req.Context()); sc.IsValid() {
			ctx = trace.ContextWithSpanContext(ctx, sc)
		}
	}
	return Extract(ctx, req.Header)
}

// Inject 把 ctx 中的 span 与请求 ID 写入 h。没有有效 span 时不写 traceparent。
func Inject(ctx context.Context, h http.Header) {
	if ctx == nil || h == nil {
		return
	}
	traceContext.Inject(ctx, propagation.HeaderCarrier(h))
	if id := xctx.RequestID(ctx); id != "" {
		h.Set(HeaderRequestID, id)
	}
}

// NewRemoteParent 生成一个已采样的远端父 span context，用于模拟上游调用方。
func NewRemoteParent() trace.SpanContext {
	tid, _ := trace.TraceIDFromHex(xctx.GenerateTraceID())
	sid, _ := trace.SpanIDFromHex(xctx.GenerateSpanID())
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tid,
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
}
