package xshim

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/omeyang/xapm/pkg/context/xctx"
	"github.com/omeyang/xapm/pkg/observability/xmetrics"
	"github.com/omeyang/xapm/pkg/observability/xtrace"
)

// 请求相关 span 属性
const (
	AttrHTTPMethod = "http.request.method"
	AttrURLPath    = "url.path"
	AttrHTTPRoute  = "http.route"
	AttrRequestID  = "request.id"
)

// HeaderRequestID 入站请求携带请求 ID 的 header。
const HeaderRequestID = xtrace.HeaderRequestID

// RecordSpec 一次调用的 segment 描述，由 [SpecFunc] 按调用参数生成。
type RecordSpec struct {
	// Name span 名称，为空时使用 Record 的 name 参数。
	Name string
	// Type segment 类型，如 [TypeMiddleware]。
	Type string
	// Request 关联的入站请求，可为 nil。
	Request *http.Request
	// Route 路由或中间件名。
	Route string
	// Promise 为 true 时，若返回值实现 [Settler]，segment 在其结算时结束。
	Promise bool
}

// SpecFunc 根据调用参数生成 RecordSpec。
type SpecFunc[A any] func(ctx context.Context, args A) RecordSpec

// Settler 待定结果，结算时回调一次。*xfuture.Future 实现此接口。
type Settler interface {
	OnSettle(fn func(error))
}

// Record 返回 fn 的插桩版本，每次调用记录一个 segment。
//
// 以下情况直接透传，不记录：Shim 关闭；segment 类型为中间件且中间件记录关闭；
// 采样器拒绝。fn 的返回值和 panic 原样传给调用方，不做任何转换。
// fn 为 nil 时返回 nil。
func Record[A, R any](s *Shim, fn func(context.Context, A) R, name string, spec SpecFunc[A]) func(context.Context, A) R {
	if fn == nil {
		return nil
	}

	return func(ctx context.Context, args A) R {
		st := s.settings()
		if !st.enabled {
			return fn(ctx, args)
		}

		rs := RecordSpec{Name: name}
		if spec != nil {
			rs = spec(ctx, args)
			if rs.Name == "" {
				rs.Name = name
			}
		}
		if rs.Type == TypeMiddleware && !st.middleware {
			return fn(ctx, args)
		}

		segCtx := segmentContext(ctx, rs)
		if !st.sampler.ShouldSample(segCtx) {
			return fn(ctx, args)
		}

		segCtx, span := xmetrics.Start(segCtx, s.observer, xmetrics.Segment{
			Name:      rs.Name,
			Component: st.framework,
			Type:      rs.Type,
			Attrs:     requestAttrs(rs),
		})
		return invoke(segCtx, fn, args, span, rs.Promise)
	}
}

func invoke[A, R any](ctx context.Context, fn func(context.Context, A) R, args A, span xmetrics.Span, promise bool) (result R) {
	settled := false
	defer func() {
		if r := recover(); r != nil {
			span.End(xmetrics.Result{Err: fmt.Errorf("%w: %v", ErrPanicked, r)})
			panic(r)
		}
		if !settled {
			span.End(xmetrics.Result{})
		}
	}()

	result = fn(ctx, args)
	if promise {
		if settler, ok := asSettler(result); ok {
			settled = true
			settler.OnSettle(func(err error) {
				span.End(xmetrics.Result{Err: err})
			})
		}
	}
	return result
}

// asSettler 类型化 nil（如 (*Future)(nil)）同样视为 Settler，由其 OnSettle 立即回调。
func asSettler(v any) (Settler, bool) {
	settler, ok := v.(Settler)
	return settler, ok
}

// segmentContext 准备 segment 的父 context：父 span 依次取自 ctx、请求 context、
// traceparent header，请求 ID 取自 header；路由写入 xctx。
func segmentContext(ctx context.Context, rs RecordSpec) context.Context {
	ctx = xtrace.FromRequest(ctx, rs.Request)
	if rs.Route != "" {
		// FromRequest 返回非 nil ctx，不会失败
		if next, err := xctx.WithRoute(ctx, rs.Route); err == nil {
			ctx = next
		}
	}
	return ctx
}

func requestAttrs(rs RecordSpec) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 4)
	if rs.Route != "" {
		attrs = append(attrs, attribute.String(AttrHTTPRoute, rs.Route))
	}
	req := rs.Request
	if req == nil {
		return attrs
	}
	attrs = append(attrs, attribute.String(AttrHTTPMethod, req.Method))
	if req.URL != nil {
		attrs = append(attrs, attribute.String(AttrURLPath, req.URL.Path))
	}
	if id := req.Header.Get(HeaderRequestID); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	return attrs
}
