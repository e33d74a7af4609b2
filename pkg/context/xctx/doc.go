// Package xctx 管理请求链路上的追踪字段与中间件路由。
//
// # 字段
//
//   - trace_id / span_id / request_id / trace_flags：W3C Trace Context 相关标识
//   - route：当前执行的中间件路由（如 "/api/foo"），由 xshim 在开启 segment 时注入
//
// # 使用方式
//
//	ctx, _ = xctx.WithRequestID(ctx, req.Header.Get("X-Request-ID"))
//	ctx, _ = xctx.WithRoute(ctx, "/api/foo")
//	attrs := xctx.AppendTraceAttrs(nil, ctx)
//
// 所有 WithXxx 对 nil context 返回 [ErrNilContext]，
// 读取函数对 nil context 返回零值。
package xctx
