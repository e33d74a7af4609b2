// Package xmetrics 记录 segment：一次被插桩调用对应的 span 与指标。
//
// 上层（xshim）只依赖 [Observer] / [Span] 接口，默认实现基于 OpenTelemetry：
//
//	obs, _ := xmetrics.NewOTelObserver(xmetrics.WithTracerProvider(tp))
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.Segment{
//		Name:      "Middleware/Nextjs//api/foo",
//		Component: "Nextjs",
//		Type:      "middleware",
//	})
//	defer span.End(xmetrics.Result{Err: err})
//
// 指标（属性 component / operation / segment.type，前两个另带 status）：
//
//   - xapm.segment.total
//   - xapm.segment.duration
//   - xapm.segment.active
package xmetrics
