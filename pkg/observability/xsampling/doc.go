// Package xsampling 提供 segment 采样策略。
//
// xshim 在开启每个中间件 segment 前调用 [Sampler.ShouldSample]。
// [KeyBasedSampler] 使用 xxhash 做确定性哈希：同一 trace_id 在所有进程中
// 得到相同的采样决策，没有 trace_id 时回退到中间件路由。
//
//	sampler, err := xsampling.NewKeyBasedSampler(0.1, xsampling.RouteKey)
package xsampling
