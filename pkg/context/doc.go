// Package context 提供上下文相关的子包。
//
// 子包列表：
//   - xctx: 在 context 中存取追踪 ID、请求 ID、路由，并转换为日志属性
package context
