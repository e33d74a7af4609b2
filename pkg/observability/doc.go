// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展，支持文件轮转
//   - xtrace: W3C Trace Context 与请求 ID 的 HTTP header 传播
//   - xmetrics: segment 观测接口，OTel 实现同时记录 span 与指标
//   - xsampling: 采样策略
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 自动从 context 中提取追踪信息注入日志
package observability
