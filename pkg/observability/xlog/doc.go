// Package xlog 基于 log/slog 的结构化日志。
//
// # 核心功能
//
//   - Builder 模式配置（输出目标、级别、格式、文件轮转）
//   - 自动从 context 注入 trace_id、span_id、route 等（EnrichHandler，默认启用），
//     xctx 缺少 trace_id 时取 OTel span 的 ID
//   - 动态级别调整（xshim.Shim.Apply 随配置热更新）
//
// # 创建 Logger
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xapm/agent.log", 100, 3).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// Builder 采用 first-error-wins：遇到第一个配置错误后 Build 返回该错误。
//
// # 默认 Logger
//
// 未注入 logger 的组件使用 [Default]，惰性初始化（stderr、Info、text）。
// [SetDefault] 替换，nil 被忽略。
// [ResetDefault] 仅用于测试。
package xlog
