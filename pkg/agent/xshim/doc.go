// Package xshim 是 agent 面向各框架插桩代码的记录器。
//
// 插桩代码通过 [Shim] 完成三件事：
//
//   - 注册宿主框架：[Shim.SetFramework] 决定 span 名称的框架前缀；
//   - 替换宿主函数：[Wrap] 把一个函数槽位替换为插桩版本，[Unwrap] 恢复；
//   - 记录调用：[Record] 返回插桩函数，每次调用开启一个 segment（span），
//     结果实现 [Settler] 时 segment 在结果结算后才结束。
//
// Shim 显式传递给插桩代码，不存在全局实例。配置变更通过 [Shim.Apply] 热更新。
//
//	shim, err := xshim.New(xshim.WithLogger(logger))
//	shim.SetFramework(xshim.FrameworkNext)
//	handler = xshim.Record(shim, handler, "default", specFn)
package xshim
