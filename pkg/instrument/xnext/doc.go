// Package xnext 为 Next.js 风格的宿主记录中间件 segment。
//
// 宿主通过 getModuleContext 获取模块上下文，再把中间件描述符写入上下文的
// 入口表（middleware_pages<route> → [Descriptor]）。[Instrument] 替换宿主的
// getModuleContext：原函数照常执行，返回的上下文的入口表被装上一层拦截
// （[Intercept]），此后写入的每个描述符都被复制，其 Default 处理函数替换为
// 记录 segment 的版本。同一入口表只拦截一次（[IsLayered]）。
//
// 同步与异步的 getModuleContext 在安装时通过类型区分一次：
// [SyncFetcher] 同步返回，替换后仍同步返回；[AsyncFetcher] 返回
// *xfuture.Future，替换后返回的 future 在拦截层安装完成后结算。
// 原函数的错误原样返回，拦截层不产生新的错误。
//
//	shim, _ := xshim.New()
//	host := &xnext.Host{GetModuleContext: xnext.SyncFetcher(fetch)}
//	if err := xnext.Instrument(shim, host); err != nil {
//		return err
//	}
//
// 中间件 span 名称为 Metrics().Middleware + Metrics().Prefix + 中间件名，
// 默认形如 "Middleware/Nextjs//api/foo"。
package xnext
