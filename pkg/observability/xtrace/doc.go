// Package xtrace 在 HTTP header 与 context 之间传播链路信息。
//
// 父 span 使用 W3C Trace Context（traceparent / tracestate），由 OTel 的
// propagation.TraceContext 解析与生成；请求 ID 使用 X-Request-ID，存放在 xctx。
//
// 服务端用 [FromRequest] 为一次调用准备父 context，客户端用 [Inject] 写入出站请求。
package xtrace
