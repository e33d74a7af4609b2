package xnext

import "errors"

var (
	// ErrNilShim Instrument 的 shim 为 nil。
	ErrNilShim = errors.New("xnext: nil shim")

	// ErrNilHost Instrument 的 host 为 nil。
	ErrNilHost = errors.New("xnext: nil host")

	// ErrNilFetcher 宿主未设置 GetModuleContext。
	ErrNilFetcher = errors.New("xnext: nil module context fetcher")

	// ErrUnsupportedFetcher GetModuleContext 既不是 SyncFetcher 也不是 AsyncFetcher。
	ErrUnsupportedFetcher = errors.New("xnext: unsupported module context fetcher")

	// ErrNoMiddleware 入口表中没有该路由的中间件。
	ErrNoMiddleware = errors.New("xnext: middleware not registered")

	// ErrNoHandler 中间件描述符没有 Default 处理函数。
	ErrNoHandler = errors.New("xnext: middleware has no default handler")
)
