package xctx

import "context"

// WithRoute 将当前中间件路由注入 context
func WithRoute(ctx context.Context, route string) (context.Context, error) {
	return withString(ctx, keyRoute, route)
}

// Route 从 context 提取中间件路由，不存在返回空字符串
func Route(ctx context.Context) string {
	return stringValue(ctx, keyRoute)
}
