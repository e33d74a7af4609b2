package xnext

import "strings"

// EntryPrefix 入口表中中间件 key 的前缀。
const EntryPrefix = "middleware_pages"

// MiddlewareName 由入口表 key 得到中间件名：去掉开头的 [EntryPrefix]，其余不变。
//
//	MiddlewareName("middleware_pages/api/foo") == "/api/foo"
func MiddlewareName(key string) string {
	return strings.TrimPrefix(key, EntryPrefix)
}

// EntryKey 是 MiddlewareName 的逆操作：路由对应的入口表 key。
func EntryKey(route string) string {
	return EntryPrefix + route
}
