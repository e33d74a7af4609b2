package xlog

import (
	"log/slog"
	"time"

	"github.com/omeyang/xapm/pkg/context/xctx"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyCount     = "count"
	KeyComponent = "component"
	KeyFramework = "framework"
	KeySegment   = "segment"
	KeyRoute     = xctx.KeyRoute
	KeyMethod    = "method"
	KeyPath      = "path"
)

// Err 创建错误属性，err 为 nil 时返回空属性（会被忽略）
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性（人类可读，如 "1.5s"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Count 创建计数属性
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Component 创建组件属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Framework 创建宿主框架属性
func Framework(name string) slog.Attr {
	return slog.String(KeyFramework, name)
}

// Segment 创建 segment（span）名称属性
func Segment(name string) slog.Attr {
	return slog.String(KeySegment, name)
}

// Route 创建中间件路由属性
func Route(route string) slog.Attr {
	return slog.String(KeyRoute, route)
}

// Method 创建 HTTP 方法属性
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path 创建请求路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}
