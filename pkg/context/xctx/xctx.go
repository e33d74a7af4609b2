package xctx

import (
	"context"
	"errors"
)

// 设计决策: contextKey 使用 string 而非 int+iota，调试时可直接打印 key。
type contextKey string

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")
)

// fieldSetter 一个待注入的字段。
type fieldSetter struct {
	value string
	set   func(context.Context, string) (context.Context, error)
}

// applyOptionalFields 依次注入非空字段，空值跳过。
func applyOptionalFields(ctx context.Context, fields []fieldSetter) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		var err error
		if ctx, err = field.set(ctx, field.value); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func withString(ctx context.Context, key contextKey, value string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, value), nil
}
