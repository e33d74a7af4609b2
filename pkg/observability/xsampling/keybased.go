package xsampling

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xapm/pkg/context/xctx"
)

// KeyFunc 从 context 中提取采样 key。返回空字符串时回退到随机采样。
type KeyFunc func(ctx context.Context) string

// RouteKey 优先使用 trace_id，保证同一链路上的所有中间件一起采样；
// trace_id 依次取自 xctx 与 ctx 中的 span（如入站 traceparent 的远端父 span），
// 都没有时使用中间件路由。
func RouteKey(ctx context.Context) string {
	if id := xctx.TraceID(ctx); id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return xctx.Route(ctx)
}

// KeyBasedSampler 基于 key 的一致性采样：相同 key 在相同 rate 下决策相同。
type KeyBasedSampler struct {
	rate    float64
	keyFunc KeyFunc
}

// NewKeyBasedSampler 创建基于 key 的一致性采样器。
// rate 取值 [0.0, 1.0]，keyFunc 不能为 nil。
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	return &KeyBasedSampler{rate: rate, keyFunc: keyFunc}, nil
}

// ShouldSample 判断是否采样
func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}

	var key string
	if ctx != nil {
		key = s.keyFunc(ctx)
	}
	if key == "" {
		return randomFloat64() < s.rate
	}

	normalized := float64(xxhash.Sum64String(key)) / float64(math.MaxUint64)
	return normalized < s.rate
}

// Rate 返回采样比率
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}

var _ Sampler = (*KeyBasedSampler)(nil)
