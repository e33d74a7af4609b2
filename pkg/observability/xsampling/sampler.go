package xsampling

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Sampler 采样策略接口，返回 true 表示应该采样。
type Sampler interface {
	ShouldSample(ctx context.Context) bool
}

type alwaysSampler struct{}

// Always 返回全采样策略
func Always() Sampler { return alwaysSampler{} }

func (alwaysSampler) ShouldSample(context.Context) bool { return true }

type neverSampler struct{}

// Never 返回不采样策略
func Never() Sampler { return neverSampler{} }

func (neverSampler) ShouldSample(context.Context) bool { return false }

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}

const floatScale = 1.0 / (1 << 53)

// randomFloat64 返回 [0.0, 1.0) 的随机数；熵源不可用属于系统级故障，直接 panic。
func randomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("xsampling: crypto/rand.Read failed: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) * floatScale
}
