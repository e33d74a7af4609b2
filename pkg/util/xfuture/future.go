// Package xfuture 提供只结算一次的待定结果（future）。
//
// 宿主框架的异步操作（获取模块上下文、执行中间件）返回 *Future，
// 调用方可以阻塞等待（Await），也可以注册结算回调（Then/OnSettle）。
// xshim 用 OnSettle 在结果结算时结束 segment。
package xfuture

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPanicked Go 中执行的函数发生 panic。
var ErrPanicked = errors.New("xfuture: function panicked")

// Future 只结算一次的待定结果，零值不可用，使用 New/Resolved/Rejected/Go 创建。
type Future[T any] struct {
	done      chan struct{}
	mu        sync.Mutex
	settled   bool
	value     T
	err       error
	callbacks []func(T, error)
}

// New 创建未结算的 Future，返回 resolve/reject 函数；重复结算被忽略。
func New[T any]() (f *Future[T], resolve func(T), reject func(error)) {
	f = &Future[T]{done: make(chan struct{})}
	resolve = func(v T) { f.settle(v, nil) }
	reject = func(err error) {
		var zero T
		f.settle(zero, err)
	}
	return f, resolve, reject
}

// Resolved 返回已成功结算的 Future。
func Resolved[T any](v T) *Future[T] {
	f, resolve, _ := New[T]()
	resolve(v)
	return f
}

// Rejected 返回已失败结算的 Future。
func Rejected[T any](err error) *Future[T] {
	f, _, reject := New[T]()
	reject(err)
	return f
}

// Go 在新 goroutine 中执行 fn，按其返回值结算。fn 的 panic 转为 ErrPanicked。
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f, resolve, reject := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				reject(fmt.Errorf("%w: %v", ErrPanicked, r))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	}()
	return f
}

func (f *Future[T]) settle(v T, err error) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.value, f.err = v, err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	// 回调在锁外执行，回调内可以再次注册回调。
	// done 在回调之后关闭：Await 返回时已注册的回调都已执行完毕。
	for _, cb := range callbacks {
		cb(v, err)
	}
	close(f.done)
}

// Done 返回结算且已注册回调执行完毕后关闭的 channel。
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled 是否已结算。
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await 阻塞直到结算或 ctx 结束。ctx 结束时返回 ctx.Err()，Future 本身不受影响。
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then 注册结算回调。已结算时在调用方 goroutine 立即执行。
func (f *Future[T]) Then(fn func(T, error)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		fn(f.value, f.err)
		return
	}
	f.callbacks = append(f.callbacks, fn)
	f.mu.Unlock()
}

// OnSettle 注册只关心错误的结算回调。nil Future 视为已成功结算。
func (f *Future[T]) OnSettle(fn func(error)) {
	if fn == nil {
		return
	}
	if f == nil {
		fn(nil)
		return
	}
	f.Then(func(_ T, err error) { fn(err) })
}
