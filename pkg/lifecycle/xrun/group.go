package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xapm/pkg/observability/xlog"
)

// Group 一组并发任务。任一任务返回错误时取消其余任务。
//
// Go、SetLimit、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一任务出错或 Cancel 时取消。
// ctx 为 nil 时使用 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// SetLimit 限制同时运行的任务数，n < 0 表示不限制。
// 达到上限时 Go 阻塞直到有任务结束。必须在 Go 之前调用。
func (g *Group) SetLimit(n int) {
	g.eg.SetLimit(n)
}

// Go 启动名为 name 的任务。name 仅用于日志。
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "task exited with error",
				slog.String("group", g.opts.name),
				slog.String("task", name),
				xlog.Err(err),
			)
		}
		return err
	})
}

// Wait 等待所有任务结束，返回第一个错误。
//
// 由 Cancel 或父 context 取消引起的 context.Canceled 被过滤：
// 有显式原因（如 *SignalError）时返回原因，否则返回 nil。
// 任务自身返回的 context.Canceled 不过滤。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() == nil {
			return err
		}
		if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return nil
	}
	return err
}

// Cancel 以 cause 取消所有任务。cause 不应包装 context.Canceled。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回任务使用的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Run 在新 Group 中运行 tasks，并在未禁用时监听终止信号。
// 收到信号时取消所有任务并返回 *SignalError；tasks 全部结束后信号监听随之退出。
func Run(ctx context.Context, opts []Option, tasks ...func(ctx context.Context) error) error {
	g, gctx := NewGroup(ctx, opts...)

	sigCtx, stopSignals := context.WithCancel(gctx)
	defer stopSignals()
	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go("signal", func(context.Context) error {
			return g.waitSignal(sigCtx, signals)
		})
	}

	remaining := atomic.Int64{}
	remaining.Store(int64(len(tasks)))
	if len(tasks) == 0 {
		stopSignals()
	}
	for _, task := range tasks {
		g.Go(g.opts.name, func(ctx context.Context) error {
			defer func() {
				if remaining.Add(-1) == 0 {
					stopSignals()
				}
			}()
			if task == nil {
				return ErrNilFunc
			}
			return task(ctx)
		})
	}
	return g.Wait()
}

func (g *Group) waitSignal(ctx context.Context, signals []os.Signal) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	var sig os.Signal
	select {
	case sig = <-testSigChan(ctx):
	case sig = <-sigCh:
	case <-ctx.Done():
		return nil
	}

	g.opts.logger.Info(ctx, "received signal",
		slog.String("group", g.opts.name),
		slog.String("signal", sig.String()),
	)
	g.cancel(&SignalError{Signal: sig})
	return nil
}
