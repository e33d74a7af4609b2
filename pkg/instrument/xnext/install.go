package xnext

import (
	"context"
	"fmt"

	"github.com/omeyang/xapm/pkg/agent/xshim"
	"github.com/omeyang/xapm/pkg/util/xfuture"
)

const fetcherName = "getModuleContext"

// Instrument 把 xnext 装到宿主上：注册 Next.js 框架，并按 GetModuleContext 的
// 类型选择 WrapSync 或 WrapAsync 替换它。类型只在这里判断一次。
// 同一宿主重复安装返回 xshim.ErrAlreadyWrapped。
func Instrument(s *xshim.Shim, host *Host) error {
	if s == nil {
		return ErrNilShim
	}
	if host == nil {
		return ErrNilHost
	}

	replacement, err := classifyFetcher(s, host.GetModuleContext)
	if err != nil {
		return err
	}

	s.SetFramework(xshim.FrameworkNext)
	return xshim.Wrap(s, &host.GetModuleContext, fetcherName, func(*xshim.Shim, any) any {
		return replacement
	})
}

// Uninstrument 恢复宿主原来的 GetModuleContext。已装上的拦截层保留。
func Uninstrument(s *xshim.Shim, host *Host) error {
	if s == nil {
		return ErrNilShim
	}
	if host == nil {
		return ErrNilHost
	}
	return xshim.Unwrap(s, &host.GetModuleContext)
}

func classifyFetcher(s *xshim.Shim, fetch any) (any, error) {
	switch f := fetch.(type) {
	case SyncFetcher:
		if f != nil {
			return WrapSync(s, f), nil
		}
	case func(context.Context, FetchParams) (*ModuleContext, error):
		if f != nil {
			return WrapSync(s, f), nil
		}
	case AsyncFetcher:
		if f != nil {
			return WrapAsync(s, f), nil
		}
	case func(context.Context, FetchParams) *xfuture.Future[*ModuleContext]:
		if f != nil {
			return WrapAsync(s, f), nil
		}
	case nil:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedFetcher, fetch)
	}
	return nil, ErrNilFetcher
}

// WrapSync 返回同步的替换函数：调用原函数，为结果装上拦截层后原样返回。
// 原函数返回错误时结果和错误都原样返回，不装拦截层。
func WrapSync(s *xshim.Shim, fetch SyncFetcher) SyncFetcher {
	if fetch == nil {
		return nil
	}
	return func(ctx context.Context, params FetchParams) (*ModuleContext, error) {
		mc, err := fetch(ctx, params)
		if err != nil {
			return mc, err
		}
		installLayer(ctx, s, mc)
		return mc, nil
	}
}

// WrapAsync 返回异步的替换函数：返回的 future 在原 future 结算、
// 拦截层装好之后以相同的结果结算。原 future 为 nil 时返回 nil。
func WrapAsync(s *xshim.Shim, fetch AsyncFetcher) AsyncFetcher {
	if fetch == nil {
		return nil
	}
	return func(ctx context.Context, params FetchParams) *xfuture.Future[*ModuleContext] {
		pending := fetch(ctx, params)
		if pending == nil {
			return nil
		}

		out, resolve, reject := xfuture.New[*ModuleContext]()
		pending.Then(func(mc *ModuleContext, err error) {
			if err != nil {
				reject(err)
				return
			}
			installLayer(ctx, s, mc)
			resolve(mc)
		})
		return out
	}
}

// installLayer 入口表尚未拦截时装上拦截层，检查与替换在沙箱锁内完成。
func installLayer(ctx context.Context, s *xshim.Shim, mc *ModuleContext) {
	if mc == nil || mc.Context == nil {
		return
	}

	installed := false
	mc.Context.SwapEntries(func(t EntryTable) EntryTable {
		if t == nil || IsLayered(t) {
			return t
		}
		installed = true
		return Intercept(s, t)
	})
	if installed {
		if ctx == nil {
			ctx = context.Background()
		}
		s.Logger().Debug(ctx, "middleware interception installed")
	}
}
