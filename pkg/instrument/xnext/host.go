package xnext

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/omeyang/xapm/pkg/util/xfuture"
)

// FetchParams getModuleContext 的参数。
type FetchParams struct {
	ModuleName string
	DistDir    string
	UseCache   bool
	Env        []string
}

// ModuleContext getModuleContext 的返回值，归宿主所有。
type ModuleContext struct {
	// Context 模块运行的沙箱，持有中间件入口表。
	Context *Sandbox
	// Paths 模块文件路径。
	Paths map[string]string
	// Runtime 宿主运行时句柄，原样透传。
	Runtime any
}

// SyncFetcher 同步的 getModuleContext。
type SyncFetcher func(ctx context.Context, params FetchParams) (*ModuleContext, error)

// AsyncFetcher 返回待定结果的 getModuleContext。
type AsyncFetcher func(ctx context.Context, params FetchParams) *xfuture.Future[*ModuleContext]

// Host 宿主框架中被插桩的部分。
type Host struct {
	// GetModuleContext 为 SyncFetcher 或 AsyncFetcher
	// （或与之相同签名的未命名函数类型）。
	GetModuleContext any
}

// Fetch 调用 GetModuleContext，异步版本等待其结算。
func (h *Host) Fetch(ctx context.Context, params FetchParams) (*ModuleContext, error) {
	switch fetch := h.GetModuleContext.(type) {
	case SyncFetcher:
		if fetch != nil {
			return fetch(ctx, params)
		}
	case func(context.Context, FetchParams) (*ModuleContext, error):
		if fetch != nil {
			return fetch(ctx, params)
		}
	case AsyncFetcher:
		if fetch != nil {
			return awaitModule(ctx, fetch(ctx, params))
		}
	case func(context.Context, FetchParams) *xfuture.Future[*ModuleContext]:
		if fetch != nil {
			return awaitModule(ctx, fetch(ctx, params))
		}
	case nil:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedFetcher, fetch)
	}
	return nil, ErrNilFetcher
}

func awaitModule(ctx context.Context, f *xfuture.Future[*ModuleContext]) (*ModuleContext, error) {
	if f == nil {
		return nil, nil
	}
	return f.Await(ctx)
}

// Sandbox 模块沙箱，入口表的所有者。
type Sandbox struct {
	mu      sync.Mutex
	entries EntryTable
	globals map[string]any
}

// NewSandbox 创建沙箱，entries 为 nil 时使用空的 MapEntryTable。
func NewSandbox(entries EntryTable) *Sandbox {
	if entries == nil {
		entries = NewMapEntryTable()
	}
	return &Sandbox{entries: entries, globals: make(map[string]any)}
}

// Entries 返回当前入口表。
func (s *Sandbox) Entries() EntryTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

// SetEntries 替换入口表。
func (s *Sandbox) SetEntries(t EntryTable) {
	s.mu.Lock()
	s.entries = t
	s.mu.Unlock()
}

// SwapEntries 在锁内以 fn(当前入口表) 替换入口表并返回新表。
// 检查与替换是原子的，并发的 SwapEntries 依次看到彼此的结果。
func (s *Sandbox) SwapEntries(fn func(EntryTable) EntryTable) EntryTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = fn(s.entries)
	return s.entries
}

// Globals 返回沙箱全局变量的副本。
func (s *Sandbox) Globals() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.globals)
}

// SetGlobal 设置沙箱全局变量。
func (s *Sandbox) SetGlobal(key string, value any) {
	s.mu.Lock()
	if s.globals == nil {
		s.globals = make(map[string]any)
	}
	s.globals[key] = value
	s.mu.Unlock()
}

// RunMiddleware 以宿主的方式执行路由对应的中间件：
// 从入口表取出描述符并调用其 Default。
func RunMiddleware(ctx context.Context, entries EntryTable, route string, args *Args) (*xfuture.Future[*Result], error) {
	d, ok := entries.Get(EntryKey(route))
	if !ok || d == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMiddleware, route)
	}
	if d.Default == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, route)
	}
	return d.Default(ctx, args), nil
}
