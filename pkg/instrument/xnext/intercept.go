package xnext

import (
	"context"
	"iter"
	"net/http"

	"github.com/omeyang/xapm/pkg/agent/xshim"
	"github.com/omeyang/xapm/pkg/observability/xlog"
	"github.com/omeyang/xapm/pkg/util/xfuture"
)

// Layer 装在入口表之上的拦截层。
type Layer interface {
	EntryTable
	// Underlying 返回被拦截的原始入口表。
	Underlying() EntryTable
}

// IsLayered 入口表是否已经是拦截层。
func IsLayered(t EntryTable) bool {
	_, ok := t.(Layer)
	return ok
}

// Intercept 在 t 上装一层拦截：Set 写入的描述符被复制，Default 替换为
// 记录中间件 segment 的版本，其余操作原样转发。t 为 nil 或已是拦截层时原样返回。
func Intercept(s *xshim.Shim, t EntryTable) EntryTable {
	if t == nil || IsLayered(t) {
		return t
	}
	return &tracedEntries{shim: s, under: t}
}

type tracedEntries struct {
	shim  *xshim.Shim
	under EntryTable
}

func (t *tracedEntries) Underlying() EntryTable {
	return t.under
}

// Set 写入被包装的副本，原描述符不变。
func (t *tracedEntries) Set(key string, d *Descriptor) error {
	return t.under.Set(key, t.wrap(key, d))
}

func (t *tracedEntries) Get(key string) (*Descriptor, bool) { return t.under.Get(key) }
func (t *tracedEntries) Has(key string) bool                { return t.under.Has(key) }
func (t *tracedEntries) Delete(key string)                  { t.under.Delete(key) }
func (t *tracedEntries) Len() int                           { return t.under.Len() }

func (t *tracedEntries) All() iter.Seq2[string, *Descriptor] {
	return t.under.All()
}

func (t *tracedEntries) wrap(key string, d *Descriptor) *Descriptor {
	wrapped := d.Clone()
	if wrapped == nil {
		return nil
	}

	name := MiddlewareName(key)
	if wrapped.Default == nil {
		t.shim.Logger().Debug(context.Background(), "middleware has no default handler, not recorded",
			xlog.Route(name),
		)
		return wrapped
	}

	recorded := xshim.Record[*Args, *xfuture.Future[*Result]](
		t.shim, d.Default, "default", middlewareSpec(t.shim, name),
	)
	wrapped.Default = Handler(recorded)
	return wrapped
}

// middlewareSpec span 名称在每次调用时按当前 Metrics 生成，命名空间可热更新。
func middlewareSpec(s *xshim.Shim, name string) xshim.SpecFunc[*Args] {
	return func(_ context.Context, args *Args) xshim.RecordSpec {
		m := s.Metrics()
		var req *http.Request
		if args != nil {
			req = args.Request
		}
		return xshim.RecordSpec{
			Name:    m.Middleware + m.Prefix + name,
			Type:    xshim.TypeMiddleware,
			Request: req,
			Route:   name,
			Promise: true,
		}
	}
}

var _ Layer = (*tracedEntries)(nil)
