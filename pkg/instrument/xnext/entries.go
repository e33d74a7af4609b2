package xnext

import (
	"context"
	"iter"
	"maps"
	"net/http"
	"slices"
	"sync"

	"github.com/omeyang/xapm/pkg/util/xfuture"
)

//go:generate mockgen -source=entries.go -destination=mock_entries_test.go -package=xnext

// Args 中间件调用参数。
type Args struct {
	Request *http.Request
	// Page 匹配到的页面路径，可为空。
	Page string
	// Params 路由参数。
	Params map[string]string
}

// Result 中间件执行结果。
type Result struct {
	// Response 中间件直接产生的响应，nil 表示继续后续处理。
	Response *http.Response
}

// Handler 中间件处理函数，返回待定结果。
type Handler func(ctx context.Context, args *Args) *xfuture.Future[*Result]

// Descriptor 入口表中的中间件描述符。
type Descriptor struct {
	// Default 中间件入口，可为 nil。
	Default Handler
	// Exports 模块的其他导出（如 config）。
	Exports map[string]any
}

// Clone 浅拷贝：Exports 复制为新 map，值本身共享。nil 返回 nil。
func (d *Descriptor) Clone() *Descriptor {
	if d == nil {
		return nil
	}
	return &Descriptor{
		Default: d.Default,
		Exports: maps.Clone(d.Exports),
	}
}

// EntryTable 模块上下文中的中间件入口表，实现必须并发安全。
type EntryTable interface {
	Get(key string) (*Descriptor, bool)
	// Set 写入描述符，同一 key 重复写入覆盖旧值。
	Set(key string, d *Descriptor) error
	Has(key string) bool
	Delete(key string)
	Len() int
	// All 按 key 排序遍历当前内容的快照。
	All() iter.Seq2[string, *Descriptor]
}

// MapEntryTable 基于 map 的 EntryTable。
type MapEntryTable struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
}

// NewMapEntryTable 创建空入口表。
func NewMapEntryTable() *MapEntryTable {
	return &MapEntryTable{entries: make(map[string]*Descriptor)}
}

func (t *MapEntryTable) Get(key string) (*Descriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.entries[key]
	return d, ok
}

func (t *MapEntryTable) Set(key string, d *Descriptor) error {
	t.mu.Lock()
	t.entries[key] = d
	t.mu.Unlock()
	return nil
}

func (t *MapEntryTable) Has(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key]
	return ok
}

func (t *MapEntryTable) Delete(key string) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}

func (t *MapEntryTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *MapEntryTable) All() iter.Seq2[string, *Descriptor] {
	t.mu.RLock()
	snapshot := maps.Clone(t.entries)
	t.mu.RUnlock()

	return func(yield func(string, *Descriptor) bool) {
		for _, key := range slices.Sorted(maps.Keys(snapshot)) {
			if !yield(key, snapshot[key]) {
				return
			}
		}
	}
}

var _ EntryTable = (*MapEntryTable)(nil)
