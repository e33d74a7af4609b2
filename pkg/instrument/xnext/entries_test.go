package xnext

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xapm/pkg/util/xfuture"
)

func okHandler(context.Context, *Args) *xfuture.Future[*Result] {
	return xfuture.Resolved(&Result{})
}

func TestDescriptor_Clone(t *testing.T) {
	var nilDesc *Descriptor
	assert.Nil(t, nilDesc.Clone())

	d := &Descriptor{Default: okHandler, Exports: map[string]any{"config": "x"}}
	c := d.Clone()
	require.NotSame(t, d, c)
	assert.Equal(t, d.Exports, c.Exports)

	c.Exports["config"] = "y"
	assert.Equal(t, "x", d.Exports["config"], "exports map is copied")

	empty := (&Descriptor{}).Clone()
	assert.Nil(t, empty.Exports)
	assert.Nil(t, empty.Default)
}

func TestMapEntryTable(t *testing.T) {
	table := NewMapEntryTable()
	assert.Equal(t, 0, table.Len())

	b := &Descriptor{Default: okHandler}
	a := &Descriptor{}
	require.NoError(t, table.Set("b", b))
	require.NoError(t, table.Set("a", a))

	got, ok := table.Get("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.True(t, table.Has("a"))
	assert.False(t, table.Has("c"))
	assert.Equal(t, 2, table.Len())

	var keys []string
	for key := range table.All() {
		keys = append(keys, key)
	}
	assert.Equal(t, []string{"a", "b"}, keys)

	keys = keys[:0]
	for key := range table.All() {
		keys = append(keys, key)
		break
	}
	assert.Equal(t, []string{"a"}, keys)

	table.Delete("a")
	assert.False(t, table.Has("a"))
	_, ok = table.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}

func TestSandbox(t *testing.T) {
	sb := NewSandbox(nil)
	require.NotNil(t, sb.Entries())
	assert.IsType(t, &MapEntryTable{}, sb.Entries())

	other := NewMapEntryTable()
	sb.SetEntries(other)
	assert.Same(t, other, sb.Entries())

	got := sb.SwapEntries(func(EntryTable) EntryTable { return nil })
	assert.Nil(t, got)
	assert.Nil(t, sb.Entries())

	sb.SetGlobal("process", "node")
	globals := sb.Globals()
	assert.Equal(t, map[string]any{"process": "node"}, globals)
	globals["process"] = "changed"
	assert.Equal(t, "node", sb.Globals()["process"], "Globals returns a copy")

	var zero Sandbox
	zero.SetGlobal("k", 1)
	assert.Equal(t, 1, zero.Globals()["k"])
}

func TestRunMiddleware(t *testing.T) {
	table := NewMapEntryTable()
	require.NoError(t, table.Set(EntryKey("/ok"), &Descriptor{Default: okHandler}))
	require.NoError(t, table.Set(EntryKey("/bare"), &Descriptor{}))

	f, err := RunMiddleware(context.Background(), table, "/ok", &Args{})
	require.NoError(t, err)
	res, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, res)

	_, err = RunMiddleware(context.Background(), table, "/missing", nil)
	assert.ErrorIs(t, err, ErrNoMiddleware)

	_, err = RunMiddleware(context.Background(), table, "/bare", nil)
	assert.ErrorIs(t, err, ErrNoHandler)
}

func TestHost_Fetch(t *testing.T) {
	mc := &ModuleContext{Context: NewSandbox(nil)}
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fetch   any
		want    *ModuleContext
		wantErr error
	}{
		{"sync", SyncFetcher(func(context.Context, FetchParams) (*ModuleContext, error) { return mc, nil }), mc, nil},
		{"sync unnamed", func(context.Context, FetchParams) (*ModuleContext, error) { return nil, boom }, nil, boom},
		{"async", AsyncFetcher(func(context.Context, FetchParams) *xfuture.Future[*ModuleContext] {
			return xfuture.Resolved(mc)
		}), mc, nil},
		{"async unnamed", func(context.Context, FetchParams) *xfuture.Future[*ModuleContext] {
			return xfuture.Rejected[*ModuleContext](boom)
		}, nil, boom},
		{"async nil future", AsyncFetcher(func(context.Context, FetchParams) *xfuture.Future[*ModuleContext] {
			return nil
		}), nil, nil},
		{"nil", nil, nil, ErrNilFetcher},
		{"typed nil", SyncFetcher(nil), nil, ErrNilFetcher},
		{"unsupported", func() {}, nil, ErrUnsupportedFetcher},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &Host{GetModuleContext: tt.fetch}
			got, err := host.Fetch(context.Background(), FetchParams{ModuleName: "middleware"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}
