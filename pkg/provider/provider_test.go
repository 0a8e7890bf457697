package provider

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/autorider/pkg/cache"
)

type countingLocator struct {
	mu      sync.Mutex
	calls   map[string]int
	answers map[string][]string
	err     error
}

func (l *countingLocator) Locate(_ context.Context, name string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = map[string]int{}
	}
	l.calls[name]++
	if l.err != nil {
		return nil, l.err
	}
	return l.answers[name], nil
}

func newTestResolver(loc Locator, ignore []string, c cache.Cache) *Resolver {
	return NewResolver(loc, ignore, 4, c, log.New(io.Discard))
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		ignore []string
		want   string
		found  bool
	}{
		{"first wins", []string{"zlib.out", "zlib-ng.out"}, nil, "zlib.out", true},
		{"skips blanks", []string{"", "  ", "zlib.out"}, nil, "zlib.out", true},
		{"skips annotations", []string{"(python312Packages.foo.out)", "zlib.out"}, nil, "zlib.out", true},
		{"skips ignored", []string{"pkgsi686Linux.zlib.out", "zlib.out"}, []string{"pkgsi686Linux."}, "zlib.out", true},
		{"nothing left", []string{"", "(x.out)"}, nil, "", false},
		{"no output", nil, nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Select(tt.lines, tt.ignore)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestResolve_Overrides(t *testing.T) {
	loc := &countingLocator{}
	r := newTestResolver(loc, nil, nil)

	for name, want := range Overrides {
		got, found, err := r.Resolve(context.Background(), name)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, got)
	}
	assert.Empty(t, loc.calls, "overrides must not run the locator")
}

func TestResolveAll_Deduplicates(t *testing.T) {
	loc := &countingLocator{answers: map[string][]string{
		"libz.so.1":   {"zlib.out"},
		"libssl.so.3": {"openssl.out"},
	}}
	r := newTestResolver(loc, nil, nil)

	got, err := r.ResolveAll(context.Background(), []string{
		"libz.so.1", "libssl.so.3", "libz.so.1", "libc.so.6", "libmissing.so.1", "libz.so.1",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"libz.so.1":   "zlib.out",
		"libssl.so.3": "openssl.out",
		"libc.so.6":   "stdenv.cc.libc",
	}, map[string]string(got))
	assert.Equal(t, map[string]int{"libz.so.1": 1, "libssl.so.3": 1, "libmissing.so.1": 1}, loc.calls)
}

func TestResolveAll_FailFast(t *testing.T) {
	boom := errors.New("database missing")
	r := newTestResolver(&countingLocator{err: boom}, nil, nil)

	_, err := r.ResolveAll(context.Background(), []string{"libz.so.1"})
	assert.ErrorIs(t, err, boom)
}

func TestResolve_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	loc := &countingLocator{answers: map[string][]string{"libz.so.1": {"zlib.out"}}}

	for range 2 {
		r := newTestResolver(loc, nil, c)
		got, found, err := r.Resolve(context.Background(), "libz.so.1")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "zlib.out", got)
	}
	assert.Equal(t, 1, loc.calls["libz.so.1"])

	// A different ignore list must not reuse the cached answer.
	r := newTestResolver(loc, []string{"zlib"}, c)
	_, found, err := r.Resolve(context.Background(), "libz.so.1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, loc.calls["libz.so.1"])
}

func TestNixLocate(t *testing.T) {
	var gotName string
	var gotArgs []string
	n := &NixLocate{Run: func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("(foo.out)\nzlib.out\n"), nil
	}}

	lines, err := n.Locate(context.Background(), "libz.so.1")
	require.NoError(t, err)
	assert.Equal(t, "nix-locate", gotName)
	assert.Equal(t, "--top-level --no-group --minimal -t r -t x libz.so.1", strings.Join(gotArgs, " "))

	got, found := Select(lines, nil)
	assert.True(t, found)
	assert.Equal(t, "zlib.out", got)
}

func TestNixLocate_Error(t *testing.T) {
	boom := errors.New("exit status 1")
	n := &NixLocate{Run: func(context.Context, string, ...string) ([]byte, error) {
		return nil, boom
	}}
	_, err := n.Locate(context.Background(), "libz.so.1")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "libz.so.1")
}
