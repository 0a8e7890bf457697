// Package provider maps sonames to the Nix attributes that provide them.
//
// Toolchain libraries resolve through a fixed override table. Every other
// name is looked up with a [Locator], normally nix-locate, and the first
// acceptable attribute path wins. [Resolver.ResolveAll] looks each distinct
// name up once, concurrently.
package provider

import (
	"context"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/autorider/pkg/cache"
	"github.com/matzehuels/autorider/pkg/observability"
	"github.com/matzehuels/autorider/pkg/output"
)

// Overrides are sonames provided by the build toolchain itself.
var Overrides = map[string]string{
	"libgcc_s.so.1":  "stdenv.cc.cc",
	"libstdc++.so.6": "stdenv.cc.libc",
	"libm.so.6":      "stdenv.cc.libc",
	"libc.so.6":      "stdenv.cc.libc",
}

// cacheTTL bounds how long a located provider is trusted.
const cacheTTL = 7 * 24 * time.Hour

// Locator returns candidate attribute paths for a file name, best first.
type Locator interface {
	Locate(ctx context.Context, name string) ([]string, error)
}

// LocatorFunc adapts a function to [Locator].
type LocatorFunc func(ctx context.Context, name string) ([]string, error)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context, name string) ([]string, error) {
	return f(ctx, name)
}

// annotation matches lines such as "(python312Packages.foo.out)" that
// nix-locate prints for indirect matches.
var annotation = regexp.MustCompile(`^\(.*\)$`)

// Select returns the first line that is not blank, not an annotation and does
// not start with one of the ignored prefixes.
func Select(lines []string, ignore []string) (string, bool) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || annotation.MatchString(line) || hasPrefix(line, ignore) {
			continue
		}
		return line, true
	}
	return "", false
}

func hasPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Resolver resolves sonames to providers.
type Resolver struct {
	Locator Locator
	// Ignore lists attribute prefixes never chosen as providers.
	Ignore  []string
	Workers int
	// Cache stores located providers between runs. Nil disables caching.
	Cache  cache.Cache
	Logger *log.Logger
}

// NewResolver creates a resolver backed by locator.
func NewResolver(locator Locator, ignore []string, workers int, c cache.Cache, logger *log.Logger) *Resolver {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{Locator: locator, Ignore: ignore, Workers: workers, Cache: c, Logger: logger}
}

// Resolve returns the provider of name. Found is false when no acceptable
// attribute exists.
func (r *Resolver) Resolve(ctx context.Context, name string) (provider string, found bool, err error) {
	if p, ok := Overrides[name]; ok {
		return p, true, nil
	}

	key := r.cacheKey(name)
	if r.Cache != nil {
		if hit, err := cache.GetJSON(ctx, r.Cache, "provider", key, &provider); err == nil && hit {
			r.logger().Debug("provider cache hit", "soname", name, "provider", provider)
			return provider, true, nil
		}
	}

	r.logger().Debug("running nix-locate", "soname", name)
	lines, err := r.Locator.Locate(ctx, name)
	if err != nil {
		return "", false, err
	}
	provider, found = Select(lines, r.Ignore)
	if found && r.Cache != nil {
		if err := cache.SetJSON(ctx, r.Cache, "provider", key, provider, cacheTTL); err != nil {
			r.logger().Warn("failed to cache provider", "soname", name, "error", err)
		}
	}
	return provider, found, nil
}

// cacheKey includes the ignore list since it changes the answer.
func (r *Resolver) cacheKey(name string) string {
	return cache.Key("provider", name, r.Ignore)
}

// ResolveAll resolves every distinct name. Names without a provider are
// omitted from the result. The first locator failure aborts the lookup.
func (r *Resolver) ResolveAll(ctx context.Context, names []string) (output.Providers, error) {
	unique := dedupe(names)
	observability.Lookup().OnQueued(ctx, len(unique))

	var mu sync.Mutex
	providers := make(output.Providers, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for _, name := range unique {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			observability.Lookup().OnLookupStart(gctx, name)
			provider, found, err := r.Resolve(gctx, name)
			observability.Lookup().OnLookupComplete(gctx, name, provider, time.Since(start), err)
			if err != nil {
				return err
			}
			if !found {
				r.logger().Warn("no provider found", "soname", name)
				return nil
			}
			mu.Lock()
			providers[name] = provider
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *Resolver) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
