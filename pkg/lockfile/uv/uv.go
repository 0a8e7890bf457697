// Package uv enumerates the packages pinned by a uv.lock file.
//
// Each [Package] knows how to materialize its own archives: remote sdists
// and wheels are fetched into the Nix store, local ones are resolved against
// the lockfile directory, and git sources are checked out. Archives are only
// fetched for the scans actually requested.
package uv

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/autorider/pkg/errors"
	"github.com/matzehuels/autorider/pkg/scan"
)

// LockName is the file name of the lockfile inside the project root.
const LockName = "uv.lock"

// Fetcher materializes remote archives and returns local paths.
type Fetcher interface {
	FetchURL(ctx context.Context, url, hash string) (string, error)
	FetchGit(ctx context.Context, url string) (string, error)
}

type lockFile struct {
	Version  int           `toml:"version"`
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name    string  `toml:"name"`
	Version string  `toml:"version"`
	Source  Source  `toml:"source"`
	Sdist   *Sdist  `toml:"sdist"`
	Wheels  []Wheel `toml:"wheels"`
}

// Source records where a package comes from. At most a few fields are set.
type Source struct {
	Registry  string `toml:"registry"`
	Git       string `toml:"git"`
	URL       string `toml:"url"`
	Path      string `toml:"path"`
	Directory string `toml:"directory"`
	Editable  string `toml:"editable"`
	Virtual   string `toml:"virtual"`
}

// Sdist describes a source distribution.
type Sdist struct {
	URL  string `toml:"url"`
	Path string `toml:"path"`
	Hash string `toml:"hash"`
	Size int64  `toml:"size"`
}

// Wheel describes a binary distribution.
type Wheel struct {
	URL      string `toml:"url"`
	Path     string `toml:"path"`
	Filename string `toml:"filename"`
	Hash     string `toml:"hash"`
	Size     int64  `toml:"size"`
}

// fileName returns the wheel's file name, or "" if the entry names none.
func (w Wheel) fileName() string {
	for _, s := range []string{w.URL, w.Path, w.Filename} {
		if s != "" {
			return path.Base(s)
		}
	}
	return ""
}

// Package is one [[package]] entry of the lockfile.
type Package struct {
	name    string
	version string
	Source  Source
	Sdist   *Sdist
	Wheels  []Wheel

	root    string
	fetcher Fetcher
}

// Name returns the package name.
func (p *Package) Name() string { return p.name }

// Version returns the pinned version; virtual workspace roots may have none.
func (p *Package) Version() string { return p.version }

// Load reads root/uv.lock.
func Load(root string, f Fetcher) ([]*Package, error) {
	lockPath := filepath.Join(root, LockName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "no %s in %s", LockName, root)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", lockPath)
	}
	return Parse(data, root, f)
}

// Parse decodes lockfile content. Local paths are resolved against root.
// Packages are returned in lockfile order.
func Parse(data []byte, root string, f Fetcher) ([]*Package, error) {
	var lock lockFile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "decode %s", LockName)
	}

	pkgs := make([]*Package, 0, len(lock.Packages))
	for i, lp := range lock.Packages {
		if lp.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidLock, "package #%d has no name", i+1)
		}
		if err := errors.ValidatePythonPackageName(lp.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLock, err, "package #%d", i+1)
		}
		pkgs = append(pkgs, &Package{
			name:    lp.Name,
			version: lp.Version,
			Source:  lp.Source,
			Sdist:   lp.Sdist,
			Wheels:  lp.Wheels,
			root:    root,
			fetcher: f,
		})
	}
	return pkgs, nil
}

// SelectWheel picks the wheel to scan: the last manylinux wheel in lexical
// order, which is the one built for the newest glibc and CPython.
func SelectWheel(names []string) (string, bool) {
	sorted := append([]string(nil), names...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	for _, name := range sorted {
		if strings.Contains(name, "manylinux") {
			return name, true
		}
	}
	return "", false
}

// Scan materializes the archives the requested scans need and scans them.
func (p *Package) Scan(ctx context.Context, kinds scan.Kind) (*scan.Result, error) {
	var sdistPath, wheelPath string
	var err error

	if kinds.Has(scan.KindBinary) {
		if wheelPath, err = p.wheelArchive(ctx); err != nil {
			return nil, err
		}
	}
	if kinds.Has(scan.KindSource) {
		if sdistPath, err = p.sdistArchive(ctx); err != nil {
			return nil, err
		}
	}
	return scan.Scan(ctx, p.name, sdistPath, wheelPath, kinds)
}

func (p *Package) wheelArchive(ctx context.Context) (string, error) {
	if len(p.Wheels) == 0 {
		return "", nil
	}

	byName := make(map[string]Wheel, len(p.Wheels))
	names := make([]string, 0, len(p.Wheels))
	for _, w := range p.Wheels {
		name := w.fileName()
		if name == "" {
			return "", errors.New(errors.ErrCodeInvalidLock, "%s: wheel entry without url, path or filename", p.name)
		}
		byName[name] = w
		names = append(names, name)
	}

	selected, ok := SelectWheel(names)
	if !ok {
		return "", nil
	}
	w := byName[selected]
	switch {
	case w.URL != "":
		return p.fetchURL(ctx, w.URL, w.Hash)
	case w.Path != "":
		return p.localPath(w.Path), nil
	case p.Source.Path != "":
		return p.localPath(p.Source.Path), nil
	}
	return "", errors.New(errors.ErrCodeInvalidLock, "%s: cannot locate wheel %s", p.name, selected)
}

func (p *Package) sdistArchive(ctx context.Context) (string, error) {
	if s := p.Sdist; s != nil {
		switch {
		case s.URL != "":
			return p.fetchURL(ctx, s.URL, s.Hash)
		case s.Path != "":
			return p.localPath(s.Path), nil
		case p.Source.Path != "":
			return p.localPath(p.Source.Path), nil
		}
		return "", errors.New(errors.ErrCodeInvalidLock, "%s: cannot locate sdist", p.name)
	}

	switch {
	case p.Source.Git != "":
		if p.fetcher == nil {
			return "", errors.New(errors.ErrCodeInternal, "%s: no fetcher configured", p.name)
		}
		dir, err := p.fetcher.FetchGit(ctx, p.Source.Git)
		if err != nil {
			return "", fmt.Errorf("%s: %w", p.name, err)
		}
		return dir, nil
	case p.Source.Directory != "":
		return p.resolve(p.Source.Directory), nil
	case p.Source.Editable != "":
		return p.resolve(p.Source.Editable), nil
	}
	return "", nil
}

func (p *Package) fetchURL(ctx context.Context, url, hash string) (string, error) {
	if p.fetcher == nil {
		return "", errors.New(errors.ErrCodeInternal, "%s: no fetcher configured", p.name)
	}
	archive, err := p.fetcher.FetchURL(ctx, url, hash)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}
	return archive, nil
}

// localPath resolves a lockfile path. Paths of packages from a local
// registry (a directory of archives) are relative to that registry.
func (p *Package) localPath(rel string) string {
	if r := p.Source.Registry; r != "" && (r[0] == '.' || r[0] == '/') {
		rel = filepath.Join(r, rel)
	}
	return p.resolve(rel)
}

func (p *Package) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(p.root, rel)
}
