// Package config loads the autorider table of a TOML file: [tool.autorider]
// in a project's pyproject.toml, or a top-level [autorider] table in a
// standalone config file. A file setting both is rejected.
//
// Every key is optional. A missing pyproject.toml yields [Default]; a missing
// file named explicitly is an error ([LoadFile]). Unknown keys, wrong
// types and malformed glob patterns are rejected up front so a typo never
// silently changes what is scanned.
package config

import (
	"fmt"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar"

	"github.com/matzehuels/autorider/pkg/errors"
	"github.com/matzehuels/autorider/pkg/postproc"
)

// Outputs toggles each post-processor. All default to true.
type Outputs struct {
	BuildSystems  bool `toml:"build-systems"`
	WheelDepends  bool `toml:"wheel-depends-so"`
	SdistDepends  bool `toml:"sdist-depends-so"`
	BuildRequires bool `toml:"build-requires"`
}

// PackageOutputs overrides [Outputs] for one package. Nil fields inherit.
type PackageOutputs struct {
	BuildSystems  *bool `toml:"build-systems"`
	WheelDepends  *bool `toml:"wheel-depends-so"`
	SdistDepends  *bool `toml:"sdist-depends-so"`
	BuildRequires *bool `toml:"build-requires"`
}

// Config is the decoded autorider table.
type Config struct {
	// Include lists glob patterns of package names to process.
	Include []string `toml:"include"`
	// Exclude lists glob patterns of package names to skip, applied after Include.
	Exclude []string `toml:"exclude"`
	// Outputs are the default post-processor toggles.
	Outputs Outputs `toml:"outputs"`
	// Packages holds per-package overrides of Outputs.
	Packages map[string]PackageOutputs `toml:"packages"`
	// NixLocateIgnore lists attribute prefixes never chosen as providers.
	NixLocateIgnore []string `toml:"nix-locate-ignore"`
}

// Default returns the configuration used when no table is present.
func Default() *Config {
	return &Config{
		Include: []string{"*"},
		Outputs: Outputs{
			BuildSystems:  true,
			WheelDepends:  true,
			SdistDepends:  true,
			BuildRequires: true,
		},
		Packages: map[string]PackageOutputs{},
	}
}

type document struct {
	Autorider *Config `toml:"autorider"`
	Tool      struct {
		Autorider *Config `toml:"autorider"`
	} `toml:"tool"`
}

// Load reads the configuration from the pyproject.toml at path. A missing
// file yields [Default].
func Load(path string) (*Config, error) {
	return load(path, false)
}

// LoadFile is [Load] for a path the user named: a missing file is
// FILE_NOT_FOUND instead of falling back to defaults.
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, required bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if required {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML content holding a [tool.autorider] or a top-level
// [autorider] table. Other tables are ignored.
func Parse(data []byte) (*Config, error) {
	doc := document{Autorider: Default()}
	doc.Tool.Autorider = Default()

	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	for _, key := range md.Undecoded() {
		if isOwnKey(key) {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", key.String())
		}
	}

	top, tool := md.IsDefined("autorider"), md.IsDefined("tool", "autorider")
	if top && tool {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "both [autorider] and [tool.autorider] are set")
	}
	cfg := doc.Tool.Autorider
	if top {
		cfg = doc.Autorider
	}
	if cfg.Packages == nil {
		cfg.Packages = map[string]PackageOutputs{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isOwnKey(key toml.Key) bool {
	switch {
	case len(key) > 0 && key[0] == "autorider":
		return true
	case len(key) > 1 && key[0] == "tool" && key[1] == "autorider":
		return true
	}
	return false
}

// Validate checks every glob pattern.
func (c *Config) Validate() error {
	for _, p := range slices.Concat(c.Include, c.Exclude) {
		if _, err := path.Match(p, ""); err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid pattern %q", p)
		}
		if _, err := doublestar.Match(p, p); err != nil {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid pattern %q", p)
		}
	}
	for _, prefix := range c.NixLocateIgnore {
		if strings.TrimSpace(prefix) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "empty nix-locate-ignore prefix")
		}
	}
	return nil
}

// Selected reports whether the package name passes include and exclude.
func (c *Config) Selected(name string) bool {
	return matchAny(c.Include, name) && !matchAny(c.Exclude, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Enabled returns the post-processors enabled for name, in application order.
func (c *Config) Enabled(name string) []postproc.Kind {
	out := c.Outputs
	if o, ok := c.Packages[name]; ok {
		out = o.merge(out)
	}

	var kinds []postproc.Kind
	for _, k := range postproc.All {
		if out.enabled(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (o Outputs) enabled(k postproc.Kind) bool {
	switch k {
	case postproc.BuildSystems:
		return o.BuildSystems
	case postproc.WheelDepends:
		return o.WheelDepends
	case postproc.SdistDepends:
		return o.SdistDepends
	case postproc.BuildRequires:
		return o.BuildRequires
	}
	return false
}

func (p PackageOutputs) merge(base Outputs) Outputs {
	pick := func(v *bool, def bool) bool {
		if v == nil {
			return def
		}
		return *v
	}
	return Outputs{
		BuildSystems:  pick(p.BuildSystems, base.BuildSystems),
		WheelDepends:  pick(p.WheelDepends, base.WheelDepends),
		SdistDepends:  pick(p.SdistDepends, base.SdistDepends),
		BuildRequires: pick(p.BuildRequires, base.BuildRequires),
	}
}
