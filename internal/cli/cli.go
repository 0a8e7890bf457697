// Package cli implements the autorider command-line interface.
//
// # Commands
//
//   - uv2nix: scan every package of uv.lock and write the overlay inputs
//   - graph: render the written outputs as an SVG or DOT diagram
//   - cache: inspect or clear the lookup cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Each uv2nix
// run tags its log lines with a short run id so interleaved output from
// concurrent workers can be attributed.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autorider/pkg/buildinfo"
	"github.com/matzehuels/autorider/pkg/cache"
	"github.com/matzehuels/autorider/pkg/provider"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "autorider"

	// defaultOutput is the overlay directory, relative to --root.
	defaultOutput = "autorider.nix"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	opts options

	// locator overrides nix-locate; set by tests.
	locator provider.Locator
}

// options are the persistent flags shared by every command.
type options struct {
	verbose  bool
	root     string
	config   string
	output   string
	jobs     int
	noCache  bool
	cacheURL string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Verbose reports whether --verbose was given.
func (c *CLI) Verbose() bool { return c.opts.verbose }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	buildinfo.Resolve()

	root := &cobra.Command{
		Use:   appName,
		Short: "autorider derives Nix build inputs from Python lockfiles",
		Long: `autorider scans the wheels and sdists pinned by a Python lockfile for the
native libraries they link against and the build systems they need, and maps
every library to the nixpkgs attribute that provides it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	cwd, _ := os.Getwd()
	flags := root.PersistentFlags()
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.opts.root, "root", cwd, "path to project root")
	flags.StringVar(&c.opts.config, "config", "", "path to TOML config (defaults to $root/pyproject.toml)")
	flags.StringVarP(&c.opts.output, "output", "o", defaultOutput, "overlay output directory")
	flags.IntVarP(&c.opts.jobs, "jobs", "j", 0, "concurrent workers (default: number of CPUs)")
	flags.BoolVar(&c.opts.noCache, "no-cache", false, "disable the lookup cache")
	flags.StringVar(&c.opts.cacheURL, "cache-url", "", "shared cache (redis://host:port/db) instead of the local one")

	// Register all subcommands
	root.AddCommand(c.uv2nixCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

// rootDir returns the absolute project root.
func (c *CLI) rootDir() (string, error) {
	return filepath.Abs(c.opts.root)
}

// configPath returns --config, or pyproject.toml in the project root.
func (c *CLI) configPath(root string) string {
	if c.opts.config != "" {
		return c.opts.config
	}
	return filepath.Join(root, "pyproject.toml")
}

// outputDir resolves --output against the project root.
func (c *CLI) outputDir(root string) string {
	if filepath.IsAbs(c.opts.output) {
		return c.opts.output
	}
	return filepath.Join(root, c.opts.output)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/autorider/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the cache selected by the flags. An unusable local cache
// directory disables caching rather than failing the run.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.opts.noCache {
		return cache.NewNullCache(), nil
	}
	if c.opts.cacheURL != "" {
		return cache.NewRedisCache(ctx, c.opts.cacheURL, appName+":")
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// workers returns --jobs, where zero lets each stage pick its default.
func (c *CLI) workers() int {
	if c.opts.jobs < 0 {
		return 0
	}
	return c.opts.jobs
}
