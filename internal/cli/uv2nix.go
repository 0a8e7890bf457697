package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autorider/pkg/config"
	"github.com/matzehuels/autorider/pkg/fetch"
	"github.com/matzehuels/autorider/pkg/lockfile/uv"
	"github.com/matzehuels/autorider/pkg/output"
	"github.com/matzehuels/autorider/pkg/process"
	"github.com/matzehuels/autorider/pkg/provider"
)

// uv2nixCommand creates the uv2nix command.
func (c *CLI) uv2nixCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uv2nix",
		Short: "Scan uv.lock packages and write packages.json and so-providers.json",
		Long: `Scan every package pinned by uv.lock in the project root.

Wheels are inspected for the shared libraries their extension modules link
against, sdists for their PEP 517 build requirements and the libraries their
bundled wheels need. Every library is then mapped to the nixpkgs attribute
that provides it using nix-locate.

Which packages are scanned and which outputs are produced is configured in
the [tool.autorider] table of pyproject.toml.`,
		Example: `  # Scan the project in the current directory
  autorider uv2nix

  # Use a different project and output directory
  autorider uv2nix --root ../service -o nix/overlay

  # Share lookups with other machines
  autorider uv2nix --cache-url redis://cache:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUv2nix(cmd.Context())
		},
	}
}

func (c *CLI) runUv2nix(ctx context.Context) error {
	logger, runID := runLogger(c.Logger)
	prog := newProgress(logger)

	root, err := c.rootDir()
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	load := config.Load
	if c.opts.config != "" {
		load = config.LoadFile
	}
	cfg, err := load(c.configPath(root))
	if err != nil {
		return err
	}

	store, err := c.newCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	locked, err := uv.Load(root, fetch.NewNix(store, logger))
	if err != nil {
		return err
	}
	pkgs := make([]process.Package, len(locked))
	for i, p := range locked {
		pkgs[i] = p
	}
	logger.Debug("loaded lockfile", "root", root, "packages", len(pkgs))

	var view *progressView
	if !c.Verbose() {
		view = startProgressView()
	}
	defer func() { view.stop() }()

	entries, err := process.NewProcessor(cfg, c.workers(), logger).Process(ctx, pkgs)
	if err != nil {
		return err
	}

	sonames := process.Sonames(entries)
	providers, err := provider.NewResolver(c.nixLocator(), cfg.NixLocateIgnore, c.workers(), store, logger).
		ResolveAll(ctx, sonames)
	if err != nil {
		return err
	}
	view.stop()
	view = nil

	paths, err := output.WriteDir(c.outputDir(root), entries, providers)
	if err != nil {
		return err
	}
	prog.done("uv2nix finished", "packages", len(entries), "sonames", len(sonames))

	printSuccess("Wrote overlay inputs")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(entries), len(sonames), len(providers))
	if missing := len(sonames) - len(providers); missing > 0 {
		printWarning("%d sonames have no provider", missing)
		printNextStep("Inspect them", "autorider graph")
	}
	printDetail("Run: %s", runID)
	return nil
}

// nixLocator returns the locator used to resolve providers.
func (c *CLI) nixLocator() provider.Locator {
	if c.locator != nil {
		return c.locator
	}
	return &provider.NixLocate{}
}
