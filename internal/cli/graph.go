package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/autorider/pkg/errors"
	"github.com/matzehuels/autorider/pkg/output"
	"github.com/matzehuels/autorider/pkg/render"
)

const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// graphOptions holds the flags of the graph command.
type graphOptions struct {
	format   string
	detailed bool
	legend   bool
	out      string
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph [package...]",
		Short: "Render written outputs as a package to library to provider diagram",
		Long: `Render packages.json and so-providers.json from the output directory as a
diagram linking each package to the libraries it needs and each library to its
Nix provider. Libraries without a provider are drawn in red.

Pass package names to restrict the diagram to those packages.`,
		Example: `  # Render everything to autorider.nix/graph.svg
  autorider graph

  # Only numpy, as DOT on stdout
  autorider graph numpy --format dot --out -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatSVG, "output format: svg or dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show versions, build systems and build requirements")
	cmd.Flags().BoolVar(&opts.legend, "legend", true, "caption the diagram with edge styles and resolution counts")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file, or - for stdout (default: graph.<format> in the output directory)")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, args []string, opts graphOptions) error {
	if opts.format != formatSVG && opts.format != formatDOT {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q: want svg or dot", opts.format)
	}

	root, err := c.rootDir()
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	dir := c.outputDir(root)
	pkgs, providers, err := output.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, name := range args {
		if _, ok := pkgs[name]; !ok {
			printWarning("%s is not in %s", name, output.PackagesFile)
		}
	}

	dot := render.ToDOT(pkgs, providers, render.Options{Detailed: opts.detailed, Only: args, Legend: opts.legend})
	data := []byte(dot)
	if opts.format == formatSVG {
		if data, err = render.RenderSVG(cmd.Context(), dot); err != nil {
			return err
		}
	}

	if opts.out == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	path := opts.out
	if path == "" {
		path = filepath.Join(dir, "graph."+opts.format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	c.Logger.Debug("rendered graph", "packages", len(pkgs), "format", opts.format)

	printSuccess("Rendered graph")
	printFile(path)
	return nil
}
