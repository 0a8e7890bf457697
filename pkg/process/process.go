package process

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/autorider/pkg/config"
	"github.com/matzehuels/autorider/pkg/observability"
	"github.com/matzehuels/autorider/pkg/output"
	"github.com/matzehuels/autorider/pkg/postproc"
	"github.com/matzehuels/autorider/pkg/scan"
)

// Package is one artifact pinned by a lockfile.
type Package interface {
	Name() string
	// Version may be empty when the lockfile does not pin one.
	Version() string
	// Scan runs the requested scans against the package's archives.
	Scan(ctx context.Context, kinds scan.Kind) (*scan.Result, error)
}

// Processor turns packages into output records.
type Processor struct {
	Config  *config.Config
	Workers int
	Logger  *log.Logger
}

// NewProcessor creates a processor. A nil config means [config.Default],
// workers <= 0 means GOMAXPROCS and a nil logger means log.Default().
func NewProcessor(cfg *config.Config, workers int, logger *log.Logger) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Processor{Config: cfg, Workers: workers, Logger: logger}
}

// ProcessPackage scans pkg and applies its enabled post-processors. A package
// with every post-processor disabled yields an empty record without scanning.
func (p *Processor) ProcessPackage(ctx context.Context, pkg Package) (output.Record, error) {
	name := pkg.Name()
	kinds := p.Config.Enabled(name)
	p.Logger.Debug("processing package", "name", name, "outputs", kinds)

	var rec output.Record
	if len(kinds) == 0 {
		return rec, nil
	}
	rec.Version = pkg.Version()

	needed := postproc.Needed(kinds)
	p.Logger.Info("scanning package", "name", name, "version", rec.Version, "scans", needed)

	start := time.Now()
	observability.Scan().OnScanStart(ctx, name, rec.Version)
	res, err := pkg.Scan(ctx, needed)
	observability.Scan().OnScanComplete(ctx, name, rec.Version, time.Since(start), err)
	if err != nil {
		return output.Record{}, fmt.Errorf("package %s: %w", name, err)
	}

	postproc.Run(kinds, res, &rec)
	return rec, nil
}

// Process runs every selected package and aggregates the records by name.
func (p *Processor) Process(ctx context.Context, pkgs []Package) (output.Packages, error) {
	var selected []Package
	for _, pkg := range pkgs {
		if p.Config.Selected(pkg.Name()) {
			selected = append(selected, pkg)
		} else {
			p.Logger.Debug("skipping package", "name", pkg.Name())
		}
	}
	observability.Scan().OnQueued(ctx, len(selected))

	records := make([]output.Record, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())
	for i, pkg := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := p.ProcessPackage(gctx, pkg)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, len(selected))
	for i, pkg := range selected {
		names[i] = pkg.Name()
	}
	return Aggregate(names, records), nil
}

func (p *Processor) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Aggregate groups records by the parallel names slice. Names seen once keep
// a single record without its version; names seen several times keep every
// versioned record in input order. Empty entries are dropped.
func Aggregate(names []string, records []output.Record) output.Packages {
	grouped := make(map[string][]output.Record)
	for i, name := range names {
		grouped[name] = append(grouped[name], records[i])
	}

	out := make(output.Packages, len(grouped))
	for name, recs := range grouped {
		var entry output.Entry
		if len(recs) == 1 {
			rec := recs[0]
			rec.Version = ""
			entry = output.SingleEntry(rec)
		} else {
			entry = output.MultipleEntry(recs)
		}
		if !entry.IsEmpty() {
			out[name] = entry
		}
	}
	return out
}

// Sonames returns every distinct soname referenced by pkgs, sorted.
func Sonames(pkgs output.Packages) []string {
	seen := scan.Set{}
	for _, entry := range pkgs {
		for _, rec := range entry.Records() {
			for _, so := range rec.Sonames() {
				seen.Add(so)
			}
		}
	}
	return seen.Sorted()
}
