package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/autorider/pkg/output"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds versions and build systems to package labels.
	Detailed bool
	// Only limits the diagram to the named packages. Empty means all.
	Only []string
	// Legend adds a caption explaining edge styles and counting resolved
	// sonames.
	Legend bool
}

const (
	pkgPrefix      = "pkg:"
	sonamePrefix   = "so:"
	providerPrefix = "nix:"
)

// ToDOT converts outputs to Graphviz DOT. Output is deterministic: nodes and
// edges are emitted in sorted order.
func ToDOT(pkgs output.Packages, providers output.Providers, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	names := selected(pkgs, opts.Only)
	type edge struct {
		from, to string
		dashed   bool
	}
	var edges []edge
	sonames := map[string]bool{}

	for _, name := range names {
		entry := pkgs[name]
		fmt.Fprintf(&buf, "  %q [label=%q, shape=box, style=\"rounded,filled\", fillcolor=white];\n",
			pkgPrefix+name, pkgLabel(name, entry, opts.Detailed))

		wheel, sdist := map[string]bool{}, map[string]bool{}
		for _, rec := range entry.Records() {
			for _, so := range rec.WheelDepends {
				wheel[so] = true
			}
			for _, so := range rec.SdistDepends {
				sdist[so] = true
			}
		}
		for _, so := range slices.Sorted(maps.Keys(wheel)) {
			edges = append(edges, edge{pkgPrefix + name, sonamePrefix + so, false})
			sonames[so] = true
		}
		for _, so := range slices.Sorted(maps.Keys(sdist)) {
			if wheel[so] {
				continue
			}
			edges = append(edges, edge{pkgPrefix + name, sonamePrefix + so, true})
			sonames[so] = true
		}
	}

	buf.WriteString("\n")
	usedProviders := map[string]bool{}
	for _, so := range slices.Sorted(maps.Keys(sonames)) {
		attrs := []string{fmt.Sprintf("label=%q", so), "shape=ellipse"}
		if p, ok := providers[so]; ok {
			edges = append(edges, edge{sonamePrefix + so, providerPrefix + p, false})
			usedProviders[p] = true
		} else {
			attrs = append(attrs, "color=red", "fontcolor=red")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", sonamePrefix+so, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, p := range slices.Sorted(maps.Keys(usedProviders)) {
		fmt.Fprintf(&buf, "  %q [label=%q, shape=tab, style=filled, fillcolor=lightblue];\n", providerPrefix+p, p)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if e.dashed {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.from, e.to)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
		}
	}

	if opts.Legend {
		buf.WriteString("\n")
		fmt.Fprintf(&buf, "  label=%q;\n", legend(len(sonames), resolved(sonames, providers)))
		buf.WriteString("  labelloc=\"b\";\n")
		buf.WriteString("  fontsize=10;\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func selected(pkgs output.Packages, only []string) []string {
	if len(only) == 0 {
		return slices.Sorted(maps.Keys(pkgs))
	}
	var names []string
	for _, name := range only {
		if _, ok := pkgs[name]; ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func pkgLabel(name string, entry output.Entry, detailed bool) string {
	if !detailed {
		return name
	}

	var parts []string
	for _, rec := range entry.Records() {
		if rec.Version != "" {
			parts = append(parts, "version: "+rec.Version)
		}
		if len(rec.BuildSystems) > 0 {
			parts = append(parts, "build: "+strings.Join(rec.BuildSystems, ", "))
		}
		if len(rec.BuildRequires) > 0 {
			parts = append(parts, "tools: "+strings.Join(rec.BuildRequires, ", "))
		}
	}
	if len(parts) == 0 {
		return name
	}
	return name + "\n" + strings.Join(slices.Compact(parts), "\n")
}

func resolved(sonames map[string]bool, providers output.Providers) int {
	n := 0
	for so := range sonames {
		if _, ok := providers[so]; ok {
			n++
		}
	}
	return n
}

func legend(total, found int) string {
	return fmt.Sprintf("solid: linked by wheel   dashed: needed by sdist build   red: no provider\n%d of %d sonames resolved",
		found, total)
}
