// Package render draws autorider's outputs as a node-link diagram.
//
// # Overview
//
// [ToDOT] converts packages.json and so-providers.json into Graphviz DOT
// source with three kinds of nodes:
//
//   - packages (rounded boxes)
//   - sonames they link against (ellipses)
//   - the Nix attributes providing those sonames (tabs)
//
// Solid edges come from wheel-depends-so, dashed edges from
// sdist-depends-so. Sonames without a provider are drawn in red, which is
// usually the first thing to look at when an overlay fails to build.
//
// # Usage
//
//	dot := render.ToDOT(pkgs, providers, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package render
