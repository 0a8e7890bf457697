package render

import (
	"bytes"
	"context"
	"regexp"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/autorider/pkg/errors"
)

// RenderSVG lays out a DOT graph with Graphviz and returns an SVG that
// scales with its container.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "start graphviz")
	}
	defer gv.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return scalable(buf.Bytes()), nil
}

// fixedSize matches the point sizes Graphviz puts on the root element.
var fixedSize = regexp.MustCompile(`\s(?:width|height)="[0-9.]+pt"`)

// scalable drops width and height from the root <svg> element only, leaving
// its viewBox to size the drawing. Nested elements are untouched.
func scalable(svg []byte) []byte {
	start := bytes.Index(svg, []byte("<svg"))
	if start < 0 {
		return svg
	}
	end := bytes.IndexByte(svg[start:], '>')
	if end < 0 {
		return svg
	}
	end += start

	out := make([]byte, 0, len(svg))
	out = append(out, svg[:start]...)
	out = append(out, fixedSize.ReplaceAll(svg[start:end], nil)...)
	return append(out, svg[end:]...)
}
