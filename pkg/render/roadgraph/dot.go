package roadgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

// Options configures DOT generation.
type Options struct {
	// Labels shows "row,col" inside each node instead of leaving it blank.
	Labels bool

	// PathOnly omits road edges that are not part of the path.
	PathOnly bool
}

const (
	pathColor  = "#ad372b"
	roadColor  = "#b0b0b0"
	startColor = "#e1c927"
)

func nodeID(c grid.Coord) string { return fmt.Sprintf("c%d_%d", c.Row, c.Col) }

// ToDOT converts the road cells of g to an undirected Graphviz graph. Edges
// between consecutive path cells are highlighted.
func ToDOT(g *grid.Grid, p []grid.Coord, opts Options) string {
	onPath := make(map[[2]grid.Coord]bool, len(p))
	for i := 1; i < len(p); i++ {
		onPath[[2]grid.Coord{p[i-1], p[i]}] = true
		onPath[[2]grid.Coord{p[i], p[i-1]}] = true
	}
	var start grid.Coord
	if len(p) > 0 {
		start = p[0]
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=square, style=filled, fillcolor=black, fontcolor=white, fontsize=10, width=0.3, fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=1];\n", roadColor)
	buf.WriteString("  ranksep=0.2;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for r := range g.Rows() {
		var row []grid.Coord
		for c := range g.Cols() {
			if cc := (grid.Coord{Row: r, Col: c}); g.Road(cc) {
				row = append(row, cc)
			}
		}
		if len(row) == 0 {
			continue
		}
		buf.WriteString("  { rank=same;")
		for _, c := range row {
			fmt.Fprintf(&buf, " %s", nodeID(c))
		}
		buf.WriteString(" }\n")
		for _, c := range row {
			label := ""
			if opts.Labels {
				label = fmt.Sprintf("%d,%d", c.Row, c.Col)
			}
			attrs := fmt.Sprintf("label=%q", label)
			if len(p) > 0 && c == start {
				attrs += fmt.Sprintf(", fillcolor=%q, fontcolor=black", startColor)
			}
			fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(c), attrs)
		}
	}

	buf.WriteString("\n")
	g.Each(func(c grid.Coord) {
		// right and down only, so each undirected edge is written once
		for _, d := range grid.Directions[:2] {
			n := c.Add(d)
			if !g.Road(n) {
				continue
			}
			if onPath[[2]grid.Coord{c, n}] {
				fmt.Fprintf(&buf, "  %s -- %s [color=%q, penwidth=3];\n", nodeID(c), nodeID(n), pathColor)
			} else if !opts.PathOnly {
				fmt.Fprintf(&buf, "  %s -- %s;\n", nodeID(c), nodeID(n))
			}
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based root element with one
// whose viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
