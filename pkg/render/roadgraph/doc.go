// Package roadgraph renders the road network as a Graphviz graph.
//
// # Overview
//
// Every road cell becomes a node and every pair of 4-adjacent road cells an
// edge. Cells of one grid row share a rank, so the layout keeps the rough
// shape of the map. When a path is given, its edges are drawn heavier and
// coloured by position, and the start cell is marked.
//
//	dot := roadgraph.ToDOT(g, res.Coords, roadgraph.Options{})
//	svg, err := roadgraph.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; the DOT text can also be fed to external Graphviz tools.
package roadgraph
