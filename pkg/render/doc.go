// Package render groups the renderers that turn a built artwork into
// output files.
//
// # Overview
//
// The pipeline produces a [grid.Grid], a path through its road cells and an
// [artwork.Artwork]. Rendering draws one animation frame of that artwork at
// a given reveal count and loudness:
//
//   - [sink]: frame output as SVG, PNG (via fogleman/gg) and JSON, with an
//     optional gallery scene around the canvas
//   - [styles]: how blocks are written as SVG elements (simple, hand-drawn)
//   - [roadgraph]: the road network as a Graphviz graph (DOT text or SVG)
//
// Renderers are pure: the same frame and options always yield the same
// bytes, which is what lets the pipeline cache rendered artifacts by key.
//
//	f := sink.Frame{Artwork: art, Path: payloads, Reveal: 120, Loudness: 0.2}
//	svg := sink.RenderSVG(f, sink.WithStyle(handdrawn.New(42)))
//
// [grid.Grid]: github.com/matzehuels/roadreveal/pkg/grid
// [artwork.Artwork]: github.com/matzehuels/roadreveal/pkg/artwork
// [sink]: github.com/matzehuels/roadreveal/pkg/render/sink
// [styles]: github.com/matzehuels/roadreveal/pkg/render/styles
// [roadgraph]: github.com/matzehuels/roadreveal/pkg/render/roadgraph
package render
