// Package pkg provides the libraries behind roadreveal, which turns a street
// map into a two-layer Mondrian-style artwork revealed block by block along
// one long path through the road network.
//
// # Architecture
//
// The data flow through roadreveal:
//
//	street map image (file or URL)
//	         ↓
//	    [grid] (sample road cells at a fixed pixel spacing)
//	         ↓
//	    [path] (order the road cells into one long traversal)
//	         ↓
//	    [artwork] (base and revealed blocks, decorative panels)
//	         ↓
//	    [cursor] (advance the reveal per tick, optionally paced by [audio])
//	         ↓
//	    [render] (SVG, PNG, JSON and DOT frames)
//
// [pipeline] runs these stages with per-stage caching and is shared by the
// CLI and the HTTP [server].
//
// # Quick Start
//
//	g, idx := grid.Sample(img, grid.SampleOptions{})
//	res := path.Search{}.Build(g)
//	src := artwork.Source{Width: img.Bounds().Dx(), Height: img.Bounds().Dy(), Spacing: grid.DefaultSpacing}
//	art := artwork.Build(g, src, artwork.Options{Seed: 42})
//	frame := sink.Frame{Artwork: art, Path: path.Payloads(res.Coords, idx), Reveal: 10}
//	svg := sink.RenderSVG(frame)
//
// # Infrastructure
//
// [cache] stores stage results on disk or in Redis. [store] keeps artwork
// records for the server in memory or in MongoDB. [httputil] downloads remote
// maps, [io] imports and exports grids and paths, [errors] carries the coded
// errors surfaced by the CLI and the API, and [observability] exposes hooks
// for logging and metrics.
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/httputil
// [io]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/io
// [errors]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/observability
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/grid
// [path]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/path
// [artwork]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/artwork
// [cursor]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/cursor
// [audio]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/audio
// [render]: https://pkg.go.dev/github.com/matzehuels/roadreveal/pkg/render
package pkg
