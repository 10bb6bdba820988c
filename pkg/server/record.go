package server

import (
	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/path"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
	"github.com/matzehuels/roadreveal/pkg/store"
)

// newRecord captures a prepared pipeline result for storage.
func newRecord(name string, res *pipeline.Result, opts pipeline.Options) *store.Record {
	coords := make([][2]int, len(res.Path.Coords))
	for i, c := range res.Path.Coords {
		coords[i] = [2]int{c.Row, c.Col}
	}
	return &store.Record{
		Name:        name,
		Rows:        res.Stats.Rows,
		Cols:        res.Stats.Cols,
		Roads:       res.Stats.Roads,
		PathLen:     res.Stats.PathLen,
		Component:   res.Path.Component,
		Exhausted:   res.Path.Exhausted,
		Strategy:    opts.Path.Strategy,
		Spacing:     res.Source.Spacing,
		Threshold:   int(opts.Sample.Threshold),
		ImageWidth:  res.Source.Width,
		ImageHeight: res.Source.Height,
		Width:       opts.Render.Width,
		Height:      opts.Render.Height,
		BlockSize:   opts.Render.BlockSize,
		Seed:        opts.Render.Seed,
		Cells:       res.Grid.Lines(),
		Path:        coords,
	}
}

// resultFromRecord rebuilds the drawable result of a stored record. The
// grid, path and layout are restored exactly; no sampling or search runs.
func resultFromRecord(rec *store.Record) (*pipeline.Result, error) {
	table := make([][]bool, len(rec.Cells))
	for r, line := range rec.Cells {
		table[r] = make([]bool, len(line))
		for c := range line {
			table[r][c] = line[c] == '#'
		}
	}
	g := grid.FromRows(table)

	coords := make([]grid.Coord, len(rec.Path))
	for i, p := range rec.Path {
		coords[i] = grid.Coord{Row: p[0], Col: p[1]}
	}
	if err := path.Validate(g, coords); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored path of artwork %s is corrupt", rec.ID)
	}

	idx := grid.IndexRoads(g)
	src := artwork.Source{Width: rec.ImageWidth, Height: rec.ImageHeight, Spacing: rec.Spacing}
	return &pipeline.Result{
		Grid:     g,
		Index:    idx,
		GridHash: pipeline.GridHash(g),
		Source:   src,
		Path: path.Result{
			Coords:    coords,
			Component: rec.Component,
			Exhausted: rec.Exhausted,
		},
		Payloads: path.Payloads(coords, idx),
		Artwork: artwork.Build(g, src, artwork.Options{
			Width:     rec.Width,
			Height:    rec.Height,
			BlockSize: rec.BlockSize,
			Seed:      rec.Seed,
		}),
		Stats: pipeline.Stats{
			Rows:    rec.Rows,
			Cols:    rec.Cols,
			Roads:   rec.Roads,
			PathLen: rec.PathLen,
		},
		Artifacts: make(map[string][]byte),
	}, nil
}
