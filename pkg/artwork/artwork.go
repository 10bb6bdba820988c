package artwork

import (
	"github.com/matzehuels/roadreveal/pkg/grid"
)

const (
	DefaultCanvas    = 600
	DefaultBlockSize = 30

	// BlockAmpScale is the wobble amplitude factor of road blocks.
	BlockAmpScale = 1.2
)

// Layer identifies which of the two block layers a block belongs to.
type Layer string

const (
	LayerBase     Layer = "base"
	LayerRevealed Layer = "revealed"
)

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Block is one square of a block layer.
type Block struct {
	Rect
	Color    string     `json:"color"`
	Cell     grid.Coord `json:"cell"`
	AmpScale float64    `json:"amp_scale"`
}

// Options controls artwork construction.
type Options struct {
	// Width and Height are the canvas size in pixels (default 600 each).
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`

	// BlockSize is the block side in image pixels before scaling (default 30).
	BlockSize float64 `json:"block_size" toml:"block_size"`

	// Seed drives the colour draws.
	Seed uint64 `json:"seed" toml:"seed"`
}

// WithDefaults returns a copy of o with zero fields set to their defaults.
func (o Options) WithDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultCanvas
	}
	if o.Height <= 0 {
		o.Height = DefaultCanvas
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	return o
}

// Artwork is the complete static model of one piece.
type Artwork struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background"`
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	Seed       uint64  `json:"seed"`

	Base     []Block `json:"base"`
	Revealed []Block `json:"revealed"`
	Panels   []Panel `json:"panels"`
}

// Source describes the image a grid was sampled from.
type Source struct {
	Width, Height int
	Spacing       int
}

// SourceFor returns the nominal source of a grid that was not sampled from an
// image: one spacing-sized tile per cell.
func SourceFor(g *grid.Grid, spacing int) Source {
	spacing = max(spacing, 1)
	return Source{Width: g.Cols() * spacing, Height: g.Rows() * spacing, Spacing: spacing}
}

// Build lays out the base and revealed blocks for every road cell of g.
// Revealed[i] is the block of the i-th road cell in row-major order.
func Build(g *grid.Grid, src Source, opts Options) *Artwork {
	opts = opts.WithDefaults()
	a := &Artwork{
		Width:      float64(opts.Width),
		Height:     float64(opts.Height),
		Background: Background,
		Rows:       g.Rows(),
		Cols:       g.Cols(),
		Seed:       opts.Seed,
		Panels:     Panels(),
	}
	if g.Empty() || src.Width <= 0 || src.Height <= 0 {
		return a
	}

	spacing := float64(max(src.Spacing, 1))
	scaleX := a.Width / float64(src.Width)
	scaleY := a.Height / float64(src.Height)
	side := opts.BlockSize * min(scaleX, scaleY)

	colors := Colorize(g, opts.Seed)
	n := g.RoadCount()
	a.Base = make([]Block, 0, n)
	a.Revealed = make([]Block, 0, n)
	g.Each(func(c grid.Coord) {
		r := Rect{
			X: float64(c.Col) * spacing * scaleX,
			Y: float64(c.Row) * spacing * scaleY,
			W: side,
			H: side,
		}
		a.Base = append(a.Base, Block{Rect: r, Color: Black, Cell: c, AmpScale: BlockAmpScale})
		a.Revealed = append(a.Revealed, Block{Rect: r, Color: colors[g.Index(c)], Cell: c, AmpScale: BlockAmpScale})
	})
	return a
}

// RevealedBlocks resolves payload ids to revealed blocks, skipping ids out of
// range.
func (a *Artwork) RevealedBlocks(ids []grid.PayloadID) []Block {
	out := make([]Block, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && int(id) < len(a.Revealed) {
			out = append(out, a.Revealed[id])
		}
	}
	return out
}
