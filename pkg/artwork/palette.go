package artwork

import (
	"math/rand/v2"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

// Colours used by the artwork.
const (
	Gray       = "#d6d7d2"
	Yellow     = "#e1c927"
	Red        = "#ad372b"
	Blue       = "#314294"
	PanelBlue  = "#4267ba"
	Black      = "#000000"
	Background = "#EBEAE6"
)

// Swatch is a palette colour and its relative weight.
type Swatch struct {
	Color  string
	Weight int
}

// Palette is the weighted colour set of the revealed layer.
var Palette = []Swatch{
	{Gray, 15},
	{Yellow, 45},
	{Red, 20},
	{Blue, 20},
}

// NewRand returns the deterministic generator used for colour draws.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ChooseColor draws a palette colour that differs from the non-yellow colours
// of the top and left neighbours. Empty strings mean no neighbour. If every
// swatch is excluded the result is yellow.
func ChooseColor(rng *rand.Rand, top, left string) string {
	avoid := func(c string) bool {
		return c != Yellow && c != "" && (c == top || c == left)
	}

	total := 0
	for _, s := range Palette {
		if !avoid(s.Color) {
			total += s.Weight
		}
	}
	if total == 0 {
		return Yellow
	}

	r := rng.IntN(total)
	for _, s := range Palette {
		if avoid(s.Color) {
			continue
		}
		if r < s.Weight {
			return s.Color
		}
		r -= s.Weight
	}
	return Yellow
}

// Colorize assigns a colour to every road cell of g in row-major order.
// Non-road cells get the empty string.
func Colorize(g *grid.Grid, seed uint64) []string {
	rng := NewRand(seed)
	colors := make([]string, g.Len())
	g.Each(func(c grid.Coord) {
		var top, left string
		if up := (grid.Coord{Row: c.Row - 1, Col: c.Col}); g.Road(up) {
			top = colors[g.Index(up)]
		}
		if lf := (grid.Coord{Row: c.Row, Col: c.Col - 1}); g.Road(lf) {
			left = colors[g.Index(lf)]
		}
		colors[g.Index(c)] = ChooseColor(rng, top, left)
	})
	return colors
}
