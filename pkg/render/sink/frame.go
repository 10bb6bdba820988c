package sink

import (
	"fmt"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/render/styles"
)

// Frame is one drawable tick of the reveal animation.
type Frame struct {
	Artwork  *artwork.Artwork
	Path     []grid.PayloadID
	Reveal   int
	Loudness float64
}

// RevealCount returns Reveal clamped to the path length.
func (f Frame) RevealCount() int {
	return min(max(f.Reveal, 0), len(f.Path))
}

// layers expands a frame into the style blocks of every layer in drawing
// order.
func (f Frame) layers(panels bool) []styles.Block {
	a := f.Artwork
	if a == nil {
		return nil
	}
	n := len(a.Base) + f.RevealCount()
	if panels {
		n += len(a.Panels)
	}
	blocks := make([]styles.Block, 0, n)

	if panels {
		for i, p := range a.Panels {
			r := p.Layout(f.Loudness, a.Width)
			blocks = append(blocks, styles.Block{
				ID:    fmt.Sprintf("p-%d", i),
				Layer: styles.LayerPanel,
				X:     r.X, Y: r.Y, W: r.W, H: r.H,
				Color:    p.Color,
				AmpScale: artwork.PanelAmpScale,
			})
		}
	}
	for i, b := range a.Base {
		blocks = append(blocks, toStyle(fmt.Sprintf("b-%d", i), artwork.LayerBase, b))
	}
	for _, id := range f.Path[:f.RevealCount()] {
		if id < 0 || int(id) >= len(a.Revealed) {
			continue
		}
		blocks = append(blocks, toStyle(fmt.Sprintf("r-%d", id), artwork.LayerRevealed, a.Revealed[id]))
	}
	return blocks
}

func toStyle(id string, layer artwork.Layer, b artwork.Block) styles.Block {
	return styles.Block{
		ID:    id,
		Layer: layer,
		X:     b.X, Y: b.Y, W: b.W, H: b.H,
		Color:    b.Color,
		AmpScale: b.AmpScale,
	}
}
