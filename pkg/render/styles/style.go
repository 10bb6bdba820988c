package styles

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/roadreveal/pkg/artwork"
)

// Style defines how artwork blocks are drawn as SVG.
type Style interface {
	// Name is the identifier used on the command line and in config files.
	Name() string
	// RenderDefs writes SVG <defs> content (filters, patterns, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderBlock writes the SVG for a single block.
	RenderBlock(buf *bytes.Buffer, b Block)
}

// Block contains all data needed to render one block.
type Block struct {
	ID         string        // Element id, unique within one document
	Layer      artwork.Layer // Base, revealed, or panel
	X, Y, W, H float64       // Position and dimensions
	Color      string        // Fill colour
	AmpScale   float64       // Wobble amplitude factor
}

// LayerPanel marks decorative panels, which are drawn like base blocks.
const LayerPanel artwork.Layer = "panel"

// Stroke is an outline polygon with its stroke parameters, in canvas
// pixels.
type Stroke struct {
	Points  [][2]float64
	Opacity float64
	Width   float64
}

// Outliner is implemented by styles that draw extra outlines around revealed
// blocks. Rasterising sinks stroke each returned polygon closed.
type Outliner interface {
	Outline(b Block) []Stroke
}

// Felt strokes: the outline drawn over every flat block.
const (
	FeltStrokeOpacity = 180.0 / 255
	FeltStrokeWidth   = 2.0
)

// Simple draws every block as a filled square with a translucent outline.
type Simple struct{}

func (Simple) Name() string                 { return "simple" }
func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderBlock(buf *bytes.Buffer, b Block) {
	FeltRect(buf, b)
}

// FeltRect writes a filled rectangle with the felt outline.
func FeltRect(buf *bytes.Buffer, b Block) {
	fmt.Fprintf(buf, `  <rect id="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-opacity="%.3f" stroke-width="%s"/>`+"\n",
		b.ID, Num(b.X), Num(b.Y), Num(b.W), Num(b.H), b.Color, b.Color, FeltStrokeOpacity, Num(FeltStrokeWidth))
}

// Num formats a coordinate with at most two decimals and no trailing zeros.
func Num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	for s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		return "0"
	}
	return s
}
