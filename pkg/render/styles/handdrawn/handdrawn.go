package handdrawn

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/render/styles"
)

const (
	wobbleBase     = 0.20
	noiseFrequency = 0.1
	edgeSteps      = 50

	finalStrokeOpacity = 40.0 / 255
	finalStrokeWidth   = 3.0
)

// outline describes one wobbling stroke layer and the noise offsets that
// decorrelate it from the other layer on each edge.
type outline struct {
	opacity, width                   float64
	topDY, rightDX, bottomDY, leftDX float64
}

var outlines = [...]outline{
	{opacity: 100.0 / 255, width: 2.2},
	{opacity: 50.0 / 255, width: 1, topDY: 50, rightDX: 20, bottomDY: 40, leftDX: 30},
}

// HandDrawn is the default style.
type HandDrawn struct {
	seed  uint64
	noise *noise
}

var (
	_ styles.Style    = (*HandDrawn)(nil)
	_ styles.Outliner = (*HandDrawn)(nil)
)

// New returns a hand-drawn style whose wobble is determined by seed.
func New(seed uint64) *HandDrawn {
	return &HandDrawn{seed: seed, noise: newNoise(seed)}
}

func (h *HandDrawn) Name() string                 { return "handdrawn" }
func (h *HandDrawn) Seed() uint64                 { return h.seed }
func (h *HandDrawn) RenderDefs(buf *bytes.Buffer) {}

func (h *HandDrawn) RenderBlock(buf *bytes.Buffer, b styles.Block) {
	if b.Layer != artwork.LayerRevealed {
		styles.FeltRect(buf, b)
		return
	}
	n := styles.Num
	fmt.Fprintf(buf, `  <g id="%s">`+"\n", b.ID)
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
		n(b.X), n(b.Y), n(b.W), n(b.H), b.Color)
	for _, o := range outlines {
		fmt.Fprintf(buf, `    <path d="%s" fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="%s" stroke-linejoin="round"/>`+"\n",
			h.wobbledRect(b, o), b.Color, o.opacity, n(o.width))
	}
	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-opacity="%.3f" stroke-width="%s"/>`+"\n",
		n(b.X), n(b.Y), n(b.W), n(b.H), b.Color, finalStrokeOpacity, n(finalStrokeWidth))
	buf.WriteString("  </g>\n")
}

// Outline returns the strokes drawn over a revealed block: the wobbling
// layers, then the faint straight outline.
func (h *HandDrawn) Outline(b styles.Block) []styles.Stroke {
	out := make([]styles.Stroke, 0, len(outlines)+1)
	for _, o := range outlines {
		out = append(out, styles.Stroke{Points: h.points(b, o), Opacity: o.opacity, Width: o.width})
	}
	out = append(out, styles.Stroke{
		Points:  [][2]float64{{b.X, b.Y}, {b.X + b.W, b.Y}, {b.X + b.W, b.Y + b.H}, {b.X, b.Y + b.H}},
		Opacity: finalStrokeOpacity,
		Width:   finalStrokeWidth,
	})
	return out
}

func (h *HandDrawn) wobbledRect(b styles.Block, o outline) string {
	pts := h.points(b, o)
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		sb.WriteString(styles.Num(p[0]))
		sb.WriteByte(' ')
		sb.WriteString(styles.Num(p[1]))
	}
	sb.WriteString(" Z")
	return sb.String()
}

// points walks the four edges clockwise, displacing each sample
// perpendicular to its edge by at most the wobble amount.
func (h *HandDrawn) points(b styles.Block, o outline) [][2]float64 {
	amp := wobbleBase * b.AmpScale
	offset := func(nx, ny float64) float64 {
		v := h.noise.at(nx*noiseFrequency, ny*noiseFrequency)
		return min(max((v*2-1)*amp, -amp), amp)
	}

	x, y, w, hh := b.X, b.Y, b.W, b.H
	pts := make([][2]float64, 0, 4*(edgeSteps+1))
	for i := 0; i <= edgeSteps; i++ {
		t := float64(i) / edgeSteps
		pts = append(pts, [2]float64{x + t*w, y + offset(x+t*w, y+o.topDY)})
	}
	for i := 0; i <= edgeSteps; i++ {
		t := float64(i) / edgeSteps
		pts = append(pts, [2]float64{x + w + offset(x+w+o.rightDX, y+t*hh), y + t*hh})
	}
	for i := edgeSteps; i >= 0; i-- {
		t := float64(i) / edgeSteps
		pts = append(pts, [2]float64{x + t*w, y + hh + offset(x+t*w, y+hh+o.bottomDY)})
	}
	for i := edgeSteps; i >= 0; i-- {
		t := float64(i) / edgeSteps
		pts = append(pts, [2]float64{x + offset(x+o.leftDX, y+t*hh), y + t*hh})
	}
	return pts
}
