package handdrawn

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/render/styles"
)

func revealed() styles.Block {
	return styles.Block{ID: "r-0", Layer: artwork.LayerRevealed, X: 40, Y: 60, W: 30, H: 30, Color: "#e1c927", AmpScale: 1.2}
}

func TestNoiseRange(t *testing.T) {
	n := newNoise(42)
	for i := range 1000 {
		x := float64(i) * 0.37
		v := n.at(x, x*1.3)
		if v < 0 || v > 1 {
			t.Fatalf("noise(%v) = %v out of range", x, v)
		}
	}
}

func TestNoiseDeterministic(t *testing.T) {
	a, b, c := newNoise(1), newNoise(1), newNoise(2)
	same, diff := true, false
	for i := range 50 {
		x, y := float64(i)*0.7, float64(i)*0.3
		if a.at(x, y) != b.at(x, y) {
			same = false
		}
		if a.at(x, y) != c.at(x, y) {
			diff = true
		}
	}
	if !same {
		t.Error("same seed should give the same noise")
	}
	if !diff {
		t.Error("different seeds should give different noise")
	}
}

func TestNoiseContinuous(t *testing.T) {
	n := newNoise(9)
	for i := range 200 {
		x := float64(i) * 0.05
		if d := math.Abs(n.at(x, 1) - n.at(x+1e-4, 1)); d > 1e-2 {
			t.Fatalf("jump of %v at %v", d, x)
		}
	}
}

func TestOutlineWithinWobble(t *testing.T) {
	h := New(7)
	b := revealed()
	amp := wobbleBase * b.AmpScale
	strokes := h.Outline(b)
	if len(strokes) != len(outlines)+1 {
		t.Fatalf("strokes = %d, want %d", len(strokes), len(outlines)+1)
	}
	for li, s := range strokes[:len(outlines)] {
		if len(s.Points) != 4*(edgeSteps+1) {
			t.Fatalf("layer %d: %d points", li, len(s.Points))
		}
		for _, p := range s.Points {
			if p[0] < b.X-amp-1e-9 || p[0] > b.X+b.W+amp+1e-9 ||
				p[1] < b.Y-amp-1e-9 || p[1] > b.Y+b.H+amp+1e-9 {
				t.Fatalf("layer %d: point %v outside wobble band", li, p)
			}
		}
	}
}

func TestRenderBlockRevealed(t *testing.T) {
	var buf bytes.Buffer
	New(3).RenderBlock(&buf, revealed())
	got := buf.String()
	if strings.Count(got, "<path") != len(outlines) {
		t.Errorf("want %d outline paths, got:\n%s", len(outlines), got)
	}
	if !strings.Contains(got, `stroke-width="3"`) {
		t.Error("missing final outline")
	}
	if !strings.HasPrefix(strings.TrimSpace(got), `<g id="r-0">`) {
		t.Errorf("unexpected prefix: %s", got)
	}

	var again bytes.Buffer
	New(3).RenderBlock(&again, revealed())
	if got != again.String() {
		t.Error("rendering should be deterministic for a seed")
	}
}

func TestRenderBlockBaseIsFlat(t *testing.T) {
	var buf bytes.Buffer
	b := revealed()
	b.Layer = artwork.LayerBase
	New(3).RenderBlock(&buf, b)
	if strings.Contains(buf.String(), "<path") {
		t.Errorf("base block should be flat: %s", buf.String())
	}
}

func TestWobbledRectPath(t *testing.T) {
	d := New(1).wobbledRect(revealed(), outlines[0])
	if !strings.HasPrefix(d, "M") || !strings.HasSuffix(d, "Z") {
		t.Errorf("malformed path %q", d)
	}
}
