package artwork

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/roadreveal/pkg/grid"
)

func TestChooseColorAvoidsNeighbours(t *testing.T) {
	rng := NewRand(1)
	for range 2000 {
		c := ChooseColor(rng, Red, Blue)
		if c == Red || c == Blue {
			t.Fatalf("picked neighbour colour %s", c)
		}
	}
}

func TestChooseColorAllowsYellowNeighbour(t *testing.T) {
	rng := NewRand(3)
	seen := false
	for range 500 {
		if ChooseColor(rng, Yellow, Yellow) == Yellow {
			seen = true
			break
		}
	}
	if !seen {
		t.Error("yellow neighbours should not exclude yellow")
	}
}

func TestColorizeDeterministic(t *testing.T) {
	g := grid.New(20, 20, func(c grid.Coord) bool { return (c.Row+c.Col)%3 != 0 })
	a := Colorize(g, 42)
	b := Colorize(g, 42)
	if !slices.Equal(a, b) {
		t.Fatal("same seed produced different colours")
	}
	if slices.Equal(a, Colorize(g, 43)) {
		t.Error("different seeds produced identical colours")
	}
}

func TestColorizeNeighbourRule(t *testing.T) {
	g := grid.New(30, 30, func(grid.Coord) bool { return true })
	colors := Colorize(g, 7)
	g.Each(func(c grid.Coord) {
		got := colors[g.Index(c)]
		for _, n := range []grid.Coord{{Row: c.Row - 1, Col: c.Col}, {Row: c.Row, Col: c.Col - 1}} {
			if !g.Road(n) {
				continue
			}
			if nc := colors[g.Index(n)]; nc != Yellow && nc == got {
				t.Fatalf("%v repeats %s from %v", c, got, n)
			}
		}
	})
}

func TestBuild(t *testing.T) {
	g := grid.MustParse(`
#.#
.##
`)
	a := Build(g, Source{Width: 75, Height: 50, Spacing: 25}, Options{Width: 600, Height: 400, Seed: 1})

	if len(a.Base) != 4 || len(a.Revealed) != 4 {
		t.Fatalf("blocks = %d/%d, want 4/4", len(a.Base), len(a.Revealed))
	}
	// scale 8 in both axes; block side 30*8.
	want := Rect{X: 2 * 25 * 8, Y: 0, W: 240, H: 240}
	if a.Revealed[1].Rect != want {
		t.Errorf("block 1 = %+v, want %+v", a.Revealed[1].Rect, want)
	}
	for i := range a.Base {
		if a.Base[i].Color != Black {
			t.Errorf("base %d colour %s", i, a.Base[i].Color)
		}
		if a.Base[i].Rect != a.Revealed[i].Rect || a.Base[i].Cell != a.Revealed[i].Cell {
			t.Errorf("layer mismatch at %d", i)
		}
	}

	idx := grid.IndexRoads(g)
	for i, b := range a.Revealed {
		if id, ok := idx.Lookup(b.Cell); !ok || int(id) != i {
			t.Errorf("block %d at %v has id %d", i, b.Cell, id)
		}
	}
}

func TestBuildUsesSmallerScale(t *testing.T) {
	g := grid.MustParse("#")
	a := Build(g, Source{Width: 100, Height: 200, Spacing: 25}, Options{})
	// scaleX 6, scaleY 3.
	if a.Revealed[0].W != 90 {
		t.Errorf("side = %v, want 90", a.Revealed[0].W)
	}
}

func TestBuildEmpty(t *testing.T) {
	a := Build(grid.New(0, 0, nil), Source{}, Options{})
	if len(a.Revealed) != 0 || a.Width != DefaultCanvas {
		t.Errorf("unexpected artwork %+v", a)
	}
	if len(a.Panels) != len(panels) {
		t.Errorf("panels = %d", len(a.Panels))
	}
}

func TestRevealedBlocks(t *testing.T) {
	a := Build(grid.MustParse("###"), Source{Width: 75, Height: 25, Spacing: 25}, Options{})
	got := a.RevealedBlocks([]grid.PayloadID{2, 0, 7, -1})
	if len(got) != 2 || got[0].Cell.Col != 2 || got[1].Cell.Col != 0 {
		t.Errorf("RevealedBlocks = %+v", got)
	}
}

func TestPanelLayout(t *testing.T) {
	p := Panel{Rect: Rect{X: 800, Y: 800, W: 160, H: 160}, Dir: 1}
	tests := []struct {
		name     string
		loudness float64
		want     Rect
	}{
		// s = 1600/600; design size at mid loudness.
		{"mid", 0.15, Rect{X: 300, Y: 300, W: 60, H: 60}},
		{"loud", 0.3, Rect{X: 294, Y: 294, W: 72, H: 72}},
		{"over ceiling", 5, Rect{X: 294, Y: 294, W: 72, H: 72}},
		{"silent", 0, Rect{X: 306, Y: 306, W: 48, H: 48}},
		{"negative", -1, Rect{X: 306, Y: 306, W: 48, H: 48}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Layout(tt.loudness, 600); got != tt.want {
				t.Errorf("Layout = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPanelLayoutStatic(t *testing.T) {
	p := Panel{Rect: Rect{X: 800, Y: 800, W: 160, H: 160}}
	a, b := p.Layout(0, 600), p.Layout(0.3, 600)
	if a != b {
		t.Errorf("static panel moved: %+v vs %+v", a, b)
	}
	if got := p.Layout(math.NaN(), 600); got != a {
		t.Errorf("NaN loudness = %+v", got)
	}
}

func TestPanelsCopy(t *testing.T) {
	p := Panels()
	p[0].Color = "x"
	if Panels()[0].Color == "x" {
		t.Error("Panels should return a copy")
	}
}
