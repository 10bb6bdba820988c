package grid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestParse(t *testing.T) {
	g, err := Parse(`
#.#
###
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", g.Rows(), g.Cols())
	}
	if g.Road(Coord{0, 1}) {
		t.Error("(0,1) should not be road")
	}
	if !g.Road(Coord{1, 1}) {
		t.Error("(1,1) should be road")
	}
	if got := g.RoadCount(); got != 5 {
		t.Errorf("RoadCount = %d, want 5", got)
	}
	if got := g.String(); got != "#.#\n###" {
		t.Errorf("String = %q", got)
	}
}

func TestParseRaggedRows(t *testing.T) {
	if _, err := Parse("##\n#"); err == nil {
		t.Fatal("expected error for ragged input")
	}
}

func TestEmpty(t *testing.T) {
	tests := []struct {
		name string
		g    *Grid
	}{
		{"zero rows", New(0, 4, nil)},
		{"zero cols", New(4, 0, nil)},
		{"negative", New(-1, 3, nil)},
		{"empty table", FromRows(nil)},
		{"blank text", MustParse("\n\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.g.Empty() {
				t.Error("expected empty grid")
			}
			if tt.g.Road(Coord{0, 0}) {
				t.Error("empty grid has no road cells")
			}
		})
	}
}

func TestDegree(t *testing.T) {
	g := MustParse(`
.#.
###
.#.
`)
	tests := []struct {
		c    Coord
		want int
	}{
		{Coord{1, 1}, 4},
		{Coord{0, 1}, 1},
		{Coord{1, 0}, 1},
		{Coord{0, 0}, 2}, // non-road cells still have a degree
		{Coord{-1, 1}, 1},
	}
	for _, tt := range tests {
		if got := g.Degree(tt.c); got != tt.want {
			t.Errorf("Degree(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestIndexCoordRoundTrip(t *testing.T) {
	g := New(3, 5, nil)
	for i := range g.Len() {
		if got := g.Index(g.CoordOf(i)); got != i {
			t.Fatalf("Index(CoordOf(%d)) = %d", i, got)
		}
	}
}

func TestCoordAdjacent(t *testing.T) {
	a := Coord{2, 2}
	for _, d := range Directions {
		if !a.Adjacent(a.Add(d)) {
			t.Errorf("%v should be adjacent to %v", a.Add(d), a)
		}
	}
	for _, o := range []Coord{{2, 2}, {3, 3}, {2, 4}} {
		if a.Adjacent(o) {
			t.Errorf("%v should not be adjacent to %v", o, a)
		}
	}
}

func TestIndexRoads(t *testing.T) {
	g := MustParse(`
#.#
.#.
`)
	idx := IndexRoads(g)
	want := map[Coord]PayloadID{{0, 0}: 0, {0, 2}: 1, {1, 1}: 2}
	for c, id := range want {
		got, ok := idx.Lookup(c)
		if !ok || got != id {
			t.Errorf("Lookup(%v) = %d,%v want %d", c, got, ok, id)
		}
	}
	if _, ok := idx.Lookup(Coord{0, 1}); ok {
		t.Error("non-road cell should have no payload")
	}
	if idx.Len() != 3 {
		t.Errorf("Len = %d, want 3", idx.Len())
	}
}

func TestIndexSetClear(t *testing.T) {
	idx := NewIndex(2, 2)
	idx.Set(Coord{0, 0}, 7)
	idx.Set(Coord{0, 0}, 8)
	idx.Set(Coord{5, 5}, 1)
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
	idx.Set(Coord{0, 0}, -1)
	if _, ok := idx.Lookup(Coord{0, 0}); ok {
		t.Error("cleared entry still present")
	}
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}

	var nilIdx *Index
	if _, ok := nilIdx.Lookup(Coord{}); ok {
		t.Error("nil index lookup should miss")
	}
}

func TestSample(t *testing.T) {
	// 60x30 image, spacing 25 -> 2 rows x 3 cols.
	img := image.NewNRGBA(image.Rect(0, 0, 60, 30))
	white := color.NRGBA{255, 255, 255, 255}
	edge := color.NRGBA{240, 255, 255, 255}
	img.SetNRGBA(0, 0, white)
	img.SetNRGBA(50, 0, white)
	img.SetNRGBA(25, 25, white)
	img.SetNRGBA(25, 0, edge) // threshold is strict

	g, idx := Sample(img, SampleOptions{})
	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", g.Rows(), g.Cols())
	}
	if got := g.String(); got != "#.#\n.#." {
		t.Errorf("grid =\n%s", got)
	}
	if id, ok := idx.Lookup(Coord{1, 1}); !ok || id != 2 {
		t.Errorf("Lookup(1,1) = %d,%v want 2", id, ok)
	}
}

func TestSampleRespectsBoundsOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 20, 20))
	img.SetNRGBA(10, 10, color.NRGBA{255, 255, 255, 255})
	g, _ := Sample(img, SampleOptions{Spacing: 5})
	if !g.Road(Coord{0, 0}) {
		t.Error("sample should start at bounds origin")
	}
	if g.RoadCount() != 1 {
		t.Errorf("RoadCount = %d, want 1", g.RoadCount())
	}
}

func TestDimensions(t *testing.T) {
	rows, cols := SampleOptions{Spacing: 25}.Dimensions(600, 401)
	if rows != 17 || cols != 24 {
		t.Errorf("Dimensions = %d,%d want 17,24", rows, cols)
	}
}

// pngHeader returns a PNG stream holding only a truecolor IHDR chunk that
// claims a w×h image.
func pngHeader(w, h uint32) []byte {
	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8], ihdr[9] = 8, 2

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr[:]...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeBounded(t *testing.T) {
	var small bytes.Buffer
	if err := png.Encode(&small, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		data      []byte
		maxPixels int
		tooLarge  bool
	}{
		{"within cap", small.Bytes(), 16, false},
		{"default cap", small.Bytes(), 0, false},
		{"one pixel over", small.Bytes(), 15, true},
		{"huge header", pngHeader(20000, 20000), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, _, err := DecodeBounded(tt.data, tt.maxPixels)
			if tt.tooLarge {
				if !errors.Is(err, ErrTooLarge) {
					t.Fatalf("err = %v, want ErrTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBounded: %v", err)
			}
			if img.Bounds().Dx() != 4 {
				t.Errorf("width = %d, want 4", img.Bounds().Dx())
			}
		})
	}

	if _, _, err := DecodeBounded([]byte("not an image"), 0); err == nil || errors.Is(err, ErrTooLarge) {
		t.Errorf("garbage input: err = %v", err)
	}
}

func TestSampleOptionsMaxPixelsDefault(t *testing.T) {
	if got := (SampleOptions{}).WithDefaults().MaxPixels; got != DefaultMaxPixels {
		t.Errorf("MaxPixels = %d, want %d", got, DefaultMaxPixels)
	}
}
