package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/observability"
)

const testMap = `
###.
..#.
..##
`

// mapPNG paints an ASCII grid picture as a street map: white tiles for road
// cells on a grey background, spacing pixels per cell.
func mapPNG(t *testing.T, pic string, spacing int) []byte {
	t.Helper()
	g := grid.MustParse(pic)
	img := image.NewRGBA(image.Rect(0, 0, g.Cols()*spacing, g.Rows()*spacing))
	for y := range img.Bounds().Dy() {
		for x := range img.Bounds().Dx() {
			c := color.RGBA{200, 200, 200, 255}
			if g.Road(grid.Coord{Row: y / spacing, Col: x / spacing}) {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func TestExecuteImage(t *testing.T) {
	r := quietRunner(nil)
	in := ImageInput("map.png", mapPNG(t, testMap, 25))

	res, err := r.Execute(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Rows != 3 || res.Stats.Cols != 4 || res.Stats.Roads != 6 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Path.Len() != 6 || !res.Path.Complete() {
		t.Errorf("path len = %d complete = %v", res.Path.Len(), res.Path.Complete())
	}
	if res.Stats.Coverage() != 1 {
		t.Errorf("coverage = %v", res.Stats.Coverage())
	}
	if len(res.Payloads) != 6 || len(res.Artwork.Revealed) != 6 {
		t.Errorf("payloads = %v, revealed = %d", res.Payloads, len(res.Artwork.Revealed))
	}
	svg := string(res.Artifacts[FormatSVG])
	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("svg = %.60q", svg)
	}
	if got := strings.Count(svg, `id="r-`); got != 6 {
		t.Errorf("revealed blocks in svg = %d, want 6", got)
	}
}

func TestExecuteReveal(t *testing.T) {
	r := quietRunner(nil)
	in := ImageInput("map.png", mapPNG(t, testMap, 25))
	two := 2

	opts := Options{Render: RenderOptions{Reveal: &two, Style: StyleSimple}}
	res, err := r.Execute(context.Background(), in, opts)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(res.Artifacts[FormatSVG])
	if got := strings.Count(svg, `id="r-`); got != 2 {
		t.Errorf("revealed blocks = %d, want 2", got)
	}
	// Path starts at the (0,0) endpoint, whose payload id is 0.
	if !strings.Contains(svg, `id="r-0"`) || !strings.Contains(svg, `id="r-1"`) {
		t.Error("the first two path blocks should be revealed")
	}
}

func TestExecuteSecondRunHitsCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := quietRunner(fc)
	in := ImageInput("map.png", mapPNG(t, testMap, 25))
	opts := Options{Render: RenderOptions{Formats: []string{FormatSVG, FormatJSON}}}

	first, err := r.Execute(context.Background(), in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheInfo != (CacheInfo{SampleHit: true, PathHit: true, RenderHit: true}) {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}
	if second.Path.Len() != first.Path.Len() || second.GridHash != first.GridHash {
		t.Error("cached stages differ")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), in, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh run cache info = %+v", third.CacheInfo)
	}
}

func TestExecuteGridInput(t *testing.T) {
	r := quietRunner(nil)
	in := GridInput("grid.txt", grid.MustParse(testMap))
	res, err := r.Execute(context.Background(), in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source.Width != 100 || res.Source.Height != 75 {
		t.Errorf("source = %+v", res.Source)
	}
	if res.Path.Len() != 6 {
		t.Errorf("path len = %d", res.Path.Len())
	}
}

func TestExecuteEmptyMap(t *testing.T) {
	r := quietRunner(nil)
	in := ImageInput("blank.png", mapPNG(t, "....\n....", 25))
	res, err := r.Execute(context.Background(), in, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Path.Len() != 0 || len(res.Artifacts[FormatSVG]) == 0 {
		t.Errorf("empty map: path %d, svg %d bytes", res.Path.Len(), len(res.Artifacts[FormatSVG]))
	}
}

func TestExecuteInvalidImage(t *testing.T) {
	r := quietRunner(nil)
	_, err := r.Execute(context.Background(), ImageInput("junk.png", []byte("not an image")), Options{})
	if !errors.Is(err, errors.ErrCodeInvalidImage) {
		t.Errorf("err = %v, want INVALID_IMAGE", err)
	}
}

func TestRenderAllFormats(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Prepare(context.Background(), GridInput("g", grid.MustParse(testMap)), Options{})
	if err != nil {
		t.Fatal(err)
	}

	opts := RenderOptions{Formats: ValidFormats, Style: StyleHanddrawn, Seed: 1}
	artifacts, err := RenderAll(context.Background(), res, 3, 0.1, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}
	if !bytes.Contains(artifacts[FormatJSON], []byte(`"reveal": 3`)) {
		t.Errorf("json = %.120s", artifacts[FormatJSON])
	}
	if !bytes.HasPrefix(artifacts[FormatDOT], []byte("graph G {")) {
		t.Errorf("dot = %.40q", artifacts[FormatDOT])
	}

	if _, err := Render(context.Background(), res, "gif", 0, 0, opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif err = %v", err)
	}
	if _, err := Render(context.Background(), nil, FormatSVG, 0, 0, opts); err == nil {
		t.Error("nil result should fail")
	}
}

func TestNewStyle(t *testing.T) {
	for _, name := range []string{StyleSimple, StyleHanddrawn, ""} {
		s, err := NewStyle(name, 0)
		if err != nil || s == nil {
			t.Errorf("NewStyle(%q) = %v, %v", name, s, err)
		}
	}
	if _, err := NewStyle("ink", 1); !errors.Is(err, errors.ErrCodeInvalidStyle) {
		t.Errorf("NewStyle(ink) err = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	r := quietRunner(nil)
	ctx := context.Background()

	imgPath := filepath.Join(dir, "map.png")
	if err := os.WriteFile(imgPath, mapPNG(t, testMap, 10), 0o644); err != nil {
		t.Fatal(err)
	}
	in, err := r.Load(ctx, imgPath)
	if err != nil || len(in.Image) == 0 || in.Name != "map.png" {
		t.Fatalf("Load image = %+v, %v", in.Name, err)
	}

	gridPath := filepath.Join(dir, "grid.txt")
	if err := os.WriteFile(gridPath, []byte(testMap), 0o644); err != nil {
		t.Fatal(err)
	}
	in, err = r.Load(ctx, gridPath)
	if err != nil || in.Grid == nil || in.Grid.RoadCount() != 6 {
		t.Fatalf("Load grid = %+v, %v", in, err)
	}

	_, err = r.Load(ctx, filepath.Join(dir, "missing.png"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"rows":2,"cols":2,"cells":["##"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Load(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad grid err = %v", err)
	}
}

func TestLoadURL(t *testing.T) {
	body := mapPNG(t, testMap, 25)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	r := quietRunner(nil)
	in, err := r.Load(context.Background(), srv.URL+"/map.png")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(in.Image, body) {
		t.Error("downloaded body differs")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnSampleStart(context.Context, string) {
	h.events = append(h.events, "sample")
}
func (h *recordingHooks) OnPathComplete(_ context.Context, strategy string, length int, _ bool, _ time.Duration, err error) {
	h.events = append(h.events, "path:"+strategy)
}
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.events = append(h.events, "render")
}

func TestPipelineHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := quietRunner(nil)
	opts := Options{Path: PathOptions{Strategy: "greedy"}}
	if _, err := r.Execute(context.Background(), GridInput("g", grid.MustParse(testMap)), opts); err != nil {
		t.Fatal(err)
	}
	want := "sample,path:greedy,render"
	if got := strings.Join(hooks.events, ","); got != want {
		t.Errorf("events = %s, want %s", got, want)
	}
}

func TestPathCancelledMidSearch(t *testing.T) {
	// Every fourth row and column is road: the search cannot cover the
	// component and would backtrack for a very long time.
	g := grid.New(25, 25, func(c grid.Coord) bool { return c.Row%4 == 0 || c.Col%4 == 0 })
	s := &Sampled{Grid: g, Index: grid.IndexRoads(g), Hash: "lattice"}

	tests := []struct {
		name  string
		after time.Duration
	}{
		{"before start", 0},
		{"mid search", 50 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := cache.NewFileCache(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			r := quietRunner(fc)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.after == 0 {
				cancel()
			} else {
				time.AfterFunc(tt.after, cancel)
			}

			start := time.Now()
			_, _, err = r.PathWithCacheInfo(ctx, s, Options{})
			if err != context.Canceled {
				t.Fatalf("err = %v, want context.Canceled", err)
			}
			if d := time.Since(start); d > 5*time.Second {
				t.Errorf("cancelled search took %v", d)
			}

			opts := Options{}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				t.Fatal(err)
			}
			key := r.Keyer.PathKey(s.Hash, opts.PathKeyOpts())
			if _, hit, _ := fc.Get(context.Background(), key); hit {
				t.Error("cancelled result was cached")
			}
		})
	}
}
