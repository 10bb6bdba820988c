package sink

import (
	"encoding/json"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/grid"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style  string
	indent bool
}

// WithJSONStyle records the style name in the output.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Background string           `json:"background"`
	Style      string           `json:"style,omitempty"`
	Seed       uint64           `json:"seed"`
	Reveal     int              `json:"reveal"`
	Loudness   float64          `json:"loudness"`
	Path       []grid.PayloadID `json:"path"`
	Panels     []jsonPanel      `json:"panels"`
	Base       []artwork.Block  `json:"base"`
	Revealed   []artwork.Block  `json:"revealed"`
}

type jsonPanel struct {
	artwork.Rect
	Color string `json:"color"`
	Dir   int    `json:"dir"`
}

// RenderJSON serialises a frame: panel geometry at the frame's loudness, the
// base layer and the revealed blocks in path order.
func RenderJSON(f Frame, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Style:    r.style,
		Reveal:   f.RevealCount(),
		Loudness: f.Loudness,
		Path:     f.Path,
		Panels:   []jsonPanel{},
		Base:     []artwork.Block{},
		Revealed: []artwork.Block{},
	}
	if out.Path == nil {
		out.Path = []grid.PayloadID{}
	}
	if a := f.Artwork; a != nil {
		out.Width, out.Height = a.Width, a.Height
		out.Background = a.Background
		out.Seed = a.Seed
		for _, p := range a.Panels {
			out.Panels = append(out.Panels, jsonPanel{Rect: p.Layout(f.Loudness, a.Width), Color: p.Color, Dir: p.Dir})
		}
		out.Base = append(out.Base, a.Base...)
		out.Revealed = append(out.Revealed, a.RevealedBlocks(f.Path[:f.RevealCount()])...)
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
