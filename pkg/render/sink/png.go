package sink

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/render/styles"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgRenderer
	scale float64
}

// WithPNGSVGOptions applies SVG options (style, gallery, panels) to the
// rasteriser.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) {
		for _, opt := range opts {
			opt(&r.svgRenderer)
		}
	}
}

// WithScale sets the PNG scale factor (default 1).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterises one frame.
func RenderPNG(f Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{svgRenderer: newSVGRenderer(), scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid scale %g", r.scale)
	}

	w, h := canvasSize(f)
	sceneW, sceneH := w, h
	if r.gallery {
		sceneW, sceneH = GalleryWidth, GalleryHeight
	}
	dc := gg.NewContext(int(sceneW*r.scale+0.5), int(sceneH*r.scale+0.5))
	dc.Scale(r.scale, r.scale)

	if r.gallery {
		dc.SetRGB(1, 1, 1)
		dc.Clear()
		for _, s := range galleryScene {
			if err := fillRect(dc, s.Rect, s.color); err != nil {
				return nil, err
			}
		}
		c := galleryCanvas
		dc.Translate(c.X, c.Y)
		dc.Scale(c.W/w, c.H/h)
		dc.DrawRectangle(0, 0, w, h)
		dc.Clip()
	}

	bg := "#EBEAE6"
	if f.Artwork != nil && f.Artwork.Background != "" {
		bg = f.Artwork.Background
	}
	if err := fillRect(dc, artwork.Rect{W: w, H: h}, bg); err != nil {
		return nil, err
	}

	outliner, _ := r.style.(styles.Outliner)
	for _, b := range f.layers(!r.noPanels) {
		if err := drawBlock(dc, b, outliner); err != nil {
			return nil, err
		}
	}
	dc.ResetClip()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBlock(dc *gg.Context, b styles.Block, outliner styles.Outliner) error {
	rgb, err := parseHex(b.Color)
	if err != nil {
		return fmt.Errorf("block %s: %w", b.ID, err)
	}
	dc.SetRGB(rgb[0], rgb[1], rgb[2])
	dc.DrawRectangle(b.X, b.Y, b.W, b.H)
	dc.Fill()

	if outliner == nil || b.Layer != artwork.LayerRevealed {
		dc.SetRGBA(rgb[0], rgb[1], rgb[2], styles.FeltStrokeOpacity)
		dc.SetLineWidth(styles.FeltStrokeWidth)
		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		dc.Stroke()
		return nil
	}

	dc.SetLineJoinRound()
	for _, s := range outliner.Outline(b) {
		for j, p := range s.Points {
			if j == 0 {
				dc.MoveTo(p[0], p[1])
			} else {
				dc.LineTo(p[0], p[1])
			}
		}
		dc.ClosePath()
		dc.SetRGBA(rgb[0], rgb[1], rgb[2], s.Opacity)
		dc.SetLineWidth(s.Width)
		dc.Stroke()
	}
	return nil
}

func fillRect(dc *gg.Context, r artwork.Rect, color string) error {
	rgb, err := parseHex(color)
	if err != nil {
		return err
	}
	dc.SetRGB(rgb[0], rgb[1], rgb[2])
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()
	return nil
}

// parseHex reads #rgb, #rrggbb or #rrggbbaa (alpha ignored) into [0,1]
// channel values.
func parseHex(s string) ([3]float64, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 && len(h) != 8 {
		return [3]float64{}, fmt.Errorf("invalid colour %q", s)
	}
	var rgb [3]float64
	for i := range 3 {
		v, err := strconv.ParseUint(h[2*i:2*i+2], 16, 8)
		if err != nil {
			return [3]float64{}, fmt.Errorf("invalid colour %q", s)
		}
		rgb[i] = float64(v) / 255
	}
	return rgb, nil
}
