package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/roadreveal/pkg/render/styles"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style    styles.Style
	gallery  bool
	noPanels bool
}

func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }
func WithGallery() SVGOption             { return func(r *svgRenderer) { r.gallery = true } }
func WithoutPanels() SVGOption           { return func(r *svgRenderer) { r.noPanels = true } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: styles.Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders one frame as a standalone SVG document.
func RenderSVG(f Frame, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := canvasSize(f)

	var buf bytes.Buffer
	if r.gallery {
		fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
			GalleryWidth, GalleryHeight, GalleryWidth, GalleryHeight)
		r.style.RenderDefs(&buf)
		fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="#ffffff"/>`+"\n", GalleryWidth, GalleryHeight)
		for _, s := range galleryScene {
			fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
				styles.Num(s.X), styles.Num(s.Y), styles.Num(s.W), styles.Num(s.H), s.color)
		}
		c := galleryCanvas
		fmt.Fprintf(&buf, `  <svg x="%s" y="%s" width="%s" height="%s" viewBox="0 0 %s %s" overflow="hidden">`+"\n",
			styles.Num(c.X), styles.Num(c.Y), styles.Num(c.W), styles.Num(c.H), styles.Num(w), styles.Num(h))
		renderCanvas(&buf, &r, f, w, h)
		buf.WriteString("  </svg>\n")
	} else {
		fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
			styles.Num(w), styles.Num(h), w, h)
		r.style.RenderDefs(&buf)
		renderCanvas(&buf, &r, f, w, h)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCanvas(buf *bytes.Buffer, r *svgRenderer, f Frame, w, h float64) {
	bg := "#EBEAE6"
	if f.Artwork != nil && f.Artwork.Background != "" {
		bg = f.Artwork.Background
	}
	fmt.Fprintf(buf, `  <rect width="%s" height="%s" fill="%s"/>`+"\n", styles.Num(w), styles.Num(h), bg)
	for _, b := range f.layers(!r.noPanels) {
		r.style.RenderBlock(buf, b)
	}
}

func canvasSize(f Frame) (float64, float64) {
	if f.Artwork == nil {
		return 600, 600
	}
	return f.Artwork.Width, f.Artwork.Height
}
