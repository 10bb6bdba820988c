package grid

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultSpacing is the sampling stride in source pixels.
	DefaultSpacing = 25

	// DefaultThreshold is the per-channel brightness a pixel must exceed to
	// count as road. Street maps draw roads in near-white.
	DefaultThreshold = 240

	// DefaultMaxPixels bounds the decoded image area. Decoding allocates the
	// full pixel buffer, so the check runs on the header first.
	DefaultMaxPixels = 1 << 25
)

// SampleOptions configures [Sample].
type SampleOptions struct {
	Spacing   int   `json:"spacing,omitempty" toml:"spacing"`
	Threshold uint8 `json:"threshold,omitempty" toml:"threshold"`

	// MaxPixels rejects images whose width·height exceeds it.
	MaxPixels int `json:"max_pixels,omitempty" toml:"max_pixels"`
}

// WithDefaults fills zero fields with the package defaults.
func (o SampleOptions) WithDefaults() SampleOptions {
	if o.Spacing <= 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// Dimensions returns the grid size Sample produces for an image of the given
// pixel size.
func (o SampleOptions) Dimensions(width, height int) (rows, cols int) {
	o = o.WithDefaults()
	return ceilDiv(height, o.Spacing), ceilDiv(width, o.Spacing)
}

// Sample thresholds img on a fixed-stride grid and returns the road grid
// together with a reveal index numbering road cells in row-major order.
// Cell (r, c) samples the pixel at (c·spacing, r·spacing) relative to the
// image bounds.
func Sample(img image.Image, opts SampleOptions) (*Grid, *Index) {
	opts = opts.WithDefaults()
	b := img.Bounds()
	rows, cols := opts.Dimensions(b.Dx(), b.Dy())

	g := New(rows, cols, func(c Coord) bool {
		px := color.NRGBAModel.Convert(img.At(b.Min.X+c.Col*opts.Spacing, b.Min.Y+c.Row*opts.Spacing)).(color.NRGBA)
		return px.R > opts.Threshold && px.G > opts.Threshold && px.B > opts.Threshold
	})
	return g, IndexRoads(g)
}

// Decode reads an image in any registered format. PNG, JPEG, GIF, BMP, TIFF
// and WebP are available.
func Decode(r io.Reader) (image.Image, string, error) {
	return image.Decode(r)
}

// ErrTooLarge is returned by [DecodeBounded] for images above the pixel cap.
var ErrTooLarge = errors.New("image too large")

// DecodeBounded reads the image header first and refuses to decode images
// with more than maxPixels pixels. maxPixels <= 0 means [DefaultMaxPixels].
func DecodeBounded(data []byte, maxPixels int) (image.Image, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("invalid image size %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return image.Decode(bytes.NewReader(data))
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
