package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/httputil"
	pkgio "github.com/matzehuels/roadreveal/pkg/io"
)

// Input is the raw material of a pipeline run: either encoded image bytes
// or a ready-made grid.
type Input struct {
	// Name identifies the input in logs (file name or URL).
	Name string

	// Image holds encoded image bytes. Ignored when Grid is set.
	Image []byte

	// Grid is a grid read from a grid file; sampling is skipped.
	Grid *grid.Grid
}

// ImageInput wraps encoded image bytes.
func ImageInput(name string, data []byte) Input {
	return Input{Name: name, Image: data}
}

// GridInput wraps an existing grid.
func GridInput(name string, g *grid.Grid) Input {
	return Input{Name: name, Grid: g}
}

// Load reads src, which is an http(s) URL, a grid file (.json, .txt) or an
// image file.
func (r *Runner) Load(ctx context.Context, src string) (Input, error) {
	if httputil.IsURL(src) {
		body, err := r.fetcher().Fetch(ctx, src)
		if err != nil {
			return Input{}, err
		}
		return ImageInput(src, body), nil
	}
	if err := errors.ValidateSource(src); err != nil {
		return Input{}, err
	}
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "no such file %s", src)
		}
		return Input{}, fmt.Errorf("stat %s: %w", src, err)
	}
	if pkgio.IsGridFile(src) {
		g, err := pkgio.ImportGrid(src)
		if err != nil {
			return Input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "grid file %s", src)
		}
		return GridInput(filepath.Base(src), g), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return Input{}, fmt.Errorf("read %s: %w", src, err)
	}
	return ImageInput(filepath.Base(src), data), nil
}

// decode samples the image of in.
func decode(in Input, opts grid.SampleOptions) (*grid.Grid, int, int, error) {
	img, _, err := grid.DecodeBounded(in.Image, opts.MaxPixels)
	if err != nil {
		return nil, 0, 0, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode %s", in.Name)
	}
	b := img.Bounds()
	g, _ := grid.Sample(img, opts)
	return g, b.Dx(), b.Dy(), nil
}
