package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/render/roadgraph"
	"github.com/matzehuels/roadreveal/pkg/render/sink"
	"github.com/matzehuels/roadreveal/pkg/render/styles"
	"github.com/matzehuels/roadreveal/pkg/render/styles/handdrawn"
)

// NewStyle returns the named SVG style. The seed drives the hand-drawn
// wobble.
func NewStyle(name string, seed uint64) (styles.Style, error) {
	switch name {
	case StyleSimple:
		return styles.Simple{}, nil
	case StyleHanddrawn, "":
		if seed == 0 {
			seed = DefaultSeed
		}
		return handdrawn.New(seed), nil
	}
	return nil, ValidateStyle(name)
}

// Frame returns the drawable frame of res with reveal blocks revealed.
func (res *Result) Frame(reveal int, loudness float64) sink.Frame {
	return sink.Frame{
		Artwork:  res.Artwork,
		Path:     res.Payloads,
		Reveal:   reveal,
		Loudness: loudness,
	}
}

// Render draws res in one format with the first reveal path cells revealed.
// The render section selects style, panels, gallery and PNG scale; its
// Reveal, Progress and Loudness fields are ignored in favour of the
// arguments.
func Render(ctx context.Context, res *Result, format string, reveal int, loudness float64, opts RenderOptions) ([]byte, error) {
	if res == nil || res.Artwork == nil {
		return nil, errors.New(errors.ErrCodeInternal, "render: no artwork")
	}
	frame := res.Frame(reveal, loudness)

	switch format {
	case FormatSVG:
		svgOpts, err := svgOptions(opts)
		if err != nil {
			return nil, err
		}
		return sink.RenderSVG(frame, svgOpts...), nil
	case FormatPNG:
		svgOpts, err := svgOptions(opts)
		if err != nil {
			return nil, err
		}
		pngOpts := []sink.PNGOption{sink.WithPNGSVGOptions(svgOpts...)}
		if opts.Scale > 0 {
			pngOpts = append(pngOpts, sink.WithScale(opts.Scale))
		}
		return sink.RenderPNG(frame, pngOpts...)
	case FormatJSON:
		style := opts.Style
		if style == "" {
			style = DefaultStyle
		}
		return sink.RenderJSON(frame, sink.WithJSONStyle(style), sink.WithJSONIndent())
	case FormatDOT:
		n := min(max(reveal, 0), len(res.Path.Coords))
		return []byte(roadgraph.ToDOT(res.Grid, res.Path.Coords[:n], roadgraph.Options{})), nil
	}
	return nil, ValidateFormat(format)
}

// RenderAll draws res in every format of opts.
func RenderAll(ctx context.Context, res *Result, reveal int, loudness float64, opts RenderOptions) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := Render(ctx, res, format, reveal, loudness, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts RenderOptions) ([]sink.SVGOption, error) {
	style, err := NewStyle(opts.Style, opts.Seed)
	if err != nil {
		return nil, err
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.NoPanels {
		svgOpts = append(svgOpts, sink.WithoutPanels())
	}
	if opts.Gallery {
		svgOpts = append(svgOpts, sink.WithGallery())
	}
	return svgOpts, nil
}
