// Package pipeline provides the artwork pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Sample: threshold a street map image into a road [grid.Grid]
//  2. Path: order the road cells into one long path ([path.Search])
//  3. Render: lay out the artwork and draw a frame (SVG, PNG, JSON, DOT)
//
// Each stage is cached by [Runner] under a key derived from the previous
// stage's output and the stage options, so a rerun with the same inputs
// returns immediately.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	in, err := runner.Load(ctx, "map.png")
//	if err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, in, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	svg := res.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/cursor"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/path"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default colour seed.
	DefaultSeed = uint64(42)

	// DefaultStyle is the default visual style.
	DefaultStyle = StyleHanddrawn

	// DefaultStrategy is the default path strategy.
	DefaultStrategy = string(path.StrategyDFS)

	// DefaultFPS is the default animation frame rate.
	DefaultFPS = 60.0
)

// Style names.
const (
	StyleSimple    = "simple"
	StyleHanddrawn = "handdrawn"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// ValidStyles lists the supported visual styles.
var ValidStyles = []string{StyleSimple, StyleHanddrawn}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the artwork pipeline. It decodes
// from JSON (API requests) and from the TOML config file sections.
type Options struct {
	Sample grid.SampleOptions `json:"sample" toml:"sample"`
	Path   PathOptions        `json:"path" toml:"path"`
	Cursor cursor.Config      `json:"cursor" toml:"cursor"`
	Render RenderOptions      `json:"render" toml:"render"`

	// Refresh bypasses cache reads (results are still written).
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Logger receives stage progress. Defaults to a discard logger.
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// PathOptions configures the path stage.
type PathOptions struct {
	Strategy string        `json:"strategy,omitempty" toml:"strategy"`
	MaxSteps int           `json:"max_steps,omitempty" toml:"max_steps"`
	Timeout  time.Duration `json:"timeout,omitempty" toml:"timeout"`
}

// RenderOptions configures the render stage.
type RenderOptions struct {
	Formats   []string `json:"formats,omitempty" toml:"formats"`
	Style     string   `json:"style,omitempty" toml:"style"`
	Width     int      `json:"width,omitempty" toml:"width"`
	Height    int      `json:"height,omitempty" toml:"height"`
	BlockSize float64  `json:"block_size,omitempty" toml:"block_size"`
	Seed      uint64   `json:"seed,omitempty" toml:"seed"`

	// Reveal is the number of revealed blocks. Nil reveals the whole path.
	Reveal *int `json:"reveal,omitempty" toml:"reveal"`

	// Progress reveals a fraction of the path when Reveal is nil.
	Progress *float64 `json:"progress,omitempty" toml:"progress"`

	// Loudness drives the decorative panels (0 when there is no audio).
	Loudness float64 `json:"loudness,omitempty" toml:"loudness"`

	NoPanels bool    `json:"no_panels,omitempty" toml:"no_panels"`
	Gallery  bool    `json:"gallery,omitempty" toml:"gallery"`
	Scale    float64 `json:"scale,omitempty" toml:"scale"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the sampled road grid and Index its reveal index.
	Grid  *grid.Grid
	Index *grid.Index

	// GridHash is the content hash of the grid, used in cache keys and API
	// responses.
	GridHash string

	// Source is the geometry of the sampled image.
	Source artwork.Source

	// Path is the built path with its search statistics.
	Path path.Result

	// Payloads is Path mapped through Index.
	Payloads []grid.PayloadID

	// Artwork is the block model the frames are drawn from.
	Artwork *artwork.Artwork

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Cols       int
	Roads      int
	PathLen    int
	SampleTime time.Duration
	PathTime   time.Duration
	RenderTime time.Duration
}

// Coverage returns the fraction of road cells on the path.
func (s Stats) Coverage() float64 {
	if s.Roads == 0 {
		return 0
	}
	return float64(s.PathLen) / float64(s.Roads)
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SampleHit bool
	PathHit   bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !slices.Contains(ValidStyles, style) {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: simple, handdrawn)", style)
	}
	return nil
}

// ValidateStrategy checks that a path strategy is valid.
func ValidateStrategy(strategy string) error {
	if _, err := path.ParseStrategy(strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStrategy, err, "invalid strategy")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every section and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero fields of every section.
func (o *Options) SetDefaults() {
	o.Sample = o.Sample.WithDefaults()
	if o.Path.Strategy == "" {
		o.Path.Strategy = DefaultStrategy
	}
	o.Cursor = o.Cursor.WithDefaults()
	if len(o.Render.Formats) == 0 {
		o.Render.Formats = []string{FormatSVG}
	}
	if o.Render.Style == "" {
		o.Render.Style = DefaultStyle
	}
	if o.Render.Width <= 0 {
		o.Render.Width = artwork.DefaultCanvas
	}
	if o.Render.Height <= 0 {
		o.Render.Height = artwork.DefaultCanvas
	}
	if o.Render.BlockSize <= 0 {
		o.Render.BlockSize = artwork.DefaultBlockSize
	}
	if o.Render.Seed == 0 {
		o.Render.Seed = DefaultSeed
	}
	if o.Render.Scale <= 0 {
		o.Render.Scale = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values without changing them.
func (o *Options) Validate() error {
	if err := ValidateStrategy(o.Path.Strategy); err != nil {
		return err
	}
	if o.Path.MaxSteps < 0 || o.Path.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "path budget must not be negative")
	}
	if err := o.Cursor.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid cursor config")
	}
	if err := ValidateFormats(o.Render.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Render.Style); err != nil {
		return err
	}
	if o.Render.Reveal != nil && *o.Render.Reveal < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "reveal must not be negative")
	}
	if p := o.Render.Progress; p != nil && (*p < 0 || *p > 1) {
		return errors.New(errors.ErrCodeInvalidInput, "progress must be within [0, 1], got %v", *p)
	}
	return nil
}

// Strategy returns the parsed path strategy.
func (o *Options) Strategy() path.Strategy {
	s, _ := path.ParseStrategy(o.Path.Strategy)
	return s
}

// Search returns the path builder configured by the path section.
func (o *Options) Search() path.Search {
	return path.Search{
		Strategy: o.Strategy(),
		MaxSteps: o.Path.MaxSteps,
		Timeout:  o.Path.Timeout,
	}
}

// ArtworkOptions returns the artwork layout options of the render section.
func (o *Options) ArtworkOptions() artwork.Options {
	return artwork.Options{
		Width:     o.Render.Width,
		Height:    o.Render.Height,
		BlockSize: o.Render.BlockSize,
		Seed:      o.Render.Seed,
	}
}

// RevealFor resolves Reveal and Progress against a path of length n.
func (r RenderOptions) RevealFor(n int) int {
	switch {
	case r.Reveal != nil:
		return min(max(*r.Reveal, 0), n)
	case r.Progress != nil:
		return int(float64(n) * min(max(*r.Progress, 0), 1))
	}
	return n
}

// SampleKeyOpts returns cache key options for the sample stage.
func (o *Options) SampleKeyOpts() cache.SampleKeyOpts {
	return cache.SampleKeyOpts{Spacing: o.Sample.Spacing, Threshold: o.Sample.Threshold}
}

// PathKeyOpts returns cache key options for the path stage.
func (o *Options) PathKeyOpts() cache.PathKeyOpts {
	return cache.PathKeyOpts{Strategy: o.Path.Strategy, MaxSteps: o.Path.MaxSteps}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string, reveal int) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Style:    o.Render.Style,
		Width:    float64(o.Render.Width),
		Height:   float64(o.Render.Height),
		Block:    o.Render.BlockSize,
		Scale:    o.Render.Scale,
		Seed:     o.Render.Seed,
		Reveal:   reveal,
		Loudness: o.Render.Loudness,
		Panels:   !o.Render.NoPanels,
		Gallery:  o.Render.Gallery,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("spacing=%d threshold=%d strategy=%s style=%s",
		o.Sample.Spacing, o.Sample.Threshold, o.Path.Strategy, o.Render.Style)
}
