package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/roadreveal/pkg/artwork"
	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/errors"
	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/httputil"
	pkgio "github.com/matzehuels/roadreveal/pkg/io"
	"github.com/matzehuels/roadreveal/pkg/observability"
	"github.com/matzehuels/roadreveal/pkg/path"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Sampled is the output of the sample stage.
type Sampled struct {
	Grid   *grid.Grid
	Index  *grid.Index
	Source artwork.Source
	Hash   string
}

// sampleEntry is the cached form of [Sampled]. The index is rebuilt from the
// grid since ids follow row-major road order.
type sampleEntry struct {
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Spacing int             `json:"spacing"`
	Grid    json.RawMessage `json:"grid"`
}

// Execute runs sample → path → render with caching.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res, err := r.Prepare(ctx, in, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.Stats.RenderTime = time.Since(renderStart)
	res.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Render.Formats,
		"duration", res.Stats.RenderTime)

	return res, nil
}

// Prepare runs the sample and path stages and lays out the artwork, leaving
// rendering to the caller. The animate, play and serve commands use it to
// draw many frames from one result.
func (r *Runner) Prepare(ctx context.Context, in Input, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Sample
	sampleStart := time.Now()
	s, sampleHit, err := r.SampleWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	res.Grid, res.Index, res.Source, res.GridHash = s.Grid, s.Index, s.Source, s.Hash
	res.Stats.SampleTime = time.Since(sampleStart)
	res.Stats.Rows = s.Grid.Rows()
	res.Stats.Cols = s.Grid.Cols()
	res.Stats.Roads = s.Grid.RoadCount()
	res.CacheInfo.SampleHit = sampleHit

	r.Logger.Info("sampled grid",
		"rows", res.Stats.Rows,
		"cols", res.Stats.Cols,
		"roads", res.Stats.Roads,
		"duration", res.Stats.SampleTime)

	// Stage 2: Path
	pathStart := time.Now()
	p, pathHit, err := r.PathWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("path: %w", err)
	}
	res.Path = p
	res.Payloads = path.Payloads(p.Coords, s.Index)
	res.Stats.PathTime = time.Since(pathStart)
	res.Stats.PathLen = p.Len()
	res.CacheInfo.PathHit = pathHit

	r.Logger.Info("built path",
		"length", p.Len(),
		"component", p.Component,
		"exhausted", p.Exhausted,
		"duration", res.Stats.PathTime)

	res.Artwork = artwork.Build(s.Grid, s.Source, opts.ArtworkOptions())
	return res, nil
}

// SampleWithCacheInfo samples the input image with caching and returns cache
// hit info. Grid inputs are passed through.
func (r *Runner) SampleWithCacheInfo(ctx context.Context, in Input, opts Options) (*Sampled, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnSampleStart(ctx, in.Name)
	start := time.Now()

	s, hit, err := r.sample(ctx, in, opts)
	if err != nil {
		hooks.OnSampleComplete(ctx, in.Name, 0, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnSampleComplete(ctx, in.Name, s.Grid.Rows(), s.Grid.Cols(), s.Grid.RoadCount(), time.Since(start), nil)
	return s, hit, nil
}

func (r *Runner) sample(ctx context.Context, in Input, opts Options) (*Sampled, bool, error) {
	if in.Grid != nil {
		g := in.Grid
		return &Sampled{
			Grid:   g,
			Index:  grid.IndexRoads(g),
			Source: artwork.SourceFor(g, opts.Sample.Spacing),
			Hash:   GridHash(g),
		}, false, nil
	}
	if len(in.Image) == 0 {
		return nil, false, errors.New(errors.ErrCodeInvalidImage, "%s: empty input", in.Name)
	}

	cacheKey := r.Keyer.SampleKey(cache.Hash(in.Image), opts.SampleKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err != nil {
			r.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		} else if hit {
			if s, err := decodeSample(data); err == nil {
				return s, true, nil
			}
		}
	}

	g, w, h, err := decode(in, opts.Sample)
	if err != nil {
		return nil, false, err
	}
	s := &Sampled{
		Grid:   g,
		Index:  grid.IndexRoads(g),
		Source: artwork.Source{Width: w, Height: h, Spacing: opts.Sample.Spacing},
		Hash:   GridHash(g),
	}

	if data, err := encodeSample(s); err == nil {
		r.store(ctx, cacheKey, data, cache.TTLSample)
	}
	return s, false, nil
}

// PathWithCacheInfo builds the path with caching and returns cache hit info.
//
// A search cut short by its time budget depends on machine speed, so such
// results are not cached. Step-bounded searches are deterministic and are.
func (r *Runner) PathWithCacheInfo(ctx context.Context, s *Sampled, opts Options) (path.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return path.Result{}, false, err
	}
	hooks := observability.Pipeline()
	strategy := string(opts.Strategy())
	roads := s.Grid.RoadCount()
	hooks.OnPathStart(ctx, strategy, roads)
	start := time.Now()

	cacheKey := r.Keyer.PathKey(s.Hash, opts.PathKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err != nil {
			r.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		} else if hit {
			var cached path.Result
			if err := json.Unmarshal(data, &cached); err == nil && path.Validate(s.Grid, cached.Coords) == nil {
				hooks.OnPathComplete(ctx, strategy, cached.Len(), cached.Exhausted, time.Since(start), nil)
				return cached, true, nil
			}
		}
	}

	search := opts.Search()
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); search.Timeout == 0 || left < search.Timeout {
			search.Timeout = max(left, time.Millisecond)
		}
	}
	search.Cancel = func() bool { return ctx.Err() != nil }
	search.Progress = func(steps, best int) {
		r.Logger.Debug("searching", "steps", steps, "best", best, "roads", roads)
	}

	res := search.Build(s.Grid)
	if err := ctx.Err(); err != nil {
		hooks.OnPathComplete(ctx, strategy, res.Len(), res.Exhausted, time.Since(start), err)
		return path.Result{}, false, err
	}
	if res.Exhausted {
		r.Logger.Warn("path search budget exhausted; using best path found",
			"length", res.Len(), "component", res.Component, "steps", res.Steps)
	}

	if !res.Exhausted || search.Timeout == 0 {
		if data, err := json.Marshal(res); err == nil {
			r.store(ctx, cacheKey, data, cache.TTLPath)
		}
	}
	hooks.OnPathComplete(ctx, strategy, res.Len(), res.Exhausted, time.Since(start), nil)
	return res, false, nil
}

// RenderWithCacheInfo renders every requested format with caching and
// returns whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Render.Formats)
	start := time.Now()

	reveal := opts.Render.RevealFor(len(res.Payloads))
	pathData, _ := json.Marshal(res.Path.Coords)
	pathHash := cache.Hash(append([]byte(res.GridHash), pathData...))

	artifacts := make(map[string][]byte, len(opts.Render.Formats))
	allCached := !opts.Refresh
	for _, format := range opts.Render.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(pathHash, opts.ArtifactKeyOpts(format, reveal))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			allCached = false
			break
		}
		artifacts[format] = data
	}
	if allCached && len(artifacts) == len(opts.Render.Formats) {
		hooks.OnRenderComplete(ctx, opts.Render.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}

	rendered, err := RenderAll(ctx, res, reveal, opts.Render.Loudness, opts.Render)
	hooks.OnRenderComplete(ctx, opts.Render.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(pathHash, opts.ArtifactKeyOpts(format, reveal))
		r.store(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes to the cache, logging failures at debug level only.
func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", key, "error", err)
	}
}

func (r *Runner) fetcher() *httputil.Fetcher {
	if r.Fetcher != nil {
		return r.Fetcher
	}
	return httputil.NewFetcher(httputil.WithLogger(r.Logger))
}

// GridHash returns the content hash of g.
func GridHash(g *grid.Grid) string {
	return cache.Hash(fmt.Appendf(nil, "%dx%d\n%s", g.Rows(), g.Cols(), g))
}

func encodeSample(s *Sampled) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteGrid(s.Grid, &buf); err != nil {
		return nil, err
	}
	return json.Marshal(sampleEntry{
		Width:   s.Source.Width,
		Height:  s.Source.Height,
		Spacing: s.Source.Spacing,
		Grid:    buf.Bytes(),
	})
}

func decodeSample(data []byte) (*Sampled, error) {
	var e sampleEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	g, err := pkgio.ReadGrid(bytes.NewReader(e.Grid))
	if err != nil {
		return nil, err
	}
	return &Sampled{
		Grid:   g,
		Index:  grid.IndexRoads(g),
		Source: artwork.Source{Width: e.Width, Height: e.Height, Spacing: e.Spacing},
		Hash:   GridHash(g),
	}, nil
}
