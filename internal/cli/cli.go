// Package cli implements the roadreveal command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadreveal/pkg/buildinfo"
	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/httputil"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "roadreveal"

	// downloadTTL is how long fetched map images are reused.
	downloadTTL = 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output (stdout unless a test replaces it).
	Out io.Writer

	configPath string
	config     pipeline.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		config: pipeline.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level. Debug level also routes pipeline,
// cache and HTTP events to the logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Roadreveal turns street maps into revealing Mondrian artworks",
		Long: `Roadreveal samples a street map image into a grid of road cells, walks
one long path through the road network and reveals a two-layer Mondrian-style
artwork block by block along that path, optionally paced by music.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/roadreveal/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.animateCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the --config file or, if none was given, the default
// config file when it exists.
func (c *CLI) loadConfig() error {
	if c.configPath != "" {
		cfg, err := pipeline.LoadConfig(c.configPath)
		if err != nil {
			return err
		}
		c.config = cfg
		c.Logger.Debug("loaded config", "path", c.configPath)
		return nil
	}
	cfg, path, err := pipeline.LoadDefaultConfig()
	if err != nil {
		return err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.config = cfg
	return nil
}

// options returns a copy of the configured pipeline options.
func (c *CLI) options() pipeline.Options {
	opts := c.config.Options
	opts.Render.Formats = append([]string(nil), opts.Render.Formats...)
	opts.Logger = c.Logger
	return opts
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	stages, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(stages, nil, c.Logger)
	runner.Fetcher = c.newFetcher(noCache)
	return runner, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, "stages"))
	if err != nil {
		return nil, err
	}
	return cache.Observe(fc), nil
}

// newFetcher returns the map downloader, backed by the download cache unless
// caching is disabled or the cache directory is unusable.
func (c *CLI) newFetcher(noCache bool) *httputil.Fetcher {
	opts := []httputil.FetchOption{httputil.WithLogger(c.Logger)}
	if !noCache {
		if dir, err := cacheDir(); err == nil {
			if dl, err := httputil.NewCache(filepath.Join(dir, "downloads"), downloadTTL); err == nil {
				opts = append(opts, httputil.WithCache(dl))
			}
		}
	}
	return httputil.NewFetcher(opts...)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/roadreveal/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// pipelineFlags holds the flags shared by every command that builds an
// artwork. Only flags set on the command line override the config file.
type pipelineFlags struct {
	spacing   int
	threshold uint8
	strategy  string
	maxSteps  int
	timeout   time.Duration
	style     string
	width     int
	height    int
	blockSize float64
	seed      uint64
	noCache   bool
	refresh   bool
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.spacing, "spacing", 0, "grid sampling spacing in pixels (default 25)")
	fs.Uint8Var(&f.threshold, "threshold", 0, "road brightness threshold per channel (default 240)")
	fs.StringVar(&f.strategy, "strategy", "", "path strategy: dfs (default), greedy")
	fs.IntVar(&f.maxSteps, "max-steps", 0, "bound the path search to this many steps (0 = unbounded)")
	fs.DurationVar(&f.timeout, "timeout", pipeline.DefaultSearchTimeout, "bound the path search time (0 = unbounded)")
	fs.StringVar(&f.style, "style", "", "visual style: handdrawn (default), simple")
	fs.IntVar(&f.width, "width", 0, "canvas width in pixels (default 600)")
	fs.IntVar(&f.height, "height", 0, "canvas height in pixels (default 600)")
	fs.Float64Var(&f.blockSize, "block-size", 0, "block side in image pixels (default 30)")
	fs.Uint64Var(&f.seed, "seed", 0, "colour seed (default 42)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results (results are still written)")
}

// apply copies the flags that were set on the command line into opts.
func (f *pipelineFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("spacing") {
		opts.Sample.Spacing = f.spacing
	}
	if fs.Changed("threshold") {
		opts.Sample.Threshold = f.threshold
	}
	if fs.Changed("strategy") {
		opts.Path.Strategy = f.strategy
	}
	if fs.Changed("max-steps") {
		opts.Path.MaxSteps = f.maxSteps
	}
	if fs.Changed("timeout") {
		opts.Path.Timeout = f.timeout
	}
	if fs.Changed("style") {
		opts.Render.Style = f.style
	}
	if fs.Changed("width") {
		opts.Render.Width = f.width
	}
	if fs.Changed("height") {
		opts.Render.Height = f.height
	}
	if fs.Changed("block-size") {
		opts.Render.BlockSize = f.blockSize
	}
	if fs.Changed("seed") {
		opts.Render.Seed = f.seed
	}
	opts.Refresh = f.refresh
}

// prepare loads src and runs the sample and path stages behind a spinner.
func (c *CLI) prepare(ctx context.Context, src string, opts pipeline.Options, noCache bool) (*pipeline.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	in, err := runner.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Building path through %s...", in.Name))
	spinner.Start()
	res, err := runner.Prepare(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Path construction failed")
		return nil, err
	}
	spinner.Stop()
	return res, nil
}
