package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
	"github.com/matzehuels/roadreveal/pkg/server"
	"github.com/matzehuels/roadreveal/pkg/store"
)

// apiKeyScope separates API cache entries from CLI entries in a shared cache.
const apiKeyScope = "api:"

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sc      pipeline.ServerConfig
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for uploading maps and drawing reveal frames.

Artwork records are kept in MongoDB when --mongo is set and in memory
otherwise. Stage results are cached in Redis when --redis is set and in the
local file cache otherwise. Flags override the [server] section of the
config file.`,
		Example: `  roadreveal serve --addr :8080
  roadreveal serve --redis redis://localhost:6379/0 --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config.Server
			fs := cmd.Flags()
			if fs.Changed("addr") {
				cfg.Addr = sc.Addr
			}
			if fs.Changed("redis") {
				cfg.Redis = sc.Redis
			}
			if fs.Changed("mongo") {
				cfg.Mongo = sc.Mongo
			}
			if fs.Changed("database") {
				cfg.Database = sc.Database
			}
			if fs.Changed("max-upload") {
				cfg.MaxUpload = sc.MaxUpload
			}
			return c.runServe(cmd.Context(), cfg.WithDefaults(), noCache)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&sc.Addr, "addr", pipeline.DefaultAddr, "listen address")
	fs.StringVar(&sc.Redis, "redis", "", "Redis URL for the shared stage cache")
	fs.StringVar(&sc.Mongo, "mongo", "", "MongoDB URI for artwork records")
	fs.StringVar(&sc.Database, "database", pipeline.DefaultDatabase, "MongoDB database name")
	fs.Int64Var(&sc.MaxUpload, "max-upload", pipeline.DefaultMaxUpload, "maximum upload size in bytes")
	fs.BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg pipeline.ServerConfig, noCache bool) error {
	stages, err := c.serverCache(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(stages, cache.NewScopedKeyer(nil, apiKeyScope), c.Logger)
	runner.Fetcher = c.newFetcher(noCache)
	defer runner.Close()

	st, err := c.serverStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "error", err)
		}
	}()

	defaults := c.options()
	if err := defaults.ValidateAndSetDefaults(); err != nil {
		return err
	}
	srv := server.New(runner, st,
		server.WithLogger(c.Logger),
		server.WithDefaults(defaults),
		server.WithMaxUpload(cfg.MaxUpload),
		server.WithTimeout(cfg.WriteTimeout))

	printSuccess("Serving on %s", cfg.Addr)
	return srv.ListenAndServe(ctx, cfg)
}

func (c *CLI) serverCache(ctx context.Context, cfg pipeline.ServerConfig, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case cfg.Redis != "":
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache")
		return cache.Observe(rc), nil
	}
	return newCache(false)
}

func (c *CLI) serverStore(ctx context.Context, cfg pipeline.ServerConfig) (store.Store, error) {
	if cfg.Mongo == "" {
		c.Logger.Warn("no --mongo given; artwork records are kept in memory")
		return store.NewMemory(), nil
	}
	m, err := store.NewMongo(ctx, cfg.Mongo, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	c.Logger.Info("using mongo store", "database", cfg.Database)
	return m, nil
}
