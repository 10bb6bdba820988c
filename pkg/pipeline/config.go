package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ServerConfig is the [server] section of the config file.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	Redis        string        `toml:"redis"`
	Mongo        string        `toml:"mongo"`
	Database     string        `toml:"database"`
	MaxUpload    int64         `toml:"max_upload"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Server defaults.
const (
	DefaultAddr      = ":8080"
	DefaultDatabase  = "roadreveal"
	DefaultMaxUpload = 16 << 20
)

// DefaultSearchTimeout bounds the path search of configured runs when the
// config file leaves [path] timeout unset. An explicit "0s" keeps the search
// unbounded.
const DefaultSearchTimeout = 10 * time.Second

// DefaultConfig is the configuration used when no file is present.
func DefaultConfig() Config {
	var cfg Config
	cfg.Path.Timeout = DefaultSearchTimeout
	return cfg
}

// WithDefaults fills zero fields.
func (s ServerConfig) WithDefaults() ServerConfig {
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.Database == "" {
		s.Database = DefaultDatabase
	}
	if s.MaxUpload <= 0 {
		s.MaxUpload = DefaultMaxUpload
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = 2 * time.Minute
	}
	return s
}

// Config is the on-disk configuration: the pipeline sections plus [server].
//
//	[sample]
//	spacing = 25
//	threshold = 240
//
//	[path]
//	strategy = "dfs"
//	timeout = "10s"
//
//	[cursor]
//	multiplier = 0.22
//
//	[render]
//	style = "handdrawn"
//	formats = ["svg", "png"]
//
//	[server]
//	addr = ":8080"
type Config struct {
	Options
	Server ServerConfig `toml:"server"`
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/roadreveal/config.toml (or the
// platform equivalent).
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "roadreveal", "config.toml"), nil
}

// LoadConfig decodes a TOML config file. Unknown keys are an error so that
// typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadDefaultConfig loads the config at [DefaultConfigPath] if it exists.
// A missing file yields [DefaultConfig].
func LoadDefaultConfig() (Config, string, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return DefaultConfig(), "", nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), "", nil
	}
	cfg, err := LoadConfig(path)
	return cfg, path, err
}
