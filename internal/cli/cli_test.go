package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roadreveal/pkg/grid"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
)

const testMap = `
###.
..#.
..##
`

// testEnv isolates a CLI run: cache and config directories live under a
// temp dir.
type testEnv struct {
	dir       string
	cacheHome string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{dir: dir, cacheHome: filepath.Join(dir, "cache")}
	t.Setenv("XDG_CACHE_HOME", env.cacheHome)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return env
}

// writeMap paints testMap as a street map (25 px per cell) into the env dir.
func (e *testEnv) writeMap(t *testing.T, name string) string {
	t.Helper()
	const spacing = 25
	g := grid.MustParse(testMap)
	img := image.NewRGBA(image.Rect(0, 0, g.Cols()*spacing, g.Rows()*spacing))
	for y := range img.Bounds().Dy() {
		for x := range img.Bounds().Dx() {
			c := color.RGBA{200, 200, 200, 255}
			if g.Road(grid.Coord{Row: y / spacing, Col: x / spacing}) {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(e.dir, name)
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// run executes the root command with args and returns what it wrote to Out.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"render", "path", "animate", "play", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConfigFile(t *testing.T) {
	env := newTestEnv(t)
	img := env.writeMap(t, "map.png")
	cfg := filepath.Join(env.dir, "roadreveal.toml")
	content := `
[sample]
spacing = 25

[render]
style = "simple"
formats = ["svg", "json"]
`
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	base := filepath.Join(env.dir, "configured")
	if _, err := env.run(t, "--config", cfg, "render", img, "-o", base, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("formats from config not applied: %v", err)
	}
	if !strings.Contains(string(data), `"style": "simple"`) {
		t.Errorf("style from config not applied:\n%.200s", data)
	}
}

func TestConfigFileUnknownKey(t *testing.T) {
	env := newTestEnv(t)
	cfg := filepath.Join(env.dir, "bad.toml")
	if err := os.WriteFile(cfg, []byte("[render]\ncolour = \"red\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := env.run(t, "--config", cfg, "cache", "path")
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Errorf("err = %v, want unknown keys", err)
	}
}

func TestDefaultConfigFileIsLoaded(t *testing.T) {
	env := newTestEnv(t)
	img := env.writeMap(t, "map.png")
	dir := filepath.Join(env.dir, "config", appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[render]\nformats = [\"json\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	base := filepath.Join(env.dir, "default")
	if _, err := env.run(t, "render", img, "-o", base, "--spacing", "25", "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("default config not applied: %v", err)
	}
}

func TestSearchTimeoutDefault(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
		want   time.Duration
	}{
		{"no config", "", nil, pipeline.DefaultSearchTimeout},
		{"config without timeout", "[path]\nstrategy = \"dfs\"\n", nil, pipeline.DefaultSearchTimeout},
		{"config timeout", "[path]\ntimeout = \"2s\"\n", nil, 2 * time.Second},
		{"config unbounded", "[path]\ntimeout = \"0s\"\n", nil, 0},
		{"flag unbounded", "", []string{"--timeout", "0"}, 0},
		{"flag over config", "[path]\ntimeout = \"2s\"\n", []string{"--timeout", "3s"}, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			c := New(&bytes.Buffer{}, log.InfoLevel)
			if tt.config != "" {
				c.configPath = filepath.Join(env.dir, "config.toml")
				if err := os.WriteFile(c.configPath, []byte(tt.config), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if err := c.loadConfig(); err != nil {
				t.Fatal(err)
			}

			var f pipelineFlags
			cmd := &cobra.Command{Use: "render"}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			opts := c.options()
			f.apply(cmd, &opts)
			if opts.Path.Timeout != tt.want {
				t.Errorf("timeout = %v, want %v", opts.Path.Timeout, tt.want)
			}
		})
	}
}
