package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	img := env.writeMap(t, "map.png")

	if _, err := env.run(t, "render", img, "-o", filepath.Join(env.dir, "out.svg")); err != nil {
		t.Fatalf("render: %v", err)
	}
	stages := filepath.Join(env.cacheHome, appName, "stages")
	if n := countFiles(t, stages); n == 0 {
		t.Fatal("render left no cached stage results")
	}

	out, err := env.run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(env.cacheHome, appName) {
		t.Errorf("cache path = %q", out)
	}

	if _, err := env.run(t, "cache", "stats"); err != nil {
		t.Fatalf("cache stats: %v", err)
	}

	if _, err := env.run(t, "cache", "clear", "--stages"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n := countFiles(t, stages); n != 0 {
		t.Errorf("%d stage results left after clear", n)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == ".json" {
			n++
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	return n
}
