package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/roadreveal/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "sample:x"); hit || err != nil {
		t.Fatalf("empty cache Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "sample:x", []byte("grid"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "sample:x")
	if err != nil || !hit || string(data) != "grid" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	n, size, err := c.Stats()
	if err != nil || n != 1 || size == 0 {
		t.Errorf("Stats = %d, %d, %v", n, size, err)
	}

	if err := c.Delete(ctx, "sample:x"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "sample:x"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "sample:x"); hit {
		t.Error("entry survived Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero TTL entry should not expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	p := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry Get = %v, %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _, _ := c.Stats(); n != 0 {
		t.Errorf("%d entries after Clear", n)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Error("Clear should keep the directory")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	tests := []struct {
		name string
		a, b string
	}{
		{"sample spacing", k.SampleKey("img", SampleKeyOpts{Spacing: 25}), k.SampleKey("img", SampleKeyOpts{Spacing: 20})},
		{"sample image", k.SampleKey("img1", SampleKeyOpts{}), k.SampleKey("img2", SampleKeyOpts{})},
		{"path strategy", k.PathKey("g", PathKeyOpts{Strategy: "dfs"}), k.PathKey("g", PathKeyOpts{Strategy: "greedy"})},
		{"path budget", k.PathKey("g", PathKeyOpts{MaxSteps: 0}), k.PathKey("g", PathKeyOpts{MaxSteps: 10})},
		{"artifact format", k.ArtifactKey("p", ArtifactKeyOpts{Format: "svg"}), k.ArtifactKey("p", ArtifactKeyOpts{Format: "png"})},
		{"artifact reveal", k.ArtifactKey("p", ArtifactKeyOpts{Reveal: 1}), k.ArtifactKey("p", ArtifactKeyOpts{Reveal: 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a == tt.b {
				t.Errorf("keys should differ: %s", tt.a)
			}
		})
	}

	if got := k.SampleKey("img", SampleKeyOpts{}); !strings.HasPrefix(got, "sample:") {
		t.Errorf("SampleKey = %s", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "api:")
	inner := NewDefaultKeyer()

	got := scoped.PathKey("g", PathKeyOpts{})
	if got != "api:"+inner.PathKey("g", PathKeyOpts{}) {
		t.Errorf("PathKey = %s", got)
	}
	if KindOf(got) != KindPath {
		t.Errorf("KindOf(%s) = %s", got, KindOf(got))
	}
}

func TestKindOf(t *testing.T) {
	tests := map[string]string{
		"sample:abc":          KindSample,
		"path:abc":            KindPath,
		"artifact:abc":        KindArtifact,
		"api:artifact:abc":    KindArtifact,
		"something-else:0123": "unknown",
	}
	for key, want := range tests {
		if got := KindOf(key); got != want {
			t.Errorf("KindOf(%q) = %q, want %q", key, got, want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets []string
}

func (h *countingHooks) OnCacheHit(_ context.Context, kind string) { h.hits = append(h.hits, kind) }
func (h *countingHooks) OnCacheMiss(_ context.Context, kind string) {
	h.misses = append(h.misses, kind)
}
func (h *countingHooks) OnCacheSet(_ context.Context, kind string, _ int) {
	h.sets = append(h.sets, kind)
}

func TestObserve(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, _ := NewFileCache(t.TempDir())
	c := Observe(fc)

	c.Get(ctx, "path:1")
	c.Set(ctx, "path:1", []byte("x"), 0)
	c.Get(ctx, "path:1")

	if len(hooks.misses) != 1 || len(hooks.sets) != 1 || len(hooks.hits) != 1 {
		t.Errorf("hits=%v misses=%v sets=%v", hooks.hits, hooks.misses, hooks.sets)
	}
	if hooks.hits[0] != KindPath {
		t.Errorf("hit kind = %s", hooks.hits[0])
	}
	if Observe(nil) != nil {
		t.Error("Observe(nil) should be nil")
	}
}

func TestRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("expected parse error")
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	c := NewRedisCacheFromClient(client, WithRedisPrefix("rr:"))
	defer c.Close()
	if got := c.Key("sample:1"); got != "rr:sample:1" {
		t.Errorf("Key = %s", got)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	permanent := errors.New("permanent")

	calls := 0
	if err := retry(ctx, 3, time.Millisecond, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err := retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err=%v calls=%d", err, calls)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := retry(cctx, 3, time.Hour, func() error { return Retryable(ErrUnavailable) }); err != context.Canceled {
		t.Errorf("cancelled: %v", err)
	}

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
}
