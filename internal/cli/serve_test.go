package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/roadreveal/pkg/cache"
	"github.com/matzehuels/roadreveal/pkg/pipeline"
	"github.com/matzehuels/roadreveal/pkg/store"
)

func TestServerCache(t *testing.T) {
	newTestEnv(t)
	c := New(&bytes.Buffer{}, LogInfo)
	ctx := context.Background()

	nc, err := c.serverCache(ctx, pipeline.ServerConfig{}, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := nc.(*cache.NullCache); !ok {
		t.Errorf("--no-cache gave %T, want *cache.NullCache", nc)
	}

	fc, err := c.serverCache(ctx, pipeline.ServerConfig{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.(*cache.NullCache); ok {
		t.Error("default server cache should be the file cache")
	}

	if _, err := c.serverCache(ctx, pipeline.ServerConfig{Redis: "::not a url"}, false); err == nil {
		t.Error("expected an error for a malformed redis url")
	}
}

func TestServerStoreDefaultsToMemory(t *testing.T) {
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	st, err := c.serverStore(context.Background(), pipeline.ServerConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*store.Memory); !ok {
		t.Errorf("store = %T, want *store.Memory", st)
	}
	if !strings.Contains(logs.String(), "in memory") {
		t.Errorf("expected a warning about the memory store, got %q", logs.String())
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	newTestEnv(t)
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--no-cache"})
	root.SetErr(&logs)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if !strings.Contains(logs.String(), "shutting down") {
		t.Errorf("expected a shutdown log line, got %q", logs.String())
	}
}
