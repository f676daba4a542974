package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	var c Cache = NullCache{}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "key"); err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want a miss", data, hit, err)
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(2)
	now := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "a", []byte("A"), time.Minute)
	c.Set(ctx, "b", []byte("B"), time.Hour)
	if data, hit, _ := c.Get(ctx, "a"); !hit || string(data) != "A" {
		t.Fatalf("Get(a) = %q, %v", data, hit)
	}

	// Full: the entry expiring first goes.
	c.Set(ctx, "c", []byte("C"), 0)
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("a should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("b should have expired")
	}
	if _, hit, _ := c.Get(ctx, "c"); !hit {
		t.Error("c has no expiry")
	}

	c.Delete(ctx, "c")
	if c.Len() != 0 {
		t.Errorf("Len() = %d after delete, want 0", c.Len())
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "graph", []byte("<svg/>"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if data, hit, _ := c.Get(ctx, "graph"); !hit || string(data) != "<svg/>" {
		t.Errorf("Get(graph) = %q, %v", data, hit)
	}

	// A corrupt entry reads as a miss and is removed.
	path := c.path("graph")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "graph"); hit {
		t.Error("corrupt entry should miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should miss")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
	if rel, _ := filepath.Rel(dir, path); len(strings.Split(rel, string(filepath.Separator))) != 2 {
		t.Errorf("entry path %q should be one level below the cache dir", rel)
	}
}

func TestGraphKey(t *testing.T) {
	body := []byte("name = \"menu\"")
	k := GraphKey(body, "svg", true)
	if !strings.HasPrefix(k, "graph:") || len(k) != len("graph:")+64 {
		t.Errorf("GraphKey() = %q", k)
	}
	if k != GraphKey(body, "svg", true) {
		t.Error("GraphKey should be deterministic")
	}
	if k == GraphKey(body, "dot", true) || k == GraphKey(body, "svg", false) {
		t.Error("format and run state should change the key")
	}
	if len(Hash([]byte("x"))) != 64 {
		t.Error("Hash should be 64 hex characters")
	}
}
