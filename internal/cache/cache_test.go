package cache

import (
	"testing"
	"time"

	"github.com/ppiankov/lexguard/internal/model"
)

func TestKey_DistinguishesPartBoundaries(t *testing.T) {
	a := Key("completion", "ab", "c")
	b := Key("completion", "a", "bc")
	if a == b {
		t.Fatalf("expected different keys, both were %s", a)
	}
	if Key("completion", "ab", "c") != a {
		t.Error("expected key to be deterministic")
	}
	if Key("embedding", "ab", "c") == a {
		t.Error("expected kind to be part of the key")
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("expected hit with v, got %q (found=%v)", val, found)
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected entry to expire")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key("completion", "prompt")

	if err := c.Set(key, []byte("answer"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A second instance over the same directory sees the entry
	other := NewDiskCache(dir, time.Hour)
	val, found := other.Get(key)
	if !found || string(val) != "answer" {
		t.Fatalf("expected persisted answer, got %q (found=%v)", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("expected deleting a missing key to succeed, got %v", err)
	}
}

func TestDiskCache_ExpiredEntry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("v"), time.Millisecond)

	time.Sleep(10 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected expired disk entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("v"), 0)

	c := NewLayeredCache(time.Hour, dir, time.Hour)
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("expected disk hit, got %q (found=%v)", val, found)
	}

	if _, found := c.memory.Get("k"); !found {
		t.Error("expected value to be promoted to memory")
	}
}

func TestNew_FromConfig(t *testing.T) {
	if c := New(model.CacheConfig{Enabled: false}); c != nil {
		t.Error("expected nil cache when disabled")
	}

	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a directory")
	}

	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a directory")
	}
}
