package cache

import (
	"strings"
	"testing"
	"time"
)

func TestQueryKey_Deterministic(t *testing.T) {
	a := QueryKey("radioterapia prostata", 5)
	b := QueryKey("radioterapia prostata", 5)
	if a != b {
		t.Error("Expected identical keys for identical inputs")
	}
	if !strings.HasPrefix(a, "oncoguard:v1:") {
		t.Errorf("Expected versioned key prefix, got %q", a)
	}
}

func TestQueryKey_DiscriminatesInputs(t *testing.T) {
	base := QueryKey("radioterapia prostata", 5)
	if QueryKey("radioterapia mama", 5) == base {
		t.Error("Expected different keys for different queries")
	}
	if QueryKey("radioterapia prostata", 3) == base {
		t.Error("Expected different keys for different topK")
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("Expected hit with 'v', got %q / %v", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_Roundtrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("clave", []byte("contenido"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, found := c.Get("clave")
	if !found || string(val) != "contenido" {
		t.Errorf("Expected hit with 'contenido', got %q / %v", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("clave", []byte("contenido"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("clave"); found {
		t.Error("Expected expired entry to miss")
	}
	// Second read still misses (file removed on first expired read)
	if _, found := c.Get("clave"); found {
		t.Error("Expected expired entry to stay removed")
	}
}

func TestDiskCache_MissingDir(t *testing.T) {
	c := NewDiskCache(t.TempDir()+"/sub/dir", time.Minute)

	if err := c.Set("clave", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Expected dir created on demand, got %v", err)
	}
	if _, found := c.Get("clave"); !found {
		t.Error("Expected hit after set")
	}
}

func TestLayeredCache_DiskSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Minute, dir, time.Minute)
	if err := first.Set("clave", []byte("persistente"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// A fresh instance has a cold memory layer but the same disk dir.
	second := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := second.Get("clave")
	if !found || string(val) != "persistente" {
		t.Errorf("Expected disk hit after restart, got %q / %v", val, found)
	}

	// The disk hit was promoted to memory.
	val, found = second.Get("clave")
	if !found || string(val) != "persistente" {
		t.Errorf("Expected promoted hit, got %q / %v", val, found)
	}
}

func TestLayeredCache_DeleteRemovesBothLayers(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Minute)

	_ = c.Set("clave", []byte("x"), time.Minute)
	_ = c.Delete("clave")
	if _, found := c.Get("clave"); found {
		t.Error("Expected miss after delete")
	}
}
