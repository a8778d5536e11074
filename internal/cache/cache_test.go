package cache

import (
	"testing"
	"time"
)

func TestVerdictKey_Deterministic(t *testing.T) {
	a := VerdictKey("cure-guarantee", "guaranteed cure", "our guaranteed cure works")
	b := VerdictKey("cure-guarantee", "guaranteed cure", "our guaranteed cure works")
	if a != b {
		t.Error("identical candidates must map to the same verdict key")
	}

	// Any component change produces a different key
	if a == VerdictKey("other-rule", "guaranteed cure", "our guaranteed cure works") {
		t.Error("rule id must be part of the key")
	}
	if a == VerdictKey("cure-guarantee", "guaranteed cure", "a different window") {
		t.Error("window must be part of the key")
	}

	// No ambiguity between matched text and window boundaries
	if VerdictKey("r", "ab", "c") == VerdictKey("r", "a", "bc") {
		t.Error("key components must be delimited")
	}
}

func TestPageKey_DistinctFromVerdictKey(t *testing.T) {
	if PageKey("x") == VerdictKey("x", "", "") {
		t.Error("page and verdict keyspaces must not collide")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("expected hit with 'v', got %q %v", val, found)
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("short", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("short"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	// Write through the disk layer directly, simulating a previous run
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("persisted", []byte("verdict"), time.Hour); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	val, found := layered.Get("persisted")
	if !found || string(val) != "verdict" {
		t.Fatalf("expected disk hit through the layered cache, got %q %v", val, found)
	}
}
