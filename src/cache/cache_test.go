package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a evicted too early")
	}
	c.Set("c", 3) // b is now the oldest
	if _, ok := c.Get("b"); ok {
		t.Fatal("b survived past capacity")
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestLRUExpiresEntries(t *testing.T) {
	c := NewLRU(4, 10*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry served")
	}
}

func TestLRUDumpRestore(t *testing.T) {
	c := NewLRU(4, time.Minute)
	c.Set("a", "one")
	c.Set("b", "two")

	fresh := NewLRU(4, time.Minute)
	fresh.Restore(c.Dump())
	if v, ok := fresh.Get("a"); !ok || v != "one" {
		t.Fatalf("restored a = %v ok=%v", v, ok)
	}
	if fresh.Len() != 2 {
		t.Fatalf("len = %d", fresh.Len())
	}
}

func TestLRURestoreOverWarmCacheUpdatesInPlace(t *testing.T) {
	c := NewLRU(4, time.Minute)
	c.Set("a", "stale")
	c.Set("b", "two")

	donor := NewLRU(4, time.Minute)
	donor.Set("a", "one")
	donor.Set("c", "three")

	c.Restore(donor.Dump())
	if c.Len() != 3 {
		t.Fatalf("len = %d, want 3", c.Len())
	}
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Fatalf("a = %v ok=%v", v, ok)
	}
	// Overwriting "a" again must displace exactly one element even
	// after the restore.
	c.Set("a", "1")
	if c.Len() != 3 {
		t.Fatalf("len after Set = %d, want 3", c.Len())
	}
	c.Set("d", 4)
	c.Set("e", 5)
	if c.Len() != 4 {
		t.Fatalf("len after eviction = %d, want 4", c.Len())
	}
}

func TestKeyIsStableAndSeparatorSafe(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Fatal("key not deterministic")
	}
	if Key("ab") == Key("a", "b") {
		t.Fatal("key collapses part boundaries")
	}
}
