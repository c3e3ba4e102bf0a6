package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestAudioCache_BasicOperations(t *testing.T) {
	c := New(0)
	key := MakeKey("Hello", Params{Voice: "v1"})

	if _, ok := c.Get(key); ok {
		t.Fatal("Expected miss on empty cache")
	}

	c.Put(key, "https://example.test/a.mp3")

	handle, ok := c.Get(key)
	if !ok {
		t.Fatal("Get failed: key not found")
	}
	if handle != "https://example.test/a.mp3" {
		t.Errorf("Retrieved handle mismatch: got %s", handle)
	}
	if !c.Contains(key) {
		t.Error("Contains returned false for existing key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %f", stats.HitRate)
	}
}

func TestAudioCache_ParamsChangeMisses(t *testing.T) {
	c := New(0)
	v1 := MakeKey("Hello", Params{Voice: "v1"})
	v2 := MakeKey("Hello", Params{Voice: "v2"})

	c.Put(v1, "one")
	if _, ok := c.Get(v1); !ok {
		t.Error("Expected hit for identical params")
	}
	if _, ok := c.Get(v2); ok {
		t.Error("Expected miss after voice change")
	}
}

func TestAudioCache_Clear(t *testing.T) {
	c := New(0)
	for i := 0; i < 10; i++ {
		c.Put(Key(fmt.Sprintf("k%d", i)), "h")
	}
	if c.Len() != 10 {
		t.Fatalf("Expected 10 entries, got %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after clear, got %d", c.Len())
	}
	if c.Stats().Clears != 1 {
		t.Errorf("Expected 1 clear, got %d", c.Stats().Clears)
	}
}

func TestAudioCache_UnboundedNeverEvicts(t *testing.T) {
	c := New(0)
	for i := 0; i < 1000; i++ {
		c.Put(Key(fmt.Sprintf("k%d", i)), "h")
	}
	if c.Len() != 1000 {
		t.Errorf("Expected 1000 entries, got %d", c.Len())
	}
	if c.Stats().Evictions != 0 {
		t.Errorf("Expected no evictions, got %d", c.Stats().Evictions)
	}
}

func TestAudioCache_LRUEviction(t *testing.T) {
	c := New(2)
	c.Put("a", "1")
	c.Put("b", "2")

	// touch a so b becomes the oldest
	c.Get("a")
	c.Put("c", "3")

	if !c.Contains("a") {
		t.Error("Expected a to survive eviction")
	}
	if c.Contains("b") {
		t.Error("Expected b to be evicted")
	}
	if !c.Contains("c") {
		t.Error("Expected c to be cached")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("Expected 1 eviction, got %d", c.Stats().Evictions)
	}
}

func TestAudioCache_PutReplaces(t *testing.T) {
	c := New(1)
	c.Put("a", "1")
	c.Put("a", "2")

	if h, _ := c.Get("a"); h != "2" {
		t.Errorf("Expected replaced handle 2, got %s", h)
	}
	if c.Stats().Evictions != 0 {
		t.Error("Replacing an entry must not evict")
	}
}

func TestAudioCache_PutRefreshesRecency(t *testing.T) {
	c := New(2)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("a", "3")
	c.Put("c", "4")

	if c.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.Len())
	}
	if h, ok := c.Get("a"); !ok || h != "3" {
		t.Errorf("Expected refreshed entry a=3 to survive, got %q (%v)", h, ok)
	}
	if c.Contains("b") {
		t.Error("Expected b to be evicted as least recently used")
	}
}

func TestAudioCache_Concurrent(t *testing.T) {
	c := New(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := Key(fmt.Sprintf("g%d-%d", g, i%20))
				c.Put(k, "h")
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Expected at most 50 entries, got %d", c.Len())
	}
}
