package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestResponseCache_ExactMatchOnly(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(100, nil)
	c.Put("What are the fees?", "The fees are 100.")

	if got, ok := c.Get("What are the fees?"); !ok || got != "The fees are 100." {
		t.Errorf("Get(exact) = %q, %v; want stored answer", got, ok)
	}
	// Semantically identical but literally different query misses.
	if _, ok := c.Get("what are the fees?"); ok {
		t.Error("different literal query should miss")
	}
	if _, ok := c.Get("What are the fees"); ok {
		t.Error("different literal query should miss")
	}
}

func TestResponseCache_PutOverwrites(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(100, nil)
	c.Put("q", "first")
	c.Put("q", "second")

	if got, _ := c.Get("q"); got != "second" {
		t.Errorf("Get() = %q, want %q", got, "second")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestResponseCache_TrimKeepsNewestHalf(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(1000, nil)
	for i := range 20 {
		c.Put(fmt.Sprintf("query-%d", i), fmt.Sprintf("answer-%d", i))
	}

	dropped := c.Trim(10)
	if dropped != 15 {
		t.Errorf("Trim dropped %d, want 15 (keep 10/2=5)", dropped)
	}
	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}
	// The newest five insertions survive.
	for i := 15; i < 20; i++ {
		if _, ok := c.Get(fmt.Sprintf("query-%d", i)); !ok {
			t.Errorf("query-%d should survive trim", i)
		}
	}
	for i := range 15 {
		if _, ok := c.Get(fmt.Sprintf("query-%d", i)); ok {
			t.Errorf("query-%d should have been dropped", i)
		}
	}
}

func TestResponseCache_TrimNoopUnderLimit(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(100, nil)
	c.Put("a", "1")
	c.Put("b", "2")

	if dropped := c.Trim(10); dropped != 0 {
		t.Errorf("Trim dropped %d, want 0", dropped)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestResponseCache_AutoTrimOnCeiling(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(10, nil)
	for i := range 11 {
		c.Put(fmt.Sprintf("q-%d", i), "a")
	}
	// Put beyond ceiling trims to half the ceiling.
	if c.Len() != 5 {
		t.Errorf("Len() = %d, want 5 after auto-trim", c.Len())
	}
}

func TestResponseCache_ClearRunsHooks(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(100, nil)
	c.Put("q", "a")

	hookRuns := 0
	c.OnClear(func() { hookRuns++ })
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}
	if hookRuns != 1 {
		t.Errorf("clear hook ran %d times, want 1", hookRuns)
	}
	if _, ok := c.Get("q"); ok {
		t.Error("entry survived Clear")
	}
}

func TestResponseCache_KeyStability(t *testing.T) {
	t.Parallel()

	if Key("hello") != Key("hello") {
		t.Error("Key() must be deterministic")
	}
	if Key("hello") == Key("Hello") {
		t.Error("Key() must distinguish literal differences")
	}
}

func TestResponseCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := NewResponseCache(50, nil)
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := fmt.Sprintf("q-%d", i%20)
			c.Put(q, "answer")
			c.Get(q)
			if i%10 == 0 {
				c.Trim(30)
			}
		}(i)
	}
	wg.Wait()
}
