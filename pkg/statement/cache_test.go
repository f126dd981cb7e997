package statement

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTemplateCache_Basic(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 10})

	first, hit := cache.Prepare("{{user.name}}", 10)
	if hit {
		t.Error("first Prepare() reported a hit")
	}
	second, hit := cache.Prepare("{{user.name}}", 10)
	if !hit {
		t.Error("second Prepare() reported a miss")
	}
	if first != second {
		t.Error("Expected cached template to be the same object")
	}

	if other, _ := cache.Prepare("{{user.name}}", 3); other == first {
		t.Error("different nesting limits share a cache entry")
	}
}

func TestTemplateCache_Eviction(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 2})

	cache.Prepare("a", 10)
	cache.Prepare("b", 10)
	cache.Prepare("a", 10) // a becomes most recently used
	cache.Prepare("c", 10) // evicts b

	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}
	if _, ok := cache.Get(CacheKey("b", 10)); ok {
		t.Error("least recently used entry was not evicted")
	}
	if _, ok := cache.Get(CacheKey("a", 10)); !ok {
		t.Error("recently used entry was evicted")
	}
}

func TestTemplateCache_TTL(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 10, TTL: time.Minute})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Prepare("x", 10)
	if _, hit := cache.Prepare("x", 10); !hit {
		t.Error("entry expired too early")
	}

	now = now.Add(2 * time.Minute)
	if _, hit := cache.Prepare("x", 10); hit {
		t.Error("expired entry was served")
	}
}

func TestTemplateCache_Disabled(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 0})
	a, _ := cache.Prepare("x", 10)
	b, hit := cache.Prepare("x", 10)
	if hit || a == b {
		t.Error("disabled cache returned a cached template")
	}
	if cache.Size() != 0 {
		t.Errorf("Size() = %d, want 0", cache.Size())
	}
}

func TestTemplateCache_RemoveAndClear(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 10})
	cache.Prepare("x", 10)
	cache.Prepare("y", 10)

	cache.Remove(CacheKey("x", 10))
	if cache.Size() != 1 {
		t.Errorf("Size() after Remove = %d, want 1", cache.Size())
	}
	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}

func TestTemplateCache_Concurrent(t *testing.T) {
	cache := NewTemplateCacheWithConfig(CacheConfig{MaxSize: 5})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tmpl, _ := cache.Prepare(fmt.Sprintf("{{v%d}}", (i+j)%8), 10)
				tmpl.Execute(TemplateData{})
			}
		}(i)
	}
	wg.Wait()
	if cache.Size() > 5 {
		t.Errorf("Size() = %d, exceeds max", cache.Size())
	}
}
