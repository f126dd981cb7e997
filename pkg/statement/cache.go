package statement

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// CacheConfig bounds the parsed template cache.
type CacheConfig struct {
	// MaxSize caps the number of entries. Zero disables caching.
	MaxSize int
	// TTL expires entries after they are stored. Zero keeps them until evicted.
	TTL time.Duration
}

// TemplateCache holds parsed templates keyed by a hash of their source.
type TemplateCache struct {
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	lru    *list.List
	config CacheConfig
	now    func() time.Time
}

type cacheEntry struct {
	key      string
	template *Template
	expiry   time.Time
	element  *list.Element
}

// NewTemplateCache sizes a cache from the global config.
func NewTemplateCache() *TemplateCache {
	config := GetGlobalConfig()
	return NewTemplateCacheWithConfig(CacheConfig{
		MaxSize: config.CacheMaxSize,
		TTL:     config.CacheTTL,
	})
}

func NewTemplateCacheWithConfig(config CacheConfig) *TemplateCache {
	return &TemplateCache{
		cache:  make(map[string]*cacheEntry),
		lru:    list.New(),
		config: config,
		now:    time.Now,
	}
}

// CacheKey derives the cache key for a template source parsed with the
// given nesting limit.
func CacheKey(source string, maxDepth int) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(maxDepth)
}

// Prepare returns the parsed template for source, parsing and caching it
// on a miss. The boolean reports a cache hit.
func (tc *TemplateCache) Prepare(source string, maxDepth int) (*Template, bool) {
	if tc.config.MaxSize == 0 {
		return parseTemplate(source, maxDepth), false
	}

	key := CacheKey(source, maxDepth)
	if tmpl, ok := tc.Get(key); ok {
		return tmpl, true
	}

	tmpl := parseTemplate(source, maxDepth)
	tc.Set(key, tmpl)
	return tmpl, false
}

// Get looks up a key produced by CacheKey. Expired entries are dropped.
func (tc *TemplateCache) Get(key string) (*Template, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, exists := tc.cache[key]
	if !exists {
		return nil, false
	}

	if tc.config.TTL > 0 && tc.now().After(entry.expiry) {
		tc.removeLocked(entry)
		return nil, false
	}

	tc.lru.MoveToFront(entry.element)
	return entry.template, true
}

// Set stores a template, evicting the least recently used entry when full.
func (tc *TemplateCache) Set(key string, template *Template) {
	if tc.config.MaxSize == 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	expiry := time.Time{}
	if tc.config.TTL > 0 {
		expiry = tc.now().Add(tc.config.TTL)
	}

	if existing, exists := tc.cache[key]; exists {
		existing.template = template
		existing.expiry = expiry
		tc.lru.MoveToFront(existing.element)
		return
	}

	if tc.lru.Len() >= tc.config.MaxSize {
		if oldest := tc.lru.Back(); oldest != nil {
			tc.removeLocked(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{
		key:      key,
		template: template,
		expiry:   expiry,
	}
	entry.element = tc.lru.PushFront(entry)
	tc.cache[key] = entry
}

func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if entry, exists := tc.cache[key]; exists {
		tc.removeLocked(entry)
	}
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	delete(tc.cache, entry.key)
	tc.lru.Remove(entry.element)
}

// Clear drops every entry.
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.cache = make(map[string]*cacheEntry)
	tc.lru = list.New()
}

func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.cache)
}
