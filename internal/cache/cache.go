// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// Cache stores fetched portal pages so an interrupted or repeated run within
// the TTL does not hammer the portal again.
type Cache interface {
	// Get retrieves a cached page by key.
	Get(key string) (*models.Page, bool)

	// Set stores a page with the specified TTL, evicting older entries
	// if the cache exceeds its size budget.
	Set(key string, page *models.Page, ttl time.Duration) error

	// Delete removes a cached page by key. Missing keys are not an error.
	Delete(key string) error

	// Clear removes all cached pages.
	Clear() error

	// Close stops background goroutines.
	Close()
}

type cacheEntry struct {
	Page      *models.Page
	ExpiresAt time.Time
	Key       string // for LRU tracking
}

// MemoryCache implements in-memory page caching with LRU eviction.
type MemoryCache struct {
	store   map[string]*list.Element
	lruList *list.List
	mu      sync.RWMutex
	maxSize int64 // maximum cache size in bytes
	size    int64
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64
	misses  uint64
}

// NewMemoryCache creates a new in-memory cache with LRU eviction.
func NewMemoryCache(maxSizeBytes int64) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024 // 100MB
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ctx:     ctx,
		cancel:  cancel,
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached page and marks it most recently used.
func (mc *MemoryCache) Get(key string) (*models.Page, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.mu.Unlock()
		go mc.Delete(key)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Page, true
}

// Set stores a page in cache with TTL.
func (mc *MemoryCache) Set(key string, page *models.Page, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	size := entrySize(page)

	if element, exists := mc.store[key]; exists {
		oldEntry := element.Value.(*cacheEntry)
		mc.size -= entrySize(oldEntry.Page)

		element.Value = &cacheEntry{
			Page:      page,
			ExpiresAt: time.Now().Add(ttl),
			Key:       key,
		}
		mc.lruList.MoveToFront(element)
		mc.size += size
		return nil
	}

	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Page:      page,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
	}

	element := mc.lruList.PushFront(entry)
	mc.store[key] = element
	mc.size += size

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Int64("size_bytes", size).
		Msg("Cached page")

	return nil
}

// Delete removes a cached page.
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		entry := element.Value.(*cacheEntry)
		mc.lruList.Remove(element)
		delete(mc.store, key)
		mc.size -= entrySize(entry.Page)
	}

	return nil
}

// Clear removes all cached pages.
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0

	return nil
}

// Close stops the background cleanup goroutine.
func (mc *MemoryCache) Close() {
	mc.cancel()
}

// evictLRU removes the least recently used entry (lock must be held).
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entrySize(entry.Page)

	log.Debug().Str("key", entry.Key).Msg("Evicted from cache (LRU)")
}

// cleanupExpired periodically removes expired entries.
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()

			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)

				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.Key)
					mc.size -= entrySize(entry.Page)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			return
		}
	}
}

// Stats returns cache statistics including hit rate.
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":    mc.lruList.Len(),
		"size_bytes": mc.size,
		"max_size":   mc.maxSize,
		"hits":       mc.hits,
		"misses":     mc.misses,
		"hit_rate":   hitRate,
	}
}

func entrySize(page *models.Page) int64 {
	if page == nil {
		return 0
	}
	// ~1KB overhead for struct and map bookkeeping
	return int64(len(page.Body)+len(page.URL)) + 1024
}

// RequestKey builds a cache key from a request. Form posts include a digest
// of the sorted form values so distinct subject searches don't collide.
func RequestKey(method, url string, form map[string]string) string {
	if len(form) == 0 {
		return method + " " + url
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(form[k])
		sb.WriteByte('&')
	}

	sum := sha1.Sum([]byte(sb.String()))
	return fmt.Sprintf("%s %s#%s", method, url, hex.EncodeToString(sum[:8]))
}
