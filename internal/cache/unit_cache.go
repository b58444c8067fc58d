package cache

import (
	"sort"
	"sync"
	"time"
)

// Entry is a cached value together with the hash of the source it was built from.
type Entry[T any] struct {
	Value       T
	Hash        string
	Path        string
	CachedAt    time.Time
	LastChecked time.Time
}

// UnitCache is an in-memory cache of parsed units keyed by file path.
// It is safe for concurrent use.
type UnitCache[T any] struct {
	entries map[string]*Entry[T]
	mu      sync.RWMutex
	now     func() time.Time
}

// NewUnitCache creates an empty cache.
func NewUnitCache[T any]() *UnitCache[T] {
	return &UnitCache[T]{
		entries: make(map[string]*Entry[T]),
		now:     time.Now,
	}
}

// Get retrieves the entry cached for path and marks it as checked.
func (c *UnitCache[T]) Get(path string) (*Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if ok {
		entry.LastChecked = c.now()
	}
	return entry, ok
}

// Lookup returns the cached value for path if its hash still matches and
// marks the entry as checked.
func (c *UnitCache[T]) Lookup(path, hash string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || entry.Hash != hash {
		var zero T
		return zero, false
	}
	entry.LastChecked = c.now()
	return entry.Value, true
}

// Set stores value for path.
func (c *UnitCache[T]) Set(path string, value T, hash string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[path] = &Entry[T]{
		Value:       value,
		Hash:        hash,
		Path:        path,
		CachedAt:    now,
		LastChecked: now,
	}
}

// Invalidate removes the entries for the given paths.
func (c *UnitCache[T]) Invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range paths {
		delete(c.entries, p)
	}
}

// InvalidateAll clears the cache.
func (c *UnitCache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry[T])
}

// Size returns the number of cached entries.
func (c *UnitCache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Values returns every cached value.
func (c *UnitCache[T]) Values() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]T, 0, len(c.entries))
	for _, entry := range c.entries {
		result = append(result, entry.Value)
	}
	return result
}

// Prune removes entries that haven't been checked within maxAge and returns
// their paths, sorted.
func (c *UnitCache[T]) Prune(maxAge time.Duration) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var pruned []string
	for path, entry := range c.entries {
		if now.Sub(entry.LastChecked) > maxAge {
			delete(c.entries, path)
			pruned = append(pruned, path)
		}
	}
	sort.Strings(pruned)
	return pruned
}
