package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nuvolos-cloud/nuvolos-cli/internal/constants"
)

// Memory is a size-bounded in-process cache. When full, the oldest key is
// evicted.
type Memory struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*Entry
	order   []string
	now     func() time.Time
}

// NewMemory creates a memory cache holding at most maxSize entries.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &Memory{
		maxSize: maxSize,
		entries: make(map[string]*Entry, maxSize),
		now:     time.Now,
	}
}

// Get returns a live entry. Expired entries are dropped.
func (c *Memory) Get(ctx context.Context, key string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: key not found: %s", constants.ErrCacheMiss, key)
	}

	if entry.Expired(c.now()) {
		c.remove(key)

		return nil, fmt.Errorf("%w: entry expired: %s", constants.ErrCacheMiss, key)
	}

	return entry, nil
}

// Set stores entry under key.
func (c *Memory) Set(ctx context.Context, key string, entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry

		return nil
	}

	for len(c.order) >= c.maxSize {
		c.remove(c.order[0])
	}

	c.entries[key] = entry
	c.order = append(c.order, key)

	return nil
}

// Delete removes key.
func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)

	return nil
}

// Clear removes every entry.
func (c *Memory) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry, c.maxSize)
	c.order = nil

	return nil
}

// Has reports whether a live entry exists for key.
func (c *Memory) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired or not.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Close does nothing.
func (c *Memory) Close() error {
	return nil
}

func (c *Memory) remove(key string) {
	if _, ok := c.entries[key]; !ok {
		return
	}

	delete(c.entries, key)

	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)

			break
		}
	}
}
