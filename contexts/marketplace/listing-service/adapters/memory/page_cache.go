package memory

import (
	"context"
	"sync"
)

// PageCache tracks how many times each rendered path was purged.
type PageCache struct {
	mu          sync.Mutex
	invalidated map[string]int
}

func NewPageCache() *PageCache {
	return &PageCache{invalidated: make(map[string]int)}
}

func (c *PageCache) InvalidatePaths(_ context.Context, paths []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, path := range paths {
		c.invalidated[path]++
	}
	return nil
}

func (c *PageCache) Invalidations(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.invalidated[path]
}
