package cache

import (
	"fmt"
	"image"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FrameCache keeps processed frames in memory keyed by source path,
// evicting the least recently used entry once full.
type FrameCache struct {
	lru    *lru.Cache[string, image.Image]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewFrameCache creates a cache holding at most size frames.
// A size of zero or less disables caching and returns nil.
func NewFrameCache(size int) (*FrameCache, error) {
	if size <= 0 {
		return nil, nil
	}
	l, err := lru.New[string, image.Image](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame cache: %w", err)
	}
	return &FrameCache{lru: l}, nil
}

// Get returns the cached frame for path. A nil cache always misses.
func (c *FrameCache) Get(path string) (image.Image, bool) {
	if c == nil {
		return nil, false
	}
	img, ok := c.lru.Get(path)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return img, ok
}

// Set stores a processed frame
func (c *FrameCache) Set(path string, img image.Image) {
	if c == nil {
		return
	}
	c.lru.Add(path, img)
}

// GetOrCreate returns the cached frame for path or builds, stores and returns it
func (c *FrameCache) GetOrCreate(path string, build func() (image.Image, error)) (image.Image, error) {
	if img, ok := c.Get(path); ok {
		return img, nil
	}
	img, err := build()
	if err != nil {
		return nil, err
	}
	c.Set(path, img)
	return img, nil
}

// Stats returns entry count and hit/miss counters
func (c *FrameCache) Stats() (entries int, hits, misses int64) {
	if c == nil {
		return 0, 0, 0
	}
	return c.lru.Len(), c.hits.Load(), c.misses.Load()
}
