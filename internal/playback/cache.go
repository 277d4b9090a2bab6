// Package playback drives the frame sequence into the scene: a bounded
// preload cache absorbs per-frame load latency, and the controller
// advances the frame index against a monotonic clock.
package playback

import (
	"sync"

	"splay4d/internal/frames"
	"splay4d/internal/log"
	"splay4d/pkg/types"
)

// DefaultCacheCapacity bounds resident frames when no capacity is configured
const DefaultCacheCapacity = 150

// Cache is a capacity-bounded store of decoded frames keyed by path.
// Entries are only ever added, never evicted; a cache lives exactly as
// long as the sequence it was built for.
type Cache struct {
	loader   frames.Loader
	capacity int

	mu     sync.RWMutex
	frames map[string]*types.SplatFrame
}

// NewCache creates a cache holding at most capacity decoded frames
func NewCache(loader frames.Loader, capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		loader:   loader,
		capacity: capacity,
		frames:   make(map[string]*types.SplatFrame),
	}
}

// Get returns the cached frame for path without blocking. A miss means
// the caller must load the frame synchronously itself.
func (c *Cache) Get(path string) (*types.SplatFrame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	frame, ok := c.frames[path]
	return frame, ok
}

// Len returns the number of resident frames
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// Preload decodes frames in sequence order until the capacity is reached,
// skipping paths already present. Per-frame load failures are skipped;
// warming the cache is best-effort and playback stays correct without it.
// Callers run Preload on its own goroutine.
func (c *Cache) Preload(paths []string) {
	loaded := 0
	for _, path := range paths {
		if c.full() {
			break
		}
		if _, ok := c.Get(path); ok {
			continue
		}

		frame, err := c.loader.Load(path)
		if err != nil {
			log.Debugf("Preload skipping %s: %v", path, err)
			continue
		}
		if !c.insert(path, frame) {
			break
		}
		loaded++
	}
	log.Debugf("Preloaded %d/%d frames", loaded, len(paths))
}

// insert adds a frame unless the cache is at capacity. The capacity
// check and the write happen under one lock so the bound holds even if
// preloading is ever parallelized.
func (c *Cache) insert(path string, frame *types.SplatFrame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.frames) >= c.capacity {
		return false
	}
	c.frames[path] = frame
	return true
}

func (c *Cache) full() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames) >= c.capacity
}
