package playback

import (
	"sync"
	"time"

	"splay4d/internal/errors"
	"splay4d/internal/frames"
	"splay4d/internal/log"
	"splay4d/internal/scene"
	"splay4d/pkg/types"
)

// Clock abstracts the monotonic time source so tick behavior is
// deterministic under test
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Controller owns the playback state of the current frame sequence: the
// frame index, play/pause flag, target rate, and the advance rule that
// decouples the redraw cadence from the playback rate. All methods are
// safe for concurrent use.
type Controller struct {
	loader frames.Loader
	graph  scene.Graph
	node   string
	clock  Clock

	mu      sync.Mutex
	paths   []string
	cache   *Cache
	index   int
	playing bool
	rate    float64
	last    time.Time
}

// Option configures a Controller
type Option func(*Controller)

// WithClock substitutes the time source, for tests
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

// NewController creates a stopped controller pushing frames to graph
// under the given stable node name
func NewController(loader frames.Loader, graph scene.Graph, node string, opts ...Option) *Controller {
	c := &Controller{
		loader: loader,
		graph:  graph,
		node:   node,
		clock:  systemClock{},
		rate:   30.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSequence installs a new frame sequence with its preload cache and
// resets the index to zero. The previous sequence and cache are dropped.
func (c *Controller) SetSequence(paths []string, rate float64, cache *Cache) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paths = paths
	c.cache = cache
	c.index = 0
	c.playing = false
	if rate > 0 {
		c.rate = rate
	}
}

// Stop clears the sequence; a new conversion invalidates the old frames
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paths = nil
	c.cache = nil
	c.index = 0
	c.playing = false
}

// Play starts advancing from the current index
func (c *Controller) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.paths) == 0 {
		return
	}
	c.playing = true
	c.last = c.clock.Now()
}

// Pause halts advancing without touching the index
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

// TogglePlay flips between playing and paused
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.paths) == 0 {
		return
	}
	c.playing = !c.playing
	if c.playing {
		c.last = c.clock.Now()
	}
}

// IsPlaying reports whether the clock is advancing the index
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Index returns the current frame index
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// FrameCount returns the length of the current sequence
func (c *Controller) FrameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

// Rate returns the target playback rate in frames per second
func (c *Controller) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// SetRate changes the target playback rate
func (c *Controller) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rate = rate
}

// Tick applies the advance rule once. While playing, the index advances
// by one frame (wrapping) whenever at least 1/rate has elapsed since the
// last advance, and the new frame is pushed to the scene. Slow redraw
// drops frames rather than queuing them; a frame is never double-applied.
func (c *Controller) Tick() error {
	c.mu.Lock()
	if !c.playing || len(c.paths) == 0 {
		c.mu.Unlock()
		return nil
	}

	now := c.clock.Now()
	if now.Sub(c.last).Seconds() < 1.0/c.rate {
		c.mu.Unlock()
		return nil
	}

	c.index = (c.index + 1) % len(c.paths)
	c.last = now
	index := c.index
	path := c.paths[index]
	total := len(c.paths)
	cache := c.cache
	c.mu.Unlock()

	return c.push(path, index, total, cache)
}

// SetIndex jumps to frame index i and pushes it immediately. Callers gate
// manual navigation to paused playback; the controller does not enforce it.
func (c *Controller) SetIndex(i int) error {
	c.mu.Lock()
	if len(c.paths) == 0 {
		c.mu.Unlock()
		return nil
	}
	if i < 0 || i >= len(c.paths) {
		c.mu.Unlock()
		return errors.Newf("frame index %d out of range [0,%d)", i, len(c.paths))
	}

	c.index = i
	path := c.paths[i]
	total := len(c.paths)
	cache := c.cache
	c.mu.Unlock()

	return c.push(path, i, total, cache)
}

// Reset rewinds to frame zero and pushes it
func (c *Controller) Reset() error {
	return c.SetIndex(0)
}

// push loads a frame (cache first) and swaps it into the scene. A new
// node is added under a transient name, the old node removed, and the
// new one renamed to the stable name, so no tick shows an empty scene.
func (c *Controller) push(path string, index, total int, cache *Cache) error {
	if c.graph == nil {
		return errors.NewKind("no active scene available", errors.SceneUnavailable)
	}

	loaded, hit := (*types.SplatFrame)(nil), false
	if cache != nil {
		loaded, hit = cache.Get(path)
	}
	if !hit {
		var err error
		loaded, err = c.loader.Load(path)
		if err != nil {
			log.LogWithError(err).Errorf("Failed to load frame %d/%d", index+1, total)
			return err
		}
	}

	next := c.node + "__next"
	if err := c.graph.AddSplat(next, loaded); err != nil {
		return errors.Wrapf(err, "cannot stage frame %d", index)
	}

	if _, exists := c.graph.GetNode(c.node); exists {
		c.graph.RemoveNode(c.node)
	}
	if err := c.graph.RenameNode(next, c.node); err != nil {
		return errors.Wrapf(err, "cannot swap frame %d", index)
	}
	c.graph.InvalidateCache()

	log.Debugf("Pushed frame %d/%d: %s", index+1, total, path)
	return nil
}
