package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splay4d/internal/errors"
	"splay4d/internal/scene"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestController(t *testing.T, paths []string, rate float64) (*Controller, *scene.MemoryGraph, *fakeClock, *stubLoader) {
	t.Helper()

	loader := &stubLoader{}
	graph := scene.NewMemoryGraph()
	clock := newFakeClock()
	ctrl := NewController(loader, graph, "Splat4D", WithClock(clock))
	if paths != nil {
		ctrl.SetSequence(paths, rate, nil)
	}
	return ctrl, graph, clock, loader
}

// shownFrame returns the path of the frame currently under the stable node
func shownFrame(t *testing.T, graph *scene.MemoryGraph) string {
	t.Helper()
	node, ok := graph.GetNode("Splat4D")
	require.True(t, ok, "expected a frame on display")
	return node.Frame.Path
}

func TestPlaybackCyclesThroughSequence(t *testing.T) {
	paths := []string{"a.ply", "b.ply", "c.ply"}
	ctrl, graph, clock, _ := newTestController(t, paths, 10)

	ctrl.Play()
	require.True(t, ctrl.IsPlaying())
	assert.Equal(t, 0, ctrl.Index())

	// One redraw tick every 0.05s of simulated time; at 10 fps the index
	// advances every second tick and cycles 0 -> 1 -> 2 -> 0
	var indices []int
	for i := 0; i < 6; i++ {
		clock.Advance(50 * time.Millisecond)
		require.NoError(t, ctrl.Tick())
		indices = append(indices, ctrl.Index())
	}

	assert.Equal(t, []int{0, 1, 1, 2, 2, 0}, indices)
	assert.Equal(t, "a.ply", shownFrame(t, graph))
}

func TestIndexMatchesElapsedTimesRate(t *testing.T) {
	paths := []string{"a.ply", "b.ply", "c.ply"}
	ctrl, _, clock, _ := newTestController(t, paths, 20)

	ctrl.Play()

	// 1s of playback at 20 fps with a 10ms redraw cadence
	for i := 0; i < 100; i++ {
		clock.Advance(10 * time.Millisecond)
		require.NoError(t, ctrl.Tick())
	}

	// floor(1.0 * 20) mod 3
	assert.Equal(t, 2, ctrl.Index())
}

func TestSlowRedrawDropsFrames(t *testing.T) {
	paths := []string{"a.ply", "b.ply", "c.ply", "d.ply"}
	ctrl, _, clock, _ := newTestController(t, paths, 30)

	ctrl.Play()

	// A redraw gap spanning many frame durations advances by exactly one
	clock.Advance(500 * time.Millisecond)
	require.NoError(t, ctrl.Tick())
	assert.Equal(t, 1, ctrl.Index())
}

func TestTickBeforeFrameDurationDoesNotAdvance(t *testing.T) {
	paths := []string{"a.ply", "b.ply"}
	ctrl, graph, clock, _ := newTestController(t, paths, 10)

	ctrl.Play()
	clock.Advance(20 * time.Millisecond)
	require.NoError(t, ctrl.Tick())

	assert.Equal(t, 0, ctrl.Index())
	_, ok := graph.GetNode("Splat4D")
	assert.False(t, ok, "no push happens before the first advance")
}

func TestTogglePlayKeepsIndex(t *testing.T) {
	paths := []string{"a.ply", "b.ply", "c.ply"}
	ctrl, _, clock, _ := newTestController(t, paths, 10)

	ctrl.Play()
	clock.Advance(150 * time.Millisecond)
	require.NoError(t, ctrl.Tick())
	require.Equal(t, 1, ctrl.Index())

	ctrl.TogglePlay()
	assert.False(t, ctrl.IsPlaying())
	assert.Equal(t, 1, ctrl.Index())

	ctrl.TogglePlay()
	assert.True(t, ctrl.IsPlaying())
	assert.Equal(t, 1, ctrl.Index())
}

func TestPausedTickDoesNotAdvance(t *testing.T) {
	paths := []string{"a.ply", "b.ply"}
	ctrl, _, clock, _ := newTestController(t, paths, 10)

	ctrl.Play()
	ctrl.Pause()
	clock.Advance(time.Second)
	require.NoError(t, ctrl.Tick())
	assert.Equal(t, 0, ctrl.Index())
}

func TestManualIndexPushesImmediately(t *testing.T) {
	paths := []string{"a.ply", "b.ply", "c.ply"}
	ctrl, graph, _, _ := newTestController(t, paths, 10)

	require.NoError(t, ctrl.SetIndex(2))
	assert.Equal(t, 2, ctrl.Index())
	assert.Equal(t, "c.ply", shownFrame(t, graph))
	assert.Equal(t, 1, graph.Invalidations())

	require.NoError(t, ctrl.Reset())
	assert.Equal(t, 0, ctrl.Index())
	assert.Equal(t, "a.ply", shownFrame(t, graph))
}

func TestSetIndexOutOfRange(t *testing.T) {
	paths := []string{"a.ply", "b.ply"}
	ctrl, _, _, _ := newTestController(t, paths, 10)

	assert.Error(t, ctrl.SetIndex(2))
	assert.Error(t, ctrl.SetIndex(-1))
	assert.Equal(t, 0, ctrl.Index())
}

func TestSwapLeavesSingleNode(t *testing.T) {
	paths := []string{"a.ply", "b.ply"}
	ctrl, graph, _, _ := newTestController(t, paths, 10)

	require.NoError(t, ctrl.SetIndex(0))
	require.NoError(t, ctrl.SetIndex(1))

	assert.Equal(t, 1, graph.NodeCount(), "swap protocol must not leak nodes")
	_, ok := graph.GetNode("Splat4D__next")
	assert.False(t, ok)
	assert.Equal(t, "b.ply", shownFrame(t, graph))
}

func TestPushUsesCacheFirst(t *testing.T) {
	paths := []string{"a.ply", "b.ply"}
	loader := &stubLoader{}
	graph := scene.NewMemoryGraph()
	cache := NewCache(loader, 10)
	cache.Preload(paths)
	loadsAfterPreload := loader.loadCount()

	ctrl := NewController(loader, graph, "Splat4D", WithClock(newFakeClock()))
	ctrl.SetSequence(paths, 10, cache)

	require.NoError(t, ctrl.SetIndex(1))
	assert.Equal(t, loadsAfterPreload, loader.loadCount(), "cache hits skip the loader")
}

func TestColdCachePlaybackStillWorks(t *testing.T) {
	paths := []string{"a.ply"}
	loader := &stubLoader{}
	graph := scene.NewMemoryGraph()
	ctrl := NewController(loader, graph, "Splat4D", WithClock(newFakeClock()))
	ctrl.SetSequence(paths, 10, NewCache(loader, 10))

	require.NoError(t, ctrl.SetIndex(0))
	assert.Equal(t, "a.ply", shownFrame(t, graph))
	assert.Equal(t, 1, loader.loadCount(), "miss falls back to a synchronous load")
}

func TestFailedLoadSkipsTick(t *testing.T) {
	paths := []string{"a.ply", "bad.ply", "c.ply"}
	loader := &stubLoader{fail: map[string]bool{"bad.ply": true}}
	graph := scene.NewMemoryGraph()
	clock := newFakeClock()
	ctrl := NewController(loader, graph, "Splat4D", WithClock(clock))
	ctrl.SetSequence(paths, 10, nil)

	require.NoError(t, ctrl.SetIndex(0))
	ctrl.Play()

	clock.Advance(150 * time.Millisecond)
	err := ctrl.Tick()
	require.Error(t, err)
	assert.True(t, errors.IsFrameLoadFailure(err))

	// The previous frame stays on display and playback continues
	assert.Equal(t, "a.ply", shownFrame(t, graph))
	assert.True(t, ctrl.IsPlaying())

	clock.Advance(150 * time.Millisecond)
	require.NoError(t, ctrl.Tick())
	assert.Equal(t, "c.ply", shownFrame(t, graph))
}

func TestNilGraphIsSceneUnavailable(t *testing.T) {
	loader := &stubLoader{}
	ctrl := NewController(loader, nil, "Splat4D", WithClock(newFakeClock()))
	ctrl.SetSequence([]string{"a.ply"}, 10, nil)

	err := ctrl.SetIndex(0)
	require.Error(t, err)
	assert.True(t, errors.IsSceneUnavailable(err))
}

func TestStopClearsSequence(t *testing.T) {
	paths := []string{"a.ply", "b.ply"}
	ctrl, _, _, _ := newTestController(t, paths, 10)

	ctrl.Play()
	ctrl.Stop()

	assert.False(t, ctrl.IsPlaying())
	assert.Equal(t, 0, ctrl.FrameCount())
	assert.NoError(t, ctrl.Tick())

	// Play on an empty sequence is a no-op
	ctrl.Play()
	assert.False(t, ctrl.IsPlaying())
}
