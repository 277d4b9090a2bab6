package convert

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splay4d/pkg/types"
)

// stubProcessor stands in for the external converter in video-mode tests
type stubProcessor struct {
	frames []string
	rate   float64
	err    error
	delay  time.Duration

	closed atomic.Int32
}

func (s *stubProcessor) ProcessVideo(_ context.Context, _, _ string, progress ProgressFunc) ([]string, float64, error) {
	for i := 1; i <= 4; i++ {
		if progress != nil {
			progress(i, 4, "optimizing")
		}
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.frames, s.rate, nil
}

func (s *stubProcessor) Close() error {
	s.closed.Add(1)
	return nil
}

// waitForResult runs the job and blocks until the callback fires,
// also counting callback invocations
func waitForResult(t *testing.T, job *Job) (*types.ConversionResult, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	done := make(chan *types.ConversionResult, 2)
	err := job.Start(func(res *types.ConversionResult) {
		calls.Add(1)
		done <- res
	})
	require.NoError(t, err)

	select {
	case res := <-done:
		return res, &calls
	case <-time.After(5 * time.Second):
		t.Fatal("conversion job did not complete")
		return nil, nil
	}
}

func TestDirectoryModeSuccess(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.ply", "a.ply", "b.ply", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	job := NewJob(dir, false, "*.ply", nil)
	res, calls := waitForResult(t, job)

	assert.True(t, res.Success)
	assert.Empty(t, res.Err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.ply"),
		filepath.Join(dir, "b.ply"),
		filepath.Join(dir, "c.ply"),
	}, res.FramePaths)
	assert.Equal(t, DefaultFrameRate, res.FrameRate)

	percent, status := job.Status()
	assert.Equal(t, float64(100), percent)
	assert.Equal(t, "Complete", status)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, job.Done())
	assert.Same(t, res, job.Result())
}

func TestDirectoryModeEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0644))

	job := NewJob(dir, false, "*.ply", nil)
	res, calls := waitForResult(t, job)

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
	assert.Empty(t, res.FramePaths)
	assert.Equal(t, int32(1), calls.Load())

	_, status := job.Status()
	assert.Contains(t, status, "Error")
}

func TestVideoModeSuccess(t *testing.T) {
	proc := &stubProcessor{
		frames: []string{"/out/frame_0001.ply", "/out/frame_0002.ply"},
		rate:   24.0,
	}

	job := NewJob("/clips/input.mp4", true, "*.ply", proc)
	res, calls := waitForResult(t, job)

	assert.True(t, res.Success)
	assert.Equal(t, proc.frames, res.FramePaths)
	assert.Equal(t, 24.0, res.FrameRate)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), proc.closed.Load(), "processor must be closed exactly once")
}

func TestVideoModeFailure(t *testing.T) {
	proc := &stubProcessor{err: os.ErrInvalid}

	job := NewJob("/clips/corrupt.mp4", true, "*.ply", proc)
	res, calls := waitForResult(t, job)

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
	assert.Empty(t, res.FramePaths, "failed conversions must not leak partial sequences")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), proc.closed.Load(), "processor is closed on the failure path too")
}

func TestStartIsNonBlocking(t *testing.T) {
	proc := &stubProcessor{frames: []string{"a"}, rate: 30, delay: 50 * time.Millisecond}
	job := NewJob("/clips/slow.mp4", true, "*.ply", proc)

	done := make(chan struct{})
	begin := time.Now()
	err := job.Start(func(*types.ConversionResult) { close(done) })
	require.NoError(t, err)
	assert.Less(t, time.Since(begin), 50*time.Millisecond)
	assert.False(t, job.Done())

	<-done
}

func TestStartTwiceRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.ply"), []byte("x"), 0644))

	job := NewJob(dir, false, "*.ply", nil)
	res, _ := waitForResult(t, job)
	require.True(t, res.Success)

	err := job.Start(func(*types.ConversionResult) {})
	assert.Error(t, err)
}

func TestProgressIsMonotonic(t *testing.T) {
	proc := &stubProcessor{frames: []string{"a"}, rate: 30, delay: 20 * time.Millisecond}
	job := NewJob("/clips/slow.mp4", true, "*.ply", proc)

	done := make(chan struct{})
	require.NoError(t, job.Start(func(*types.ConversionResult) { close(done) }))

	// Poll concurrently with the worker's writes, the way the panel does
	var mu sync.Mutex
	var samples []float64
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				percent, _ := job.Status()
				mu.Lock()
				samples = append(samples, percent)
				mu.Unlock()
			}
		}
	}()

	<-done
	close(stop)

	mu.Lock()
	defer mu.Unlock()
	samples = append(samples, 100) // Terminal progress on success
	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i], samples[i-1])
	}
}
