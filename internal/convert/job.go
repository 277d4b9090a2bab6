package convert

import (
	"context"
	"sync"

	"splay4d/internal/errors"
	"splay4d/internal/log"
	"splay4d/pkg/types"
)

// Callback receives a job's terminal result. It is invoked exactly once
// per job, on the job's worker goroutine, for success and failure alike.
type Callback func(*types.ConversionResult)

// Job converts one input (video file or frame directory) into a frame
// sequence on a dedicated goroutine. Progress, status, and result are
// guarded by a single lock; the interactive side polls them while the
// worker writes. Jobs are single-use: one Start, one result, no retries.
type Job struct {
	inputPath string
	videoMode bool
	frameGlob string
	processor Processor

	mu       sync.Mutex
	started  bool
	progress float64
	status   string
	result   *types.ConversionResult
}

// NewJob creates a conversion job. The processor is only consulted in
// video mode and is closed by the job when the conversion finishes.
func NewJob(inputPath string, videoMode bool, frameGlob string, processor Processor) *Job {
	return &Job{
		inputPath: inputPath,
		videoMode: videoMode,
		frameGlob: frameGlob,
		processor: processor,
	}
}

// InputPath returns the job's input path
func (j *Job) InputPath() string {
	return j.inputPath
}

// VideoMode reports whether the job converts a video rather than
// importing a frame directory
func (j *Job) VideoMode() bool {
	return j.videoMode
}

// Start launches the conversion on a worker goroutine and returns
// immediately. Calling Start twice is an error.
func (j *Job) Start(callback Callback) error {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return errors.Newf("job for %s already started", j.inputPath)
	}
	j.started = true
	j.mu.Unlock()

	go j.run(callback)
	return nil
}

// Status returns the current progress percent and status text
func (j *Job) Status() (float64, string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress, j.status
}

// Result returns the terminal result, or nil while the job is running
func (j *Job) Result() *types.ConversionResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Done reports whether the job has reached its terminal result
func (j *Job) Done() bool {
	return j.Result() != nil
}

func (j *Job) run(callback Callback) {
	result := j.execute()

	j.mu.Lock()
	if j.result != nil {
		// Terminal result is written at most once
		j.mu.Unlock()
		return
	}
	j.result = result
	if result.Success {
		j.progress = 100
		j.status = "Complete"
	} else {
		j.status = "Error: " + result.Err
	}
	j.mu.Unlock()

	if !result.Success {
		log.LogWithFields(log.F("input", j.inputPath)).Errorf("Conversion failed: %s", result.Err)
	}

	callback(result)
}

func (j *Job) execute() *types.ConversionResult {
	if j.videoMode {
		return j.executeVideo()
	}
	return j.executeDirectory()
}

func (j *Job) executeVideo() *types.ConversionResult {
	outputDir := OutputDirFor(j.inputPath)
	paths, rate, err := j.processor.ProcessVideo(context.Background(), j.inputPath, outputDir, j.setProgress)

	// Deterministic teardown regardless of outcome
	if cerr := j.processor.Close(); cerr != nil {
		log.Warnf("Processor close failed: %v", cerr)
	}

	if err != nil {
		return &types.ConversionResult{Success: false, Err: err.Error()}
	}
	return &types.ConversionResult{Success: true, FramePaths: paths, FrameRate: rate}
}

func (j *Job) executeDirectory() *types.ConversionResult {
	j.setProgress(1, 2, "Scanning frame files...")

	paths, err := ScanFrameDir(j.inputPath, j.frameGlob)
	if err != nil {
		return &types.ConversionResult{Success: false, Err: err.Error()}
	}

	return &types.ConversionResult{
		Success:    true,
		FramePaths: paths,
		FrameRate:  DefaultFrameRate,
	}
}

// setProgress records a progress update from the worker. Percent never
// decreases over the life of a job; a zero total updates only the status.
func (j *Job) setProgress(step, total int, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if message != "" {
		j.status = message
	}
	if total > 0 {
		percent := float64(step) / float64(total) * 100
		if percent > j.progress {
			j.progress = percent
		}
	}
}
