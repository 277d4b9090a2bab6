// Package panel orchestrates the sequence workflow: it owns the stage,
// the active conversion job, the frame cache, and the playback
// controller, and exposes the polled status the UI surfaces render.
// One Panel is constructed per window; there is no ambient state.
package panel

import (
	"os"
	"sync"

	"splay4d/internal/config"
	"splay4d/internal/convert"
	"splay4d/internal/errors"
	"splay4d/internal/frames"
	"splay4d/internal/log"
	"splay4d/internal/playback"
	"splay4d/internal/scene"
	"splay4d/internal/watch"
	"splay4d/pkg/types"
)

// Status is one polled snapshot of the panel for rendering
type Status struct {
	Stage       types.Stage
	Progress    float64 // Conversion progress percent while processing
	StatusText  string  // Conversion status line while processing
	FrameIndex  int
	FrameCount  int
	FrameRate   float64
	Playing     bool
	FramesReady int // Frames seen by the follower during conversion
	Err         string
}

// Panel wires user actions to conversion jobs and playback
type Panel struct {
	cfg        *config.Config
	graph      scene.Graph
	loader     frames.Loader
	controller *playback.Controller

	// Factory producing one processor per video-mode job, so each job
	// gets its own Close
	newProcessor func() convert.Processor

	mu       sync.Mutex
	stage    types.Stage
	job      *convert.Job
	follower *watch.Follower
	lastErr  string
}

// Option configures a Panel
type Option func(*Panel)

// WithLoader substitutes the frame loader
func WithLoader(loader frames.Loader) Option {
	return func(p *Panel) {
		p.loader = loader
	}
}

// WithProcessorFactory substitutes the conversion processor factory
func WithProcessorFactory(factory func() convert.Processor) Option {
	return func(p *Panel) {
		p.newProcessor = factory
	}
}

// WithControllerOptions passes options through to the playback controller
func WithControllerOptions(opts ...playback.Option) Option {
	return func(p *Panel) {
		p.controller = playback.NewController(p.loader, p.graph, p.cfg.Playback.NodeName, opts...)
	}
}

// New creates an idle panel pushing frames into graph
func New(cfg *config.Config, graph scene.Graph, opts ...Option) *Panel {
	p := &Panel{
		cfg:    cfg,
		graph:  graph,
		loader: frames.NewLoader(),
		stage:  types.StageIdle,
	}
	p.newProcessor = func() convert.Processor {
		return convert.NewCommandProcessor(cfg)
	}
	p.controller = playback.NewController(p.loader, graph, cfg.Playback.NodeName)

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Controller exposes the playback controller for UI bindings
func (p *Panel) Controller() *playback.Controller {
	return p.controller
}

// StartConversion launches a conversion job for inputPath and moves the
// stage to Processing. The path is checked before any job is created.
// While a job is in flight further starts are rejected; there is no
// cancellation of a running conversion.
func (p *Panel) StartConversion(inputPath string, videoMode bool) error {
	if _, err := os.Stat(inputPath); err != nil {
		log.Errorf("Path not found: %s", inputPath)
		return errors.NewConversionError("path not found", inputPath, errors.InputNotFound, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage == types.StageProcessing {
		return errors.NewKind("a conversion job is already running", errors.JobInFlight)
	}

	// The old sequence is invalid the moment a new job starts
	p.controller.Stop()

	var processor convert.Processor
	if videoMode {
		processor = p.newProcessor()
	}

	p.job = convert.NewJob(inputPath, videoMode, p.cfg.Input.FrameGlob, processor)
	p.stage = types.StageProcessing
	p.lastErr = ""

	if videoMode && p.cfg.Follow.Enabled {
		p.startFollower(convert.OutputDirFor(inputPath))
	}

	if err := p.job.Start(p.onComplete); err != nil {
		p.stage = types.StageError
		p.lastErr = err.Error()
		return err
	}

	log.LogWithFields(
		log.F("input", inputPath),
		log.F("video_mode", videoMode),
	).Info("Conversion started")
	return nil
}

// startFollower is best-effort; conversion proceeds without it.
// Caller holds p.mu.
func (p *Panel) startFollower(outputDir string) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Warnf("Cannot prepare output directory for following: %v", err)
		return
	}

	follower, err := watch.NewFollower(outputDir, p.cfg.Input.FrameGlob)
	if err == nil {
		err = follower.Start()
	}
	if err != nil {
		log.Warnf("Cannot follow conversion output: %v", err)
		return
	}
	p.follower = follower
}

// onComplete receives the job's terminal result on the worker goroutine
func (p *Panel) onComplete(result *types.ConversionResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.follower != nil {
		p.follower.Stop()
		p.follower = nil
	}

	if !result.Success {
		p.stage = types.StageError
		p.lastErr = result.Err
		return
	}

	rate := result.FrameRate
	if p.job != nil && !p.job.VideoMode() {
		// Directory imports have no source clip; the configured
		// playback rate wins
		rate = p.cfg.Playback.FrameRate
	}

	cache := playback.NewCache(p.loader, p.cfg.Playback.CacheCapacity)
	p.controller.SetSequence(result.FramePaths, rate, cache)
	p.controller.Play()
	p.stage = types.StagePlaying

	go cache.Preload(result.FramePaths)

	log.Infof("Sequence ready: %d frames at %.1f fps", result.FrameCount(), rate)
}

// Tick runs one redraw step: the playback advance rule plus error
// bookkeeping. Call once per UI redraw.
func (p *Panel) Tick() {
	if err := p.controller.Tick(); err != nil {
		p.mu.Lock()
		p.stage = types.StageError
		p.lastErr = err.Error()
		p.mu.Unlock()
	}
}

// TogglePlay flips play/pause without touching the frame index
func (p *Panel) TogglePlay() {
	p.controller.TogglePlay()
}

// SetFrameIndex jumps to a frame and pushes it immediately. The UI gates
// scrubbing to paused playback.
func (p *Panel) SetFrameIndex(i int) error {
	err := p.controller.SetIndex(i)
	if err != nil && (errors.IsFrameLoadFailure(err) || errors.IsSceneUnavailable(err)) {
		p.mu.Lock()
		p.stage = types.StageError
		p.lastErr = err.Error()
		p.mu.Unlock()
	}
	return err
}

// ResetFrame rewinds to frame zero and pushes it
func (p *Panel) ResetFrame() error {
	return p.SetFrameIndex(0)
}

// SetRate changes the target playback rate
func (p *Panel) SetRate(rate float64) {
	p.controller.SetRate(rate)
}

// Status returns a snapshot for rendering. Job fields are read under the
// job's own lock, concurrently with the worker writing them.
func (p *Panel) Status() Status {
	p.mu.Lock()
	stage := p.stage
	lastErr := p.lastErr
	job := p.job
	follower := p.follower
	p.mu.Unlock()

	s := Status{
		Stage:      stage,
		FrameIndex: p.controller.Index(),
		FrameCount: p.controller.FrameCount(),
		FrameRate:  p.controller.Rate(),
		Playing:    p.controller.IsPlaying(),
		Err:        lastErr,
	}
	if job != nil {
		s.Progress, s.StatusText = job.Status()
	}
	if follower != nil {
		s.FramesReady = follower.Status().FramesSeen
	}
	return s
}

// Close stops playback and any follower; the panel is not reusable after
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.follower != nil {
		p.follower.Stop()
		p.follower = nil
	}
	p.controller.Stop()
	p.stage = types.StageIdle
}
