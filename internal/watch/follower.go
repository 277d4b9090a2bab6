// Package watch follows a conversion output directory while frames are
// still being written, so the panel can report and pick up frames
// produced by a long-running conversion as they appear.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"splay4d/internal/errors"
	"splay4d/internal/log"
)

// FrameEvent is one new frame file detected in the followed directory
type FrameEvent struct {
	Path      string
	Timestamp time.Time
}

// FollowerStatus represents the current status of a follower
type FollowerStatus struct {
	Running      bool      // Whether the follower is currently active
	Directory    string    // Directory being followed
	FramesSeen   int       // Distinct frame files detected so far
	LastActivity time.Time // Time of the last detected frame
}

// Follower watches one directory for new frame files matching a glob.
// Each distinct matching file is reported once, via both the event
// channel and the optional callback.
type Follower struct {
	dir     string
	matcher glob.Glob

	fsWatcher *fsnotify.Watcher
	frameChan chan FrameEvent
	stopChan  chan struct{}

	// Lock for running state, seen set, and stats
	mutex sync.RWMutex

	running      bool
	seen         map[string]bool
	lastActivity time.Time

	// Callback for when a new frame is detected
	callback func(path string)
}

// NewFollower creates a follower for dir reporting files matching pattern
func NewFollower(dir, pattern string) (*Follower, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewConfigError("invalid frame glob", pattern, errors.InvalidConfig, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	return &Follower{
		dir:       dir,
		matcher:   matcher,
		fsWatcher: fsWatcher,
		frameChan: make(chan FrameEvent, 64),
		stopChan:  make(chan struct{}),
		seen:      make(map[string]bool),
	}, nil
}

// SetCallback sets a function invoked once per detected frame
func (f *Follower) SetCallback(cb func(path string)) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.callback = cb
}

// FrameChannel returns the channel delivering detected frames
func (f *Follower) FrameChannel() <-chan FrameEvent {
	return f.frameChan
}

// Start begins following the directory. The directory must exist. A
// failed Start releases the underlying watcher; the follower is not
// reusable after.
func (f *Follower) Start() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.running {
		return errors.New("follower already running")
	}

	info, err := os.Stat(f.dir)
	if err != nil {
		f.fsWatcher.Close()
		return errors.Wrapf(err, "error accessing directory %s", f.dir)
	}
	if !info.IsDir() {
		f.fsWatcher.Close()
		return errors.Newf("%s is not a directory", f.dir)
	}

	if err := f.fsWatcher.Add(f.dir); err != nil {
		f.fsWatcher.Close()
		return errors.Wrapf(err, "failed to follow directory %s", f.dir)
	}

	f.running = true
	go f.eventLoop()

	log.LogWithFields(log.F("directory", f.dir)).Info("Following conversion output")
	return nil
}

// Stop halts the follower and releases the underlying watcher
func (f *Follower) Stop() {
	f.mutex.Lock()
	if !f.running {
		f.mutex.Unlock()
		return
	}
	f.running = false
	f.mutex.Unlock()

	close(f.stopChan)
	f.fsWatcher.Close()
}

// Status returns the current status of the follower
func (f *Follower) Status() FollowerStatus {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	return FollowerStatus{
		Running:      f.running,
		Directory:    f.dir,
		FramesSeen:   len(f.seen),
		LastActivity: f.lastActivity,
	}
}

func (f *Follower) eventLoop() {
	for {
		select {
		case event, ok := <-f.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			f.handleFrame(event.Name)

		case err, ok := <-f.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Follower error on %s: %v", f.dir, err)

		case <-f.stopChan:
			return
		}
	}
}

func (f *Follower) handleFrame(path string) {
	if !f.matcher.Match(filepath.Base(path)) {
		return
	}

	f.mutex.Lock()
	if f.seen[path] {
		f.mutex.Unlock()
		return
	}
	f.seen[path] = true
	f.lastActivity = time.Now()
	cb := f.callback
	f.mutex.Unlock()

	log.Debugf("New frame detected: %s", path)

	select {
	case f.frameChan <- FrameEvent{Path: path, Timestamp: time.Now()}:
	default:
		// A stalled consumer must not stall the watcher
	}

	if cb != nil {
		cb(path)
	}
}
