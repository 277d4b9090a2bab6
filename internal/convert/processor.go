// Package convert runs video-to-frame-sequence conversion off the
// interactive path. The conversion algorithm itself lives in an external
// tool; this package owns the orchestration around it.
package convert

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"splay4d/internal/config"
	"splay4d/internal/errors"
	"splay4d/internal/log"
)

// DefaultFrameRate is assumed when the source clip rate cannot be determined
const DefaultFrameRate = 30.0

// ProgressFunc receives conversion progress updates from the processor.
// A total of zero means the line carried only a status message.
type ProgressFunc func(step, total int, message string)

// Processor converts a video file into a frame sequence. Close releases
// the processor's resources; callers must invoke it exactly once after
// the conversion finished or failed.
type Processor interface {
	ProcessVideo(ctx context.Context, inputPath, outputDir string, progress ProgressFunc) ([]string, float64, error)
	Close() error
}

// Progress lines printed by the converter look like "12/300 optimizing frame"
var progressLine = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)\s*(.*)$`)

// CommandProcessor drives an external converter executable. The command's
// stdout is scanned for progress lines; produced frames are enumerated
// from the output directory afterwards.
type CommandProcessor struct {
	command   []string
	probe     string
	frameGlob string

	mu     sync.Mutex
	cmd    *exec.Cmd
	closed bool
}

// NewCommandProcessor builds a processor from the configured converter command
func NewCommandProcessor(cfg *config.Config) *CommandProcessor {
	return &CommandProcessor{
		command:   cfg.Processor.Command,
		probe:     cfg.Processor.Probe,
		frameGlob: cfg.Input.FrameGlob,
	}
}

// ProcessVideo runs the converter on inputPath, writing frames to outputDir.
// It returns the sorted frame paths and the source clip's frame rate.
func (p *CommandProcessor) ProcessVideo(ctx context.Context, inputPath, outputDir string, progress ProgressFunc) ([]string, float64, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, 0, errors.NewConversionError("input not found", inputPath, errors.InputNotFound, err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, 0, errors.NewConversionError("cannot create output directory", outputDir, errors.ConversionFailure, err)
	}

	argv := make([]string, len(p.command))
	for i, arg := range p.command {
		arg = strings.ReplaceAll(arg, "{input}", inputPath)
		arg = strings.ReplaceAll(arg, "{output}", outputDir)
		argv[i] = arg
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// Closed check precedes the pipe: pipe descriptors are only released
	// when the command runs
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, 0, errors.New("processor is closed")
	}
	p.cmd = cmd
	p.mu.Unlock()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, errors.NewConversionError("cannot start converter", inputPath, errors.ConversionFailure, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, 0, errors.NewConversionError("cannot start converter", inputPath, errors.ConversionFailure, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || progress == nil {
			continue
		}
		if m := progressLine.FindStringSubmatch(line); m != nil {
			step, _ := strconv.Atoi(m[1])
			total, _ := strconv.Atoi(m[2])
			progress(step, total, strings.TrimSpace(m[3]))
		} else {
			progress(0, 0, line)
		}
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = errors.Wrap(err, detail)
		}
		return nil, 0, errors.NewConversionError("converter failed", inputPath, errors.ConversionFailure, err)
	}

	paths, err := ScanFrameDir(outputDir, p.frameGlob)
	if err != nil {
		return nil, 0, err
	}

	rate, err := probeFrameRate(p.probe, inputPath)
	if err != nil {
		log.Warnf("Could not probe frame rate of %s: %v; assuming %.1f", inputPath, err, DefaultFrameRate)
		rate = DefaultFrameRate
	}

	return paths, rate, nil
}

// Close kills any in-flight converter process and marks the processor
// unusable. Safe to call more than once.
func (p *CommandProcessor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.cmd != nil && p.cmd.Process != nil && p.cmd.ProcessState == nil {
		if err := p.cmd.Process.Kill(); err != nil {
			return errors.Wrap(err, "failed to kill converter process")
		}
	}
	return nil
}

// probeFrameRate reads the r_frame_rate of the first video stream via ffprobe
func probeFrameRate(probe, inputPath string) (float64, error) {
	cmd := exec.Command(probe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "csv=p=0",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, err
	}

	raw := strings.TrimSpace(string(out))
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return 0, errors.Newf("unexpected frame rate format %q", raw)
	}

	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	if num == 0 || den == 0 {
		return 0, errors.Newf("degenerate frame rate %q", raw)
	}

	return num / den, nil
}
