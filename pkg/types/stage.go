package types

// Stage identifies the current phase of the sequence panel.
// Exactly one stage is active at a time.
type Stage int

const (
	StageIdle Stage = iota
	StageProcessing
	StagePlaying
	StageError
)

// String returns a human-readable stage name
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageProcessing:
		return "processing"
	case StagePlaying:
		return "playing"
	case StageError:
		return "error"
	}
	return "unknown"
}
