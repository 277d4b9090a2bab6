package types

// ConversionResult holds the terminal outcome of a single conversion job.
// It is constructed exactly once per job and never mutated afterwards.
type ConversionResult struct {
	Success    bool     `json:"success"`
	FramePaths []string `json:"frame_paths,omitempty"` // Lexicographically sorted frame files
	FrameRate  float64  `json:"frame_rate"`            // Source frame rate, 30.0 when unknown
	Err        string   `json:"error,omitempty"`
}

// FrameCount returns the number of frames in the result sequence
func (r *ConversionResult) FrameCount() int {
	return len(r.FramePaths)
}
