package types

// SplatFrame is one decoded point-cloud frame of a sequence.
// The vertex payload is kept as raw little-endian bytes; consumers that
// need individual attributes index into Data using Properties and Stride.
type SplatFrame struct {
	Path        string   // Source file the frame was decoded from
	VertexCount int      // Number of splats in the frame
	Properties  []string // Per-vertex property names in declaration order
	Stride      int      // Bytes per vertex
	Data        []byte   // VertexCount * Stride bytes of vertex data
}

// Size returns the payload size in bytes
func (f *SplatFrame) Size() int {
	return len(f.Data)
}
