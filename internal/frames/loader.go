// Package frames decodes on-disk point-cloud frame files into splat
// payloads for the playback engine.
package frames

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"splay4d/internal/errors"
	"splay4d/pkg/types"
)

// Loader decodes a frame file into a splat payload
type Loader interface {
	Load(path string) (*types.SplatFrame, error)
}

// PLYLoader reads binary little-endian PLY splat frames
type PLYLoader struct{}

// NewLoader creates the default PLY frame loader
func NewLoader() *PLYLoader {
	return &PLYLoader{}
}

// Sizes of PLY scalar property types in bytes
var propertySizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

// Load reads and decodes the PLY frame at path. Unreadable files yield a
// FrameUnreadable error, malformed contents a FrameFormatInvalid error.
func (l *PLYLoader) Load(path string) (*types.SplatFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFrameError("cannot open frame file", path, errors.FrameUnreadable, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	magic, err := readHeaderLine(r)
	if err != nil || magic != "ply" {
		return nil, errors.NewFrameError("not a PLY file", path, errors.FrameFormatInvalid, err)
	}

	frame := &types.SplatFrame{Path: path}
	formatSeen := false
	inVertexElement := false

	for {
		line, err := readHeaderLine(r)
		if err != nil {
			return nil, errors.NewFrameError("unterminated PLY header", path, errors.FrameFormatInvalid, err)
		}
		if line == "end_header" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			// Ignored

		case "format":
			if len(fields) < 2 || fields[1] != "binary_little_endian" {
				return nil, errors.NewFrameError("unsupported PLY format "+line, path, errors.FrameFormatInvalid, nil)
			}
			formatSeen = true

		case "element":
			if len(fields) != 3 {
				return nil, errors.NewFrameError("malformed element declaration", path, errors.FrameFormatInvalid, nil)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, errors.NewFrameError("malformed element count", path, errors.FrameFormatInvalid, err)
			}
			if fields[1] == "vertex" {
				frame.VertexCount = count
				inVertexElement = true
			} else {
				// Splat frames carry a single vertex element; anything
				// else would shift the binary layout under us.
				if count > 0 {
					return nil, errors.NewFrameError("unsupported element "+fields[1], path, errors.FrameFormatInvalid, nil)
				}
				inVertexElement = false
			}

		case "property":
			if !inVertexElement {
				continue
			}
			if len(fields) < 3 {
				return nil, errors.NewFrameError("malformed property declaration", path, errors.FrameFormatInvalid, nil)
			}
			if fields[1] == "list" {
				return nil, errors.NewFrameError("list properties not supported", path, errors.FrameFormatInvalid, nil)
			}
			size, ok := propertySizes[fields[1]]
			if !ok {
				return nil, errors.NewFrameError("unknown property type "+fields[1], path, errors.FrameFormatInvalid, nil)
			}
			frame.Properties = append(frame.Properties, fields[2])
			frame.Stride += size

		default:
			return nil, errors.NewFrameError("unexpected header line "+line, path, errors.FrameFormatInvalid, nil)
		}
	}

	if !formatSeen {
		return nil, errors.NewFrameError("missing format declaration", path, errors.FrameFormatInvalid, nil)
	}
	if frame.VertexCount == 0 || frame.Stride == 0 {
		return nil, errors.NewFrameError("no vertex data declared", path, errors.FrameFormatInvalid, nil)
	}

	frame.Data = make([]byte, frame.VertexCount*frame.Stride)
	if _, err := io.ReadFull(r, frame.Data); err != nil {
		return nil, errors.NewFrameError("truncated vertex data", path, errors.FrameFormatInvalid, err)
	}

	return frame, nil
}

func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
