package convert

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"splay4d/internal/errors"
)

// ScanFrameDir enumerates the files in dir whose base name matches the
// frame glob, returning full paths in lexicographic order. Zero matches
// is an EmptyResult error.
func ScanFrameDir(dir, pattern string) ([]string, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewConfigError("invalid frame glob", pattern, errors.InvalidConfig, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConversionError("input not found", dir, errors.InputNotFound, err)
		}
		return nil, errors.NewConversionError("cannot read frame directory", dir, errors.ConversionFailure, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matcher.Match(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, errors.NewConversionError("no frame files matching "+pattern+" found", dir, errors.EmptyResult, nil)
	}

	sort.Strings(paths)
	return paths, nil
}

// OutputDirFor derives the conversion output directory for a video input:
// a sibling directory named after the video's stem.
func OutputDirFor(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), stem+"_gaussians")
}
