package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrContentDirRequired = errors.New("content directory is required")
var ErrIndexPathRequired = errors.New("index database path is required")

func NormalizeContentDir(path string) (string, error) {
	return normalize(path, ErrContentDirRequired)
}

func NormalizeIndexPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	return normalize(path, ErrIndexPathRequired)
}

func normalize(path string, required error) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", required
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	return absPath, nil
}
