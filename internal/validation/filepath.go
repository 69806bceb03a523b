package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MemoryPath names an in-memory database and is accepted as is.
const MemoryPath = ":memory:"

// FilePathValidator checks the files the reader stores data in: the history
// database, the page cache and the debug log.
type FilePathValidator struct {
	// MaxPathLength is the maximum allowed path length
	MaxPathLength int
}

func NewFilePathValidator() *FilePathValidator {
	return &FilePathValidator{MaxPathLength: 4096}
}

// ValidateFile expands ~, makes path absolute and rejects anything that
// could not be opened as a regular file. An empty path stays empty so
// optional stores can be switched off.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	if path == "" || path == MemoryPath {
		return path, nil
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	if err := validateCharacters(path); err != nil {
		return "", err
	}

	normalized, err := normalizePath(path)
	if err != nil {
		return "", fmt.Errorf("path normalization failed: %w", err)
	}

	if info, err := os.Stat(normalized); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", normalized)
	}
	return normalized, nil
}

func validateCharacters(path string) error {
	for _, char := range path {
		if char == 0 {
			return fmt.Errorf("path contains null bytes")
		}
		if char < 32 && char != '\t' {
			return fmt.Errorf("path contains control characters")
		}
	}
	return nil
}

func normalizePath(path string) (string, error) {
	switch {
	case path == "~" || strings.HasPrefix(path, "~/"):
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	case strings.HasPrefix(path, "~"):
		return "", fmt.Errorf("invalid tilde usage")
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = abs
	}
	return filepath.Clean(path), nil
}
