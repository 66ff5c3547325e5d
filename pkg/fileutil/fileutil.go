package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) error {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	assetsDir := filepath.Join(targetPath...)
	if err := os.MkdirAll(assetsDir, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}
	return nil
}

// SanitizeFilename replaces path separators and other filesystem-hostile
// characters so a URL-derived string can be used as a filename.
func SanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	sanitized := replacer.Replace(name)
	if len(sanitized) > 200 {
		sanitized = sanitized[:200]
	}
	return sanitized
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCauseWriteError,
		}
	}
	return nil
}
