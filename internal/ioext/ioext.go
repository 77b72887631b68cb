// Package ioext reads and writes the plain-text document formats the
// command line accepts. Extensions outside the supported set are
// rejected before any text reaches the pipeline, so binary formats are
// never fed to the detectors.
package ioext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extensions accepted for input and output documents.
var supportedExts = map[string]bool{
	".txt": true,
	".md":  true,
}

// UnsupportedFormatError reports a path whose extension is not a
// supported plain-text format.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("ioext: unsupported format %q for %s (want .txt or .md)",
		filepath.Ext(e.Path), e.Path)
}

// Supported reports whether the path has an accepted extension. The
// check is case-insensitive.
func Supported(path string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(path))]
}

// ReadText reads one document. Unsupported extensions fail with an
// UnsupportedFormatError before the file is touched.
func ReadText(path string) (string, error) {
	if !Supported(path) {
		return "", &UnsupportedFormatError{Path: path}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("ioext: read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteText writes a redacted document. The same extension gate as
// ReadText applies to the output path.
func WriteText(path, text string) error {
	if !Supported(path) {
		return &UnsupportedFormatError{Path: path}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("ioext: write %s: %w", path, err)
	}
	return nil
}
