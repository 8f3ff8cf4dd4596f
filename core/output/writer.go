// Package output handles artifact naming and writing for ReportGate.
// Downloaded and written artifacts are named report_<timestamp>.<ext>
// unless the caller supplies a base name.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gaurav-prasanna/reportgate/core"
)

// timestampLayout is the timestamp format used in artifact file names.
const timestampLayout = "20060102_150405"

// DownloadName returns the attachment name for an artifact rendered at now.
// Example: report_20260102_030405.xlsx
func DownloadName(kind core.OutputKind, now time.Time) string {
	return "report_" + now.Format(timestampLayout) + kind.Extension()
}

// Writer writes rendered artifacts to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data as <base>.<ext> in the output directory. An empty base
// falls back to the timestamped download name.
func (w *Writer) Write(base string, kind core.OutputKind, data []byte, now time.Time) (string, error) {
	name := DownloadName(kind, now)
	if base = strings.TrimSuffix(strings.TrimSpace(base), kind.Extension()); base != "" {
		name = sanitize(base) + kind.Extension()
	}
	path := filepath.Join(w.OutputDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// sanitize replaces characters outside [A-Za-z0-9_-] with underscores.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
