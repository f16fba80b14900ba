package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tilelapse/internal/common"
)

// GenerateCaptureFilename creates the capture file name for a wall-clock time
// Format: {YYYY-MM-DD_HH-MM-SS}.{ext}
func GenerateCaptureFilename(t time.Time, format string) string {
	return fmt.Sprintf("%s.%s", common.FormatCaptureTimestamp(t), format)
}

// ParseCaptureFilename splits a capture file name into its timestamp and
// extension. ok is false for files that are not captures at all.
func ParseCaptureFilename(name string) (stem string, ok bool) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range common.CaptureExtensions {
		if ext == known {
			return strings.TrimSuffix(name, filepath.Ext(name)), true
		}
	}
	return "", false
}

// GenerateOutputPath appends the container extension to the configured base path
func GenerateOutputPath(base string, format common.OutputFormat) string {
	return base + format.Extension()
}
