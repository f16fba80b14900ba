package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for an output format outside the supported set
var ErrUnknownFormat = errors.New("unrecognized output format")

// OutputFormat is the closed set of compiled timelapse containers
type OutputFormat string

const (
	FormatGIF  OutputFormat = "gif"  // palette animation, global color table
	FormatMP4  OutputFormat = "mp4"  // H.264, no alpha
	FormatWebM OutputFormat = "webm" // VP9 with alpha
	FormatAVI  OutputFormat = "avi"  // Motion JPEG, no alpha
)

// ParseOutputFormat converts a format string to an OutputFormat
// Accepted values: "gif", "mp4", "webm", "avi"
func ParseOutputFormat(format string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(format))); f {
	case FormatGIF, FormatMP4, FormatWebM, FormatAVI:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (must be 'gif', 'mp4', 'webm' or 'avi')", ErrUnknownFormat, format)
	}
}

// Extension returns the file extension including the leading dot
func (f OutputFormat) Extension() string {
	return "." + string(f)
}

// Paletted reports whether the format stores palette-indexed frames
func (f OutputFormat) Paletted() bool {
	return f == FormatGIF
}

// SupportsAlpha reports whether the container can carry transparency
func (f OutputFormat) SupportsAlpha() bool {
	return f == FormatGIF || f == FormatWebM
}
