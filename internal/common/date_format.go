package common

import (
	"fmt"
	"time"
)

// Standard date format constants
const (
	// CaptureTimestamp names capture files. It sorts lexicographically in
	// capture order and has second resolution.
	CaptureTimestamp = "2006-01-02_15-04-05"

	// VideoOverlayDate is the format used in frame overlays
	VideoOverlayDate = "2006-01-02 15:04"
)

// FormatCaptureTimestamp formats a wall-clock time as a capture file stem
func FormatCaptureTimestamp(t time.Time) string {
	return t.Format(CaptureTimestamp)
}

// ParseCaptureTimestamp parses a capture file stem (YYYY-MM-DD_HH-MM-SS).
// The result carries no zone information and is returned in UTC so that
// differences between two stamps are plain wall-clock arithmetic.
func ParseCaptureTimestamp(stem string) (time.Time, error) {
	if stem == "" {
		return time.Time{}, fmt.Errorf("timestamp string is empty")
	}
	return time.ParseInLocation(CaptureTimestamp, stem, time.UTC)
}

// FormatVideoOverlay formats a time.Time for frame overlay text
func FormatVideoOverlay(t time.Time) string {
	return t.Format(VideoOverlayDate)
}
