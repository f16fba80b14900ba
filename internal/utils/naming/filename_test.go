package naming

import (
	"testing"
	"time"

	"tilelapse/internal/common"
)

func TestGenerateCaptureFilename(t *testing.T) {
	ts := time.Date(2025, 8, 1, 23, 59, 1, 0, time.Local)
	if got := GenerateCaptureFilename(ts, "png"); got != "2025-08-01_23-59-01.png" {
		t.Errorf("GenerateCaptureFilename = %q", got)
	}
}

func TestParseCaptureFilename(t *testing.T) {
	testCases := []struct {
		name     string
		wantStem string
		wantOK   bool
	}{
		{"2025-08-01_23-59-01.png", "2025-08-01_23-59-01", true},
		{"2025-08-01_23-59-01.WEBP", "2025-08-01_23-59-01", true},
		{"garbage.png", "garbage", true},
		{"notes.txt", "", false},
		{"README", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stem, ok := ParseCaptureFilename(tc.name)
			if stem != tc.wantStem || ok != tc.wantOK {
				t.Errorf("ParseCaptureFilename(%q) = (%q, %v), want (%q, %v)", tc.name, stem, ok, tc.wantStem, tc.wantOK)
			}
		})
	}
}

func TestGenerateOutputPath(t *testing.T) {
	if got := GenerateOutputPath("Timelapses/OSU", common.FormatWebM); got != "Timelapses/OSU.webm" {
		t.Errorf("GenerateOutputPath = %q", got)
	}
}
