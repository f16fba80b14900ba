package frames

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_ParsesAndSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2025-08-02_10-00-00.png")
	touch(t, dir, "2025-08-01_09-30-00.png")
	touch(t, dir, "2025-08-01_12-00-00.webp")
	touch(t, dir, "backup.png")
	touch(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "2025-08-03_00-00-00.png"), 0755); err != nil {
		t.Fatal(err)
	}

	cat, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(cat.Frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(cat.Frames))
	}
	if len(cat.Skipped) != 1 || cat.Skipped[0] != "backup.png" {
		t.Errorf("skipped = %v, want [backup.png]", cat.Skipped)
	}
	if cat.Frames[0].Name != "2025-08-01_09-30-00.png" || cat.Frames[2].Name != "2025-08-02_10-00-00.png" {
		t.Errorf("frames not sorted by time: %v", cat.Frames)
	}
}

func TestScan_EmptyFolder(t *testing.T) {
	cat, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if !cat.Empty() {
		t.Error("expected empty catalog")
	}
	if _, err := cat.Buckets(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("Buckets error = %v, want ErrNoFrames", err)
	}
}

func TestDayIndex(t *testing.T) {
	anchor := time.Date(2025, 8, 1, 18, 0, 0, 0, time.UTC)
	testCases := []struct {
		name string
		ts   time.Time
		want int
	}{
		{"anchor itself", anchor, 1},
		{"same calendar day later", anchor.Add(5 * time.Hour), 1},
		{"next calendar day but under 24h", anchor.Add(23*time.Hour + 59*time.Minute + 59*time.Second), 1},
		{"exactly 24h", anchor.Add(24 * time.Hour), 2},
		{"ten days", anchor.Add(9*24*time.Hour + time.Hour), 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DayIndex(tc.ts, anchor); got != tc.want {
				t.Errorf("DayIndex = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDayIndex_Monotonic(t *testing.T) {
	anchor := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	prev := 0
	for s := 0; s < 10*86400; s += 977 {
		d := DayIndex(anchor.Add(time.Duration(s)*time.Second), anchor)
		if d < 1 || d < prev {
			t.Fatalf("day index %d after %d at offset %ds", d, prev, s)
		}
		prev = d
	}
}

func TestBuckets_AnchoredAtEarliestCapture(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{
		"2025-08-01_20-00-00.png",
		"2025-08-02_08-00-00.png", // still day 1
		"2025-08-02_20-00-00.png", // day 2
		"2025-08-04_21-00-00.png", // day 4
	} {
		touch(t, dir, n)
	}
	cat, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	buckets, err := cat.Buckets()
	if err != nil {
		t.Fatalf("Buckets returned error: %v", err)
	}
	if len(buckets[1]) != 2 || len(buckets[2]) != 1 || len(buckets[4]) != 1 || len(buckets) != 3 {
		t.Errorf("buckets = %v", buckets)
	}
}
