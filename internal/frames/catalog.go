package frames

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tilelapse/internal/common"
	"tilelapse/internal/utils/naming"
)

var (
	// ErrNoFrames is returned when a folder holds no parseable capture files
	ErrNoFrames = errors.New("no capture files found")

	// ErrMalformedName marks a capture file whose name is not a timestamp
	ErrMalformedName = errors.New("malformed capture file name")
)

// Day is the length of one relative day bucket
const Day = 24 * time.Hour

// Frame is one persisted capture
type Frame struct {
	Name string
	Path string
	Time time.Time
}

// Catalog is the set of captures in a folder, sorted by capture time
type Catalog struct {
	Frames  []Frame
	Skipped []string // malformed names excluded from the scan
}

// Scan lists capture files in folder. Names that do not parse as a timestamp
// are excluded and recorded in Skipped; files with other extensions are ignored.
func Scan(folder string) (*Catalog, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture folder: %w", err)
	}

	cat := &Catalog{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		stem, ok := naming.ParseCaptureFilename(name)
		if !ok {
			continue
		}

		ts, err := common.ParseCaptureTimestamp(stem)
		if err != nil {
			log.Printf("[Catalog] Skipping %s: %v", name, fmt.Errorf("%w: %v", ErrMalformedName, err))
			cat.Skipped = append(cat.Skipped, name)
			continue
		}

		cat.Frames = append(cat.Frames, Frame{
			Name: name,
			Path: filepath.Join(folder, name),
			Time: ts,
		})
	}

	sort.SliceStable(cat.Frames, func(i, j int) bool {
		if cat.Frames[i].Time.Equal(cat.Frames[j].Time) {
			return cat.Frames[i].Name < cat.Frames[j].Name
		}
		return cat.Frames[i].Time.Before(cat.Frames[j].Time)
	})

	return cat, nil
}

// Empty reports whether the catalog holds no frames
func (c *Catalog) Empty() bool {
	return len(c.Frames) == 0
}

// Anchor returns the earliest capture time
func (c *Catalog) Anchor() (time.Time, error) {
	if c.Empty() {
		return time.Time{}, ErrNoFrames
	}
	anchor := c.Frames[0].Time
	for _, f := range c.Frames[1:] {
		if f.Time.Before(anchor) {
			anchor = f.Time
		}
	}
	return anchor, nil
}

// DayIndex returns floor((ts - anchor) / 24h) + 1
func DayIndex(ts, anchor time.Time) int {
	return int(ts.Sub(anchor)/Day) + 1
}

// Buckets groups frames by relative day. Each bucket is sorted ascending by time.
func (c *Catalog) Buckets() (Buckets, error) {
	anchor, err := c.Anchor()
	if err != nil {
		return nil, err
	}

	buckets := make(Buckets)
	for _, f := range c.Frames {
		d := DayIndex(f.Time, anchor)
		buckets[d] = append(buckets[d], f)
	}
	for _, frames := range buckets {
		sort.SliceStable(frames, func(i, j int) bool {
			return frames[i].Time.Before(frames[j].Time)
		})
	}
	return buckets, nil
}

// Buckets maps a relative day index to its frames
type Buckets map[int][]Frame
