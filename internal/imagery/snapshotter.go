package imagery

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"tilelapse/internal/canvas"
	"tilelapse/internal/common"
	"tilelapse/internal/ratelimit"
	"tilelapse/internal/utils/naming"
)

// errUndeterminedSize is returned when a cycle produced no Found tile
var errUndeterminedSize = errors.New("couldn't determine tile size")

// Capture describes one persisted combined frame
type Capture struct {
	Path     string
	Time     time.Time
	Size     image.Point
	Duration time.Duration // fetch + stitch + persist
}

// Config holds configuration for the Snapshotter
type Config struct {
	Fetcher      canvas.TileFetcher
	Bounds       common.TileBounds
	Strategy     *ratelimit.RetryStrategy
	OutputFolder string
	Format       string        // "png" or "webp"
	Interval     time.Duration // pause after each persisted capture
	OnCapture    func(Capture)

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Snapshotter owns the capture loop: FETCHING -> STITCHING -> PERSISTING -> SLEEPING
type Snapshotter struct {
	fetcher      canvas.TileFetcher
	bounds       common.TileBounds
	coords       []common.TileCoordinate
	strategy     *ratelimit.RetryStrategy
	outputFolder string
	format       string
	interval     time.Duration
	onCapture    func(Capture)
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewSnapshotter creates a new tile grid snapshotter
func NewSnapshotter(cfg Config) *Snapshotter {
	s := &Snapshotter{
		fetcher:      cfg.Fetcher,
		bounds:       cfg.Bounds,
		coords:       cfg.Bounds.Coordinates(),
		strategy:     cfg.Strategy,
		outputFolder: cfg.OutputFolder,
		format:       cfg.Format,
		interval:     cfg.Interval,
		onCapture:    cfg.OnCapture,
		now:          cfg.Now,
		sleep:        cfg.Sleep,
	}
	if s.strategy == nil {
		s.strategy = ratelimit.DefaultRetryStrategy()
	}
	if s.format == "" {
		s.format = common.CaptureFormatPNG
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sleep == nil {
		s.sleep = ratelimit.SleepContext
	}
	return s
}

// FetchCycle fetches the whole grid. Any transient tile failure, or a cycle
// where every tile is empty, restarts the whole grid after the retry delay.
// It only returns an error when ctx is cancelled.
func (s *Snapshotter) FetchCycle(ctx context.Context) (*Cycle, error) {
	var cycle *Cycle
	err := s.strategy.Do(ctx, "tile cycle", func(attempt int) error {
		c, err := s.fetchOnce(ctx)
		if err != nil {
			return err
		}
		cycle = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cycle, nil
}

func (s *Snapshotter) fetchOnce(ctx context.Context) (*Cycle, error) {
	cycle := &Cycle{
		Bounds: s.bounds,
		Tiles:  make(map[common.TileCoordinate]*image.RGBA, len(s.coords)),
	}
	var empty []common.TileCoordinate
	sizeKnown := false

	for _, coord := range s.coords {
		res, err := s.fetcher.FetchTile(ctx, coord)
		if err != nil {
			return nil, err
		}

		if res.Outcome == canvas.Empty {
			log.Printf("[Capture] Tile %v replaced with transparent placeholder (404)", coord)
			empty = append(empty, coord)
			continue
		}

		cycle.Tiles[coord] = res.Image
		if !sizeKnown {
			cycle.TileSize = res.Image.Bounds().Size()
			sizeKnown = true
		}
	}

	if !sizeKnown {
		return nil, errUndeterminedSize
	}

	for _, coord := range empty {
		cycle.Tiles[coord] = Placeholder(cycle.TileSize)
	}
	return cycle, nil
}

// Persist writes the combined frame named after the current wall-clock second.
// A second capture within the same second overwrites the first.
func (s *Snapshotter) Persist(img image.Image) (string, time.Time, error) {
	ts := s.now()
	path := filepath.Join(s.outputFolder, naming.GenerateCaptureFilename(ts, s.format))

	f, err := os.Create(path)
	if err != nil {
		return "", ts, fmt.Errorf("failed to create capture file: %w", err)
	}

	if err := EncodeCapture(f, img, s.format); err != nil {
		f.Close()
		return "", ts, fmt.Errorf("failed to encode capture: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", ts, fmt.Errorf("failed to close capture file: %w", err)
	}
	return path, ts, nil
}

// EncodeCapture encodes a combined frame in the capture format
func EncodeCapture(w io.Writer, img image.Image, format string) error {
	switch format {
	case common.CaptureFormatPNG:
		return png.Encode(w, img)
	case common.CaptureFormatWebP:
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("unsupported capture format: %s", format)
	}
}

// RunCycle performs one fetch, stitch and persist pass
func (s *Snapshotter) RunCycle(ctx context.Context) (Capture, error) {
	start := s.now()

	cycle, err := s.FetchCycle(ctx)
	if err != nil {
		return Capture{}, err
	}

	combined := Stitch(cycle)

	path, ts, err := s.Persist(combined)
	if err != nil {
		return Capture{}, err
	}

	return Capture{
		Path:     path,
		Time:     ts,
		Size:     combined.Bounds().Size(),
		Duration: s.now().Sub(start),
	}, nil
}

// Run captures until ctx is cancelled. The interval is measured from the end
// of each persist, so captures drift later by the cycle duration.
func (s *Snapshotter) Run(ctx context.Context) error {
	started := s.now()
	frameCount := 0

	for {
		capture, err := s.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		frameCount++
		log.Printf("[Capture] Frame %d - %s | Runtime: %s", frameCount, capture.Path, FormatRuntime(s.now().Sub(started)))
		if s.onCapture != nil {
			s.onCapture(capture)
		}

		if err := s.sleep(ctx, s.interval); err != nil {
			return nil
		}
	}
}

// FormatRuntime renders a duration as "Dd Hh Mm Ss"
func FormatRuntime(d time.Duration) string {
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
