package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // png captures
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	_ "golang.org/x/image/webp" // webp captures

	"tilelapse/internal/cache"
	"tilelapse/internal/common"
	"tilelapse/internal/frames"
	"tilelapse/internal/telemetry"
	"tilelapse/internal/utils/naming"
)

// ProgressCallback is called after each encoded frame
type ProgressCallback func(current, total int, percent int, status string)

// SelectionCallback receives the frame selection before encoding starts
type SelectionCallback func(sel *frames.Selection)

// Config holds configuration for one compile run
type Config struct {
	InputFolder  string
	OutputBase   string // output path without extension
	Format       common.OutputFormat
	FPS          int
	Quality      int
	Preset       string
	FFmpegPath   string
	Crop         *image.Rectangle
	Background   *color.RGBA
	PaletteHex   []string
	Days         []frames.DayRange
	AllDays      bool
	DateOverlay  bool
	DatePosition string
	CacheSize    int

	ProgressCallback ProgressCallback
	OnSelection      SelectionCallback
	Tracker          *telemetry.Tracker
	Now              func() time.Time
}

// Summary reports the outcome of a compile run
type Summary struct {
	OutputPath   string
	Frames       int
	DistinctDays int
	Playback     time.Duration
	Elapsed      time.Duration
	RuntimeFPS   float64
	SizeBytes    int64
	CacheHits    int64
}

// Manager handles timelapse compile orchestration
type Manager struct {
	cfg Config
	now func() time.Time
}

// NewManager creates a new compile manager
func NewManager(cfg Config) *Manager {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{cfg: cfg, now: now}
}

// emitProgress sends progress updates
func (m *Manager) emitProgress(current, total int, status string) {
	if m.cfg.ProgressCallback == nil {
		return
	}
	percent := 0
	if total > 0 {
		percent = current * 100 / total
	}
	m.cfg.ProgressCallback(current, total, percent, status)
}

// Compile scans the input folder, selects frames by day, composites them
// and writes the timelapse artifact.
func (m *Manager) Compile(ctx context.Context) (*Summary, error) {
	cfg := m.cfg
	start := m.now()

	// Reject bad formats before touching the filesystem
	format, err := common.ParseOutputFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = format
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", cfg.FPS)
	}

	catalog, err := frames.Scan(cfg.InputFolder)
	if err != nil {
		return nil, err
	}
	if catalog.Empty() {
		return nil, fmt.Errorf("%w in %s", frames.ErrNoFrames, cfg.InputFolder)
	}
	buckets, err := catalog.Buckets()
	if err != nil {
		return nil, err
	}

	sel, err := frames.Select(buckets, cfg.Days, cfg.AllDays)
	if err != nil {
		return nil, err
	}
	log.Printf("[Compile] Selected %d day(s) with total of %d frames", sel.DistinctDays, sel.Total())
	if cfg.OnSelection != nil {
		cfg.OnSelection(sel)
	}

	// Containers without an alpha channel get an opaque backing
	if !cfg.Format.SupportsAlpha() && cfg.Background == nil {
		log.Printf("[Compile] %s has no alpha channel, flattening onto black", cfg.Format)
		cfg.Background = &color.RGBA{A: 255}
	}

	compOpts := CompositorOptions{
		Crop:         cfg.Crop,
		Background:   cfg.Background,
		DateOverlay:  cfg.DateOverlay,
		DatePosition: cfg.DatePosition,
	}
	var quantizer *Quantizer
	if cfg.Format.Paletted() {
		palette, err := BuildPalette(cfg.PaletteHex, cfg.Background)
		if err != nil {
			return nil, err
		}
		quantizer, err = NewQuantizer(palette, cfg.Background == nil)
		if err != nil {
			return nil, err
		}
		compOpts.Quantizer = quantizer
	}
	compositor := NewCompositor(compOpts)

	// Only paths selected more than once are worth holding in memory
	uses := lo.CountValuesBy(sel.Frames, func(f frames.Frame) string { return f.Path })
	repeated := len(lo.PickBy(uses, func(_ string, n int) bool { return n > 1 }))
	frameCache, err := cache.NewFrameCache(min(cfg.CacheSize, repeated))
	if err != nil {
		return nil, err
	}

	outputPath := naming.GenerateOutputPath(cfg.OutputBase, cfg.Format)
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	encoder, err := NewEncoder(outputPath, ExportOptions{
		Format:     cfg.Format,
		FPS:        cfg.FPS,
		Quality:    cfg.Quality,
		Preset:     cfg.Preset,
		FFmpegPath: cfg.FFmpegPath,
		Quantizer:  quantizer,
	})
	if err != nil {
		return nil, err
	}

	total := sel.Total()
	for i, f := range sel.Frames {
		if err := ctx.Err(); err != nil {
			abort(encoder, outputPath)
			return nil, err
		}

		var frame image.Image
		if uses[f.Path] > 1 {
			frame, err = frameCache.GetOrCreate(f.Path, func() (image.Image, error) {
				return m.loadFrame(compositor, f)
			})
		} else {
			frame, err = m.loadFrame(compositor, f)
		}
		if err != nil {
			abort(encoder, outputPath)
			return nil, fmt.Errorf("failed to process frame %s: %w", f.Name, err)
		}
		if err := encoder.AddFrame(frame); err != nil {
			abort(encoder, outputPath)
			return nil, fmt.Errorf("failed to encode frame %s: %w", f.Name, err)
		}
		m.emitProgress(i+1, total, f.Name)
	}

	if err := encoder.Close(); err != nil {
		os.Remove(outputPath)
		return nil, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat output: %w", err)
	}

	elapsed := m.now().Sub(start)
	summary := &Summary{
		OutputPath:   outputPath,
		Frames:       total,
		DistinctDays: sel.DistinctDays,
		Playback:     PlaybackDuration(total, cfg.FPS),
		Elapsed:      elapsed,
		RuntimeFPS:   RuntimeFPS(total, elapsed),
		SizeBytes:    info.Size(),
	}

	entries, hits, misses := frameCache.Stats()
	summary.CacheHits = hits
	if hits > 0 {
		log.Printf("[Compile] Frame cache: %d entries, %d hits, %d misses", entries, hits, misses)
	}

	cfg.Tracker.Track("timelapse_compiled", map[string]interface{}{
		"format": string(cfg.Format),
		"frames": total,
		"days":   sel.DistinctDays,
		"fps":    cfg.FPS,
		"bytes":  summary.SizeBytes,
	})

	return summary, nil
}

// loadFrame decodes a capture file and runs it through the compositor
func (m *Manager) loadFrame(c *Compositor, f frames.Frame) (image.Image, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	src, err := common.DecodeRGBA(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}
	return c.Process(src, f.Time)
}

// abort drops a partially written artifact
func abort(enc FrameEncoder, outputPath string) {
	if ff, ok := enc.(*ffmpegEncoder); ok && ff.cmd != nil {
		ff.stdin.Close()
		ff.cmd.Process.Kill()
		ff.cmd.Wait()
	}
	if mj, ok := enc.(*mjpegEncoder); ok && mj.writer != nil {
		mj.writer.Close()
	}
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Compile] Failed to remove partial output %s: %v", outputPath, err)
	}
}

// PlaybackDuration is the artifact length at fps
func PlaybackDuration(frameCount, fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(frameCount) * time.Second / time.Duration(fps)
}

// RuntimeFPS is frames processed per second of wall-clock time
func RuntimeFPS(frameCount int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(frameCount) / elapsed.Seconds()
}

// FormatPlayback renders a duration as "Xm Ys Zms"
func FormatPlayback(d time.Duration) string {
	minutes := int(d / time.Minute)
	seconds := int(d % time.Minute / time.Second)
	millis := int(d % time.Second / time.Millisecond)
	return fmt.Sprintf("%dm %ds %dms", minutes, seconds, millis)
}
