package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"sync"

	"tilelapse/internal/canvas"
	"tilelapse/internal/cli"
	"tilelapse/internal/common"
	"tilelapse/internal/config"
	"tilelapse/internal/frames"
	"tilelapse/internal/imagery"
	"tilelapse/internal/ratelimit"
	"tilelapse/internal/telemetry"
	"tilelapse/internal/video"
)

// App holds the settings and shared services for one command invocation
type App struct {
	ctx        context.Context
	mu         sync.Mutex
	settings   *config.Settings
	tracker    *telemetry.Tracker
	version    string
	ffmpegPath string
}

// NewApp creates a new App application struct
func NewApp(settings *config.Settings, version string) *App {
	return &App{
		settings: settings,
		version:  version,
	}
}

// startup stores the run context and starts optional telemetry
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.tracker = telemetry.New(a.settings.Telemetry.PostHogKey, a.settings.Telemetry.PostHogHost, a.version)
	if a.tracker.Enabled() {
		log.Printf("[Telemetry] PostHog tracking enabled")
	}
}

// shutdown flushes telemetry
func (a *App) shutdown() {
	a.tracker.Close()
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	a.tracker.Track(event, props)
}

// RunCapture validates the capture settings and runs the capture loop
// until the process is stopped
func (a *App) RunCapture() error {
	settings := a.GetSettings()
	if err := settings.ValidateCapture(); err != nil {
		return err
	}
	c := settings.Capture

	first := common.TileCoordinate{X: c.Bounds[0].X, Y: c.Bounds[0].Y}
	second := common.TileCoordinate{X: c.Bounds[1].X, Y: c.Bounds[1].Y}
	bounds := common.NewTileBounds(first, second)

	if err := os.MkdirAll(c.OutputFolder, 0755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	cli.PrintBanner()
	cli.PrintBox(cli.RenderCaptureSettings(cli.CaptureBanner{
		Interval:     c.Interval,
		TotalTiles:   bounds.Count(),
		FirstCorner:  first.String(),
		SecondCorner: second.String(),
		Cols:         bounds.Cols(),
		Rows:         bounds.Rows(),
		OutputFolder: c.OutputFolder,
		Format:       c.Format,
	}))

	snapshotter := imagery.NewSnapshotter(imagery.Config{
		Fetcher:      canvas.NewClient(c.TileURL, c.RequestTimeout),
		Bounds:       bounds,
		Strategy:     &ratelimit.RetryStrategy{Delay: c.RetryDelay},
		OutputFolder: c.OutputFolder,
		Format:       c.Format,
		Interval:     c.Interval,
		OnCapture: func(capture imagery.Capture) {
			a.TrackEvent("capture_saved", map[string]interface{}{
				"tiles":       bounds.Count(),
				"width":       capture.Size.X,
				"height":      capture.Size.Y,
				"duration_ms": capture.Duration.Milliseconds(),
				"format":      c.Format,
			})
		},
	})

	if err := snapshotter.Run(a.ctx); err != nil {
		return err
	}
	log.Printf("[Capture] Stopped")
	return nil
}

// RunCompile validates the compile settings and produces one timelapse
func (a *App) RunCompile() error {
	settings := a.GetSettings()
	if err := settings.ValidateCompile(); err != nil {
		return err
	}
	c := settings.Compile

	format, err := common.ParseOutputFormat(c.Format)
	if err != nil {
		return err
	}
	background, err := c.BackgroundColor()
	if err != nil {
		return err
	}
	days, err := frames.ParseDayRanges(c.Days.Ranges)
	if err != nil {
		return err
	}

	var crop *image.Rectangle
	if c.Crop.Enabled {
		r := image.Rect(c.Crop.X1, c.Crop.Y1, c.Crop.X2, c.Crop.Y2)
		crop = &r
	}

	cli.PrintBanner()
	manager := video.NewManager(video.Config{
		InputFolder:  c.InputFolder,
		OutputBase:   c.OutputFile,
		Format:       format,
		FPS:          c.FPS,
		Quality:      c.Quality,
		Preset:       c.Preset,
		FFmpegPath:   a.ffmpegPath,
		Crop:         crop,
		Background:   background,
		PaletteHex:   c.Palette,
		Days:         days,
		AllDays:      !c.Days.Enabled,
		DateOverlay:  c.DateOverlay.Enabled,
		DatePosition: c.DateOverlay.Position,
		CacheSize:    c.CacheSize,
		Tracker:      a.tracker,
		OnSelection: func(sel *frames.Selection) {
			lines := make([]cli.DayLine, 0, len(sel.Days))
			for _, d := range sel.Days {
				lines = append(lines, cli.DayLine{Day: d.Day, First: d.First, Last: d.Last, Count: d.Count})
			}
			cli.PrintBox(cli.RenderSelection(lines, sel.DistinctDays, sel.Total()))
		},
		ProgressCallback: func(current, total, percent int, status string) {
			if current == total || current%100 == 0 {
				log.Printf("[Compile] %d/%d frames (%d%%)", current, total, percent)
			}
		},
	})

	summary, err := manager.Compile(a.ctx)
	if err != nil {
		return err
	}

	cli.PrintBox(cli.RenderCompileSummary(cli.CompileReport{
		OutputPath: summary.OutputPath,
		Playback:   video.FormatPlayback(summary.Playback),
		Runtime:    summary.Elapsed,
		RuntimeFPS: summary.RuntimeFPS,
		SizeBytes:  summary.SizeBytes,
	}))
	return nil
}
