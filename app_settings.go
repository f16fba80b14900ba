package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tilelapse/internal/cli"
	"tilelapse/internal/config"
)

// ===================
// Settings Management
// ===================

// GetSettings returns a copy of the current settings
func (a *App) GetSettings() config.Settings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.settings
}

// WriteSettings saves the current settings as YAML
func (a *App) WriteSettings(path string, force bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}
	if err := config.SaveSettings(a.settings, path); err != nil {
		return err
	}
	cli.PrintSuccess("Settings written to " + path)
	return nil
}

// ApplyCaptureOverrides layers capture flags over the loaded settings.
// Unset flags keep the file or default value.
func (a *App) ApplyCaptureOverrides(cmd *CaptureCmd) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := &a.settings.Capture
	if cmd.OutputFolder != "" {
		c.OutputFolder = cmd.OutputFolder
	}
	if cmd.Interval > 0 {
		c.Interval = cmd.Interval
	}
	if cmd.RetryDelay > 0 {
		c.RetryDelay = cmd.RetryDelay
	}
	if cmd.TileURL != "" {
		c.TileURL = cmd.TileURL
	}
	if cmd.Format != "" {
		c.Format = strings.ToLower(cmd.Format)
	}
	if len(cmd.Bounds) > 0 {
		if len(cmd.Bounds) != 4 {
			return fmt.Errorf("--bounds needs 4 values x1,y1,x2,y2, got %d", len(cmd.Bounds))
		}
		c.Bounds = []config.Corner{
			{X: cmd.Bounds[0], Y: cmd.Bounds[1]},
			{X: cmd.Bounds[2], Y: cmd.Bounds[3]},
		}
	}
	return nil
}

// ApplyCompileOverrides layers compile flags over the loaded settings
func (a *App) ApplyCompileOverrides(cmd *CompileCmd) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := &a.settings.Compile
	if cmd.InputFolder != "" {
		c.InputFolder = cmd.InputFolder
	}
	if cmd.Output != "" {
		c.OutputFile = cmd.Output
	}
	if cmd.FPS != 0 {
		c.FPS = cmd.FPS
	}
	if cmd.Format != "" {
		c.Format = strings.ToLower(cmd.Format)
	}
	if cmd.Quality != nil {
		c.Quality = *cmd.Quality
	}
	if cmd.Preset != "" {
		c.Preset = cmd.Preset
	}
	switch strings.ToLower(cmd.Background) {
	case "":
	case "none", "transparent":
		c.Background = ""
	default:
		c.Background = cmd.Background
	}
	if len(cmd.Days) > 0 {
		ranges, err := parseDayFlags(cmd.Days)
		if err != nil {
			return err
		}
		c.Days = config.DaySettings{Enabled: true, Ranges: ranges}
	}
	if cmd.AllDays {
		c.Days.Enabled = false
	}
	if cmd.NoCrop {
		c.Crop.Enabled = false
	}
	if cmd.DateOverlay {
		c.DateOverlay.Enabled = true
	}
	if cmd.FFmpeg != "" {
		a.ffmpegPath = cmd.FFmpeg
	}
	return nil
}

// parseDayFlags converts "1" and "3-10" specs into settings day ranges
func parseDayFlags(specs []string) ([][]int, error) {
	ranges := make([][]int, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		start, end, isRange := strings.Cut(spec, "-")

		a, err := strconv.Atoi(start)
		if err != nil {
			return nil, fmt.Errorf("invalid day spec %q: %w", spec, err)
		}
		if !isRange {
			ranges = append(ranges, []int{a})
			continue
		}
		b, err := strconv.Atoi(end)
		if err != nil {
			return nil, fmt.Errorf("invalid day spec %q: %w", spec, err)
		}
		ranges = append(ranges, []int{a, b})
	}
	return ranges, nil
}
