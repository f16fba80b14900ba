package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tilelapse/internal/common"
)

// DefaultPaletteHex is the closed color set of the source canvas
var DefaultPaletteHex = []string{
	"000000", "3c3c3c", "787878", "aaaaaa", "d2d2d2", "ffffff",
	"600018", "a50e1e", "ed1c24", "fa8072", "e45c1a", "ff7f27",
	"f6aa09", "f9dd3b", "fffabc", "9c8431", "c5ad31", "e8d45f",
	"4a6b3a", "5a944a", "84c573", "0eb968", "13e67b", "87ff5e",
	"0c816e", "10aea6", "13e1be", "0f799f", "60f7f2", "bbfaf2",
	"28509e", "4093e4", "7dc7ff", "4d31b8", "6b50f6", "99b1fb",
	"4a4284", "7a71c4", "b5aef1", "780c99", "aa38b9", "e09ff9",
	"cb007a", "ec1f80", "f38da9", "9b5249", "d18078", "fab6a4",
	"684634", "95682a", "dba463", "7b6352", "9c846b", "d6b594",
	"d18051", "f8b277", "ffc5a5", "6d643f", "948c6b", "cdc59e",
	"333941", "6d758d", "b3b9d1",
}

// DefaultTileURL is the tile endpoint template; {x} and {y} are substituted per tile
const DefaultTileURL = "https://backend.wplace.live/files/s0/tiles/{x}/{y}.png"

// Corner is one tile coordinate of the capture rectangle
type Corner struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// CaptureSettings configures the tile grid snapshotter
type CaptureSettings struct {
	Bounds         []Corner      `yaml:"bounds"` // two opposite corners
	OutputFolder   string        `yaml:"output_folder"`
	Interval       time.Duration `yaml:"interval"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TileURL        string        `yaml:"tile_url"`
	Format         string        `yaml:"format"` // "png" or "webp"
}

// CropSettings is the pixel rectangle kept from each frame, (X1,Y1) inclusive to (X2,Y2) exclusive
type CropSettings struct {
	Enabled bool `yaml:"enabled"`
	X1      int  `yaml:"x1"`
	Y1      int  `yaml:"y1"`
	X2      int  `yaml:"x2"`
	Y2      int  `yaml:"y2"`
}

// DaySettings filters frames by relative day
type DaySettings struct {
	Enabled bool    `yaml:"enabled"`
	Ranges  [][]int `yaml:"ranges"` // [[1]], [[3, 10]], [[1, 4], [10, 51]]
}

// OverlaySettings controls the capture timestamp text drawn on each frame
type OverlaySettings struct {
	Enabled  bool   `yaml:"enabled"`
	Position string `yaml:"position"` // "top-left", "top-right", "bottom-left", "bottom-right"
}

// CompileSettings configures the timelapse compiler
type CompileSettings struct {
	InputFolder string          `yaml:"input_folder"`
	OutputFile  string          `yaml:"output_file"` // without extension
	FPS         int             `yaml:"fps"`
	Format      string          `yaml:"format"`
	Quality     int             `yaml:"quality"` // CRF for mp4/webm
	Preset      string          `yaml:"preset"`  // x264 preset for mp4
	Background  string          `yaml:"background"`
	Crop        CropSettings    `yaml:"crop"`
	Days        DaySettings     `yaml:"days"`
	Palette     []string        `yaml:"palette"`
	DateOverlay OverlaySettings `yaml:"date_overlay"`
	CacheSize   int             `yaml:"cache_size"`
}

// TelemetrySettings configures optional PostHog event tracking
type TelemetrySettings struct {
	PostHogKey  string `yaml:"posthog_key"`
	PostHogHost string `yaml:"posthog_host"`
}

// Settings is the immutable configuration value for one capture loop or compile run
type Settings struct {
	Capture   CaptureSettings   `yaml:"capture"`
	Compile   CompileSettings   `yaml:"compile"`
	Telemetry TelemetrySettings `yaml:"telemetry"`
}

// DefaultSettings returns default settings
func DefaultSettings() *Settings {
	return &Settings{
		Capture: CaptureSettings{
			Bounds:         []Corner{{X: 824, Y: 792}, {X: 827, Y: 795}},
			OutputFolder:   "OSU",
			Interval:       900 * time.Second,
			RetryDelay:     5 * time.Second,
			RequestTimeout: 10 * time.Second,
			TileURL:        DefaultTileURL,
			Format:         common.CaptureFormatPNG,
		},
		Compile: CompileSettings{
			InputFolder: "OSU",
			OutputFile:  "Timelapses/OSU",
			FPS:         30,
			Format:      string(common.FormatGIF),
			Quality:     18,
			Preset:      "ultrafast",
			Background:  "#172130",
			Crop:        CropSettings{Enabled: true, X1: 0, Y1: 0, X2: 1166, Y2: 1450},
			Days:        DaySettings{Enabled: true, Ranges: [][]int{{1}, {10}}},
			Palette:     append([]string(nil), DefaultPaletteHex...),
			DateOverlay: OverlaySettings{Enabled: false, Position: "bottom-right"},
			CacheSize:   64,
		},
		Telemetry: TelemetrySettings{
			PostHogHost: "https://us.i.posthog.com",
		},
	}
}

// LoadSettings loads settings from a YAML file layered over the defaults.
// An empty path or a missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	// Zero values fall back to defaults
	defaults := DefaultSettings()
	if settings.Capture.Interval <= 0 {
		settings.Capture.Interval = defaults.Capture.Interval
	}
	if settings.Capture.RetryDelay <= 0 {
		settings.Capture.RetryDelay = defaults.Capture.RetryDelay
	}
	if settings.Capture.RequestTimeout <= 0 {
		settings.Capture.RequestTimeout = defaults.Capture.RequestTimeout
	}
	if settings.Capture.TileURL == "" {
		settings.Capture.TileURL = defaults.Capture.TileURL
	}
	if settings.Capture.Format == "" {
		settings.Capture.Format = defaults.Capture.Format
	}
	if settings.Compile.Preset == "" {
		settings.Compile.Preset = defaults.Compile.Preset
	}
	if len(settings.Compile.Palette) == 0 {
		settings.Compile.Palette = defaults.Compile.Palette
	}

	return settings, nil
}

// SaveSettings writes settings as YAML
func SaveSettings(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// ValidateCapture checks the capture section
func (s *Settings) ValidateCapture() error {
	c := s.Capture
	if len(c.Bounds) != 2 {
		return fmt.Errorf("capture bounds need exactly 2 corners, got %d", len(c.Bounds))
	}
	if c.OutputFolder == "" {
		return fmt.Errorf("capture output folder is required")
	}
	if !strings.Contains(c.TileURL, "{x}") || !strings.Contains(c.TileURL, "{y}") {
		return fmt.Errorf("tile URL must contain {x} and {y} placeholders: %s", c.TileURL)
	}
	if c.Format != common.CaptureFormatPNG && c.Format != common.CaptureFormatWebP {
		return fmt.Errorf("invalid capture format: %s (must be 'png' or 'webp')", c.Format)
	}
	return nil
}

// ValidateCompile checks the compile section
func (s *Settings) ValidateCompile() error {
	c := s.Compile
	if c.InputFolder == "" {
		return fmt.Errorf("compile input folder is required")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("compile output file is required")
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if _, err := common.ParseOutputFormat(c.Format); err != nil {
		return err
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must be >= 0 (0 disables the frame cache), got %d", c.CacheSize)
	}
	if c.Quality < 0 || c.Quality > 63 {
		return fmt.Errorf("quality %d out of range [0, 63]", c.Quality)
	}
	if c.Background != "" {
		if _, _, _, err := ParseHexColor(c.Background); err != nil {
			return fmt.Errorf("invalid background color: %w", err)
		}
	}
	// One slot stays free for the background or transparency entry
	if len(c.Palette) == 0 || len(c.Palette) > 255 {
		return fmt.Errorf("palette must have between 1 and 255 colors, got %d", len(c.Palette))
	}
	for _, h := range c.Palette {
		if _, _, _, err := ParseHexColor(h); err != nil {
			return fmt.Errorf("invalid palette color: %w", err)
		}
	}
	if c.Crop.Enabled && (c.Crop.X2 <= c.Crop.X1 || c.Crop.Y2 <= c.Crop.Y1) {
		return fmt.Errorf("crop rectangle (%d,%d)-(%d,%d) is empty", c.Crop.X1, c.Crop.Y1, c.Crop.X2, c.Crop.Y2)
	}
	if c.Days.Enabled {
		for _, r := range c.Days.Ranges {
			if err := validateDayRange(r); err != nil {
				return err
			}
		}
	}
	switch c.DateOverlay.Position {
	case "", "top-left", "top-right", "bottom-left", "bottom-right":
	default:
		return fmt.Errorf("invalid date overlay position: %s", c.DateOverlay.Position)
	}
	return nil
}

func validateDayRange(r []int) error {
	switch len(r) {
	case 1:
		if r[0] < 1 {
			return fmt.Errorf("day %d must be >= 1", r[0])
		}
	case 2:
		if r[0] < 1 || r[1] < r[0] {
			return fmt.Errorf("invalid day range [%d, %d]", r[0], r[1])
		}
	default:
		return fmt.Errorf("day spec %v must have 1 or 2 entries", r)
	}
	return nil
}

// BackgroundColor returns the configured fill color, or nil when transparency is kept
func (c CompileSettings) BackgroundColor() (*color.RGBA, error) {
	if c.Background == "" {
		return nil, nil
	}
	r, g, b, err := ParseHexColor(c.Background)
	if err != nil {
		return nil, err
	}
	return &color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// ParseHexColor parses "rrggbb" or "#rrggbb" into its components
func ParseHexColor(s string) (r, g, b uint8, err error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("hex color %q must have 6 digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("hex color %q: %w", s, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
