package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"tilelapse/internal/cli"
	"tilelapse/internal/config"
)

// version is set via ldflags at build time
var version = "dev"

// versionFlag prints styled version information and exits
type versionFlag bool

func (v versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(vars["version"])
	app.Exit(0)
	return nil
}

var CLI struct {
	Config  string      `help:"YAML settings file; missing fields use the defaults" short:"c" type:"path" placeholder:"FILE"`
	Version versionFlag `help:"Show version information"`

	Capture CaptureCmd `cmd:"" help:"Capture the tile grid on a fixed interval until stopped."`
	Compile CompileCmd `cmd:"" help:"Compile captured frames into a timelapse."`
	Init    InitCmd    `cmd:"" help:"Write the default settings to a YAML file."`
}

// CaptureCmd overrides the capture section of the settings file
type CaptureCmd struct {
	OutputFolder string        `help:"Folder for capture files" placeholder:"DIR"`
	Interval     time.Duration `help:"Pause after each capture"`
	RetryDelay   time.Duration `help:"Delay before retrying a failed cycle"`
	TileURL      string        `name:"tile-url" help:"Tile URL template with {x} and {y} placeholders" placeholder:"URL"`
	Format       string        `help:"Capture file format: png or webp"`
	Bounds       []int         `help:"Corner tiles as x1,y1,x2,y2" sep:","`
}

// CompileCmd overrides the compile section of the settings file
type CompileCmd struct {
	InputFolder string   `help:"Folder holding capture files" placeholder:"DIR"`
	Output      string   `short:"o" help:"Output path without extension" placeholder:"PATH"`
	FPS         int      `name:"fps" help:"Playback frames per second"`
	Format      string   `short:"f" help:"Output format: gif, mp4, webm or avi"`
	Quality     *int     `help:"CRF for mp4 and webm"`
	Preset      string   `help:"x264 preset for mp4"`
	Background  string   `help:"Background color as #rrggbb, or 'none' to keep transparency"`
	Days        []string `help:"Day specs such as 1 or 3-10, in output order" sep:","`
	AllDays     bool     `help:"Use every captured day in ascending order"`
	NoCrop      bool     `help:"Keep the full stitched frame"`
	DateOverlay bool     `help:"Draw the capture time on each frame"`
	FFmpeg      string   `name:"ffmpeg" help:"Path to the ffmpeg binary" placeholder:"PATH"`
}

// InitCmd writes a settings file
type InitCmd struct {
	Path  string `arg:"" name:"path" help:"Destination YAML file" default:"tilelapse.yaml"`
	Force bool   `help:"Overwrite an existing file"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("tilelapse"),
		kong.Description("Capture a tiled canvas on a timer and compile the captures into a timelapse."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	settings, err := config.LoadSettings(CLI.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := NewApp(settings, version)
	app.startup(runCtx)

	err = ctx.Run(app)
	app.shutdown()
	stop()

	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}

func (c *CaptureCmd) Run(app *App) error {
	if err := app.ApplyCaptureOverrides(c); err != nil {
		return err
	}
	return app.RunCapture()
}

func (c *CompileCmd) Run(app *App) error {
	if err := app.ApplyCompileOverrides(c); err != nil {
		return err
	}
	return app.RunCompile()
}

func (c *InitCmd) Run(app *App) error {
	return app.WriteSettings(c.Path, c.Force)
}
