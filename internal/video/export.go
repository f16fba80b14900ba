package video

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/icza/mjpeg"

	"tilelapse/internal/common"
)

// FrameEncoder consumes processed frames in order and finalizes the output on Close
type FrameEncoder interface {
	AddFrame(img image.Image) error
	Close() error
}

// ExportOptions holds encoder settings
type ExportOptions struct {
	Format      common.OutputFormat
	FPS         int
	Quality     int    // CRF for mp4/webm
	Preset      string // x264 preset for mp4
	JPEGQuality int    // per-frame quality for avi
	FFmpegPath  string // empty means look it up
	Quantizer   *Quantizer
}

// FrameDelayMillis is the per-frame display time for an fps
func FrameDelayMillis(fps int) int {
	return int(math.Round(1000 / float64(fps)))
}

// gifDelay converts a millisecond delay to GIF centiseconds
func gifDelay(ms int) int {
	cs := int(math.Round(float64(ms) / 10))
	if cs < 1 {
		cs = 1
	}
	return cs
}

// NewEncoder creates the encoder for opts.Format writing to outputPath
func NewEncoder(outputPath string, opts ExportOptions) (FrameEncoder, error) {
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", opts.FPS)
	}

	switch opts.Format {
	case common.FormatGIF:
		if opts.Quantizer == nil {
			return nil, fmt.Errorf("gif output requires a palette")
		}
		return &gifEncoder{
			path:      outputPath,
			delay:     gifDelay(FrameDelayMillis(opts.FPS)),
			quantizer: opts.Quantizer,
		}, nil
	case common.FormatMP4, common.FormatWebM:
		ffmpegPath := opts.FFmpegPath
		if ffmpegPath == "" {
			path, found := CheckFFmpeg()
			if !found {
				return nil, fmt.Errorf("ffmpeg is required for %s output but was not found", opts.Format)
			}
			ffmpegPath = path
		}
		log.Printf("[VideoExport] FFmpeg found at: %s", ffmpegPath)
		return &ffmpegEncoder{path: outputPath, ffmpegPath: ffmpegPath, opts: opts}, nil
	case common.FormatAVI:
		q := opts.JPEGQuality
		if q <= 0 {
			q = 90
		}
		return &mjpegEncoder{path: outputPath, fps: opts.FPS, quality: q}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownFormat, opts.Format)
	}
}

// checkSize pins the output dimensions to the first frame
func checkSize(size *image.Point, img image.Image) error {
	got := img.Bounds().Size()
	if *size == (image.Point{}) {
		*size = got
		return nil
	}
	if got != *size {
		return fmt.Errorf("frame size %dx%d differs from first frame %dx%d", got.X, got.Y, size.X, size.Y)
	}
	return nil
}

// gifEncoder buffers paletted frames and writes a looping GIF on Close
type gifEncoder struct {
	path      string
	delay     int
	quantizer *Quantizer
	size      image.Point
	frames    []*image.Paletted
}

func (e *gifEncoder) AddFrame(img image.Image) error {
	if err := checkSize(&e.size, img); err != nil {
		return err
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		p = e.quantizer.Quantize(img)
	}
	e.frames = append(e.frames, p)
	return nil
}

func (e *gifEncoder) Close() error {
	if len(e.frames) == 0 {
		return fmt.Errorf("no frames to export")
	}

	delays := make([]int, len(e.frames))
	disposal := make([]byte, len(e.frames))
	for i := range e.frames {
		delays[i] = e.delay
		disposal[i] = gif.DisposalBackground
	}

	palette := e.quantizer.Palette()
	anim := &gif.GIF{
		Image:     e.frames,
		Delay:     delays,
		Disposal:  disposal,
		LoopCount: 0,
		Config: image.Config{
			ColorModel: palette,
			Width:      e.size.X,
			Height:     e.size.Y,
		},
	}
	if idx := e.quantizer.TransparentIndex(); idx >= 0 {
		anim.BackgroundIndex = uint8(idx)
	}

	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	log.Printf("[VideoExport] GIF exported: %s (%d frames)", e.path, len(e.frames))
	return nil
}

// FFmpegArgs builds the command line that reads raw RGBA frames from stdin
func FFmpegArgs(format common.OutputFormat, width, height, fps, quality int, preset, outputPath string) []string {
	args := []string{
		"-y",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "-",
	}
	switch format {
	case common.FormatWebM:
		args = append(args,
			"-c:v", "libvpx-vp9",
			"-pix_fmt", "yuva420p",
			"-crf", strconv.Itoa(quality),
			"-b:v", "0",
		)
	default:
		args = append(args,
			"-c:v", "libx264",
			"-crf", strconv.Itoa(quality),
			"-preset", preset,
			"-pix_fmt", "yuv420p",
			"-movflags", "+faststart",
		)
	}
	return append(args, outputPath)
}

// ffmpegEncoder streams frames into an ffmpeg process started on the first frame
type ffmpegEncoder struct {
	path       string
	ffmpegPath string
	opts       ExportOptions
	size       image.Point
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
}

func (e *ffmpegEncoder) start() error {
	w, h := e.size.X, e.size.Y
	if e.opts.Format == common.FormatMP4 && (w%2 != 0 || h%2 != 0) {
		return fmt.Errorf("mp4 (yuv420p) needs even dimensions, got %dx%d; adjust the crop", w, h)
	}

	args := FFmpegArgs(e.opts.Format, w, h, e.opts.FPS, e.opts.Quality, e.opts.Preset, e.path)
	log.Printf("[VideoExport] Running FFmpeg: %s %v", e.ffmpegPath, args)

	e.cmd = exec.Command(e.ffmpegPath, args...)
	e.cmd.Stderr = &e.stderr
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg stdin: %w", err)
	}
	e.stdin = stdin
	if err := e.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start FFmpeg: %w", err)
	}
	return nil
}

func (e *ffmpegEncoder) AddFrame(img image.Image) error {
	if err := checkSize(&e.size, img); err != nil {
		return err
	}
	if e.cmd == nil {
		if err := e.start(); err != nil {
			return err
		}
	}
	if _, err := e.stdin.Write(common.ToNRGBA(img).Pix); err != nil {
		return fmt.Errorf("failed to write frame to FFmpeg: %w (stderr: %s)", err, e.stderr.String())
	}
	return nil
}

func (e *ffmpegEncoder) Close() error {
	if e.cmd == nil {
		return fmt.Errorf("no frames to export")
	}
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		log.Printf("[VideoExport] FFmpeg stderr: %s", e.stderr.String())
		return fmt.Errorf("FFmpeg encoding failed: %w", err)
	}

	if info, err := os.Stat(e.path); err != nil {
		return fmt.Errorf("output file not created: %w", err)
	} else if info.Size() == 0 {
		return fmt.Errorf("output file is empty")
	}
	log.Printf("[VideoExport] %s video exported: %s", e.opts.Format, e.path)
	return nil
}

// mjpegEncoder writes Motion JPEG AVI files, no ffmpeg required
type mjpegEncoder struct {
	path    string
	fps     int
	quality int
	size    image.Point
	writer  mjpeg.AviWriter
	buf     bytes.Buffer
}

func (e *mjpegEncoder) AddFrame(img image.Image) error {
	if err := checkSize(&e.size, img); err != nil {
		return err
	}
	if e.writer == nil {
		w, err := mjpeg.New(e.path, int32(e.size.X), int32(e.size.Y), int32(e.fps))
		if err != nil {
			return fmt.Errorf("failed to create video writer: %w", err)
		}
		e.writer = w
	}

	e.buf.Reset()
	if err := jpeg.Encode(&e.buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return fmt.Errorf("failed to encode frame as JPEG: %w", err)
	}
	if err := e.writer.AddFrame(e.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to add frame: %w", err)
	}
	return nil
}

func (e *mjpegEncoder) Close() error {
	if e.writer == nil {
		return fmt.Errorf("no frames to export")
	}
	if err := e.writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize avi: %w", err)
	}
	log.Printf("[VideoExport] MJPEG video exported: %s", e.path)
	return nil
}

// CheckFFmpeg looks for ffmpeg next to the executable, then on PATH,
// then in common installation directories.
func CheckFFmpeg() (string, bool) {
	if execPath, err := os.Executable(); err == nil {
		name := "ffmpeg"
		if runtime.GOOS == "windows" {
			name = "ffmpeg.exe"
		}
		local := filepath.Join(filepath.Dir(execPath), name)
		if _, err := os.Stat(local); err == nil {
			return local, true
		}
	}

	names := []string{"ffmpeg"}
	if runtime.GOOS == "windows" {
		names = []string{"ffmpeg.exe", "ffmpeg"}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}

	var commonPaths []string
	switch runtime.GOOS {
	case "darwin":
		commonPaths = []string{"/usr/local/bin/ffmpeg", "/opt/homebrew/bin/ffmpeg", "/opt/local/bin/ffmpeg"}
	case "linux":
		commonPaths = []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg"}
	case "windows":
		commonPaths = []string{"C:\\ffmpeg\\bin\\ffmpeg.exe", "C:\\Program Files\\ffmpeg\\bin\\ffmpeg.exe"}
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
