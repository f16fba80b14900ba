package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Color palette
var (
	primaryColor   = CanvasBlue
	accentColor    = CanvasOrange
	successColor   = lipgloss.Color("#00AA00")
	mutedColor     = lipgloss.Color("#888888")
	highlightColor = CanvasYellow
	errorColor     = CanvasRed
	textColor      = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)
)

const appName = "tilelapse"

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Println(TitleStyle.Render(appName))
	fmt.Println(SubtitleStyle.Render("Capture a tiled canvas on a timer and compile the captures into a timelapse."))
	fmt.Println()
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render(appName))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Printf("%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints a key/value line
func PrintInfo(key, value string) {
	fmt.Printf("%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println(HeaderStyle.Render(title))
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Println(BoxStyle.Render(content))
}

// FormatBytes formats a size as IEC units
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// CaptureBanner describes a capture run before the loop starts
type CaptureBanner struct {
	Interval     time.Duration
	TotalTiles   int
	FirstCorner  string
	SecondCorner string
	Cols, Rows   int
	OutputFolder string
	Format       string
}

// RenderCaptureSettings renders the capture SETTINGS block
func RenderCaptureSettings(b CaptureBanner) string {
	var sb strings.Builder
	sb.WriteString(HighlightStyle.Render("SETTINGS"))
	sb.WriteString("\n\n")
	writeKV(&sb, "Cooldown:     ", b.Interval.String())
	writeKV(&sb, "Total tiles:  ", fmt.Sprintf("%d", b.TotalTiles))
	writeKV(&sb, "Bounds:       ", b.FirstCorner+" -> "+b.SecondCorner)
	writeKV(&sb, "Grid:         ", fmt.Sprintf("%d x %d", b.Cols, b.Rows))
	writeKV(&sb, "Output folder:", b.OutputFolder)
	sb.WriteString(KeyStyle.Render("Format:       "))
	sb.WriteString(" " + ValueStyle.Render(b.Format))
	return sb.String()
}

// DayLine is one row of the compile pre-summary
type DayLine struct {
	Day         int
	First, Last string
	Count       int
}

// RenderSelection renders the per-day breakdown and the selection total
func RenderSelection(days []DayLine, distinctDays, total int) string {
	var sb strings.Builder
	for _, d := range days {
		sb.WriteString(KeyStyle.Render(fmt.Sprintf("Day %d:", d.Day)))
		sb.WriteString(fmt.Sprintf(" %s - %s ", d.First, d.Last))
		sb.WriteString(ValueStyle.Render(fmt.Sprintf("(%d frames)", d.Count)))
		sb.WriteString("\n")
	}
	sb.WriteString(HighlightStyle.Render(fmt.Sprintf("Selected %d day(s) with total of %d frames", distinctDays, total)))
	return sb.String()
}

// CompileReport is the final compile summary
type CompileReport struct {
	OutputPath string
	Playback   string
	Runtime    time.Duration
	RuntimeFPS float64
	SizeBytes  int64
}

// RenderCompileSummary renders the completion box body
func RenderCompileSummary(r CompileReport) string {
	var sb strings.Builder
	sb.WriteString(SuccessStyle.Render("✓ Timelapse Complete!"))
	sb.WriteString("\n\n")
	writeKV(&sb, "Saved:     ", r.OutputPath)
	writeKV(&sb, "Duration:  ", r.Playback)
	writeKV(&sb, "Runtime:   ", r.Runtime.Round(time.Millisecond).String())
	writeKV(&sb, "Speed:     ", fmt.Sprintf("%.2f fps", r.RuntimeFPS))
	sb.WriteString(KeyStyle.Render("File Size: "))
	sb.WriteString(" " + ValueStyle.Render(FormatBytes(r.SizeBytes)))
	return sb.String()
}

func writeKV(sb *strings.Builder, key, value string) {
	sb.WriteString(KeyStyle.Render(key))
	sb.WriteString(" ")
	sb.WriteString(ValueStyle.Render(value))
	sb.WriteString("\n")
}
