package cli

import "github.com/charmbracelet/lipgloss"

// Canvas palette accents shared by the banner, help and summaries
var (
	CanvasRed    = lipgloss.Color("#ED1C24")
	CanvasOrange = lipgloss.Color("#FF7F27")
	CanvasYellow = lipgloss.Color("#F9DD3B")
	CanvasBlue   = lipgloss.Color("#28509E")
	CanvasNight  = lipgloss.Color("#172130") // default compile background

	SlateGray = lipgloss.Color("#AAAAAA")
)
