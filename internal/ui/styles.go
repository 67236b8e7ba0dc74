package ui

import "github.com/charmbracelet/lipgloss"

// Standard ANSI colors - works with any terminal colorscheme
var (
	ColorFg        = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	ColorGreen     = lipgloss.Color("2")
	ColorRed       = lipgloss.Color("1")
	ColorYellow    = lipgloss.Color("3")
	ColorCyan      = lipgloss.Color("6")
	ColorPurple    = lipgloss.Color("5")
	ColorDim       = lipgloss.Color("8")
	ColorBorder    = lipgloss.Color("8")
	ColorBorderAct = lipgloss.Color("5")
)

// Status indicators
const (
	StatusConnected    = "●"
	StatusDisconnected = "○"
	StatusWaiting      = "◐"
)

// Spinner frames (braille pattern)
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderAct).
				Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPurple).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorPurple)

	KeyHintStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Width(14)

	// Presence badges in the header and status panel
	LocalBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(ColorGreen).
			Bold(true).
			Padding(0, 1)

	RemoteBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(ColorYellow).
				Bold(true).
				Padding(0, 1)
)

// Tree characters
const (
	TreeBranch = "├"
	TreeLast   = "└"
)

// presenceBadge renders LOCAL when the monitored devices are attached here
// and REMOTE when they are gone.
func presenceBadge(present bool) string {
	if present {
		return LocalBadgeStyle.Render("LOCAL")
	}
	return RemoteBadgeStyle.Render("REMOTE")
}

func spinnerFrame(tick int) string {
	return SpinnerFrames[tick%len(SpinnerFrames)]
}
