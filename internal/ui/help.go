package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HelpOverlay renders the help screen
type HelpOverlay struct {
	width   int
	height  int
	polling bool
}

// NewHelpOverlay creates a new help overlay. polling notes that device
// changes are detected by polling rather than OS notifications.
func NewHelpOverlay(polling bool) *HelpOverlay {
	return &HelpOverlay{polling: polling}
}

// SetSize sets overlay dimensions
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	boxWidth := 50
	if boxWidth > h.width-10 {
		boxWidth = h.width - 10
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPurple).
		Padding(1, 2).
		Width(boxWidth).
		Render(h.buildContent())

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box)
}

func (h *HelpOverlay) buildContent() string {
	var lines []string

	lines = append(lines, TitleStyle.Render("KEYBINDINGS"))
	lines = append(lines, "")

	lines = append(lines, AccentStyle.Render("Panels"))
	lines = append(lines, DimStyle.Render(strings.Repeat("─", 40)))
	lines = append(lines, keyLine("Tab", "Switch panel"))
	lines = append(lines, keyLine("1 / 2 / 3", "Jump to panel"))
	lines = append(lines, "")

	lines = append(lines, AccentStyle.Render("Actions"))
	lines = append(lines, DimStyle.Render(strings.Repeat("─", 40)))
	lines = append(lines, keyLine("r", "Rescan attached devices"))
	lines = append(lines, keyLine("d", "Show / hide debug log"))
	lines = append(lines, keyLine("c", "Clear log"))
	lines = append(lines, "")

	lines = append(lines, AccentStyle.Render("General"))
	lines = append(lines, DimStyle.Render(strings.Repeat("─", 40)))
	lines = append(lines, keyLine("?", "Toggle this help"))
	lines = append(lines, keyLine("Esc", "Close help"))
	lines = append(lines, keyLine("q", "Quit (stops switching)"))

	if h.polling {
		lines = append(lines, "")
		lines = append(lines, DimStyle.Render("Device changes are detected by polling."))
	}

	return strings.Join(lines, "\n")
}

func keyLine(key, desc string) string {
	return KeyHintStyle.Render(key) + desc
}
