package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Discobrick/monitor-switcher/internal/device"
	"github.com/Discobrick/monitor-switcher/internal/dispatch"
	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

// Panel identifiers
type Panel int

const (
	PanelDevices Panel = iota
	PanelStatus
	PanelLog
)

func (p Panel) String() string {
	switch p {
	case PanelDevices:
		return "Devices"
	case PanelStatus:
		return "Status"
	case PanelLog:
		return "Log"
	default:
		return "Unknown"
	}
}

// LogEntry represents a log message
type LogEntry struct {
	Time    time.Time
	Message string
	Level   LogLevel
}

// LogLevel for log entries
type LogLevel int

const (
	LogDebug LogLevel = iota
	LogInfo
	LogSuccess
	LogWarning
	LogError
)

// DevicesPanel lists the monitored identifiers and which of them are
// currently attached.
type DevicesPanel struct {
	set      device.MonitoredSet
	attached []device.Info
	err      error
	width    int
	height   int
}

// NewDevicesPanel creates a panel for set.
func NewDevicesPanel(set device.MonitoredSet) *DevicesPanel {
	return &DevicesPanel{set: set}
}

// SetInventory replaces the attached device list.
func (p *DevicesPanel) SetInventory(infos []device.Info, err error) {
	p.attached = infos
	p.err = err
}

// SetSize sets the panel dimensions
func (p *DevicesPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the devices panel content
func (p *DevicesPanel) View() string {
	if len(p.set) == 0 {
		return DimStyle.Render("  No devices configured")
	}

	var lines []string
	for _, id := range p.set {
		var matches []device.Info
		for _, info := range p.attached {
			if id.Matches(info) {
				matches = append(matches, info)
			}
		}

		icon := DimStyle.Render(StatusDisconnected)
		if len(matches) > 0 {
			icon = SuccessStyle.Render(StatusConnected)
		}
		lines = append(lines, icon+" "+id.String())

		for j, info := range matches {
			treeChr := TreeBranch
			if j == len(matches)-1 {
				treeChr = TreeLast
			}
			lines = append(lines, DimStyle.Render(fmt.Sprintf("  %s %s", treeChr, describeInfo(info))))
		}
	}

	if p.err != nil {
		lines = append(lines, "", ErrorStyle.Render("Inventory: "+p.err.Error()))
	}
	return strings.Join(lines, "\n")
}

func describeInfo(info device.Info) string {
	name := strings.TrimSpace(info.Manufacturer + " " + info.Product)
	if name == "" {
		name = info.Path
	}
	return name
}

// StatusPanel renders presence and the last switching cycle.
type StatusPanel struct {
	width  int
	height int
	tool   string
}

// NewStatusPanel creates a new status panel
func NewStatusPanel(tool string) *StatusPanel {
	return &StatusPanel{tool: tool}
}

// SetSize sets the panel dimensions
func (p *StatusPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// ViewSeeding renders the state before the startup probe completes.
func (p *StatusPanel) ViewSeeding(tick int) string {
	return "\n" + centerText(WarningStyle.Render(spinnerFrame(tick)+" Checking devices..."), p.width)
}

// ViewSwitching renders an in-flight command batch.
func (p *StatusPanel) ViewSwitching(tick int, tr watcher.Transition, done []dispatch.Outcome) string {
	var lines []string

	target := "LOCAL"
	if tr == watcher.BecameAbsent {
		target = "REMOTE"
	}

	lines = append(lines, "")
	lines = append(lines, centerText(AccentStyle.Render(spinnerFrame(tick)+" SWITCHING TO "+target), p.width))
	lines = append(lines, "")
	lines = append(lines, outcomeLines(done)...)
	return strings.Join(lines, "\n")
}

// ViewIdle renders the settled presence state.
func (p *StatusPanel) ViewIdle(present bool, since time.Time, last *watcher.Event) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, centerText(presenceBadge(present), p.width))
	lines = append(lines, "")
	if present {
		lines = append(lines, centerText("USB devices attached here", p.width))
	} else {
		lines = append(lines, centerText("USB devices away", p.width))
	}
	if !since.IsZero() {
		lines = append(lines, centerText(DimStyle.Render("since "+since.Format("15:04:05")), p.width))
	}
	lines = append(lines, "")

	if last != nil {
		lines = append(lines, DimStyle.Render("Last switch: ")+last.Transition.String()+
			DimStyle.Render(" at "+last.At.Format("15:04:05")))
		lines = append(lines, outcomeLines(last.Outcomes)...)
	}

	lines = append(lines, "")
	lines = append(lines, DimStyle.Render("Tool: "+p.tool))
	return strings.Join(lines, "\n")
}

func outcomeLines(outcomes []dispatch.Outcome) []string {
	var lines []string
	for _, o := range outcomes {
		switch o.Kind {
		case dispatch.Success:
			lines = append(lines, SuccessStyle.Render("  [x] ")+o.Command)
		default:
			lines = append(lines, ErrorStyle.Render("  [!] ")+o.Command)
		}
	}
	return lines
}

// LogPanel renders the log output
type LogPanel struct {
	entries   []LogEntry
	showDebug bool
	width     int
	height    int
}

// NewLogPanel creates a new log panel
func NewLogPanel() *LogPanel {
	return &LogPanel{}
}

// Add adds a log entry stamped now.
func (p *LogPanel) Add(level LogLevel, msg string) {
	p.AddAt(time.Now(), level, msg)
}

// AddAt adds a log entry with an explicit timestamp.
func (p *LogPanel) AddAt(at time.Time, level LogLevel, msg string) {
	p.entries = append(p.entries, LogEntry{
		Time:    at,
		Message: msg,
		Level:   level,
	})
	// Keep last N entries
	maxEntries := 200
	if len(p.entries) > maxEntries {
		p.entries = p.entries[len(p.entries)-maxEntries:]
	}
}

// ToggleDebug shows or hides debug entries.
func (p *LogPanel) ToggleDebug() bool {
	p.showDebug = !p.showDebug
	return p.showDebug
}

// Clear clears all entries
func (p *LogPanel) Clear() {
	p.entries = nil
}

// SetSize sets the panel dimensions
func (p *LogPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Visible returns the entries that pass the debug filter.
func (p *LogPanel) Visible() []LogEntry {
	if p.showDebug {
		return p.entries
	}
	var out []LogEntry
	for _, e := range p.entries {
		if e.Level != LogDebug {
			out = append(out, e)
		}
	}
	return out
}

// View renders the log panel content
func (p *LogPanel) View() string {
	entries := p.Visible()
	if len(entries) == 0 {
		return DimStyle.Render("  No log entries")
	}

	maxVisible := p.height - 2
	if maxVisible < 1 {
		maxVisible = 10
	}

	start := 0
	if len(entries) > maxVisible {
		start = len(entries) - maxVisible
	}

	var lines []string
	for _, entry := range entries[start:] {
		timestamp := DimStyle.Render(entry.Time.Format("15:04:05"))

		var msgStyle lipgloss.Style
		switch entry.Level {
		case LogDebug:
			msgStyle = DimStyle
		case LogSuccess:
			msgStyle = SuccessStyle
		case LogWarning:
			msgStyle = WarningStyle
		case LogError:
			msgStyle = ErrorStyle
		default:
			msgStyle = lipgloss.NewStyle().Foreground(ColorFg)
		}

		msg := entry.Message
		maxMsgLen := p.width - 12
		if maxMsgLen > 3 && len(msg) > maxMsgLen {
			msg = msg[:maxMsgLen-3] + "..."
		}

		lines = append(lines, timestamp+"  "+msgStyle.Render(msg))
	}

	return strings.Join(lines, "\n")
}

// levelFor picks the log level used for a watcher event.
func levelFor(e watcher.Event) LogLevel {
	switch e.Kind {
	case watcher.Ignored, watcher.Debounced, watcher.Busy, watcher.Probed:
		return LogDebug
	case watcher.Transitioned:
		return LogWarning
	case watcher.Dispatched:
		if e.Outcome.OK() {
			return LogSuccess
		}
		return LogError
	case watcher.Completed:
		if e.Transition == watcher.NoChange {
			return LogDebug
		}
		return LogInfo
	case watcher.Recovered:
		return LogError
	default:
		return LogInfo
	}
}

// Helper functions
func centerText(text string, width int) string {
	textLen := lipgloss.Width(text)
	if textLen >= width {
		return text
	}
	padding := (width - textLen) / 2
	return strings.Repeat(" ", padding) + text
}
