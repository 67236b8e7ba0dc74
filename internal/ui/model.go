package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Discobrick/monitor-switcher/internal/device"
	"github.com/Discobrick/monitor-switcher/internal/dispatch"
	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

// Options configures the model.
type Options struct {
	Set     device.MonitoredSet
	Tool    string
	Version string
	Polling bool
	// Devices lists the attached inventory for the devices panel.
	Devices func() ([]device.Info, error)
	// Cancel stops the watcher when the user quits.
	Cancel context.CancelFunc
}

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	activePanel Panel
	showHelp    bool

	// Presence as last reported by the watcher
	seeded  bool
	present bool
	since   time.Time
	last    *watcher.Event

	// In-flight batch
	switching  bool
	switchTr   watcher.Transition
	switchDone []dispatch.Outcome

	tick    int
	ticking bool

	devicesPanel *DevicesPanel
	statusPanel  *StatusPanel
	logPanel     *LogPanel
	helpOverlay  *HelpOverlay

	feed *Feed
	opts Options
	err  error
}

// NewModel creates a model fed by feed.
func NewModel(feed *Feed, opts Options) *Model {
	return &Model{
		activePanel:  PanelStatus,
		devicesPanel: NewDevicesPanel(opts.Set),
		statusPanel:  NewStatusPanel(opts.Tool),
		logPanel:     NewLogPanel(),
		helpOverlay:  NewHelpOverlay(opts.Polling),
		feed:         feed,
		opts:         opts,
	}
}

// Err returns the error that stopped the UI, if any.
func (m *Model) Err() error {
	return m.err
}

// feedMsg wraps feed items
type feedMsg struct {
	item feedItem
}

// failedMsg carries a fatal background error
type failedMsg struct {
	err error
}

// devicesMsg carries an inventory listing
type devicesMsg struct {
	infos []device.Info
	err   error
}

// tickMsg for spinner animation
type tickMsg struct{}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	m.logPanel.Add(LogInfo, fmt.Sprintf("Started - watching %d device(s)", len(m.opts.Set)))
	return tea.Batch(m.listenForNextEvent(), m.scanDevices(), m.startTicking())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case feedMsg:
		cmd := m.handleItem(msg.item)
		return m, tea.Batch(cmd, m.listenForNextEvent())

	case failedMsg:
		m.err = msg.err
		m.logPanel.Add(LogError, msg.err.Error())
		return m, m.quit()

	case devicesMsg:
		m.devicesPanel.SetInventory(msg.infos, msg.err)
		return m, nil

	case tickMsg:
		m.tick++
		if m.seeded && !m.switching {
			m.ticking = false
			return m, nil
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m *Model) handleItem(item feedItem) tea.Cmd {
	if item.err != nil {
		m.logPanel.Add(LogError, item.err.Error())
		return nil
	}

	e := *item.event
	m.logPanel.AddAt(e.At, levelFor(e), e.String())

	switch e.Kind {
	case watcher.Seeded:
		m.seeded = true
		m.present = e.Present
		m.since = e.At
	case watcher.Transitioned:
		m.switching = true
		m.switchTr = e.Transition
		m.switchDone = nil
		return m.startTicking()
	case watcher.Dispatched:
		m.switchDone = append(m.switchDone, e.Outcome)
	case watcher.Completed:
		if e.Transition == watcher.NoChange {
			return nil
		}
		m.switching = false
		m.present = e.Present
		m.since = e.At
		m.last = &e
		return m.scanDevices()
	case watcher.Recovered:
		// A failed cycle still ends the switch; keep the recorded state
		m.switching = false
		if m.seeded {
			m.present = e.Present
		}
	}
	return nil
}

// listenForNextEvent waits for the next item on the feed
func (m *Model) listenForNextEvent() tea.Cmd {
	feed := m.feed
	return func() tea.Msg {
		if feed == nil {
			return nil
		}
		select {
		case item, ok := <-feed.items:
			if !ok {
				return nil
			}
			return feedMsg{item: item}
		case err := <-feed.failed:
			return failedMsg{err: err}
		case <-feed.done:
			return nil
		}
	}
}

func (m *Model) scanDevices() tea.Cmd {
	list := m.opts.Devices
	if list == nil {
		return nil
	}
	return func() tea.Msg {
		infos, err := list()
		return devicesMsg{infos: infos, err: err}
	}
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) quit() tea.Cmd {
	if m.opts.Cancel != nil {
		m.opts.Cancel()
	}
	return tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, m.quit()
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "esc":
		m.showHelp = false
		return m, nil
	}

	// Help overlay blocks other keys
	if m.showHelp {
		return m, nil
	}

	switch msg.String() {
	case "tab":
		m.activePanel = (m.activePanel + 1) % 3
	case "1":
		m.activePanel = PanelDevices
	case "2":
		m.activePanel = PanelStatus
	case "3":
		m.activePanel = PanelLog
	case "r":
		m.logPanel.Add(LogInfo, "Rescanning devices")
		return m, m.scanDevices()
	case "d":
		if m.logPanel.ToggleDebug() {
			m.logPanel.Add(LogInfo, "Debug log on")
		} else {
			m.logPanel.Add(LogInfo, "Debug log off")
		}
	case "c":
		m.logPanel.Clear()
	}
	return m, nil
}

func (m *Model) panelWidths() (left, center, right int) {
	left = m.width * 30 / 100
	center = m.width * 35 / 100
	right = m.width - left - center - 6
	return left, center, right
}

func (m *Model) updatePanelSizes() {
	contentHeight := m.height - 4
	left, center, right := m.panelWidths()

	m.devicesPanel.SetSize(left, contentHeight)
	m.statusPanel.SetSize(center, contentHeight)
	m.logPanel.SetSize(right, contentHeight)
	m.helpOverlay.SetSize(m.width, m.height)
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.helpOverlay.View()
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderPanels())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m *Model) renderHeader() string {
	title := TitleStyle.Render("MONITOR SWITCHER")

	var status string
	switch {
	case !m.seeded:
		status = WarningStyle.Render(StatusWaiting) + " checking"
	case m.switching:
		status = WarningStyle.Render(StatusWaiting) + " switching"
	default:
		status = presenceBadge(m.present)
	}

	version := DimStyle.Render(strings.TrimSpace("monitor-switcher " + m.opts.Version))

	rightPart := status + "   " + version
	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 4
	if spacing < 1 {
		spacing = 1
	}

	headerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(m.width - 2)

	return headerStyle.Render(title + strings.Repeat(" ", spacing) + rightPart)
}

func (m *Model) panelStyle(p Panel, width, height int) lipgloss.Style {
	if m.activePanel == p {
		return ActivePanelStyle.Width(width).Height(height)
	}
	return PanelStyle.Width(width).Height(height)
}

func (m *Model) renderPanels() string {
	left, center, right := m.panelWidths()
	contentHeight := m.height - 6

	devices := m.panelStyle(PanelDevices, left, contentHeight).
		Render(AccentStyle.Render(" Devices ") + "\n\n" + m.devicesPanel.View())

	var statusContent string
	switch {
	case !m.seeded:
		statusContent = m.statusPanel.ViewSeeding(m.tick)
	case m.switching:
		statusContent = m.statusPanel.ViewSwitching(m.tick, m.switchTr, m.switchDone)
	default:
		statusContent = m.statusPanel.ViewIdle(m.present, m.since, m.last)
	}
	status := m.panelStyle(PanelStatus, center, contentHeight).
		Render(AccentStyle.Render(" Status ") + "\n\n" + statusContent)

	logTitle := " Log "
	if m.logPanel.showDebug {
		logTitle = " Log (debug) "
	}
	logs := m.panelStyle(PanelLog, right, contentHeight).
		Render(AccentStyle.Render(logTitle) + "\n\n" + m.logPanel.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, devices, status, logs)
}

func (m *Model) renderFooter() string {
	hints := []string{"Tab Panel", "r Rescan", "d Debug", "c Clear", "q Quit"}

	left := DimStyle.Render(strings.Join(hints, "   "))
	right := DimStyle.Render("? Help")

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	return " " + left + strings.Repeat(" ", spacing) + right
}
