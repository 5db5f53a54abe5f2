package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wavebar/wifimon"
)

var (
	strengthIcons    = []string{"󰤯", "󰤟", "󰤢", "󰤥", "󰤨"}
	disconnectedIcon = "󰤮"
	unavailableIcon  = "󰤫"
)

var (
	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9cca69"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a7abca"))
	unavailableStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))
)

// A snapshotter is the source of the state shown in the status bar.
type snapshotter interface {
	Snapshot() wifimon.Snapshot
}

// statusLine formats a snapshot as "<icon> <signal>% <ssid>".
func statusLine(s wifimon.Snapshot) string {
	icon := disconnectedIcon
	if s.State == wifimon.StateConnected {
		level := s.Signal / 25
		if level < 0 {
			level = 0
		}
		if level > len(strengthIcons)-1 {
			level = len(strengthIcons) - 1
		}

		icon = strengthIcons[level]
	}

	return fmt.Sprintf("%s %d%% %s", icon, s.Signal, s.SSID)
}

func unavailableLine() string {
	return unavailableIcon + " wifi unavailable"
}

type tickMsg time.Time

func doTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// statusBar is a one line bubbletea model which polls a snapshotter on every
// tick. A nil source renders the unavailable status.
type statusBar struct {
	src  snapshotter
	tick time.Duration
	snap wifimon.Snapshot
}

func newStatusBar(src snapshotter, tick time.Duration) statusBar {
	m := statusBar{
		src:  src,
		tick: tick,
	}
	if src != nil {
		m.snap = src.Snapshot()
	}

	return m
}

func (m statusBar) Init() tea.Cmd {
	return doTick(m.tick)
}

func (m statusBar) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tickMsg:
		if m.src != nil {
			m.snap = m.src.Snapshot()
		}

		return m, doTick(m.tick)
	}

	return m, nil
}

func (m statusBar) View() string {
	switch {
	case m.src == nil:
		return unavailableStyle.Render(unavailableLine()) + "\n"
	case m.snap.State == wifimon.StateConnected:
		return connectedStyle.Render(statusLine(m.snap)) + "\n"
	default:
		return disconnectedStyle.Render(statusLine(m.snap)) + "\n"
	}
}
