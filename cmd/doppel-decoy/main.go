package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// exitGrace keeps the process alive briefly past zero so a session
// never registers as shorter than requested.
const exitGrace = 15 * time.Second

var (
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	clockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// tickMsg fires once a second
type tickMsg time.Time

type model struct {
	game     string
	deadline time.Time
	now      time.Time
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = time.Time(msg)
		if m.now.After(m.deadline.Add(exitGrace)) {
			return m, tea.Quit
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	remaining := m.deadline.Sub(m.now).Round(time.Second)

	var clock string
	if remaining > 0 {
		clock = clockStyle.Render(formatDuration(remaining))
	} else {
		clock = clockStyle.Render("time's up")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		"  "+nameStyle.Render(m.game),
		"",
		"  "+clock,
		"",
		"  "+dimStyle.Render("q to stop early"),
	)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <game name> <minutes>\n", os.Args[0])
		os.Exit(2)
	}

	game := os.Args[1]
	minutes, err := strconv.Atoi(os.Args[2])
	if err != nil || minutes <= 0 {
		fmt.Fprintf(os.Stderr, "invalid duration %q\n", os.Args[2])
		os.Exit(2)
	}

	now := time.Now()
	m := model{
		game:     game,
		deadline: now.Add(time.Duration(minutes) * time.Minute),
		now:      now,
	}

	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
