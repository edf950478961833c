package ui

import (
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"doppel/internal/config"
	"doppel/internal/domain"
	"doppel/internal/eventbus"
	"doppel/internal/matcher"
)

// Launch duration bounds in minutes
const (
	minMinutes = 1
	maxMinutes = 60
)

// keyMap defines the key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Launch  key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Logs    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n"),
			key.WithHelp("↓", "down"),
		),
		Launch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "launch"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "logs"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Launch, k.Refresh, k.Logs, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Launch, k.Cancel},
		{k.Refresh, k.Logs, k.Quit},
	}
}

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	engine *matcher.Engine

	input textinput.Model
	spin  spinner.Model
	help  help.Model
	keys  keyMap

	width  int
	height int

	// Latest ranking snapshot, truncated to config.MaxResults
	results matcher.Results
	shown   []domain.Game
	cursor  int

	// Launch bar state
	launching  bool
	launchGame domain.Game
	minutes    int

	status     string
	statusErr  bool
	refreshing bool

	// Commands that hit a full engine queue, retried on the next tick
	pendingSearch *matcher.SearchCommand
	pendingReload *matcher.ReloadCommand

	logPath string
	logOps  *LogOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(bus eventbus.EventBus, cfg *config.Config, engine *matcher.Engine, logPath string) *Model {
	ti := textinput.New()
	ti.Placeholder = "type to search"
	ti.Prompt = promptStyle.Render("> ")
	ti.CharLimit = 128
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		bus:     bus,
		config:  cfg,
		engine:  engine,
		input:   ti,
		spin:    sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
		minutes: cfg.DefaultDurationMinutes,
		logPath: logPath,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.logOps = NewLogOps(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spin.Tick,
		tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
			return tickMsg(t)
		}),
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ResultsMsg:
		m.applyResults(msg.Results)
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case tickMsg:
		m.retryPending()
		return m, tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case logPagerMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("pager: %v", msg.err))
		}
		return m, nil
	}

	return m, nil
}

// handleKey dispatches a key press
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.launching {
		return m.handleLaunchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.shown)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Launch):
		if m.cursor < len(m.shown) {
			m.launching = true
			m.launchGame = m.shown[m.cursor]
			m.minutes = m.config.DefaultDurationMinutes
		}
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.sendSearch("")
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if !m.refreshing {
			m.refreshing = true
			m.setStatus("refreshing catalog")
			m.bus.Publish(eventbus.RefreshRequestedEvent{})
		}
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		return m, m.openLogPager()
	}

	// Everything else feeds the search input
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.sendSearch(after)
	}
	return m, cmd
}

// handleLaunchKey adjusts or confirms the pending launch
func (m *Model) handleLaunchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "+", "k":
		if m.minutes < maxMinutes {
			m.minutes++
		}
	case "down", "-", "j":
		if m.minutes > minMinutes {
			m.minutes--
		}
	case "enter":
		m.launching = false
		m.bus.Publish(eventbus.LaunchRequestedEvent{
			Game:    m.launchGame,
			Minutes: m.minutes,
		})
		m.setStatus(fmt.Sprintf("launching %s for %dm", m.launchGame.Name, m.minutes))
		// Back to a clean slate for the next search
		if m.input.Value() != "" {
			m.input.SetValue("")
			m.sendSearch("")
		}
	case "esc":
		m.launching = false
	}
	return m, nil
}

// handleEvent reacts to domain events forwarded from the bus
func (m *Model) handleEvent(event eventbus.DomainEvent) {
	switch e := event.(type) {
	case eventbus.GamesLoadedEvent:
		m.sendReload(e.Games)
		m.setStatus(fmt.Sprintf("%d games loaded", len(e.Games)))

	case eventbus.GamesRefreshedEvent:
		m.refreshing = false
		m.sendReload(e.Games)
		m.setStatus(fmt.Sprintf("catalog refreshed, %d games", len(e.Games)))

	case eventbus.RefreshFailedEvent:
		m.refreshing = false
		m.setError("catalog refresh failed, using local list")

	case eventbus.LaunchStartedEvent:
		m.setStatus(fmt.Sprintf("%s is running", e.Game.Name))

	case eventbus.ErrorEvent:
		m.setError(e.Message)
	}
}

// applyResults installs a ranking snapshot
func (m *Model) applyResults(r matcher.Results) {
	m.results = r
	m.shown = r.Games
	if len(m.shown) > m.config.MaxResults {
		m.shown = m.shown[:m.config.MaxResults]
	}
	if m.cursor >= len(m.shown) {
		m.cursor = len(m.shown) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	// A superseded launch target would be confusing; drop the bar if
	// the selection no longer exists
	if m.launching && (m.cursor >= len(m.shown) || m.shown[m.cursor] != m.launchGame) {
		m.launching = false
	}
}

// sendSearch forwards the query to the engine, keeping it for retry
// when the queue is momentarily full
func (m *Model) sendSearch(query string) {
	cmd := matcher.SearchCommand{Query: query}
	if m.engine.TrySend(cmd) {
		m.pendingSearch = nil
	} else {
		m.pendingSearch = &cmd
	}
}

func (m *Model) sendReload(games []domain.Game) {
	cmd := matcher.ReloadCommand{Games: games}
	if m.engine.TrySend(cmd) {
		m.pendingReload = nil
	} else {
		m.pendingReload = &cmd
	}
}

// retryPending re-sends commands dropped on a full queue
func (m *Model) retryPending() {
	if m.pendingReload != nil && m.engine.TrySend(*m.pendingReload) {
		m.pendingReload = nil
	}
	if m.pendingSearch != nil && m.engine.TrySend(*m.pendingSearch) {
		m.pendingSearch = nil
	}
}

// openLogPager shows the session log in ov
func (m *Model) openLogPager() tea.Cmd {
	if m.logOps == nil || m.logPath == "" {
		m.setError("log viewer unavailable")
		return nil
	}
	return func() tea.Msg {
		err := m.logOps.ShowLogInPager(m.logPath)
		if err != nil {
			log.Printf("Log pager failed: %v", err)
		}
		return logPagerMsg{err: err}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// View renders the UI
func (m *Model) View() string {
	var b []string

	b = append(b, titleStyle.Render("doppel"))
	b = append(b, m.input.View())
	b = append(b, "")

	b = append(b, m.renderResults()...)

	if m.launching {
		b = append(b, "", launchBarStyle.Render(
			fmt.Sprintf("launch %s for %d minutes?  ↑/↓ adjust · enter confirm · esc cancel",
				m.launchGame.Name, m.minutes)))
	}

	b = append(b, "", m.renderStatus())
	b = append(b, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, b...)
}

// renderResults renders the visible slice of the ranked list
func (m *Model) renderResults() []string {
	if len(m.shown) == 0 {
		if m.results.Query == "" {
			return []string{exeStyle.Render("  no games yet")}
		}
		return []string{exeStyle.Render("  no matches")}
	}

	visible := m.visibleRows()
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.shown) {
		end = len(m.shown)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		g := m.shown[i]
		line := fmt.Sprintf("%s %s", g.Name, exeStyle.Render(g.Exe))
		if i == m.cursor {
			lines = append(lines, cursorLineStyle.Render("▌ ")+cursorLineStyle.Render(g.Name)+" "+exeStyle.Render(g.Exe))
		} else {
			lines = append(lines, "  "+resultStyle.Render(line))
		}
	}
	return lines
}

// visibleRows is how many result lines fit between header and footer
func (m *Model) visibleRows() int {
	rows := m.height - 7
	if m.launching {
		rows -= 2
	}
	if rows < 3 {
		rows = 10 // no size info yet, assume a sane terminal
	}
	return rows
}

// renderStatus renders the bottom status line
func (m *Model) renderStatus() string {
	var parts []string

	if m.refreshing {
		parts = append(parts, m.spin.View()+"refreshing")
	} else if !m.results.Complete && m.results.Query != "" {
		parts = append(parts, m.spin.View()+"matching")
	}

	parts = append(parts, fmt.Sprintf("%d/%d", len(m.shown), len(m.results.Games)))

	if m.status != "" {
		if m.statusErr {
			parts = append(parts, errorStyle.Render(m.status))
		} else {
			parts = append(parts, m.status)
		}
	}

	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "  ·  "
		}
		out += p
	}
	return statusStyle.Render(out)
}
