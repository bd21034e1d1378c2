package playback

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"keylay/internal/engine"
	"keylay/internal/layout"
)

const frameInterval = 50 * time.Millisecond

var (
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A8C"))
	homeKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8CC8"))
	pressedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD75F")).Bold(true)
	leftStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD7A7")).Bold(true)
	rightStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true)
	typedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

type tickMsg time.Time

// Model implements the Bubble Tea playback UI.
type Model struct {
	lay   *layout.Layout
	trace engine.Trace
	tl    timeline

	elapsed time.Duration
	playing bool
	done    bool

	width    int
	height   int
	progress progress.Model
}

// NewModel constructs a playback model for a completed trace.
func NewModel(lay *layout.Layout, trace engine.Trace, speed engine.SpeedModel) *Model {
	return &Model{
		lay:      lay,
		trace:    trace,
		tl:       buildTimeline(lay, trace, speed),
		playing:  true,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// Run animates the trace and blocks until the user quits.
func Run(lay *layout.Layout, trace engine.Trace, speed engine.SpeedModel) error {
	program := tea.NewProgram(NewModel(lay, trace, speed), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run playback: %w", err)
	}
	return nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		barWidth := m.width - 8
		if barWidth < 10 {
			barWidth = 10
		}
		m.progress.Width = barWidth
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.playing = !m.playing
			}
			return m, nil
		case "r":
			m.elapsed = 0
			m.done = false
			m.playing = true
			return m, nil
		default:
			return m, nil
		}
	case tickMsg:
		if m.playing && !m.done {
			m.elapsed += frameInterval
			if m.elapsed >= m.tl.total {
				m.elapsed = m.tl.total
				m.done = true
			}
		}
		return m, tick()
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{
		m.renderText(),
		"",
		m.renderKeyboard(),
		"",
		m.renderFooter(),
	}
	content := strings.Join(sections, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderText() string {
	typed := m.tl.typedCount(m.elapsed)
	var b strings.Builder
	for i, ev := range m.trace.Events {
		if i < typed {
			b.WriteString(typedStyle.Render(string(ev.Char)))
		} else {
			b.WriteString(pendingStyle.Render(string(ev.Char)))
		}
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	frac := 1.0
	if m.tl.total > 0 {
		frac = float64(m.elapsed) / float64(m.tl.total)
	}
	bar := m.progress.ViewAs(frac)
	status := fmt.Sprintf("%.1fs / %.1fs", m.elapsed.Seconds(), m.tl.total.Seconds())
	hint := "space pause · r restart · q quit"
	if m.done {
		hint = "r restart · q quit"
	}
	return bar + "\n" + footerStyle.Render(status+"  "+hint)
}
