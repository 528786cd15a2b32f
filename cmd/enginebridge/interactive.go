package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fenwick-labs/enginebridge"
	"github.com/fenwick-labs/enginebridge/bridge"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	engineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	readyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	sentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxScrollback bounds the console history.
const maxScrollback = 500

type consoleModel struct {
	b     *bridge.Bridge
	input textinput.Model
	lines []string
	ready bool
	fatal bool
}

type notifMsg enginebridge.Notification

type initializedMsg struct{ err error }

func newConsoleModel(b *bridge.Bridge) *consoleModel {
	input := textinput.New()
	input.Placeholder = "engine command (e.g. go depth 12)"
	input.Focus()

	return &consoleModel{b: b, input: input}
}

func (m *consoleModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return initializedMsg{err: m.b.Initialize(context.Background())} },
		waitForNotification(m.b.Notifications()),
		textinput.Blink,
	)
}

func waitForNotification(ch <-chan enginebridge.Notification) tea.Cmd {
	return func() tea.Msg {
		return notifMsg(<-ch)
	}
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.b.Close(context.Background())
			return m, tea.Quit

		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmd == "" {
				return m, nil
			}
			m.append(sentStyle.Render("> " + cmd))
			if err := m.b.Send(cmd); err != nil {
				m.append(errorStyle.Render("send: " + err.Error()))
			}
			if cmd == "quit" {
				m.b.Close(context.Background())
				return m, tea.Quit
			}
			return m, nil
		}

	case initializedMsg:
		if msg.err != nil {
			// The fatal notification carries the details; just stop typing.
			m.fatal = true
			m.input.Blur()
		}
		return m, nil

	case notifMsg:
		m.append(renderNotification(enginebridge.Notification(msg)))
		switch msg.Type {
		case enginebridge.TypeReady:
			m.ready = true
		case enginebridge.TypeFatal:
			m.fatal = true
			m.input.Blur()
		}
		return m, waitForNotification(m.b.Notifications())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *consoleModel) append(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxScrollback {
		m.lines = m.lines[len(m.lines)-maxScrollback:]
	}
}

func renderNotification(n enginebridge.Notification) string {
	switch n.Type {
	case enginebridge.TypeEngine:
		return engineStyle.Render(n.Data)
	case enginebridge.TypeReady:
		return readyStyle.Render("engine ready")
	case enginebridge.TypeStatus:
		return statusStyle.Render("[status] " + n.Data)
	case enginebridge.TypeError:
		return errorStyle.Render("[error] " + n.Data)
	case enginebridge.TypeFatal:
		return errorStyle.Render("[fatal] " + n.Error)
	default:
		return helpStyle.Render("[" + string(n.Type) + "] " + n.Data)
	}
}

func (m *consoleModel) View() string {
	var b strings.Builder

	state := "loading"
	switch {
	case m.fatal:
		state = "dead"
	case m.ready:
		state = "ready"
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("engine bridge — %s", state)))
	b.WriteString("\n\n")

	visible := m.lines
	if len(visible) > 20 {
		visible = visible[len(visible)-20:]
	}
	for _, line := range visible {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(helpStyle.Render("enter: send • esc: quit"))
	return b.String()
}

func runConsole(ctx context.Context, b *bridge.Bridge) error {
	p := tea.NewProgram(newConsoleModel(b))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
