package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	stage "github.com/koscakluka/stage-core/core"
	"github.com/koscakluka/stage-core/core/ingest"
)

const (
	tickInterval = 33 * time.Millisecond
	seekStep     = 0.05
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	coordinator *stage.Coordinator
	client      *ingest.Client

	spinner  spinner.Model
	progress progress.Model

	lastTick time.Time
	paused   bool
	width    int
}

func newModel(coordinator *stage.Coordinator, client *ingest.Client) model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return model{
		coordinator: coordinator,
		client:      client,
		spinner:     s,
		progress:    progress.New(progress.WithDefaultGradient()),
		width:       80,
	}
}

func (m model) Init() tea.Cmd {
	m.coordinator.Start()
	return tea.Batch(tick(), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		dt := tickInterval
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick)
		}
		m.lastTick = now

		m.coordinator.Update(dt)
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			m.client.SetPaused(m.paused)
			return m, nil
		case "left":
			m.client.Seek(m.client.Progress() - seekStep)
			return m, nil
		case "right":
			m.client.Seek(m.client.Progress() + seekStep)
			return m, nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) View() string {
	view := m.coordinator.Snapshot()
	theme := themeFor(view.ThemeID)

	var b strings.Builder

	b.WriteString(theme.header.Render("stage"))
	b.WriteString("  ")
	b.WriteString(m.connectionStatus(theme))
	b.WriteString("\n\n")

	for _, participant := range view.Roster {
		b.WriteString(m.participantRow(theme, participant, participant.AgentID == view.ActiveSpeaker))
		b.WriteString("\n")
	}
	if len(view.Roster) == 0 {
		b.WriteString(theme.idle.Render("  waiting for a conversation..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if view.Line != "" {
		b.WriteString(theme.line.Render(wordwrap.String(view.Line, max(20, m.width-4))))
		b.WriteString("\n\n")
	}

	if view.Ended {
		b.WriteString(theme.finished.Render("  the conversation has ended"))
		b.WriteString("\n\n")
	}

	if m.client.DemoMode() {
		b.WriteString("  ")
		b.WriteString(m.progress.ViewAs(m.client.Progress()))
		b.WriteString("\n\n")
		b.WriteString(theme.help.Render("  space pause/resume · ←/→ seek · q quit"))
	} else {
		b.WriteString(theme.help.Render("  q quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func (m model) connectionStatus(theme stageTheme) string {
	state := m.client.State()
	switch state {
	case ingest.Connecting, ingest.Reconnecting:
		return theme.status.Render(m.spinner.View() + state.String())
	default:
		return theme.status.Render(state.String())
	}
}

func (m model) participantRow(theme stageTheme, participant stage.Participant, active bool) string {
	marker := "  "
	if active {
		marker = "▶ "
	}

	style := theme.idle
	label := participant.DisplayName
	if participant.TalkState == stage.TalkStateTalking {
		style = theme.talking
		label = fmt.Sprintf("%s (speaking)", participant.DisplayName)
	}
	if active {
		style = theme.active
	}

	return fmt.Sprintf("%s%s", marker, style.Render(label))
}
