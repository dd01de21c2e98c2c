package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/tui/styles"
)

// View implements tea.Model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(styles.InputBox.Width(max(m.width-2, 10)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := fmt.Sprintf("superchat  %s  rounds %d", m.phase, m.rounds)
	return styles.Header.Width(m.width).Render(title)
}

func phaseTitle(s *session.State) string {
	phase := s.Phase()
	var agent event.Agent
	if phase.Is(session.KindPrivate) {
		sl, _ := s.Slot(phase.Slot())
		agent = event.AgentOf(sl)
	}
	return phaseLabel(phase, agent)
}

func phaseLabel(phase session.Phase, agent event.Agent) string {
	switch phase.Kind() {
	case session.KindPrivate:
		return fmt.Sprintf("private with [%s] %s", agent.Tag, agent.Name)
	case session.KindDebate:
		return "group chat"
	default:
		return phase.String()
	}
}

// renderStatus shows the spinner while an agent is called, otherwise the
// slot roster.
func (m Model) renderStatus() string {
	if m.busy {
		who := "working"
		if m.thinking.Slot != 0 {
			who = fmt.Sprintf("[%s] %s is thinking", m.thinking.Tag, m.thinking.Name)
		}
		return m.spinner.View() + " " + styles.Muted.Render(who)
	}

	var parts []string
	for _, sl := range m.roster {
		icon := lipgloss.NewStyle().Foreground(styles.StatusColor(sl.Status)).Render(styles.StatusIcon(sl.Status))
		parts = append(parts, icon+" "+styles.AgentLabel(sl.Ordinal).Render(sl.Label()))
	}
	if len(parts) == 0 {
		return styles.Muted.Render("No models assigned. Try /list and /model <name>.")
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelp() string {
	bindings := []struct{ k, desc string }{
		{m.keys.Send.Help().Key, m.keys.Send.Help().Desc},
		{m.keys.Cancel.Help().Key, m.keys.Cancel.Help().Desc},
		{m.keys.PageUp.Help().Key + "/" + m.keys.PageDown.Help().Key, "scroll"},
		{"/help", "commands"},
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = styles.HelpKey.Render(b.k) + " " + b.desc
	}
	return styles.HelpBar.Render(strings.Join(parts, "  "))
}
