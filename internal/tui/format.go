package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/tui/styles"
)

// Formatter turns bus events into display text. Both renderers share it.
type Formatter struct {
	// Width wraps reply text; 0 disables wrapping.
	Width int
}

// Event formats one event. The second result is false for events that have
// no textual form.
func (f Formatter) Event(e event.Event) (string, bool) {
	switch ev := e.(type) {
	case event.TurnProducedEvent:
		return f.Turn(ev), true
	case event.PhaseChangedEvent:
		return f.Phase(ev), true
	case event.ErrorOccurredEvent:
		return f.AgentError(ev), true
	case event.SummaryReadyEvent:
		return f.Summary(ev.Summary), true
	case event.CatalogListedEvent:
		return f.Catalog(ev), true
	case event.NoticePostedEvent:
		return f.Notice(ev), true
	default:
		return "", false
	}
}

// Turn renders a speaker line followed by the wrapped text.
func (f Formatter) Turn(ev event.TurnProducedEvent) string {
	turn := ev.Turn

	var label string
	if turn.Speaker.IsUser() {
		label = styles.UserLabel.Render("You")
	} else {
		label = styles.AgentLabel(ev.Agent.Slot).Render(fmt.Sprintf("[%s] %s", ev.Agent.Tag, ev.Agent.Name))
	}
	if turn.Origin != 0 {
		label += " " + styles.PromotedLabel.Render(fmt.Sprintf("(from private chat with slot %d)", turn.Origin))
	}

	var sb strings.Builder
	sb.WriteString(label)
	sb.WriteString("\n")
	if turn.Question != "" {
		sb.WriteString(styles.Question.Render(f.wrap("Q: " + turn.Question)))
		sb.WriteString("\n")
	}
	sb.WriteString(f.wrap(turn.Text))
	return sb.String()
}

// Phase renders a transition banner.
func (f Formatter) Phase(ev event.PhaseChangedEvent) string {
	var title string
	switch ev.Current.Kind() {
	case session.KindPrivate:
		title = fmt.Sprintf("Private chat with [%s] %s", ev.Agent.Tag, ev.Agent.Name)
	case session.KindDebate:
		title = "Group chat"
	case session.KindEnded:
		title = "Chat ended"
	default:
		title = ev.Current.String()
	}
	return styles.PhaseBanner.Render("── " + title + " ──")
}

// AgentError renders a failure published during a round.
func (f Formatter) AgentError(ev event.ErrorOccurredEvent) string {
	msg := displayMessage(ev.Err)
	if ev.Agent.Slot != 0 && ev.Agent.Name != "" {
		msg = fmt.Sprintf("[%s] %s: %s", ev.Agent.Tag, ev.Agent.Name, msg)
	}
	if errors.IsRetryable(ev.Err) {
		msg += " (skipped this round)"
	}
	return severityStyle(ev.Err).Render("✗ " + msg)
}

// Rejection renders an error returned by the controller.
func (f Formatter) Rejection(err error) string {
	return severityStyle(err).Render("✗ " + displayMessage(err))
}

// internalErrorText replaces messages that are not meant for the chat window.
const internalErrorText = "internal error (details in the log)"

func displayMessage(err error) string {
	if err == nil {
		return ""
	}
	if !errors.IsUserFacing(err) {
		return internalErrorText
	}
	return err.Error()
}

func severityStyle(err error) lipgloss.Style {
	switch errors.GetSeverity(err) {
	case errors.SeverityDebug, errors.SeverityInfo:
		return styles.Muted
	case errors.SeverityWarning:
		return styles.WarningMsg
	default:
		return styles.ErrorMsg
	}
}

// Notice renders informational text.
func (f Formatter) Notice(ev event.NoticePostedEvent) string {
	switch ev.Kind {
	case event.NoticeHelp, event.NoticeSlots:
		return ev.Text
	default:
		return styles.Notice.Render(f.wrap(ev.Text))
	}
}

// Catalog renders the answer to /list.
func (f Formatter) Catalog(ev event.CatalogListedEvent) string {
	if len(ev.Models) == 0 {
		return styles.Notice.Render(fmt.Sprintf("No models match %q.", ev.Pattern))
	}

	idWidth, nameWidth := 0, 0
	for _, m := range ev.Models {
		idWidth = max(idWidth, len(m.ID))
		nameWidth = max(nameWidth, lipgloss.Width(m.DisplayName()))
	}

	var sb strings.Builder
	sb.WriteString(styles.SummaryHeader.Render("Models"))
	for _, m := range ev.Models {
		line := fmt.Sprintf("  %-*s  %-*s  %9s ctx  $%.2f/$%.2f per M",
			idWidth, m.ID,
			nameWidth, m.DisplayName(),
			humanize.Comma(int64(m.ContextLength)),
			m.InputCost, m.OutputCost)
		if slot, ok := ev.Assigned[m.ID]; ok {
			line += styles.Secondary.Render(fmt.Sprintf("  [slot %d]", slot))
		}
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// Summary renders the usage table.
func (f Formatter) Summary(s session.Summary) string {
	title := "Session stats"
	if s.Final {
		title = "Session summary"
	}

	rows := make([][]string, 0, len(s.Slots)+2)
	rows = append(rows, []string{"Agent", "Status", "Rounds", "Calls", "Input", "Output", "Cost"})
	slots := append([]session.SlotSummary(nil), s.Slots...)
	sort.Slice(slots, func(i, j int) bool { return slots[i].Ordinal < slots[j].Ordinal })
	for _, sl := range slots {
		rows = append(rows, []string{
			fmt.Sprintf("[%s] %s", sl.Tag, sl.Name),
			sl.Status.String(),
			fmt.Sprint(sl.Usage.Rounds),
			fmt.Sprint(sl.Usage.Calls),
			humanize.Comma(sl.Usage.InputTokens),
			humanize.Comma(sl.Usage.OutputTokens),
			formatCost(sl.Cost),
		})
	}
	rows = append(rows, []string{
		"Total", "",
		fmt.Sprint(s.Total.Rounds),
		fmt.Sprint(s.Total.Calls),
		humanize.Comma(s.Total.InputTokens),
		humanize.Comma(s.Total.OutputTokens),
		formatCost(s.TotalCost),
	})

	var sb strings.Builder
	sb.WriteString(styles.SummaryHeader.Render(title))
	fmt.Fprintf(&sb, "\nElapsed: %s   Conversation rounds: %d\n",
		s.Elapsed.Round(time.Second), s.ConversationRounds)
	sb.WriteString(table(rows))
	return styles.SummaryBox.Render(sb.String())
}

func formatCost(usd float64) string {
	return "$" + humanize.CommafWithDigits(usd, 4)
}

// table left-aligns the first two columns and right-aligns the rest.
func table(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	lines := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i < 2 {
				cells[i] = cell + pad
			} else {
				cells[i] = pad + cell
			}
		}
		lines[r] = strings.TrimRight(strings.Join(cells, "  "), " ")
	}
	return strings.Join(lines, "\n")
}

func (f Formatter) wrap(text string) string {
	if f.Width <= 0 {
		return text
	}
	return ansi.Wrap(text, f.Width, "")
}
