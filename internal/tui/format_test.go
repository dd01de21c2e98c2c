package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/superchat/internal/catalog"
	chaterrors "github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
	"github.com/Iron-Ham/superchat/internal/tui/styles"
)

var kimi = event.Agent{Slot: 1, Tag: "д", ModelID: "k2", Name: "Kimi K2 (0905)"}

func TestFormatter_Turn(t *testing.T) {
	tests := []struct {
		name  string
		ev    event.TurnProducedEvent
		want  []string
		avoid []string
	}{
		{
			name: "user",
			ev:   event.NewTurnProducedEvent(false, event.Agent{}, transcript.Turn{Speaker: transcript.User, Text: "hello"}),
			want: []string{"You\nhello"},
		},
		{
			name:  "agent",
			ev:    event.NewTurnProducedEvent(false, kimi, transcript.Turn{Speaker: transcript.Agent(1), Text: "hi there"}),
			want:  []string{"[д] Kimi K2 (0905)\nhi there"},
			avoid: []string{"Q:", "private chat"},
		},
		{
			name: "promoted",
			ev:   event.NewTurnProducedEvent(false, kimi, transcript.Turn{Speaker: transcript.Agent(1), Text: "x", Origin: 1}),
			want: []string{"(from private chat with slot 1)"},
		},
		{
			name: "ask reply",
			ev:   event.NewTurnProducedEvent(false, kimi, transcript.Turn{Speaker: transcript.Agent(1), Text: "because", Question: "why?"}),
			want: []string{"Q: why?\nbecause"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ansi.Strip(Formatter{}.Turn(tt.ev))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Turn() = %q, missing %q", got, w)
				}
			}
			for _, a := range tt.avoid {
				if strings.Contains(got, a) {
					t.Errorf("Turn() = %q, should not contain %q", got, a)
				}
			}
		})
	}
}

func TestFormatter_Wrap(t *testing.T) {
	f := Formatter{Width: 20}
	ev := event.NewTurnProducedEvent(false, kimi, transcript.Turn{
		Speaker: transcript.Agent(1),
		Text:    "the quick brown fox jumps over the lazy dog and keeps running",
	})

	lines := strings.Split(ansi.Strip(f.Turn(ev)), "\n")
	if len(lines) < 4 {
		t.Fatalf("Turn() produced %d lines, want the body wrapped", len(lines))
	}
	for _, line := range lines[1:] {
		if ansi.StringWidth(line) > 20 {
			t.Errorf("line %q wider than 20", line)
		}
	}
}

func TestFormatter_Summary(t *testing.T) {
	s := session.Summary{
		Elapsed:            95 * time.Second,
		ConversationRounds: 3,
		Slots: []session.SlotSummary{
			{Ordinal: 2, Tag: "ф", Name: "Gemini Flash (2.5)", Status: session.StatusBooted,
				Usage: session.Usage{InputTokens: 1200, OutputTokens: 300, Calls: 2, Rounds: 1}, Cost: 0.00111},
			{Ordinal: 1, Tag: "д", Name: "Kimi K2 (0905)", Status: session.StatusActive,
				Usage: session.Usage{InputTokens: 1234567, OutputTokens: 4321, Calls: 3, Rounds: 3}, Cost: 0.4897},
		},
		Total:     session.Usage{InputTokens: 1235767, OutputTokens: 4621, Calls: 5, Rounds: 4},
		TotalCost: 0.49081,
		Final:     true,
	}

	got := ansi.Strip(Formatter{}.Summary(s))
	for _, want := range []string{
		"Session summary",
		"Elapsed: 1m35s",
		"Conversation rounds: 3",
		"1,234,567",
		"1,235,767",
		"$0.4897",
		"booted",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary() missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "Kimi") > strings.Index(got, "Gemini") {
		t.Error("slots not listed in ordinal order")
	}

	s.Final = false
	if !strings.Contains(ansi.Strip(Formatter{}.Summary(s)), "Session stats") {
		t.Error("interim summary title missing")
	}
}

func TestFormatter_Catalog(t *testing.T) {
	models := []*catalog.Model{
		{ID: "k2", Family: "Kimi", Name: "K2", ContextLength: 262144, InputCost: 0.39, OutputCost: 1.9},
		{ID: "gemini-flash", Family: "Gemini", Name: "Flash", ContextLength: 1048576},
	}

	got := ansi.Strip(Formatter{}.Catalog(event.NewCatalogListedEvent("", models, map[string]int{"k2": 1})))
	if !strings.Contains(got, "262,144") || !strings.Contains(got, "$0.39/$1.90") {
		t.Errorf("Catalog() = %q", got)
	}
	if strings.Count(got, "[slot") != 1 || !strings.Contains(got, "[slot 1]") {
		t.Errorf("Catalog() assignment markers wrong: %q", got)
	}

	empty := ansi.Strip(Formatter{}.Catalog(event.NewCatalogListedEvent("zz*", nil, nil)))
	if !strings.Contains(empty, `No models match "zz*"`) {
		t.Errorf("Catalog() empty = %q", empty)
	}
}

func TestFormatter_Event(t *testing.T) {
	f := Formatter{}

	if _, ok := f.Event(event.NewDispatchStartedEvent(kimi, false)); ok {
		t.Error("dispatch events should have no text")
	}

	text, ok := f.Event(event.NewErrorOccurredEvent(kimi, chaterrors.NewDispatchError("boom", nil)))
	if !ok || !strings.Contains(ansi.Strip(text), "[д] Kimi K2 (0905): dispatch error: boom (skipped this round)") {
		t.Errorf("error event = %q, %v", text, ok)
	}

	text, _ = f.Event(event.NewErrorOccurredEvent(kimi, errors.New("socket: /tmp/x.sock")))
	if got := ansi.Strip(text); strings.Contains(got, "socket") || !strings.Contains(got, internalErrorText) {
		t.Errorf("internal agent error = %q, want the generic message", got)
	}

	text, ok = f.Event(event.NewPhaseChangedEvent("id", session.Setup(), session.Private(1), kimi))
	if !ok || !strings.Contains(ansi.Strip(text), "Private chat with [д] Kimi K2 (0905)") {
		t.Errorf("phase event = %q, %v", text, ok)
	}
}

func TestFormatter_Rejection(t *testing.T) {
	f := Formatter{}
	tests := []struct {
		name  string
		err   error
		want  string
		avoid string
	}{
		{"validation", chaterrors.NewValidationError("usage: /ask <model> <question>"), "✗ usage: /ask <model> <question>", ""},
		{"phase", chaterrors.NewPhaseError("/promote", "setup"), "/promote", ""},
		{"no agents", fmt.Errorf("round: %w", chaterrors.ErrNoActiveAgents), "no active agents", ""},
		{"internal", fmt.Errorf("assemble: %w", chaterrors.ErrEmptyContext), "✗ " + internalErrorText, "original prompt"},
		{"plain", errors.New("open /var/run/secret"), internalErrorText, "/var/run"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ansi.Strip(f.Rejection(tt.err))
			if !strings.Contains(got, tt.want) {
				t.Errorf("Rejection() = %q, want it to contain %q", got, tt.want)
			}
			if tt.avoid != "" && strings.Contains(got, tt.avoid) {
				t.Errorf("Rejection() = %q leaks %q", got, tt.avoid)
			}
		})
	}
}

func TestSeverityStyle(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want lipgloss.TerminalColor
	}{
		{"warning", chaterrors.NewValidationError("bad"), styles.WarningMsg.GetForeground()},
		{"canceled", chaterrors.Wrap(chaterrors.ErrCanceled, "round interrupted"), styles.WarningMsg.GetForeground()},
		{"error", chaterrors.NewDispatchError("502", nil), styles.ErrorMsg.GetForeground()},
		{"critical", chaterrors.ErrEmptyContext, styles.ErrorMsg.GetForeground()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := severityStyle(tt.err).GetForeground(); got != tt.want {
				t.Errorf("foreground = %v, want %v", got, tt.want)
			}
		})
	}
}
