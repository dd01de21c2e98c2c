package event

import (
	"errors"
	"testing"
	"time"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
)

func TestEventTypes(t *testing.T) {
	agent := Agent{Slot: 2, Tag: "ф", ModelID: "k2", Name: "Kimi K2"}

	tests := []struct {
		event Event
		want  string
	}{
		{NewTurnProducedEvent(true, agent, transcript.Turn{}), "turn.produced"},
		{NewPhaseChangedEvent("s", session.Setup(), session.Private(1), agent), "phase.changed"},
		{NewErrorOccurredEvent(agent, errors.New("x")), "error.occurred"},
		{NewSummaryReadyEvent(session.Summary{}), "summary.ready"},
		{NewDispatchStartedEvent(agent, false), "dispatch.started"},
		{NewDispatchFinishedEvent(agent, true, time.Second), "dispatch.finished"},
		{NewCatalogListedEvent("", nil, nil), "catalog.listed"},
		{NewNoticePostedEvent(NoticeHelp, "help"), "notice.posted"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.event.EventType(); got != tt.want {
				t.Errorf("EventType() = %q, want %q", got, tt.want)
			}
			if tt.event.Timestamp().IsZero() {
				t.Error("Timestamp() is zero")
			}
		})
	}
}

func TestAgentOf(t *testing.T) {
	sl := session.Slot{Ordinal: 1, Model: &catalog.Model{ID: "k2", Family: "Kimi", Name: "K2"}}
	got := AgentOf(sl)
	want := Agent{Slot: 1, Tag: "д", ModelID: "k2", Name: "Kimi K2"}
	if got != want {
		t.Errorf("AgentOf() = %+v, want %+v", got, want)
	}

	if empty := AgentOf(session.Slot{Ordinal: 8}); empty.Tag != "#8" || empty.Name != "" {
		t.Errorf("AgentOf(empty) = %+v", empty)
	}
}

func TestErrorOccurredEvent_Message(t *testing.T) {
	if msg := NewErrorOccurredEvent(Agent{}, nil).Message(); msg != "" {
		t.Errorf("Message() = %q for a nil error", msg)
	}
	if msg := NewErrorOccurredEvent(Agent{}, errors.New("boom")).Message(); msg != "boom" {
		t.Errorf("Message() = %q", msg)
	}
}
