package event

import (
	"time"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
)

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "turn.produced", "phase.changed")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeTurnProduced     = "turn.produced"
	TypePhaseChanged     = "phase.changed"
	TypeErrorOccurred    = "error.occurred"
	TypeSummaryReady     = "summary.ready"
	TypeDispatchStarted  = "dispatch.started"
	TypeDispatchFinished = "dispatch.finished"
	TypeCatalogListed    = "catalog.listed"
	TypeNoticePosted     = "notice.posted"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Agent identifies the slot an event concerns.
type Agent struct {
	Slot    int
	Tag     string
	ModelID string
	Name    string
}

// AgentOf describes a slot for rendering. Empty slots yield a zero Agent
// carrying only the ordinal.
func AgentOf(sl session.Slot) Agent {
	a := Agent{Slot: sl.Ordinal, Tag: sl.Tag()}
	if sl.Model != nil {
		a.ModelID = sl.Model.ID
		a.Name = sl.Model.DisplayName()
	}
	return a
}

// -----------------------------------------------------------------------------
// Conversation Events
// -----------------------------------------------------------------------------

// TurnProducedEvent is emitted when a turn is appended to a transcript.
type TurnProducedEvent struct {
	baseEvent
	// Private is set for turns of a slot's 1:1 thread.
	Private bool
	// Agent is the speaker; zero for user turns.
	Agent Agent
	Turn  transcript.Turn
}

// NewTurnProducedEvent creates a TurnProducedEvent.
func NewTurnProducedEvent(private bool, agent Agent, turn transcript.Turn) TurnProducedEvent {
	return TurnProducedEvent{
		baseEvent: newBaseEvent(TypeTurnProduced),
		Private:   private,
		Agent:     agent,
		Turn:      turn,
	}
}

// PhaseChangedEvent is emitted on every phase transition.
type PhaseChangedEvent struct {
	baseEvent
	SessionID string
	Previous  session.Phase
	Current   session.Phase
	// Agent is the slot of a private phase; zero otherwise.
	Agent Agent
}

// NewPhaseChangedEvent creates a PhaseChangedEvent.
func NewPhaseChangedEvent(sessionID string, previous, current session.Phase, agent Agent) PhaseChangedEvent {
	return PhaseChangedEvent{
		baseEvent: newBaseEvent(TypePhaseChanged),
		SessionID: sessionID,
		Previous:  previous,
		Current:   current,
		Agent:     agent,
	}
}

// ErrorOccurredEvent is emitted for failures shown to the user, whether a
// rejected command or a failed dispatch that the round skipped.
type ErrorOccurredEvent struct {
	baseEvent
	// Agent is set when the failure belongs to one slot.
	Agent Agent
	Err   error
}

// NewErrorOccurredEvent creates an ErrorOccurredEvent.
func NewErrorOccurredEvent(agent Agent, err error) ErrorOccurredEvent {
	return ErrorOccurredEvent{
		baseEvent: newBaseEvent(TypeErrorOccurred),
		Agent:     agent,
		Err:       err,
	}
}

// Message returns the error text, or an empty string.
func (e ErrorOccurredEvent) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// SummaryReadyEvent carries an interim (/stats) or final (/exit) summary.
type SummaryReadyEvent struct {
	baseEvent
	Summary session.Summary
}

// NewSummaryReadyEvent creates a SummaryReadyEvent.
func NewSummaryReadyEvent(summary session.Summary) SummaryReadyEvent {
	return SummaryReadyEvent{
		baseEvent: newBaseEvent(TypeSummaryReady),
		Summary:   summary,
	}
}

// -----------------------------------------------------------------------------
// Dispatch Events
// -----------------------------------------------------------------------------

// DispatchStartedEvent is emitted before an agent is called.
type DispatchStartedEvent struct {
	baseEvent
	Agent   Agent
	Private bool
}

// NewDispatchStartedEvent creates a DispatchStartedEvent.
func NewDispatchStartedEvent(agent Agent, private bool) DispatchStartedEvent {
	return DispatchStartedEvent{
		baseEvent: newBaseEvent(TypeDispatchStarted),
		Agent:     agent,
		Private:   private,
	}
}

// DispatchFinishedEvent is emitted after an agent call returns.
type DispatchFinishedEvent struct {
	baseEvent
	Agent   Agent
	Success bool
	Elapsed time.Duration
}

// NewDispatchFinishedEvent creates a DispatchFinishedEvent.
func NewDispatchFinishedEvent(agent Agent, success bool, elapsed time.Duration) DispatchFinishedEvent {
	return DispatchFinishedEvent{
		baseEvent: newBaseEvent(TypeDispatchFinished),
		Agent:     agent,
		Success:   success,
		Elapsed:   elapsed,
	}
}

// -----------------------------------------------------------------------------
// Informational Events
// -----------------------------------------------------------------------------

// CatalogListedEvent answers /list.
type CatalogListedEvent struct {
	baseEvent
	Pattern string
	Models  []*catalog.Model
	// Assigned maps model IDs to the slot holding them.
	Assigned map[string]int
}

// NewCatalogListedEvent creates a CatalogListedEvent.
func NewCatalogListedEvent(pattern string, models []*catalog.Model, assigned map[string]int) CatalogListedEvent {
	return CatalogListedEvent{
		baseEvent: newBaseEvent(TypeCatalogListed),
		Pattern:   pattern,
		Models:    models,
		Assigned:  assigned,
	}
}

// NoticeKind classifies a notice for styling.
type NoticeKind string

const (
	NoticeInfo  NoticeKind = "info"
	NoticeHelp  NoticeKind = "help"
	NoticeSlots NoticeKind = "slots"
)

// NoticePostedEvent carries informational text such as command help or
// slot assignments.
type NoticePostedEvent struct {
	baseEvent
	Kind NoticeKind
	Text string
}

// NewNoticePostedEvent creates a NoticePostedEvent.
func NewNoticePostedEvent(kind NoticeKind, text string) NoticePostedEvent {
	return NoticePostedEvent{
		baseEvent: newBaseEvent(TypeNoticePosted),
		Kind:      kind,
		Text:      text,
	}
}
