package session

import "fmt"

// Kind enumerates the phases of a chat.
type Kind int

const (
	// KindSetup is the initial phase: slots are assigned and edited.
	KindSetup Kind = iota
	// KindPrivate is a 1:1 conversation with one slot.
	KindPrivate
	// KindDebate is the shared group conversation.
	KindDebate
	// KindEnded is terminal; nothing is accepted any more.
	KindEnded
)

// String returns the lower-case name used in logs and messages.
func (k Kind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindPrivate:
		return "private"
	case KindDebate:
		return "debate"
	case KindEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Phase is the tagged phase value. Only KindPrivate carries a slot.
type Phase struct {
	kind Kind
	slot int
}

// Setup returns the setup phase.
func Setup() Phase { return Phase{kind: KindSetup} }

// Private returns the private phase for a slot ordinal.
func Private(slot int) Phase { return Phase{kind: KindPrivate, slot: slot} }

// Debate returns the debate phase.
func Debate() Phase { return Phase{kind: KindDebate} }

// Ended returns the terminal phase.
func Ended() Phase { return Phase{kind: KindEnded} }

// Kind returns the phase tag.
func (p Phase) Kind() Kind { return p.kind }

// Slot returns the slot of a private phase, or 0.
func (p Phase) Slot() int { return p.slot }

// Is reports whether the phase has the given kind.
func (p Phase) Is(k Kind) bool { return p.kind == k }

// String renders the phase, e.g. "private(2)".
func (p Phase) String() string {
	if p.kind == KindPrivate {
		return fmt.Sprintf("private(%d)", p.slot)
	}
	return p.kind.String()
}
