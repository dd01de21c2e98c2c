// Package transcript records the turns of one conversational thread.
//
// A thread is either a slot's private 1:1 conversation or the shared debate.
// Turns are append-only and numbered in the order they were appended.
package transcript

import (
	"fmt"
	"time"
)

// Speaker identifies who authored a turn: the user, or an agent by slot ordinal.
type Speaker int

// User is the speaker of every turn typed by the person at the keyboard.
const User Speaker = 0

// Agent returns the speaker for a slot ordinal.
func Agent(slot int) Speaker {
	return Speaker(slot)
}

// IsUser reports whether the user authored the turn.
func (s Speaker) IsUser() bool {
	return s == User
}

// Slot returns the slot ordinal of an agent speaker, or 0 for the user.
func (s Speaker) Slot() int {
	return int(s)
}

func (s Speaker) String() string {
	if s.IsUser() {
		return "user"
	}
	return fmt.Sprintf("slot %d", int(s))
}

// Turn is one message in a thread. It is immutable once appended.
type Turn struct {
	Seq          int // 1-based position within its transcript, assigned on append
	Speaker      Speaker
	Text         string
	InputTokens  int64
	OutputTokens int64
	// Origin is the slot whose private thread the turn was promoted from,
	// or 0 if it was authored in this thread.
	Origin int
	// Question is the directed question an /ask reply answers.
	Question string
	Time     time.Time
}

// Transcript is an ordered, append-only sequence of turns owned by one thread.
type Transcript struct {
	owner int // slot ordinal for a private thread, 0 for the debate
	turns []Turn
	now   func() time.Time
}

// NewPrivate creates the private thread of a slot.
func NewPrivate(slot int) *Transcript {
	return &Transcript{owner: slot, now: time.Now}
}

// NewDebate creates the shared debate thread.
func NewDebate() *Transcript {
	return &Transcript{now: time.Now}
}

// Owner returns the owning slot, or 0 for the debate thread.
func (t *Transcript) Owner() int {
	return t.owner
}

// IsPrivate reports whether the transcript belongs to a single slot.
func (t *Transcript) IsPrivate() bool {
	return t.owner != 0
}

// Append stores a turn and returns it with its sequence number set. A private
// thread only accepts turns from the user and its own slot.
func (t *Transcript) Append(turn Turn) (Turn, error) {
	if t.IsPrivate() && !turn.Speaker.IsUser() && turn.Speaker.Slot() != t.owner {
		return Turn{}, fmt.Errorf("transcript: %s cannot speak in the private thread of slot %d", turn.Speaker, t.owner)
	}
	if turn.Time.IsZero() {
		turn.Time = t.now()
	}
	if n := len(t.turns); n > 0 && turn.Time.Before(t.turns[n-1].Time) {
		turn.Time = t.turns[n-1].Time
	}
	turn.Seq = len(t.turns) + 1
	t.turns = append(t.turns, turn)
	return turn, nil
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Turns returns a copy of every turn in order.
func (t *Transcript) Turns() []Turn {
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Tail returns a copy of the last n turns (all of them if n >= Len).
func (t *Transcript) Tail(n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := len(t.turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(t.turns)-start)
	copy(out, t.turns[start:])
	return out
}

// From returns a copy of the turns with Seq >= seq.
func (t *Transcript) From(seq int) []Turn {
	if seq < 1 {
		seq = 1
	}
	if seq > len(t.turns) {
		return nil
	}
	out := make([]Turn, len(t.turns)-seq+1)
	copy(out, t.turns[seq-1:])
	return out
}

// Last returns the most recent turn.
func (t *Transcript) Last() (Turn, bool) {
	if len(t.turns) == 0 {
		return Turn{}, false
	}
	return t.turns[len(t.turns)-1], true
}

// Tokens sums the input and output tokens recorded on the turns.
func (t *Transcript) Tokens() (input, output int64) {
	for _, turn := range t.turns {
		input += turn.InputTokens
		output += turn.OutputTokens
	}
	return input, output
}
