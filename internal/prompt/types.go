// Package prompt assembles the message list sent to one agent.
//
// The Assembler reads the session state and renders either a slot's private
// thread or the debate thread from that slot's point of view. It never
// mutates the state: preambles, nudges and directed questions exist only in
// the returned Request.
package prompt

import (
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
)

// Role is the chat role of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a request.
type Message struct {
	Role    Role
	Content string
}

// Request is the assembled context for one agent call.
type Request struct {
	Preamble string
	Messages []Message
}

// Nudge is the user message that drives a debate round triggered without text.
const Nudge = "Continue the discussion. Share your thoughts on the topic or respond to what other agents have said."

// WithNudge returns a copy of r ending with the nudge message.
func (r Request) WithNudge() Request {
	return r.WithUserMessage(Nudge)
}

// WithUserMessage returns a copy of r with one more user message.
func (r Request) WithUserMessage(text string) Request {
	msgs := make([]Message, len(r.Messages), len(r.Messages)+1)
	copy(msgs, r.Messages)
	r.Messages = append(msgs, Message{Role: RoleUser, Content: text})
	return r
}

// Source is the read-only view of a session the assembler needs.
// *session.State satisfies it.
type Source interface {
	OriginalPrompt() (string, bool)
	Slot(ordinal int) (session.Slot, bool)
	OccupiedSlots() []session.Slot
	ActiveSlots() []session.Slot
	PrivateTranscript(slot int) (*transcript.Transcript, bool)
	DebateTranscript() *transcript.Transcript
	Opening(slot int) bool
}
