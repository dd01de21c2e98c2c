package prompt

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
)

// WindowFactor scales the ongoing debate window: an agent sees the last
// WindowFactor*(active+1) debate turns.
const WindowFactor = 3

// Assembler builds requests from session state.
type Assembler struct {
	// preamble replaces the built-in preambles when non-empty.
	preamble string
}

// NewAssembler creates an Assembler. A non-empty preamble overrides the
// built-in single and multi-party preambles.
func NewAssembler(preamble string) *Assembler {
	return &Assembler{preamble: strings.TrimSpace(preamble)}
}

// Private renders a slot's private thread: the original prompt followed by
// the exchange so far. With other models still in the chat the agent gets the
// multi-party preamble, so it knows its answer will be weighed against theirs.
func (a *Assembler) Private(src Source, slot int) (Request, error) {
	if _, ok := src.OriginalPrompt(); !ok {
		return Request{}, fmt.Errorf("private context for slot %d: %w", slot, errors.ErrEmptyContext)
	}
	t, ok := src.PrivateTranscript(slot)
	if !ok || t.Len() == 0 {
		return Request{}, fmt.Errorf("slot %d has no private thread: %w", slot, errors.ErrEmptyContext)
	}

	req := Request{Preamble: a.preambleFor(src, slot, participants(src))}
	for _, turn := range t.Turns() {
		role := RoleUser
		if !turn.Speaker.IsUser() {
			role = RoleAssistant
		}
		req.Messages = append(req.Messages, Message{Role: role, Content: turn.Text})
	}
	return req, nil
}

// Debate renders the debate thread for a slot. Until the slot has replied in
// the debate the whole thread is sent; afterwards only the last
// WindowFactor*(active+1) turns.
func (a *Assembler) Debate(src Source, slot int) (Request, error) {
	if _, ok := src.OriginalPrompt(); !ok {
		return Request{}, fmt.Errorf("debate context for slot %d: %w", slot, errors.ErrEmptyContext)
	}

	active := src.ActiveSlots()
	d := src.DebateTranscript()

	var turns []transcript.Turn
	if src.Opening(slot) {
		turns = d.Turns()
	} else {
		turns = d.Tail(Window(len(active)))
	}

	req := Request{Preamble: a.preambleFor(src, slot, active)}
	for _, turn := range turns {
		req.Messages = append(req.Messages, a.render(src, slot, turn)...)
	}
	return req, nil
}

// Window returns the number of debate turns sent once the opening is over.
func Window(active int) int {
	return WindowFactor * (active + 1)
}

// render converts one debate turn into messages as seen by slot.
func (a *Assembler) render(src Source, slot int, turn transcript.Turn) []Message {
	if turn.Speaker.IsUser() {
		if turn.Origin != 0 && turn.Origin != slot {
			return []Message{{Role: RoleUser, Content: fmt.Sprintf("[User to %s]: %s", name(src, turn.Origin), turn.Text)}}
		}
		return []Message{{Role: RoleUser, Content: turn.Text}}
	}

	speaker := turn.Speaker.Slot()
	if speaker == slot {
		if turn.Question != "" {
			return []Message{
				{Role: RoleUser, Content: turn.Question},
				{Role: RoleAssistant, Content: turn.Text},
			}
		}
		return []Message{{Role: RoleAssistant, Content: turn.Text}}
	}

	var sb strings.Builder
	if turn.Question != "" {
		fmt.Fprintf(&sb, "[User to %s]: %s\n", name(src, speaker), turn.Question)
	}
	fmt.Fprintf(&sb, "[%s]: %s", name(src, speaker), turn.Text)
	return []Message{{Role: RoleUser, Content: sb.String()}}
}

func name(src Source, ordinal int) string {
	sl, ok := src.Slot(ordinal)
	if !ok || !sl.Occupied() {
		return fmt.Sprintf("Agent %d", ordinal)
	}
	return sl.Model.DisplayName()
}

// participants returns the occupied slots that have not been booted.
func participants(src Source) []session.Slot {
	var out []session.Slot
	for _, sl := range src.OccupiedSlots() {
		if sl.Status != session.StatusBooted {
			out = append(out, sl)
		}
	}
	return out
}

// preambleFor picks the multi-party preamble when the target has at least one
// peer in group.
func (a *Assembler) preambleFor(src Source, slot int, group []session.Slot) string {
	if a.preamble != "" {
		return a.preamble
	}

	var peers []string
	for _, sl := range group {
		if sl.Ordinal != slot {
			peers = append(peers, sl.Model.DisplayName())
		}
	}
	if len(peers) == 0 {
		return singlePreamble
	}
	return MultiPartyPreamble(name(src, slot), peers)
}

const singlePreamble = "You are a helpful assistant that answers questions accurately and concisely. " +
	"Be straightforward in your responses. Do not use emojis, bold text, italics, or other stylistic formatting."

// MultiPartyPreamble renders the debate preamble for agent self with the
// given peers.
func MultiPartyPreamble(self string, peers []string) string {
	list := strings.Join(peers, ", ")

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, taking part in a live discussion with a user and these other AI assistants: %s.\n\n", self, list)
	fmt.Fprintf(&sb, "There are %d agents in total, including you. ", len(peers)+1)
	sb.WriteString("Messages from other agents appear in the history prefixed with their name in brackets. ")
	sb.WriteString("Messages prefixed [User to Name] were addressed to that agent alone.\n\n")
	sb.WriteString("Guidelines:\n")
	sb.WriteString("- Review what the other agents said before answering\n")
	sb.WriteString("- When you disagree with another agent, say so and give your rationale explicitly\n")
	sb.WriteString("- Build on earlier points instead of repeating them\n")
	sb.WriteString("- Say \"I don't know\" rather than guessing\n")
	sb.WriteString("- Never write responses on behalf of the other agents\n")
	sb.WriteString("- Be concise and avoid stylized formatting\n")
	return sb.String()
}
