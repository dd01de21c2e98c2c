// Package session holds the mutable state of one chat: the phase, the slots
// and their models, the private and debate transcripts, the original prompt
// and the usage counters.
//
// A State is owned by the debate controller and is not safe for concurrent
// use. Every method that rejects an operation leaves the state unchanged.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/transcript"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultMaxSlots = 5
	DefaultRounds   = 1
	MinRounds       = 1
	MaxRounds       = 5
)

// Options configures a new State.
type Options struct {
	MaxSlots int
	Rounds   int
	// Staged routes /start through a private phase per slot when two or
	// more slots are occupied. When false every slot goes straight to the
	// debate.
	Staged bool
	Now    func() time.Time
}

// State is the single source of truth for a chat.
type State struct {
	catalog *catalog.Catalog
	now     func() time.Time

	phase   Phase
	slots   []Slot // index i holds ordinal i+1
	private map[int]*transcript.Transcript
	debate  *transcript.Transcript

	prompt    string
	promptSet bool
	// heard holds the slots that have replied in the debate at least once.
	heard map[int]bool

	rounds             int
	staged             bool
	conversationRounds int
	usage              map[int]*Usage
	started            time.Time
}

// New creates an empty session in the Setup phase.
func New(cat *catalog.Catalog, opts Options) *State {
	if opts.MaxSlots <= 0 {
		opts.MaxSlots = DefaultMaxSlots
	}
	if opts.Rounds < MinRounds || opts.Rounds > MaxRounds {
		opts.Rounds = DefaultRounds
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	slots := make([]Slot, opts.MaxSlots)
	for i := range slots {
		slots[i] = Slot{Ordinal: i + 1}
	}

	return &State{
		catalog: cat,
		now:     opts.Now,
		phase:   Setup(),
		slots:   slots,
		private: make(map[int]*transcript.Transcript),
		debate:  transcript.NewDebate(),
		heard:   make(map[int]bool),
		rounds:  opts.Rounds,
		staged:  opts.Staged,
		usage:   make(map[int]*Usage),
		started: opts.Now(),
	}
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return s.phase
}

// Catalog returns the catalog the session resolves against.
func (s *State) Catalog() *catalog.Catalog {
	return s.catalog
}

// MaxSlots returns the number of slots.
func (s *State) MaxSlots() int {
	return len(s.slots)
}

// Slots returns a copy of every slot, occupied or not, in ordinal order.
func (s *State) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Slot returns the slot with the given ordinal.
func (s *State) Slot(ordinal int) (Slot, bool) {
	if ordinal < 1 || ordinal > len(s.slots) {
		return Slot{}, false
	}
	return s.slots[ordinal-1], true
}

// OccupiedSlots returns the slots bound to a model, in ordinal order.
func (s *State) OccupiedSlots() []Slot {
	return s.filter(func(sl Slot) bool { return sl.Occupied() })
}

// ActiveSlots returns the slots taking part in debate rounds, in ordinal order.
func (s *State) ActiveSlots() []Slot {
	return s.filter(func(sl Slot) bool { return sl.Occupied() && sl.Status == StatusActive })
}

func (s *State) filter(keep func(Slot) bool) []Slot {
	var out []Slot
	for _, sl := range s.slots {
		if keep(sl) {
			out = append(out, sl)
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Setup
// -----------------------------------------------------------------------------

// Assign binds the model matching query to a slot. Assigning the model a slot
// already holds is a no-op; assigning a model held by another slot fails
// with a DuplicateError.
func (s *State) Assign(ordinal int, query string) (Slot, error) {
	if !s.phase.Is(KindSetup) {
		return Slot{}, errors.NewPhaseError("/model", s.phase.String())
	}
	if ordinal < 1 || ordinal > len(s.slots) {
		return Slot{}, errors.NewValidationError(fmt.Sprintf("slot must be between 1 and %d", len(s.slots))).
			WithField("slot").WithValue(ordinal)
	}

	m, err := s.catalog.Resolve(query)
	if err != nil {
		return Slot{}, err
	}

	for _, sl := range s.slots {
		if sl.Model == nil || sl.Model.ID != m.ID {
			continue
		}
		if sl.Ordinal == ordinal {
			return sl, nil
		}
		return Slot{}, errors.NewDuplicateError(m.ID, sl.Ordinal)
	}

	s.slots[ordinal-1].Model = m
	s.slots[ordinal-1].Status = StatusPending
	return s.slots[ordinal-1], nil
}

// AssignNext binds the model matching query to the lowest empty slot.
func (s *State) AssignNext(query string) (Slot, error) {
	if !s.phase.Is(KindSetup) {
		return Slot{}, errors.NewPhaseError("/model", s.phase.String())
	}
	for _, sl := range s.slots {
		if !sl.Occupied() {
			return s.Assign(sl.Ordinal, query)
		}
	}
	return Slot{}, errors.NewValidationError(fmt.Sprintf("all %d slots are occupied", len(s.slots))).
		WithField("slot")
}

// Remove empties the slot named by query: an ordinal, or a model query
// resolved against the session's occupied models.
func (s *State) Remove(query string) (Slot, error) {
	if !s.phase.Is(KindSetup) {
		return Slot{}, errors.NewPhaseError("/remove", s.phase.String())
	}
	sl, err := s.FindSlot(query, Slot.Occupied)
	if err != nil {
		return Slot{}, err
	}
	s.slots[sl.Ordinal-1] = Slot{Ordinal: sl.Ordinal}
	return sl, nil
}

// FindSlot resolves query to one of the slots accepted by keep. A query that
// parses as an integer names a slot ordinal; anything else is resolved as a
// model query against the models of the accepted slots.
func (s *State) FindSlot(query string, keep func(Slot) bool) (Slot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Slot{}, errors.NewValidationError("a slot number or model name is required")
	}

	candidates := s.filter(func(sl Slot) bool { return sl.Occupied() && keep(sl) })

	if n, err := strconv.Atoi(query); err == nil {
		for _, sl := range candidates {
			if sl.Ordinal == n {
				return sl, nil
			}
		}
		return Slot{}, errors.NewNotFoundError("slot", query)
	}

	models := make([]*catalog.Model, len(candidates))
	for i, sl := range candidates {
		models[i] = sl.Model
	}
	m, err := s.catalog.Subset(models...).Resolve(query)
	if err != nil {
		return Slot{}, err
	}
	for _, sl := range candidates {
		if sl.Model.ID == m.ID {
			return sl, nil
		}
	}
	return Slot{}, errors.NewNotFoundError("slot", query)
}

// -----------------------------------------------------------------------------
// Phase transitions
// -----------------------------------------------------------------------------

// Start leaves Setup. With two or more occupied slots and a staged flow the
// chat enters the private phase of the first slot; otherwise every occupied
// slot becomes active and the debate begins.
func (s *State) Start() (Phase, error) {
	if !s.phase.Is(KindSetup) {
		return s.phase, errors.NewPhaseError("/start", s.phase.String())
	}
	occupied := s.OccupiedSlots()
	if len(occupied) == 0 {
		return s.phase, errors.NewValidationError("assign at least one model before /start").
			WithField("slots")
	}

	s.started = s.now()
	if s.staged && len(occupied) >= 2 {
		for _, sl := range occupied {
			s.slots[sl.Ordinal-1].Status = StatusPending
		}
		s.enterPrivate(occupied[0].Ordinal)
		return s.phase, nil
	}

	for _, sl := range occupied {
		s.slots[sl.Ordinal-1].Status = StatusActive
	}
	s.enterDebate()
	return s.phase, nil
}

// SetOriginalPrompt records the first free text of the chat. It seeds the
// debate transcript and, in a private phase, the current private transcript.
func (s *State) SetOriginalPrompt(text string) error {
	if s.promptSet {
		return errors.NewValidationError("original prompt is already set")
	}
	if s.phase.Is(KindSetup) || s.phase.Is(KindEnded) {
		return errors.NewPhaseError("prompt", s.phase.String()).WithHint("use /start")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.NewValidationError("original prompt must not be empty")
	}

	s.prompt = text
	s.promptSet = true
	if _, err := s.debate.Append(transcript.Turn{Speaker: transcript.User, Text: text, Time: s.now()}); err != nil {
		return err
	}
	if s.phase.Is(KindPrivate) {
		if t, ok := s.private[s.phase.Slot()]; ok && t.Len() == 0 {
			s.seed(t)
		}
	}
	return nil
}

// OriginalPrompt returns the original prompt and whether it has been set.
func (s *State) OriginalPrompt() (string, bool) {
	return s.prompt, s.promptSet
}

// PrivateTranscript returns the private thread of a slot, if it has one.
func (s *State) PrivateTranscript(slot int) (*transcript.Transcript, bool) {
	t, ok := s.private[slot]
	return t, ok
}

// DebateTranscript returns the shared thread.
func (s *State) DebateTranscript() *transcript.Transcript {
	return s.debate
}

// Restart discards the current private thread and reseeds it with the
// original prompt.
func (s *State) Restart() (*transcript.Transcript, error) {
	slot, err := s.requirePrivatePrompt("/restart")
	if err != nil {
		return nil, err
	}
	t := transcript.NewPrivate(slot)
	s.seed(t)
	s.private[slot] = t
	return t, nil
}

// Promote appends the current private thread, minus its seed turn, to the
// debate transcript with its origin set, marks the slot active and advances
// to the next pending slot or to the debate.
func (s *State) Promote() (Phase, error) {
	slot, err := s.requirePrivatePrompt("/promote")
	if err != nil {
		return s.phase, err
	}

	turns := s.private[slot].From(2)
	for _, turn := range turns {
		turn.Origin = slot
		if _, err := s.debate.Append(turn); err != nil {
			return s.phase, err
		}
	}

	s.slots[slot-1].Status = StatusActive
	delete(s.private, slot)
	s.advance(slot)
	return s.phase, nil
}

// Boot removes a slot from participation. In a private phase, booting the
// current slot discards its thread and advances; booting another slot leaves
// the phase unchanged. In the debate the slot's recorded turns stay.
func (s *State) Boot(slot int) (Phase, error) {
	switch s.phase.Kind() {
	case KindPrivate, KindDebate:
	default:
		return s.phase, errors.NewPhaseError("/boot", s.phase.String())
	}

	sl, ok := s.Slot(slot)
	if !ok || !sl.Occupied() {
		return s.phase, errors.NewNotFoundError("slot", strconv.Itoa(slot))
	}
	if sl.Status == StatusBooted {
		return s.phase, errors.NewValidationError("slot is already booted").WithField("slot").WithValue(slot)
	}
	if s.phase.Is(KindDebate) && sl.Status != StatusActive {
		return s.phase, errors.NewValidationError("slot is not active").WithField("slot").WithValue(slot)
	}

	s.slots[slot-1].Status = StatusBooted
	delete(s.private, slot)
	if s.phase.Is(KindPrivate) && s.phase.Slot() == slot {
		s.advance(slot)
	}
	return s.phase, nil
}

// End moves the session to the terminal phase and returns the final summary.
func (s *State) End() Summary {
	s.phase = Ended()
	return s.Summary(true)
}

// NextPending returns the first pending occupied slot after the given
// ordinal.
func (s *State) NextPending(after int) (Slot, bool) {
	for _, sl := range s.slots {
		if sl.Ordinal > after && sl.Occupied() && sl.Status == StatusPending {
			return sl, true
		}
	}
	return Slot{}, false
}

// Opening reports whether slot has yet to reply in the debate. Until it does,
// it is sent the whole debate thread.
func (s *State) Opening(slot int) bool {
	return !s.heard[slot]
}

// CloseOpening records the first debate reply of slot; from then on it sees
// a bounded tail.
func (s *State) CloseOpening(slot int) {
	s.heard[slot] = true
}

func (s *State) requirePrivatePrompt(command string) (int, error) {
	if !s.phase.Is(KindPrivate) {
		return 0, errors.NewPhaseError(command, s.phase.String())
	}
	if !s.promptSet {
		return 0, errors.NewPhaseError(command, s.phase.String()).WithHint("send the prompt first")
	}
	return s.phase.Slot(), nil
}

func (s *State) advance(from int) {
	if next, ok := s.NextPending(from); ok {
		s.enterPrivate(next.Ordinal)
		return
	}
	// Slots skipped earlier in ordinal order are still owed a private phase.
	if next, ok := s.NextPending(0); ok {
		s.enterPrivate(next.Ordinal)
		return
	}
	s.enterDebate()
}

func (s *State) enterPrivate(slot int) {
	t := transcript.NewPrivate(slot)
	if s.promptSet {
		s.seed(t)
	}
	s.private[slot] = t
	s.phase = Private(slot)
}

func (s *State) enterDebate() {
	s.phase = Debate()
}

func (s *State) seed(t *transcript.Transcript) {
	// Append cannot fail for a user turn.
	_, _ = t.Append(transcript.Turn{Speaker: transcript.User, Text: s.prompt, Time: s.now()})
}

// -----------------------------------------------------------------------------
// Rounds and usage
// -----------------------------------------------------------------------------

// Rounds returns how many passes a debate cycle makes over the active slots.
func (s *State) Rounds() int {
	return s.rounds
}

// SetRounds changes the passes per debate cycle.
func (s *State) SetRounds(n int) error {
	if n < MinRounds || n > MaxRounds {
		return errors.NewValidationError(fmt.Sprintf("rounds must be between %d and %d", MinRounds, MaxRounds)).
			WithField("rounds").WithValue(n)
	}
	s.rounds = n
	return nil
}

// RecordUsage adds one successful call's tokens and latency to a slot.
func (s *State) RecordUsage(slot int, inputTokens, outputTokens int64, elapsed time.Duration) {
	u := s.usageFor(slot)
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.Calls++
	u.Elapsed += elapsed
}

// AddRound credits a slot with one round contribution.
func (s *State) AddRound(slot int) {
	s.usageFor(slot).Rounds++
}

// CompleteRound counts one finished debate cycle.
func (s *State) CompleteRound() {
	s.conversationRounds++
}

// ConversationRounds returns the number of finished debate cycles.
func (s *State) ConversationRounds() int {
	return s.conversationRounds
}

// Usage returns a copy of a slot's counters.
func (s *State) Usage(slot int) Usage {
	if u, ok := s.usage[slot]; ok {
		return *u
	}
	return Usage{}
}

func (s *State) usageFor(slot int) *Usage {
	u, ok := s.usage[slot]
	if !ok {
		u = &Usage{}
		s.usage[slot] = u
	}
	return u
}

// StartedAt returns when the chat left Setup, or when the state was created
// if it has not.
func (s *State) StartedAt() time.Time {
	return s.started
}
