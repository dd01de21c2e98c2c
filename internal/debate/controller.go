package debate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/dispatch"
	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/logging"
	"github.com/Iron-Ham/superchat/internal/prompt"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
	"github.com/Iron-Ham/superchat/internal/tui/command"
)

// Config wires a Controller.
type Config struct {
	Catalog    *catalog.Catalog
	Session    session.Options
	Preamble   string
	Dispatcher *dispatch.Dispatcher
	Bus        *event.Bus
	Logger     *logging.Logger
}

// Controller owns the session state and reacts to input lines.
type Controller struct {
	id         string
	state      *session.State
	assembler  *prompt.Assembler
	dispatcher *dispatch.Dispatcher
	bus        *event.Bus
	logger     *logging.Logger
	commands   map[string]commandEntry
}

// NewController creates a controller in the Setup phase. The dispatcher's
// usage is recorded into the new session.
func NewController(cfg Config) *Controller {
	id := uuid.NewString()

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	logger = logger.WithSession(id)

	bus := cfg.Bus
	if bus == nil {
		bus = event.NewBus()
	}

	state := session.New(cfg.Catalog, cfg.Session)
	if cfg.Dispatcher != nil {
		cfg.Dispatcher.SetRecorder(state)
	}

	c := &Controller{
		id:         id,
		state:      state,
		assembler:  prompt.NewAssembler(cfg.Preamble),
		dispatcher: cfg.Dispatcher,
		bus:        bus,
		logger:     logger,
	}
	c.registerCommands()

	logger.Info("session created",
		"max_slots", state.MaxSlots(),
		"rounds", state.Rounds(),
		"staged", cfg.Session.Staged)
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// State exposes the session for read-only inspection.
func (c *Controller) State() *session.State {
	return c.state
}

// Bus returns the bus events are published on.
func (c *Controller) Bus() *event.Bus {
	return c.bus
}

// Done reports whether the chat has ended.
func (c *Controller) Done() bool {
	return c.state.Phase().Is(session.KindEnded)
}

// Handle parses and processes one input line.
func (c *Controller) Handle(ctx context.Context, line string) error {
	return c.HandleInput(ctx, command.Parse(line))
}

// HandleInput processes one parsed line. A returned error means the input was
// rejected and the state is unchanged, except for an error wrapping
// errors.ErrCanceled: the round stopped early and keeps the user turn and the
// replies recorded before the cancellation.
func (c *Controller) HandleInput(ctx context.Context, in command.Input) error {
	phase := c.state.Phase()
	if phase.Is(session.KindEnded) {
		return errors.NewPhaseError(describe(in), phase.String())
	}

	var err error
	switch in.Kind {
	case command.KindEmpty:
		err = c.handleEmpty(ctx)
	case command.KindText:
		err = c.handleText(ctx, in.Text)
	case command.KindCommand:
		err = c.handleCommand(ctx, in)
	}

	if err != nil {
		log := c.logger.WithPhase(phase.String())
		if errors.IsUserFacing(err) {
			log.Debug("input rejected", "input", describe(in), "error", err.Error())
		} else {
			log.Error("input failed", "input", describe(in), "error", err.Error())
		}
	}
	return err
}

func describe(in command.Input) string {
	switch in.Kind {
	case command.KindCommand:
		return in.Command()
	case command.KindEmpty:
		return "empty input"
	default:
		return "text"
	}
}

// -----------------------------------------------------------------------------
// Free text and empty input
// -----------------------------------------------------------------------------

func (c *Controller) handleText(ctx context.Context, text string) error {
	phase := c.state.Phase()
	switch phase.Kind() {
	case session.KindPrivate:
		slot := phase.Slot()
		if _, set := c.state.OriginalPrompt(); !set {
			if err := c.setPrompt(text); err != nil {
				return err
			}
		} else if err := c.appendPrivate(slot, transcript.Turn{Speaker: transcript.User, Text: text}); err != nil {
			return err
		}
		c.sendPrivate(ctx, slot)
		return nil

	case session.KindDebate:
		if len(c.state.ActiveSlots()) == 0 {
			return errors.ErrNoActiveAgents
		}
		if _, set := c.state.OriginalPrompt(); !set {
			if err := c.setPrompt(text); err != nil {
				return err
			}
		} else if err := c.appendDebate(transcript.Turn{Speaker: transcript.User, Text: text}); err != nil {
			return err
		}
		return c.runCycle(ctx, false)

	default:
		return errors.NewPhaseError("text", phase.String()).WithHint("use /start")
	}
}

func (c *Controller) handleEmpty(ctx context.Context) error {
	phase := c.state.Phase()
	switch phase.Kind() {
	case session.KindPrivate:
		if _, set := c.state.OriginalPrompt(); !set {
			return nil
		}
		t, ok := c.state.PrivateTranscript(phase.Slot())
		if !ok {
			return nil
		}
		if last, ok := t.Last(); ok && last.Speaker.IsUser() {
			c.sendPrivate(ctx, phase.Slot())
		}
		return nil

	case session.KindDebate:
		if _, set := c.state.OriginalPrompt(); !set {
			return nil
		}
		if len(c.state.ActiveSlots()) == 0 {
			return errors.ErrNoActiveAgents
		}
		return c.runCycle(ctx, true)

	default:
		return nil
	}
}

// setPrompt records the original prompt and shows it as a user turn of the
// thread the user is looking at.
func (c *Controller) setPrompt(text string) error {
	if err := c.state.SetOriginalPrompt(text); err != nil {
		return err
	}
	phase := c.state.Phase()
	c.logger.Info("original prompt set", "phase", phase.String(), "length", len(text))

	if phase.Is(session.KindPrivate) {
		if t, ok := c.state.PrivateTranscript(phase.Slot()); ok {
			if seed, ok := t.Last(); ok {
				c.bus.Publish(event.NewTurnProducedEvent(true, event.Agent{}, seed))
			}
		}
		return nil
	}
	if seed, ok := c.state.DebateTranscript().Last(); ok {
		c.bus.Publish(event.NewTurnProducedEvent(false, event.Agent{}, seed))
	}
	return nil
}

func (c *Controller) appendPrivate(slot int, turn transcript.Turn) error {
	t, ok := c.state.PrivateTranscript(slot)
	if !ok {
		return fmt.Errorf("slot %d has no private thread: %w", slot, errors.ErrEmptyContext)
	}
	stored, err := t.Append(turn)
	if err != nil {
		return err
	}
	c.bus.Publish(event.NewTurnProducedEvent(true, c.agent(turn.Speaker.Slot()), stored))
	return nil
}

func (c *Controller) appendDebate(turn transcript.Turn) error {
	stored, err := c.state.DebateTranscript().Append(turn)
	if err != nil {
		return err
	}
	c.bus.Publish(event.NewTurnProducedEvent(false, c.agent(turn.Speaker.Slot()), stored))
	return nil
}

// agent describes a slot for events; ordinal 0 is the user.
func (c *Controller) agent(ordinal int) event.Agent {
	if ordinal == 0 {
		return event.Agent{}
	}
	sl, _ := c.state.Slot(ordinal)
	return event.AgentOf(sl)
}

// -----------------------------------------------------------------------------
// Agent calls
// -----------------------------------------------------------------------------

// sendPrivate asks the current private slot to answer its thread.
func (c *Controller) sendPrivate(ctx context.Context, slot int) {
	req, err := c.assembler.Private(c.state, slot)
	if err != nil {
		c.publishError(slot, err)
		return
	}
	reply, ok := c.call(ctx, slot, req, true)
	if !ok {
		return
	}
	if err := c.appendPrivate(slot, transcript.Turn{
		Speaker:      transcript.Agent(slot),
		Text:         reply.Text,
		InputTokens:  reply.InputTokens,
		OutputTokens: reply.OutputTokens,
	}); err != nil {
		c.publishError(slot, err)
	}
}

// runCycle makes the configured number of passes over the active slots.
// Every call re-assembles the context, so later speakers see earlier replies
// of the same cycle.
func (c *Controller) runCycle(ctx context.Context, nudge bool) error {
	rounds := c.state.Rounds()
	log := c.logger.WithPhase(c.state.Phase().String())
	log.Info("round started", "rounds", rounds, "nudge", nudge, "active", len(c.state.ActiveSlots()))

	replies := 0
	for pass := 0; pass < rounds; pass++ {
		for _, sl := range c.state.ActiveSlots() {
			if err := ctx.Err(); err != nil {
				log.Warn("round interrupted", "pass", pass+1, "error", err.Error())
				return errors.Wrap(errors.ErrCanceled, "round interrupted")
			}

			req, err := c.assembler.Debate(c.state, sl.Ordinal)
			if err != nil {
				return err
			}
			if nudge {
				req = req.WithNudge()
			}

			reply, ok := c.call(ctx, sl.Ordinal, req, false)
			if !ok {
				continue
			}
			if err := c.appendDebate(transcript.Turn{
				Speaker:      transcript.Agent(sl.Ordinal),
				Text:         reply.Text,
				InputTokens:  reply.InputTokens,
				OutputTokens: reply.OutputTokens,
			}); err != nil {
				c.publishError(sl.Ordinal, err)
				continue
			}
			c.state.AddRound(sl.Ordinal)
			c.state.CloseOpening(sl.Ordinal)
			replies++
		}
	}

	if replies == 0 {
		log.Warn("round produced no replies")
		return nil
	}
	c.state.CompleteRound()
	log.Info("round finished", "replies", replies, "conversation_rounds", c.state.ConversationRounds())
	return nil
}

// call dispatches one request and publishes the surrounding events. Failures
// are published, never returned.
func (c *Controller) call(ctx context.Context, slot int, req prompt.Request, private bool) (dispatch.Reply, bool) {
	sl, ok := c.state.Slot(slot)
	if !ok || !sl.Occupied() {
		c.publishError(slot, errors.NewNotFoundError("slot", fmt.Sprint(slot)))
		return dispatch.Reply{}, false
	}
	if c.dispatcher == nil {
		c.publishError(slot, errors.NewDispatchError("no dispatcher configured", nil).WithSlot(slot, sl.Model.ID))
		return dispatch.Reply{}, false
	}

	agent := event.AgentOf(sl)
	c.bus.Publish(event.NewDispatchStartedEvent(agent, private))
	start := time.Now()
	reply, err := c.dispatcher.Send(ctx, slot, sl.Model, req)
	c.bus.Publish(event.NewDispatchFinishedEvent(agent, err == nil, time.Since(start)))

	if err != nil {
		c.publishError(slot, err)
		return dispatch.Reply{}, false
	}
	return reply, true
}

func (c *Controller) publishError(slot int, err error) {
	c.logger.WithSlot(slot, c.agent(slot).ModelID).Warn("agent call failed", "error", err.Error())
	c.bus.Publish(event.NewErrorOccurredEvent(c.agent(slot), err))
}

// -----------------------------------------------------------------------------
// Phase changes
// -----------------------------------------------------------------------------

// transitioned publishes a phase change and, on entering a private phase with
// the prompt already known, sends it to the new slot.
func (c *Controller) transitioned(ctx context.Context, previous session.Phase) {
	current := c.state.Phase()
	if current == previous {
		return
	}

	agent := event.Agent{}
	if current.Is(session.KindPrivate) {
		agent = c.agent(current.Slot())
	}
	c.logger.Info("phase changed", "from", previous.String(), "to", current.String())
	c.bus.Publish(event.NewPhaseChangedEvent(c.id, previous, current, agent))

	switch current.Kind() {
	case session.KindPrivate:
		if _, set := c.state.OriginalPrompt(); set {
			if t, ok := c.state.PrivateTranscript(current.Slot()); ok {
				if seed, ok := t.Last(); ok {
					c.bus.Publish(event.NewTurnProducedEvent(true, event.Agent{}, seed))
				}
			}
			c.sendPrivate(ctx, current.Slot())
		}
	case session.KindDebate:
		if len(c.state.ActiveSlots()) == 0 {
			c.notice(event.NoticeInfo, "No agents are active. Type /exit to leave.")
		}
	}
}

func (c *Controller) notice(kind event.NoticeKind, text string) {
	c.bus.Publish(event.NewNoticePostedEvent(kind, strings.TrimRight(text, "\n")))
}

func (c *Controller) noticef(kind event.NoticeKind, format string, args ...any) {
	c.notice(kind, fmt.Sprintf(format, args...))
}
