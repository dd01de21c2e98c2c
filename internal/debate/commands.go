package debate

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
	"github.com/Iron-Ham/superchat/internal/tui/command"
)

// commandFunc is the signature for command implementations.
type commandFunc func(ctx context.Context, c *Controller, in command.Input) error

// commandEntry pairs a command with the phases it is valid in.
type commandEntry struct {
	run    commandFunc
	phases []session.Kind
}

var (
	anyPhase      = []session.Kind{session.KindSetup, session.KindPrivate, session.KindDebate}
	setupOnly     = []session.Kind{session.KindSetup}
	privateOnly   = []session.Kind{session.KindPrivate}
	debateOnly    = []session.Kind{session.KindDebate}
	privateDebate = []session.Kind{session.KindPrivate, session.KindDebate}
)

// registerCommands sets up the command table.
func (c *Controller) registerCommands() {
	c.commands = map[string]commandEntry{
		"list":    {cmdList, anyPhase},
		"model":   {cmdModel, setupOnly},
		"remove":  {cmdRemove, setupOnly},
		"start":   {cmdStart, setupOnly},
		"promote": {cmdPromote, privateOnly},
		"restart": {cmdRestart, privateOnly},
		"boot":    {cmdBoot, privateDebate},
		"ask":     {cmdAsk, debateOnly},
		"rounds":  {cmdRounds, anyPhase},
		"stats":   {cmdStats, anyPhase},
		"help":    {cmdHelp, anyPhase},
		"exit":    {cmdExit, anyPhase},
	}
	// Aliases
	c.commands["quit"] = c.commands["exit"]
	c.commands["h"] = c.commands["help"]
}

func (c *Controller) handleCommand(ctx context.Context, in command.Input) error {
	entry, ok := c.commands[in.Name]
	if !ok {
		return errors.NewCommandError(in.Command())
	}

	phase := c.state.Phase()
	if !allowed(entry.phases, phase.Kind()) {
		return errors.NewPhaseError(in.Command(), phase.String()).WithHint(phaseHint(in.Name))
	}
	return entry.run(ctx, c, in)
}

func allowed(phases []session.Kind, k session.Kind) bool {
	for _, p := range phases {
		if p == k {
			return true
		}
	}
	return false
}

func phaseHint(name string) string {
	if info, ok := command.Lookup(name); ok {
		return "valid during " + info.Phases
	}
	return ""
}

func usage(name string) error {
	info, _ := command.Lookup(name)
	return errors.NewValidationError("usage: " + info.Usage)
}

// Command implementations

func cmdList(_ context.Context, c *Controller, in command.Input) error {
	pattern := in.Rest(0)
	models, err := c.state.Catalog().Filter(pattern)
	if err != nil {
		return err
	}

	assigned := make(map[string]int)
	for _, sl := range c.state.OccupiedSlots() {
		assigned[sl.Model.ID] = sl.Ordinal
	}
	c.bus.Publish(event.NewCatalogListedEvent(pattern, models, assigned))
	return nil
}

func cmdModel(_ context.Context, c *Controller, in command.Input) error {
	if len(in.Args) == 0 {
		return usage("model")
	}

	var (
		sl  session.Slot
		err error
	)
	if n, ok := in.IntArg(0); ok && len(in.Args) > 1 {
		sl, err = c.state.Assign(n, in.Rest(1))
	} else {
		sl, err = c.state.AssignNext(in.Rest(0))
	}
	if err != nil {
		return err
	}

	c.logger.Info("model assigned", "slot", sl.Ordinal, "model", sl.Model.ID)
	c.notice(event.NoticeSlots, slotTable(c.state))
	return nil
}

func cmdRemove(_ context.Context, c *Controller, in command.Input) error {
	if len(in.Args) == 0 {
		return usage("remove")
	}
	sl, err := c.state.Remove(in.Rest(0))
	if err != nil {
		return err
	}
	c.logger.Info("model removed", "slot", sl.Ordinal, "model", sl.Model.ID)
	c.notice(event.NoticeSlots, slotTable(c.state))
	return nil
}

func cmdStart(ctx context.Context, c *Controller, _ command.Input) error {
	previous := c.state.Phase()
	if _, err := c.state.Start(); err != nil {
		return err
	}
	c.transitioned(ctx, previous)

	if c.state.Phase().Is(session.KindPrivate) {
		c.noticef(event.NoticeInfo, "Private chat with %s. Type your prompt; /promote shares the exchange, /boot drops the model.",
			c.agent(c.state.Phase().Slot()).Name)
	} else {
		c.notice(event.NoticeInfo, "Group chat started. Type your prompt.")
	}
	return nil
}

func cmdPromote(ctx context.Context, c *Controller, _ command.Input) error {
	previous := c.state.Phase()
	if _, err := c.state.Promote(); err != nil {
		return err
	}
	c.logger.Info("private thread promoted", "slot", previous.Slot())
	c.transitioned(ctx, previous)
	return nil
}

func cmdRestart(ctx context.Context, c *Controller, _ command.Input) error {
	slot := c.state.Phase().Slot()
	t, err := c.state.Restart()
	if err != nil {
		return err
	}
	c.logger.Info("private thread restarted", "slot", slot)
	c.noticef(event.NoticeInfo, "Restarted the private chat with %s.", c.agent(slot).Name)
	if seed, ok := t.Last(); ok {
		c.bus.Publish(event.NewTurnProducedEvent(true, event.Agent{}, seed))
	}
	c.sendPrivate(ctx, slot)
	return nil
}

func cmdBoot(ctx context.Context, c *Controller, in command.Input) error {
	previous := c.state.Phase()

	var slot int
	switch {
	case len(in.Args) == 0 && previous.Is(session.KindPrivate):
		slot = previous.Slot()
	case len(in.Args) == 0:
		return usage("boot")
	default:
		keep := func(sl session.Slot) bool { return sl.Status != session.StatusBooted }
		if previous.Is(session.KindDebate) {
			keep = func(sl session.Slot) bool { return sl.Status == session.StatusActive }
		}
		sl, err := c.state.FindSlot(in.Rest(0), keep)
		if err != nil {
			return err
		}
		slot = sl.Ordinal
	}

	name := c.agent(slot).Name
	if _, err := c.state.Boot(slot); err != nil {
		return err
	}
	c.logger.Info("slot booted", "slot", slot, "phase", previous.String())
	c.noticef(event.NoticeInfo, "%s has left the conversation.", name)
	c.transitioned(ctx, previous)
	return nil
}

func cmdAsk(ctx context.Context, c *Controller, in command.Input) error {
	if len(in.Args) < 2 {
		return usage("ask")
	}
	if _, set := c.state.OriginalPrompt(); !set {
		return errors.NewPhaseError("/ask", c.state.Phase().String()).WithHint("send the prompt first")
	}

	sl, err := c.state.FindSlot(in.Arg(0), func(sl session.Slot) bool { return sl.Status == session.StatusActive })
	if err != nil {
		return err
	}
	question := in.Rest(1)

	req, err := c.assembler.Debate(c.state, sl.Ordinal)
	if err != nil {
		return err
	}
	reply, ok := c.call(ctx, sl.Ordinal, req.WithUserMessage(question), false)
	if !ok {
		return nil
	}

	if err := c.appendDebate(transcript.Turn{
		Speaker:      transcript.Agent(sl.Ordinal),
		Text:         reply.Text,
		InputTokens:  reply.InputTokens,
		OutputTokens: reply.OutputTokens,
		Question:     question,
	}); err != nil {
		return err
	}
	c.state.AddRound(sl.Ordinal)
	c.state.CloseOpening(sl.Ordinal)
	return nil
}

func cmdRounds(_ context.Context, c *Controller, in command.Input) error {
	n, ok := in.IntArg(0)
	if !ok || len(in.Args) != 1 {
		return usage("rounds")
	}
	if err := c.state.SetRounds(n); err != nil {
		return err
	}
	c.noticef(event.NoticeInfo, "Each agent now speaks %d time(s) per message.", n)
	return nil
}

func cmdStats(_ context.Context, c *Controller, _ command.Input) error {
	c.bus.Publish(event.NewSummaryReadyEvent(c.state.Summary(false)))
	return nil
}

func cmdHelp(_ context.Context, c *Controller, _ command.Input) error {
	c.notice(event.NoticeHelp, command.HelpText())
	return nil
}

func cmdExit(_ context.Context, c *Controller, _ command.Input) error {
	previous := c.state.Phase()
	summary := c.state.End()
	c.logger.Info("session ended",
		"conversation_rounds", summary.ConversationRounds,
		"calls", summary.Total.Calls,
		"input_tokens", summary.Total.InputTokens,
		"output_tokens", summary.Total.OutputTokens)
	c.bus.Publish(event.NewPhaseChangedEvent(c.id, previous, c.state.Phase(), event.Agent{}))
	c.bus.Publish(event.NewSummaryReadyEvent(summary))
	return nil
}

// slotTable renders the current slot assignments.
func slotTable(s *session.State) string {
	var sb strings.Builder
	sb.WriteString("Slots:\n")
	for _, sl := range s.Slots() {
		fmt.Fprintf(&sb, "  %d. %s\n", sl.Ordinal, sl.Label())
	}
	return sb.String()
}
