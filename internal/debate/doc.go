// Package debate implements the chat controller: the state machine that
// takes one input line at a time, moves the session between phases and
// drives the agents.
//
// # Phases
//
// A chat progresses through these phases:
//
//   - Setup: models are assigned to slots with /model and /remove
//   - Private(slot): a 1:1 exchange with one slot, ended by /promote or /boot
//   - Debate: every active slot answers each user message in slot order
//   - Ended: entered by /exit, terminal
//
// /start enters the private phase of the first slot when two or more slots
// are occupied and the flow is staged; otherwise it goes straight to the
// debate with every occupied slot active.
//
// # Usage
//
//	ctrl := debate.NewController(debate.Config{
//	    Catalog:    cat,
//	    Dispatcher: dispatch.NewDispatcher(client),
//	    Bus:        bus,
//	    Session:    session.Options{Rounds: 1, Staged: true},
//	})
//
//	_ = ctrl.Handle(ctx, "/model k2")
//	_ = ctrl.Handle(ctx, "/start")
//	_ = ctrl.Handle(ctx, "Is P equal to NP?")
//
// Everything observable is published on the event bus. Handle returns only
// the error that rejected an input; agent failures during a round are
// published as error events and the round carries on.
//
// # Thread Safety
//
// Controller is not safe for concurrent use. Handle processes one input
// completely before returning and callers must serialize calls.
package debate
