// Package event provides a pub-sub event bus that separates the debate
// controller from whatever renders the chat.
//
// The controller publishes an event for every observable change and the
// terminal renderers subscribe to them. Neither side imports the other.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Conversation:
//   - [TurnProducedEvent]: a turn was appended to a private or the debate transcript
//   - [PhaseChangedEvent]: the chat moved to another phase
//   - [ErrorOccurredEvent]: a command was rejected or an agent call failed
//   - [SummaryReadyEvent]: an interim or final usage summary
//
// Dispatch:
//   - [DispatchStartedEvent]: an agent call is in flight
//   - [DispatchFinishedEvent]: an agent call returned
//
// Informational:
//   - [CatalogListedEvent]: the answer to /list
//   - [NoticePostedEvent]: help text, slot listings and other notices
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. Handlers are called
// synchronously on the publishing goroutine and protected against panics.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeTurnProduced, func(e event.Event) {
//	    turn := e.(event.TurnProducedEvent)
//	    fmt.Printf("[%s] %s: %s\n", turn.Agent.Tag, turn.Agent.Name, turn.Turn.Text)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    log.Printf("Event: %s at %v", e.EventType(), e.Timestamp())
//	})
package event
