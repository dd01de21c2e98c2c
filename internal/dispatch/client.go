// Package dispatch sends an assembled context to a remote model and returns
// its reply.
//
// The Client interface is the remote primitive; OpenRouterClient implements
// it against the OpenRouter chat completions endpoint. The Dispatcher adds
// what every call needs on top of that: a per-call timeout, error
// classification, token estimation when the endpoint reports no usage, and
// usage accounting.
package dispatch

import (
	"context"

	"github.com/Iron-Ham/superchat/internal/prompt"
)

// Request is one completion call.
type Request struct {
	RemoteID  string
	Preamble  string
	Messages  []prompt.Message
	MaxTokens int
}

// Completion is the raw answer of a Client. Token counts are zero when the
// endpoint did not report usage.
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	Model        string
	FinishReason string
}

// Client performs a single remote completion.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (*Completion, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (*Completion, error) {
	return f(ctx, req)
}
