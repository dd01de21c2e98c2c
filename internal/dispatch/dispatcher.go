package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/logging"
	"github.com/Iron-Ham/superchat/internal/prompt"
)

// DefaultTimeout bounds one dispatch when no timeout is configured.
const DefaultTimeout = 120 * time.Second

// UsageRecorder receives the accounting of every successful call.
// *session.State implements it.
type UsageRecorder interface {
	RecordUsage(slot int, inputTokens, outputTokens int64, elapsed time.Duration)
}

// Reply is a successful agent answer.
type Reply struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
	Elapsed      time.Duration
	// Estimated is set when the token counts were computed locally.
	Estimated bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithMaxTokens caps the completion length. Zero leaves it to the endpoint.
func WithMaxTokens(n int) Option {
	return func(disp *Dispatcher) { disp.maxTokens = n }
}

// WithRecorder sets where usage is recorded.
func WithRecorder(r UsageRecorder) Option {
	return func(disp *Dispatcher) { disp.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.logger = l
		}
	}
}

// Dispatcher performs one round-trip per Send.
type Dispatcher struct {
	client    Client
	recorder  UsageRecorder
	estimator *Estimator
	logger    *logging.Logger
	timeout   time.Duration
	maxTokens int
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher around a client.
func NewDispatcher(client Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:    client,
		estimator: NewEstimator(),
		logger:    logging.NopLogger(),
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetRecorder replaces the usage recorder.
func (d *Dispatcher) SetRecorder(r UsageRecorder) {
	d.recorder = r
}

// Send asks the model bound to slot for a reply. Every failure is returned as
// an *errors.DispatchError; usage is recorded only on success.
func (d *Dispatcher) Send(ctx context.Context, slot int, model *catalog.Model, req prompt.Request) (Reply, error) {
	log := d.logger.WithSlot(slot, model.ID)

	callReq := Request{
		RemoteID:  model.RemoteID,
		Preamble:  req.Preamble,
		Messages:  req.Messages,
		MaxTokens: d.maxTokens,
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := d.now()
	log.Debug("dispatch started", "remote_id", model.RemoteID, "messages", len(req.Messages))
	comp, err := d.client.Complete(callCtx, callReq)
	elapsed := d.now().Sub(start)

	if err != nil {
		derr := classify(callCtx, err).WithSlot(slot, model.ID)
		log.Warn("dispatch failed",
			"error", err.Error(),
			"timeout", derr.Timeout,
			"duration_ms", elapsed.Milliseconds())
		return Reply{}, derr
	}

	text := ""
	if comp != nil {
		text = strings.TrimSpace(comp.Text)
	}
	if text == "" {
		log.Warn("dispatch returned no content", "duration_ms", elapsed.Milliseconds())
		return Reply{}, errors.NewDispatchError("empty reply", errors.ErrEmptyReply).
			WithSlot(slot, model.ID)
	}

	reply := Reply{
		Text:         text,
		InputTokens:  comp.InputTokens,
		OutputTokens: comp.OutputTokens,
		Elapsed:      elapsed,
	}
	if reply.InputTokens == 0 && reply.OutputTokens == 0 {
		reply.InputTokens = d.estimator.CountRequest(callReq)
		reply.OutputTokens = d.estimator.Count(text)
		reply.Estimated = true
	}

	if d.recorder != nil {
		d.recorder.RecordUsage(slot, reply.InputTokens, reply.OutputTokens, elapsed)
	}

	log.Info("dispatch finished",
		"duration_ms", elapsed.Milliseconds(),
		"input_tokens", reply.InputTokens,
		"output_tokens", reply.OutputTokens,
		"estimated", reply.Estimated)
	return reply, nil
}

// classify maps a client failure onto a DispatchError.
func classify(callCtx context.Context, err error) *errors.DispatchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return errors.NewDispatchError("request timed out", err).WithTimeout(true)
	}
	if errors.Is(err, context.Canceled) {
		return errors.NewDispatchError("request canceled", err).WithRetryable(false)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		reason := fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
		retryable := status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
		return errors.NewDispatchError(reason, err).WithRetryable(retryable)
	}

	return errors.NewDispatchError("request failed", err)
}
