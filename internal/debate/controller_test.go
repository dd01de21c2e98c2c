package debate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Iron-Ham/superchat/internal/catalog"
	"github.com/Iron-Ham/superchat/internal/dispatch"
	"github.com/Iron-Ham/superchat/internal/errors"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/prompt"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/transcript"
)

// fakeClient answers every request with "<remote id> reply N" and records
// what it was sent.
type fakeClient struct {
	mu       sync.Mutex
	requests []dispatch.Request
	fail     map[string]error
	onCall   func()
}

func (f *fakeClient) Complete(_ context.Context, req dispatch.Request) (*dispatch.Completion, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	n := len(f.requests)
	hook := f.onCall
	err := f.fail[req.RemoteID]
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &dispatch.Completion{
		Text:         fmt.Sprintf("%s reply %d", req.RemoteID, n),
		InputTokens:  10,
		OutputTokens: 5,
	}, nil
}

func (f *fakeClient) last() dispatch.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeClient) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type harness struct {
	ctrl   *Controller
	client *fakeClient
	events []event.Event
}

func newHarness(t *testing.T, opts session.Options) *harness {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}

	h := &harness{client: &fakeClient{fail: map[string]error{}}}
	bus := event.NewBus()
	bus.SubscribeAll(func(e event.Event) {
		h.events = append(h.events, e)
	})

	if opts.MaxSlots == 0 {
		opts.MaxSlots = 3
	}
	h.ctrl = NewController(Config{
		Catalog:    cat,
		Session:    opts,
		Dispatcher: dispatch.NewDispatcher(h.client),
		Bus:        bus,
	})
	return h
}

func (h *harness) do(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		if err := h.ctrl.Handle(context.Background(), line); err != nil {
			t.Fatalf("Handle(%q) error = %v", line, err)
		}
	}
}

func (h *harness) errorEvents() []event.ErrorOccurredEvent {
	var out []event.ErrorOccurredEvent
	for _, e := range h.events {
		if ev, ok := e.(event.ErrorOccurredEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

func speakers(turns []transcript.Turn) []int {
	out := make([]int, len(turns))
	for i, turn := range turns {
		out[i] = turn.Speaker.Slot()
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestController_DirectDebate(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/model gemini-flash", "/start")

	if !h.ctrl.State().Phase().Is(session.KindDebate) {
		t.Fatalf("Phase() = %s, want debate", h.ctrl.State().Phase())
	}

	h.do(t, "Is P equal to NP?")

	turns := h.ctrl.State().DebateTranscript().Turns()
	if got := speakers(turns); !equalInts(got, []int{0, 1, 2}) {
		t.Fatalf("speakers = %v, want [0 1 2]", got)
	}
	if turns[0].Text != "Is P equal to NP?" {
		t.Errorf("seed = %q", turns[0].Text)
	}
	if p, set := h.ctrl.State().OriginalPrompt(); !set || p != "Is P equal to NP?" {
		t.Errorf("OriginalPrompt() = %q, %v", p, set)
	}
	if h.ctrl.State().ConversationRounds() != 1 {
		t.Errorf("ConversationRounds() = %d, want 1", h.ctrl.State().ConversationRounds())
	}
	for _, slot := range []int{1, 2} {
		u := h.ctrl.State().Usage(slot)
		if u.Rounds != 1 || u.Calls != 1 || u.InputTokens != 10 || u.OutputTokens != 5 {
			t.Errorf("Usage(%d) = %+v", slot, u)
		}
	}

	// Slot 2 saw slot 1's reply as a named user message.
	req := h.client.last()
	lastMsg := req.Messages[len(req.Messages)-1]
	if lastMsg.Role != prompt.RoleUser || !strings.HasPrefix(lastMsg.Content, "[Kimi K2 (0905)]: ") {
		t.Errorf("slot 2 last message = %+v", lastMsg)
	}
	for _, slot := range []int{1, 2} {
		if h.ctrl.State().Opening(slot) {
			t.Errorf("Opening(%d) = true after the slot replied", slot)
		}
	}
}

func TestController_StagedFlow(t *testing.T) {
	h := newHarness(t, session.Options{Staged: true})
	h.do(t, "/model k2", "/model gemini-flash", "/start")

	if got := h.ctrl.State().Phase(); got != session.Private(1) {
		t.Fatalf("Phase() = %s, want private(1)", got)
	}

	h.do(t, "Is P equal to NP?", "Explain the second point.")

	private, ok := h.ctrl.State().PrivateTranscript(1)
	if !ok || private.Len() != 4 {
		t.Fatalf("private thread = %v, %v; want 4 turns", private, ok)
	}
	if h.ctrl.State().DebateTranscript().Len() != 1 {
		t.Errorf("debate len = %d, want only the seed", h.ctrl.State().DebateTranscript().Len())
	}

	// Promote moves to slot 2, which is sent the prompt straight away.
	calls := h.client.count()
	h.do(t, "/promote")
	if got := h.ctrl.State().Phase(); got != session.Private(2) {
		t.Fatalf("Phase() = %s, want private(2)", got)
	}
	if h.client.count() != calls+1 {
		t.Fatalf("calls = %d, want auto-send to slot 2", h.client.count()-calls)
	}
	second, _ := h.ctrl.State().PrivateTranscript(2)
	if got := speakers(second.Turns()); !equalInts(got, []int{0, 2}) {
		t.Errorf("slot 2 thread speakers = %v, want [0 2]", got)
	}

	h.do(t, "/promote")
	if !h.ctrl.State().Phase().Is(session.KindDebate) {
		t.Fatalf("Phase() = %s, want debate", h.ctrl.State().Phase())
	}

	turns := h.ctrl.State().DebateTranscript().Turns()
	if got := speakers(turns); !equalInts(got, []int{0, 1, 0, 1, 2}) {
		t.Fatalf("debate speakers = %v, want [0 1 0 1 2]", got)
	}
	for _, turn := range turns[1:4] {
		if turn.Origin != 1 {
			t.Errorf("turn %d Origin = %d, want 1", turn.Seq, turn.Origin)
		}
	}
	if turns[4].Origin != 2 {
		t.Errorf("turn 5 Origin = %d, want 2", turns[4].Origin)
	}
	if _, ok := h.ctrl.State().PrivateTranscript(1); ok {
		t.Error("promoted private thread still exists")
	}
	for _, sl := range h.ctrl.State().OccupiedSlots() {
		if sl.Status != session.StatusActive {
			t.Errorf("slot %d status = %s, want active", sl.Ordinal, sl.Status)
		}
	}
	// Private replies count as calls, not rounds.
	if u := h.ctrl.State().Usage(1); u.Calls != 2 || u.Rounds != 0 {
		t.Errorf("Usage(1) = %+v", u)
	}
}

func TestController_PromotionOrder(t *testing.T) {
	h := newHarness(t, session.Options{Staged: true})
	h.do(t, "/model k2", "/model gemini-flash", "/model deepseek-chat", "/start",
		"Is P equal to NP?", "k2 follow-up",
		"/promote", "flash follow-up",
		"/promote",
		"/promote")

	if !h.ctrl.State().Phase().Is(session.KindDebate) {
		t.Fatalf("Phase() = %s, want debate", h.ctrl.State().Phase())
	}

	const (
		k2    = "moonshotai/kimi-k2-0905"
		flash = "google/gemini-2.5-flash"
		ds    = "deepseek/deepseek-chat-v3.1"
	)
	want := []struct {
		speaker int
		origin  int
		text    string
	}{
		{0, 0, "Is P equal to NP?"},
		{1, 1, k2 + " reply 1"},
		{0, 1, "k2 follow-up"},
		{1, 1, k2 + " reply 2"},
		{2, 2, flash + " reply 3"},
		{0, 2, "flash follow-up"},
		{2, 2, flash + " reply 4"},
		{3, 3, ds + " reply 5"},
	}

	turns := h.ctrl.State().DebateTranscript().Turns()
	if len(turns) != len(want) {
		t.Fatalf("debate has %d turns, want %d: %+v", len(turns), len(want), turns)
	}
	for i, w := range want {
		got := turns[i]
		if got.Speaker.Slot() != w.speaker || got.Origin != w.origin || got.Text != w.text {
			t.Errorf("turn %d = {speaker %d origin %d %q}, want {speaker %d origin %d %q}",
				i, got.Speaker.Slot(), got.Origin, got.Text, w.speaker, w.origin, w.text)
		}
	}
	if h.client.count() != 5 {
		t.Errorf("calls = %d, want 5 (no debate round before the first message)", h.client.count())
	}
}

func TestController_FailedOpeningKeepsFullContext(t *testing.T) {
	h := newHarness(t, session.Options{Staged: true})
	h.do(t, "/model k2", "/model gemini-flash", "/start",
		"topic", "q1", "q2", "q3", "/promote", "/promote")

	// seed + 7 turns from slot 1 + 1 from slot 2
	if n := h.ctrl.State().DebateTranscript().Len(); n != 9 {
		t.Fatalf("debate len = %d, want 9", n)
	}

	h.client.fail["moonshotai/kimi-k2-0905"] = fmt.Errorf("connection reset")
	h.client.fail["google/gemini-2.5-flash"] = fmt.Errorf("connection reset")
	h.do(t, "first")

	if h.ctrl.State().ConversationRounds() != 0 {
		t.Errorf("ConversationRounds() = %d after a cycle with no replies, want 0", h.ctrl.State().ConversationRounds())
	}
	for _, slot := range []int{1, 2} {
		if !h.ctrl.State().Opening(slot) {
			t.Errorf("Opening(%d) = false before the slot ever replied", slot)
		}
	}

	delete(h.client.fail, "moonshotai/kimi-k2-0905")
	delete(h.client.fail, "google/gemini-2.5-flash")
	before := h.client.count()
	h.do(t, "retry")

	h.client.mu.Lock()
	sent := append([]dispatch.Request(nil), h.client.requests[before:]...)
	h.client.mu.Unlock()
	if len(sent) != 2 {
		t.Fatalf("calls = %d, want 2", len(sent))
	}
	// 11 turns exceed the window of 9, so a full transcript is observable.
	if got := len(sent[0].Messages); got != 11 {
		t.Errorf("slot 1 context = %d messages, want the full thread of 11", got)
	}
	if sent[0].Messages[0].Content != "topic" {
		t.Errorf("slot 1 first message = %q, want the original prompt", sent[0].Messages[0].Content)
	}
	if got := len(sent[1].Messages); got != 12 {
		t.Errorf("slot 2 context = %d messages, want the full thread of 12", got)
	}
	if h.ctrl.State().ConversationRounds() != 1 {
		t.Errorf("ConversationRounds() = %d, want 1", h.ctrl.State().ConversationRounds())
	}

	h.do(t, "and now?")
	if got, want := len(h.client.requests[before+2].Messages), prompt.Window(2); got != want {
		t.Errorf("slot 1 context after replying = %d messages, want the window of %d", got, want)
	}
}

func TestController_Restart(t *testing.T) {
	h := newHarness(t, session.Options{Staged: true})
	h.do(t, "/model k2", "/model gemini-flash", "/start", "hello", "more")

	h.do(t, "/restart")

	private, _ := h.ctrl.State().PrivateTranscript(1)
	if got := speakers(private.Turns()); !equalInts(got, []int{0, 1}) {
		t.Errorf("speakers after restart = %v, want [0 1]", got)
	}
	if len(h.client.last().Messages) != 1 {
		t.Errorf("restart request carried %d messages, want only the prompt", len(h.client.last().Messages))
	}
}

func TestController_BootInPrivate(t *testing.T) {
	h := newHarness(t, session.Options{Staged: true})
	h.do(t, "/model k2", "/model gemini-flash", "/model deepseek-chat", "/start", "hello")

	t.Run("other slot keeps phase", func(t *testing.T) {
		h.do(t, "/boot 3")
		if got := h.ctrl.State().Phase(); got != session.Private(1) {
			t.Errorf("Phase() = %s, want private(1)", got)
		}
		sl, _ := h.ctrl.State().Slot(3)
		if sl.Status != session.StatusBooted {
			t.Errorf("slot 3 status = %s", sl.Status)
		}
	})

	t.Run("current slot advances", func(t *testing.T) {
		h.do(t, "/boot")
		if got := h.ctrl.State().Phase(); got != session.Private(2) {
			t.Errorf("Phase() = %s, want private(2)", got)
		}
	})

	t.Run("last promote enters debate", func(t *testing.T) {
		h.do(t, "/promote")
		if !h.ctrl.State().Phase().Is(session.KindDebate) {
			t.Fatalf("Phase() = %s, want debate", h.ctrl.State().Phase())
		}
		active := h.ctrl.State().ActiveSlots()
		if len(active) != 1 || active[0].Ordinal != 2 {
			t.Errorf("ActiveSlots() = %v, want only slot 2", active)
		}
	})
}

func TestController_FailureSkipsSlot(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.client.fail["moonshotai/kimi-k2-0905"] = fmt.Errorf("connection reset")
	h.do(t, "/model k2", "/model gemini-flash", "/start", "Is P equal to NP?")

	turns := h.ctrl.State().DebateTranscript().Turns()
	if got := speakers(turns); !equalInts(got, []int{0, 2}) {
		t.Fatalf("speakers = %v, want [0 2]", got)
	}

	errs := h.errorEvents()
	if len(errs) != 1 {
		t.Fatalf("error events = %d, want 1", len(errs))
	}
	if errs[0].Agent.Slot != 1 || !errors.Is(errs[0].Err, errors.ErrDispatch) {
		t.Errorf("error event = %+v", errs[0])
	}
	if u := h.ctrl.State().Usage(1); u.Calls != 0 || u.Rounds != 0 {
		t.Errorf("failed slot usage = %+v", u)
	}
}

func TestController_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup []string
		line  string
		want  error
	}{
		{name: "unknown command", line: "/frobnicate", want: errors.ErrUnknownCommand},
		{name: "text in setup", line: "hello", want: errors.ErrInvalidPhase},
		{name: "promote in setup", line: "/promote", want: errors.ErrInvalidPhase},
		{name: "start without models", line: "/start", want: errors.ErrInvalidInput},
		{name: "model missing argument", line: "/model", want: errors.ErrInvalidInput},
		{name: "unknown model", line: "/model zzzzzz", want: errors.ErrNotFound},
		{name: "duplicate model", setup: []string{"/model k2"}, line: "/model 2 k2", want: errors.ErrDuplicateModel},
		{name: "model after start", setup: []string{"/model k2", "/start"}, line: "/model gemini-flash", want: errors.ErrInvalidPhase},
		{name: "promote before prompt", setup: []string{"/model k2", "/model gemini-flash", "/start"}, line: "/promote", want: errors.ErrInvalidPhase},
		{name: "ask in private", setup: []string{"/model k2", "/model gemini-flash", "/start"}, line: "/ask 1 why", want: errors.ErrInvalidPhase},
		{name: "ask before prompt", setup: []string{"/model k2", "/start"}, line: "/ask 1 why", want: errors.ErrInvalidPhase},
		{name: "boot needs query in debate", setup: []string{"/model k2", "/start"}, line: "/boot", want: errors.ErrInvalidInput},
		{name: "rounds out of range", line: "/rounds 6", want: errors.ErrInvalidInput},
		{name: "anything after exit", setup: []string{"/exit"}, line: "/help", want: errors.ErrInvalidPhase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, session.Options{Staged: true})
			h.do(t, tt.setup...)
			before := h.ctrl.State().Phase()

			err := h.ctrl.Handle(context.Background(), tt.line)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Handle(%q) error = %v, want %v", tt.line, err, tt.want)
			}
			if after := h.ctrl.State().Phase(); after != before {
				t.Errorf("phase moved from %s to %s on a rejected input", before, after)
			}
		})
	}
}

func TestController_Ask(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/model gemini-flash", "/start", "Is P equal to NP?")
	before := h.ctrl.State().DebateTranscript().Len()

	h.do(t, "/ask flash what about oracles?")

	turns := h.ctrl.State().DebateTranscript().Turns()
	if len(turns) != before+1 {
		t.Fatalf("debate grew by %d turns, want only the reply", len(turns)-before)
	}
	reply := turns[len(turns)-1]
	if reply.Speaker.Slot() != 2 || reply.Question != "what about oracles?" {
		t.Errorf("reply = %+v", reply)
	}

	req := h.client.last()
	if got := req.Messages[len(req.Messages)-1]; got.Content != "what about oracles?" {
		t.Errorf("question message = %+v", got)
	}
	if u := h.ctrl.State().Usage(2); u.Rounds != 2 {
		t.Errorf("Usage(2).Rounds = %d, want 2", u.Rounds)
	}
	if u := h.ctrl.State().Usage(1); u.Rounds != 1 {
		t.Errorf("Usage(1).Rounds = %d, want 1", u.Rounds)
	}
	if h.ctrl.State().ConversationRounds() != 1 {
		t.Errorf("ConversationRounds() = %d, /ask must not complete a round", h.ctrl.State().ConversationRounds())
	}
}

func TestController_EmptyInputNudges(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/start")

	// Before the prompt an empty line does nothing.
	h.do(t, "")
	if h.client.count() != 0 {
		t.Fatalf("empty line before the prompt made %d calls", h.client.count())
	}

	h.do(t, "Is P equal to NP?", "")
	req := h.client.last()
	if got := req.Messages[len(req.Messages)-1]; got.Role != prompt.RoleUser || got.Content != prompt.Nudge {
		t.Errorf("last message = %+v, want the nudge", got)
	}
	if n := h.ctrl.State().DebateTranscript().Len(); n != 3 {
		t.Errorf("debate len = %d, want 3 (nudge is not recorded)", n)
	}
	if h.ctrl.State().ConversationRounds() != 2 {
		t.Errorf("ConversationRounds() = %d, want 2", h.ctrl.State().ConversationRounds())
	}
}

func TestController_MultipleRounds(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/model gemini-flash", "/rounds 2", "/start", "Is P equal to NP?")

	turns := h.ctrl.State().DebateTranscript().Turns()
	if got := speakers(turns); !equalInts(got, []int{0, 1, 2, 1, 2}) {
		t.Fatalf("speakers = %v, want [0 1 2 1 2]", got)
	}
	// The second pass sees the first.
	third := h.client.requests[2]
	if !strings.Contains(third.Messages[len(third.Messages)-1].Content, "reply 2") {
		t.Errorf("slot 1 second pass did not see slot 2: %+v", third.Messages)
	}
	if u := h.ctrl.State().Usage(1); u.Rounds != 2 {
		t.Errorf("Usage(1).Rounds = %d, want 2", u.Rounds)
	}
	if h.ctrl.State().ConversationRounds() != 1 {
		t.Errorf("ConversationRounds() = %d, want 1", h.ctrl.State().ConversationRounds())
	}
}

func TestController_BootEveryoneInDebate(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/start", "hello", "/boot k2")

	if len(h.ctrl.State().ActiveSlots()) != 0 {
		t.Fatal("slot still active after /boot")
	}
	err := h.ctrl.Handle(context.Background(), "anyone there?")
	if !errors.Is(err, errors.ErrNoActiveAgents) {
		t.Errorf("Handle() error = %v, want ErrNoActiveAgents", err)
	}
	// Recorded turns stay.
	if got := speakers(h.ctrl.State().DebateTranscript().Turns()); !equalInts(got, []int{0, 1}) {
		t.Errorf("speakers = %v", got)
	}
}

func TestController_BootInDebateStopsCalls(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/model gemini-flash", "/start", "hello", "/boot k2")

	before := h.client.count()
	h.do(t, "still there?", "", "/ask gemini-flash why?")

	h.client.mu.Lock()
	defer h.client.mu.Unlock()
	sent := h.client.requests[before:]
	if len(sent) != 3 {
		t.Fatalf("calls after /boot = %d, want 3", len(sent))
	}
	for i, req := range sent {
		if req.RemoteID != "google/gemini-2.5-flash" {
			t.Errorf("call %d went to %s after it was booted", i, req.RemoteID)
		}
	}
	if u := h.ctrl.State().Usage(1); u.Calls != 1 {
		t.Errorf("booted slot calls = %d, want 1", u.Calls)
	}
}

func TestController_CanceledRound(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/model gemini-flash", "/start")

	ctx, cancel := context.WithCancel(context.Background())
	h.client.onCall = cancel

	err := h.ctrl.Handle(ctx, "Is P equal to NP?")
	if !errors.Is(err, errors.ErrCanceled) {
		t.Fatalf("Handle() error = %v, want ErrCanceled", err)
	}
	if h.client.count() != 1 {
		t.Errorf("calls = %d, want 1", h.client.count())
	}
	if h.ctrl.State().ConversationRounds() != 0 {
		t.Error("interrupted round was counted")
	}
	// The user turn and the reply that landed before the cancel are kept.
	if got := speakers(h.ctrl.State().DebateTranscript().Turns()); !equalInts(got, []int{0, 1}) {
		t.Errorf("speakers after cancel = %v, want [0 1]", got)
	}
}

func TestController_ExitPublishesSummary(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/start", "hello", "/exit")

	if !h.ctrl.Done() {
		t.Fatal("Done() = false after /exit")
	}

	var summary *session.Summary
	var phaseEnded bool
	for _, e := range h.events {
		switch ev := e.(type) {
		case event.SummaryReadyEvent:
			summary = &ev.Summary
		case event.PhaseChangedEvent:
			if ev.Current.Is(session.KindEnded) {
				phaseEnded = true
			}
		}
	}
	if !phaseEnded {
		t.Error("no phase change to ended")
	}
	if summary == nil || !summary.Final {
		t.Fatalf("summary = %+v, want a final summary", summary)
	}
	if summary.Total.Calls != 1 || summary.ConversationRounds != 1 {
		t.Errorf("summary totals = %+v", summary)
	}
}

func TestController_SummaryCountsOnlySuccessfulCalls(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.client.fail["moonshotai/kimi-k2-0905"] = fmt.Errorf("connection reset")
	h.do(t, "/model k2", "/model gemini-flash", "/start", "hello", "", "/exit")

	var summary *session.Summary
	for _, e := range h.events {
		if ev, ok := e.(event.SummaryReadyEvent); ok && ev.Summary.Final {
			summary = &ev.Summary
		}
	}
	if summary == nil {
		t.Fatal("no final summary")
	}

	// Each successful call reports 10 input and 5 output tokens.
	var ok int64
	for _, turn := range h.ctrl.State().DebateTranscript().Turns() {
		if !turn.Speaker.IsUser() {
			ok++
		}
	}
	if ok != 2 {
		t.Fatalf("successful replies = %d, want 2", ok)
	}
	if summary.Total.Calls != int(ok) || summary.Total.InputTokens != 10*ok || summary.Total.OutputTokens != 5*ok {
		t.Errorf("Total = %+v, want %d calls, %d in, %d out", summary.Total, ok, 10*ok, 5*ok)
	}
	if summary.ConversationRounds != 2 {
		t.Errorf("ConversationRounds = %d, want 2", summary.ConversationRounds)
	}
}

func TestController_ListAndHelp(t *testing.T) {
	h := newHarness(t, session.Options{})
	h.do(t, "/model k2", "/list k*", "/help")

	var listed *event.CatalogListedEvent
	var help bool
	for _, e := range h.events {
		switch ev := e.(type) {
		case event.CatalogListedEvent:
			listed = &ev
		case event.NoticePostedEvent:
			if ev.Kind == event.NoticeHelp {
				help = true
			}
		}
	}
	if listed == nil || len(listed.Models) == 0 {
		t.Fatalf("listed = %+v", listed)
	}
	if listed.Assigned["k2"] != 1 {
		t.Errorf("Assigned = %v, want k2 on slot 1", listed.Assigned)
	}
	if !help {
		t.Error("no help notice")
	}
}
