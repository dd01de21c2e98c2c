package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Iron-Ham/superchat/internal/debate"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/tui/styles"
)

// Plain is the line-mode renderer used when stdout is not a terminal or
// --plain is set. It reads one command per line and prints events as they
// are published.
type Plain struct {
	ctrl   *debate.Controller
	in     io.Reader
	out    io.Writer
	format Formatter

	mu sync.Mutex
}

// NewPlain creates a line-mode renderer.
func NewPlain(ctrl *debate.Controller, in io.Reader, out io.Writer, width int) *Plain {
	return &Plain{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		format: Formatter{Width: width},
	}
}

// Run processes input until /exit, end of input, or ctx is canceled. End of
// input ends the chat so the summary is always printed. A canceled ctx is
// noticed even while a read is blocked.
func (p *Plain) Run(ctx context.Context) error {
	id := p.ctrl.Bus().SubscribeAll(p.onEvent)
	defer p.ctrl.Bus().Unsubscribe(id)

	p.println(styles.Notice.Render("Type /help for commands."))

	stop := make(chan struct{})
	defer close(stop)
	lines, readErr := p.readLines(stop)

loop:
	for !p.ctrl.Done() {
		p.prompt()
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if err := p.ctrl.Handle(ctx, line); err != nil {
				p.println(p.format.Rejection(err))
			}
		}
	}

	select {
	case err := <-readErr:
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	default:
	}
	if !p.ctrl.Done() {
		// Context is already canceled or input is gone; /exit makes no calls.
		return p.ctrl.Handle(context.Background(), "/exit")
	}
	return nil
}

// readLines scans p.in on its own goroutine. The lines channel is closed at
// end of input, after the scan error (if any) is sent. The goroutine stays
// blocked in Read until the input yields or closes.
func (p *Plain) readLines(stop <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(p.in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func (p *Plain) onEvent(e event.Event) {
	switch ev := e.(type) {
	case event.DispatchStartedEvent:
		p.println(styles.Muted.Render(fmt.Sprintf("… [%s] %s is thinking", ev.Agent.Tag, ev.Agent.Name)))
		return
	case event.TurnProducedEvent:
		// The user's own lines are already on screen.
		if ev.Turn.Speaker.IsUser() && ev.Turn.Origin == 0 {
			return
		}
	}
	if text, ok := p.format.Event(e); ok {
		p.println(text + "\n")
	}
}

func (p *Plain) prompt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s ", styles.InputPrompt.Render(p.ctrl.State().Phase().String()+">"))
}

func (p *Plain) println(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, s)
}
