package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/superchat/internal/debate"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/tui/command"
	"github.com/Iron-Ham/superchat/internal/tui/styles"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	ctrl    *debate.Controller
	out     io.Writer

	mu      sync.Mutex
	summary string
}

// New creates a new TUI application
func New(ctx context.Context, ctrl *debate.Controller, out io.Writer, wrapWidth int) *App {
	return &App{
		model: NewModel(ctx, ctrl, wrapWidth),
		ctrl:  ctrl,
		out:   out,
	}
}

// Run starts the TUI application. The final summary is printed after the
// alternate screen is torn down.
func (a *App) Run() error {
	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	bus := a.ctrl.Bus()
	forward := bus.SubscribeAll(func(e event.Event) {
		a.program.Send(eventMsg{event: e})
	})
	keep := bus.Subscribe(event.TypeSummaryReady, func(e event.Event) {
		ev, ok := e.(event.SummaryReadyEvent)
		if !ok || !ev.Summary.Final {
			return
		}
		a.mu.Lock()
		a.summary = Formatter{}.Summary(ev.Summary)
		a.mu.Unlock()
	})
	defer bus.Unsubscribe(keep)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		if _, ok := <-sigChan; ok && a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	_, err := a.program.Run()

	signal.Stop(sigChan)
	close(sigChan)
	bus.Unsubscribe(forward)

	if !a.ctrl.Done() {
		// Quit by signal: end the chat so the summary is still reported.
		_ = a.ctrl.Handle(context.Background(), "/exit")
	}

	a.mu.Lock()
	summary := a.summary
	a.mu.Unlock()
	if summary != "" {
		fmt.Fprintln(a.out, summary)
	}
	return err
}

// Layout constants
const (
	headerHeight = 2 // title + border
	footerHeight = 5 // status line + input box + help bar
)

// Messages

// eventMsg carries a bus event into the update loop.
type eventMsg struct {
	event event.Event
}

// handledMsg reports that the controller finished one input.
type handledMsg struct {
	err error
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.handleEvent(msg.event)
		return m, nil

	case handledMsg:
		m.busy = false
		m.thinking = event.Agent{}
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.snapshot()
		if msg.err != nil {
			m.appendLine(m.format.Rejection(msg.err))
		}
		if m.ctrl.Done() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := max(height-headerHeight-footerHeight, 3)
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}

	m.format.Width = width - 2
	if m.wrapWidth > 0 && m.wrapWidth < m.format.Width {
		m.format.Width = m.wrapWidth
	}
	m.input.Width = max(width-6, 10)
	m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.busy {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m.submit("/exit")

	case key.Matches(msg, m.keys.Send):
		if m.busy {
			return m, nil
		}
		line := m.input.Value()
		m.input.Reset()
		return m.submit(line)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands a line to the controller off the update loop.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	if in := command.Parse(line); in.Kind == command.KindCommand {
		m.appendLine(styles.Muted.Render("› " + strings.TrimSpace(line)))
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.busy = true
	m.cancel = cancel
	ctrl := m.ctrl
	return m, func() tea.Msg {
		return handledMsg{err: ctrl.Handle(ctx, line)}
	}
}

func (m *Model) handleEvent(e event.Event) {
	switch ev := e.(type) {
	case event.DispatchStartedEvent:
		m.thinking = ev.Agent
		return
	case event.DispatchFinishedEvent:
		m.thinking = event.Agent{}
		return
	case event.PhaseChangedEvent:
		m.phase = phaseLabel(ev.Current, ev.Agent)
	}
	if text, ok := m.format.Event(e); ok {
		m.appendLine(text)
	}
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
