package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/Iron-Ham/superchat/internal/debate"
	"github.com/Iron-Ham/superchat/internal/event"
	"github.com/Iron-Ham/superchat/internal/session"
	"github.com/Iron-Ham/superchat/internal/tui/styles"
)

// keyMap lists the bindings of the chat screen.
type keyMap struct {
	Send     key.Binding
	Cancel   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Cancel:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "stop / exit")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	}
}

// Model holds the TUI application state
type Model struct {
	ctrl   *debate.Controller
	ctx    context.Context
	keys   keyMap
	format Formatter

	// Components
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	// UI state
	width     int
	height    int
	wrapWidth int
	ready     bool
	quitting  bool

	// busy is set while an input is being handled; cancel stops it.
	busy     bool
	cancel   context.CancelFunc
	thinking event.Agent

	lines []string

	// Copied from the session whenever no input is being handled, so View
	// never reads state the controller is mutating.
	phase  string
	rounds int
	roster []session.Slot
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, ctrl *debate.Controller, wrapWidth int) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a prompt or /help"
	ti.Prompt = styles.InputPrompt.Render("› ")
	ti.CharLimit = 0
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Primary

	m := Model{
		ctrl:      ctrl,
		ctx:       ctx,
		keys:      defaultKeyMap(),
		format:    Formatter{Width: wrapWidth},
		input:     ti,
		spinner:   sp,
		wrapWidth: wrapWidth,
	}
	m.snapshot()
	return m
}

// snapshot copies what the header and status line show from the session.
func (m *Model) snapshot() {
	state := m.ctrl.State()
	m.phase = phaseTitle(state)
	m.rounds = state.Rounds()
	m.roster = state.OccupiedSlots()
}

// appendLine adds rendered text to the transcript view and scrolls to it.
func (m *Model) appendLine(s string) {
	m.lines = append(m.lines, s, "")
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(joinLines(m.lines))
	if atBottom {
		m.viewport.GotoBottom()
	}
}
