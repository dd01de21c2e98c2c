// Package tui renders a chat controller in the terminal.
//
// Two renderers consume the controller's event bus: App, a Bubbletea program
// with a scrolling transcript, a spinner while an agent is called and a
// single-line input; and Plain, a line-mode loop for pipes and dumb
// terminals. Both format events through Formatter.
package tui
