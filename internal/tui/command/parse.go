// Package command parses chat input lines and describes the slash commands.
//
// A line is either empty, free text, or a slash command with arguments.
// Parsing never fails: validation of names and arguments belongs to the
// debate controller, which knows the current phase.
package command

import (
	"strconv"
	"strings"
)

// Kind classifies an input line.
type Kind int

const (
	// KindEmpty is a blank line.
	KindEmpty Kind = iota
	// KindText is free text for the agents.
	KindText
	// KindCommand is a line starting with "/".
	KindCommand
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Input is one parsed line.
type Input struct {
	Kind Kind
	// Raw is the line as typed.
	Raw string
	// Text is the trimmed line for free text.
	Text string
	// Name is the lower-cased command name without the slash, e.g. "model".
	Name string
	// Args are the whitespace-separated words after the name.
	Args []string
}

// Parse classifies a line.
func Parse(line string) Input {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return Input{Kind: KindEmpty, Raw: line}
	case strings.HasPrefix(trimmed, "/") && len(trimmed) > 1:
		fields := strings.Fields(trimmed[1:])
		return Input{
			Kind: KindCommand,
			Raw:  line,
			Name: strings.ToLower(fields[0]),
			Args: fields[1:],
		}
	default:
		return Input{Kind: KindText, Raw: line, Text: trimmed}
	}
}

// Command returns the slash form of the name, e.g. "/model".
func (in Input) Command() string {
	return "/" + in.Name
}

// Rest joins the arguments from index i on with single spaces.
func (in Input) Rest(i int) string {
	if i >= len(in.Args) {
		return ""
	}
	return strings.Join(in.Args[i:], " ")
}

// Arg returns argument i, or an empty string.
func (in Input) Arg(i int) string {
	if i < 0 || i >= len(in.Args) {
		return ""
	}
	return in.Args[i]
}

// IntArg parses argument i as an integer.
func (in Input) IntArg(i int) (int, bool) {
	n, err := strconv.Atoi(in.Arg(i))
	return n, err == nil
}
