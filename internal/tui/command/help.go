package command

import (
	"fmt"
	"strings"
)

// Info documents one slash command.
type Info struct {
	Name    string
	Usage   string
	Summary string
	// Phases lists where the command is accepted, for help output only.
	Phases string
}

// Commands lists every command in help order.
var Commands = []Info{
	{"list", "/list [pattern]", "List catalog models, optionally filtered by a glob pattern", "any"},
	{"model", "/model [slot] <model>", "Assign a model to a slot, or to the first empty slot", "setup"},
	{"remove", "/remove <slot|model>", "Empty a slot", "setup"},
	{"start", "/start", "Begin the chat with the assigned models", "setup"},
	{"promote", "/promote", "Send this private exchange to the group and move on", "private"},
	{"restart", "/restart", "Discard this private exchange and resend the prompt", "private"},
	{"boot", "/boot [slot|model]", "Drop a model from the conversation", "private, debate"},
	{"ask", "/ask <slot|model> <question>", "Ask one agent a question in front of the group", "debate"},
	{"rounds", "/rounds <1-5>", "Set how many times each agent speaks per message", "any"},
	{"stats", "/stats", "Show token usage and cost so far", "any"},
	{"help", "/help", "Show this help", "any"},
	{"exit", "/exit", "End the chat and print the summary", "any"},
}

// Lookup returns the entry for a command name.
func Lookup(name string) (Info, bool) {
	for _, s := range Commands {
		if s.Name == name {
			return s, true
		}
	}
	return Info{}, false
}

// HelpText renders the command table.
func HelpText() string {
	width := 0
	for _, s := range Commands {
		if len(s.Usage) > width {
			width = len(s.Usage)
		}
	}

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, s := range Commands {
		fmt.Fprintf(&sb, "  %-*s  %s (%s)\n", width, s.Usage, s.Summary, s.Phases)
	}
	sb.WriteString("\nAnything else is sent to the agents. An empty line asks them to keep going.")
	return sb.String()
}
