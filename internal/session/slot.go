package session

import (
	"fmt"

	"github.com/Iron-Ham/superchat/internal/catalog"
)

// Status tracks a slot's participation once the chat has started.
type Status int

const (
	// StatusPending is an occupied slot not yet through its private phase.
	StatusPending Status = iota
	// StatusActive takes part in debate rounds.
	StatusActive
	// StatusBooted was removed from participation; its recorded turns stay.
	StatusBooted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusBooted:
		return "booted"
	default:
		return "unknown"
	}
}

// tags are the short per-slot identifiers shown next to agent names.
var tags = []string{"д", "ф", "ш", "в", "г", "л"}

// Tag returns the identifier for a slot ordinal: a Cyrillic letter for the
// first six slots, then "#N".
func Tag(ordinal int) string {
	if ordinal >= 1 && ordinal <= len(tags) {
		return tags[ordinal-1]
	}
	return fmt.Sprintf("#%d", ordinal)
}

// Slot is a numbered participant position.
type Slot struct {
	Ordinal int
	Model   *catalog.Model
	Status  Status
}

// Occupied reports whether a model is bound to the slot.
func (s Slot) Occupied() bool {
	return s.Model != nil
}

// Tag returns the slot's short identifier.
func (s Slot) Tag() string {
	return Tag(s.Ordinal)
}

// Name returns the bound model's display name, or "empty".
func (s Slot) Name() string {
	if s.Model == nil {
		return "empty"
	}
	return s.Model.DisplayName()
}

// Label renders "[д] Kimi K2 (0905)".
func (s Slot) Label() string {
	return fmt.Sprintf("[%s] %s", s.Tag(), s.Name())
}
