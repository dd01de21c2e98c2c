package session

import (
	"testing"

	"github.com/Iron-Ham/superchat/internal/catalog"
)

func TestTag(t *testing.T) {
	tests := []struct {
		ordinal int
		want    string
	}{
		{1, "д"},
		{2, "ф"},
		{3, "ш"},
		{4, "в"},
		{5, "г"},
		{6, "л"},
		{7, "#7"},
		{10, "#10"},
		{0, "#0"},
	}

	for _, tt := range tests {
		if got := Tag(tt.ordinal); got != tt.want {
			t.Errorf("Tag(%d) = %q, want %q", tt.ordinal, got, tt.want)
		}
	}
}

func TestSlot_Label(t *testing.T) {
	empty := Slot{Ordinal: 2}
	if empty.Occupied() {
		t.Error("empty slot reports occupied")
	}
	if got := empty.Label(); got != "[ф] empty" {
		t.Errorf("Label() = %q", got)
	}

	full := Slot{Ordinal: 1, Model: &catalog.Model{ID: "k2", Family: "Kimi", Name: "K2", Release: "0905"}}
	if got := full.Label(); got != "[д] Kimi K2 (0905)" {
		t.Errorf("Label() = %q", got)
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{Setup(), "setup"},
		{Private(2), "private(2)"},
		{Debate(), "debate"},
		{Ended(), "ended"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if Debate().Slot() != 0 || Private(3).Slot() != 3 {
		t.Error("Slot() returned the wrong ordinal")
	}
}
