package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Iron-Ham/superchat/internal/errors"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	return c
}

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	c := mustDefault(t)

	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}
	first := c.List()[0]
	if first.ID != "gpt-5" {
		t.Errorf("first model = %q, want definition order starting with gpt-5", first.ID)
	}
	for _, m := range c.List() {
		if m.RemoteID == "" {
			t.Errorf("%s has no openrouter_id", m.ID)
		}
	}
}

func TestParse_PreservesDefinitionOrder(t *testing.T) {
	data := []byte(`
models:
  zeta:
    family: Z
    model: One
    openrouter_id: z/one
  alpha:
    family: A
    model: Two
    openrouter_id: a/two
    input_cost: 1.5
`)
	c, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var ids []string
	for _, m := range c.List() {
		ids = append(ids, m.ID)
	}
	if want := []string{"zeta", "alpha"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
	if m, _ := c.Get("alpha"); m.InputCost != 1.5 {
		t.Errorf("alpha.InputCost = %v, want 1.5", m.InputCost)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "models: ["},
		{"models is a list", "models:\n  - a\n"},
		{"empty mapping", "models: {}\n"},
		{"missing remote id", "models:\n  a:\n    family: A\n"},
		{"negative cost", "models:\n  a:\n    openrouter_id: x/a\n    input_cost: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCatalogInvalid) {
				t.Errorf("Parse() error = %v, want ErrCatalogInvalid", err)
			}
		})
	}
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := New([]*Model{
		{ID: "a", RemoteID: "x/a"},
		{ID: "a", RemoteID: "x/b"},
	})
	if !errors.Is(err, errors.ErrCatalogInvalid) {
		t.Errorf("New() error = %v, want ErrCatalogInvalid", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses embedded", func(t *testing.T) {
		c, err := Load("")
		if err != nil || c.Len() == 0 {
			t.Fatalf("Load(\"\") = %v, %v", c, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "models.yaml")
		if err := os.WriteFile(path, []byte("models:\n  only:\n    openrouter_id: x/only\n"), 0644); err != nil {
			t.Fatal(err)
		}
		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if c.Len() != 1 {
			t.Errorf("Len() = %d, want 1", c.Len())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Load() of a missing file should fail")
		}
	})
}

func TestModel_DisplayName(t *testing.T) {
	tests := []struct {
		model Model
		want  string
	}{
		{Model{ID: "k2", Family: "Kimi", Name: "K2", Release: "0905"}, "Kimi K2 (0905)"},
		{Model{ID: "gpt-5", Family: "GPT", Name: "5"}, "GPT 5"},
		{Model{ID: "bare"}, "bare"},
		{Model{ID: "x", Name: "Solo", Release: "1"}, "Solo (1)"},
	}

	for _, tt := range tests {
		if got := tt.model.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestModel_Cost(t *testing.T) {
	m := Model{InputCost: 3, OutputCost: 15}
	if got := m.Cost(1_000_000, 1_000_000); got != 18 {
		t.Errorf("Cost(1M, 1M) = %v, want 18", got)
	}
	if got := m.Cost(0, 0); got != 0 {
		t.Errorf("Cost(0, 0) = %v, want 0", got)
	}
	if got := m.Cost(500_000, 0); got != 1.5 {
		t.Errorf("Cost(500k, 0) = %v, want 1.5", got)
	}
}

func TestSubset(t *testing.T) {
	c := mustDefault(t)
	k2, _ := c.Get("k2")
	sonnet, _ := c.Get("claude-sonnet")
	foreign := &Model{ID: "k2", RemoteID: "other"}

	sub := c.Subset(sonnet, k2, nil, foreign, k2)
	if sub.Len() != 2 {
		t.Fatalf("Subset().Len() = %d, want 2", sub.Len())
	}
	if sub.List()[0] != sonnet {
		t.Errorf("Subset() did not keep argument order")
	}

	got, err := sub.Resolve("claude")
	if err != nil || got != sonnet {
		t.Errorf("Subset().Resolve(claude) = %v, %v; want claude-sonnet", got, err)
	}
}
