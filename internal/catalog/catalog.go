// Package catalog holds the immutable set of models a chat can bind to slots.
//
// A catalog is loaded once at startup, either from the models.yaml built into
// the binary or from a user-supplied file, and is passed explicitly to the
// components that need it. Nothing mutates it after Load returns.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/superchat/internal/errors"
)

//go:embed models.yaml
var embeddedModels []byte

// Capabilities lists optional features a model supports.
type Capabilities struct {
	Vision    bool `yaml:"vision" json:"vision"`
	Tools     bool `yaml:"tools" json:"tools"`
	Reasoning bool `yaml:"reasoning" json:"reasoning"`
}

// Model describes one entry of the catalog.
type Model struct {
	ID            string       `yaml:"-" json:"id"`
	Company       string       `yaml:"company" json:"company"`
	Family        string       `yaml:"family" json:"family"`
	Name          string       `yaml:"model" json:"model"`
	Release       string       `yaml:"release" json:"release,omitempty"`
	Description   string       `yaml:"description" json:"description,omitempty"`
	RemoteID      string       `yaml:"openrouter_id" json:"openrouter_id"`
	InputCost     float64      `yaml:"input_cost" json:"input_cost"`   // USD per million input tokens
	OutputCost    float64      `yaml:"output_cost" json:"output_cost"` // USD per million output tokens
	ContextLength int          `yaml:"context_length" json:"context_length"`
	CreationDate  string       `yaml:"creation_date" json:"creation_date,omitempty"`
	Capabilities  Capabilities `yaml:"capabilities" json:"capabilities"`
}

// DisplayName renders "Family Model (Release)", dropping empty parts.
func (m *Model) DisplayName() string {
	name := strings.TrimSpace(strings.Join(nonEmpty(m.Family, m.Name), " "))
	if name == "" {
		name = m.ID
	}
	if m.Release != "" {
		name += " (" + m.Release + ")"
	}
	return name
}

// Cost returns the USD cost of the given token counts at this model's prices.
func (m *Model) Cost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1e6*m.InputCost + float64(outputTokens)/1e6*m.OutputCost
}

func nonEmpty(parts ...string) []string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Catalog is an ordered, read-only collection of models.
type Catalog struct {
	models []*Model
	byID   map[string]*Model
}

// New builds a catalog from models in definition order. Identifiers must be
// unique and every model needs a remote id and non-negative prices.
func New(models []*Model) (*Catalog, error) {
	c := &Catalog{
		models: make([]*Model, 0, len(models)),
		byID:   make(map[string]*Model, len(models)),
	}
	for _, m := range models {
		if err := validate(m); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate identifier %q", errors.ErrCatalogInvalid, m.ID)
		}
		c.models = append(c.models, m)
		c.byID[m.ID] = m
	}
	return c, nil
}

func validate(m *Model) error {
	switch {
	case m.ID == "":
		return fmt.Errorf("%w: model with empty identifier", errors.ErrCatalogInvalid)
	case m.RemoteID == "":
		return fmt.Errorf("%w: %s: openrouter_id is required", errors.ErrCatalogInvalid, m.ID)
	case m.InputCost < 0 || m.OutputCost < 0:
		return fmt.Errorf("%w: %s: costs must be non-negative", errors.ErrCatalogInvalid, m.ID)
	case m.ContextLength < 0:
		return fmt.Errorf("%w: %s: context_length must be non-negative", errors.ErrCatalogInvalid, m.ID)
	}
	return nil
}

// Default returns the catalog built into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedModels)
}

// Load reads a catalog file, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML document with a top-level "models" mapping keyed by
// identifier. The mapping is walked node by node so definition order survives.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Models yaml.Node `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCatalogInvalid, err)
	}
	if doc.Models.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: \"models\" must be a mapping of identifier to model", errors.ErrCatalogInvalid)
	}

	nodes := doc.Models.Content
	models := make([]*Model, 0, len(nodes)/2)
	for i := 0; i+1 < len(nodes); i += 2 {
		id := strings.TrimSpace(nodes[i].Value)
		m := &Model{}
		if err := nodes[i+1].Decode(m); err != nil {
			return nil, fmt.Errorf("%w: %s (line %d): %v", errors.ErrCatalogInvalid, id, nodes[i].Line, err)
		}
		m.ID = id
		models = append(models, m)
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: no models defined", errors.ErrCatalogInvalid)
	}
	return New(models)
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.models)
}

// List returns the models in definition order.
func (c *Catalog) List() []*Model {
	out := make([]*Model, len(c.models))
	copy(out, c.models)
	return out
}

// Get looks a model up by exact identifier.
func (c *Catalog) Get(id string) (*Model, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Subset returns a catalog holding only the given models, in the order given.
// Models that are not part of c are ignored.
func (c *Catalog) Subset(models ...*Model) *Catalog {
	sub := &Catalog{byID: make(map[string]*Model, len(models))}
	for _, m := range models {
		if m == nil || c.byID[m.ID] != m {
			continue
		}
		if _, dup := sub.byID[m.ID]; dup {
			continue
		}
		sub.models = append(sub.models, m)
		sub.byID[m.ID] = m
	}
	return sub
}
