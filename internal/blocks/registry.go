package blocks

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// BlockType is display and serialization metadata for a kind of block.
type BlockType struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"name" json:"name"`
	ColorTag    string `yaml:"color" json:"color"`
}

// Placeholder is the hint shown in an empty block editor.
func (t BlockType) Placeholder() string {
	return fmt.Sprintf("Enter %s here...", strings.ToLower(t.DisplayName))
}

// Registry is an immutable, ordered catalog of block types.
type Registry struct {
	types []BlockType
	byID  map[string]int
}

// NewRegistry builds a registry, rejecting empty or duplicate ids.
func NewRegistry(types ...BlockType) (*Registry, error) {
	r := &Registry{
		types: make([]BlockType, 0, len(types)),
		byID:  make(map[string]int, len(types)),
	}
	for _, t := range types {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return nil, fmt.Errorf("block type id is required")
		}
		if _, exists := r.byID[t.ID]; exists {
			return nil, fmt.Errorf("duplicate block type id: %s", t.ID)
		}
		if strings.TrimSpace(t.DisplayName) == "" {
			t.DisplayName = t.ID
		}
		r.byID[t.ID] = len(r.types)
		r.types = append(r.types, t)
	}
	return r, nil
}

var defaultTypes = []BlockType{
	{ID: "context", DisplayName: "Context", ColorTag: "blue"},
	{ID: "requirement", DisplayName: "Requirement", ColorTag: "green"},
	{ID: "constraint", DisplayName: "Constraint", ColorTag: "red"},
	{ID: "example", DisplayName: "Example", ColorTag: "purple"},
	{ID: "output_format", DisplayName: "Output Format", ColorTag: "yellow"},
}

// DefaultRegistry returns the built-in catalog.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultTypes...)
	if err != nil {
		panic(err)
	}
	return r
}

type registryFile struct {
	Types []BlockType `yaml:"types"`
}

// LoadRegistry reads a YAML catalog of the form `types: [{id, name, color}]`.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file %s: %w", path, err)
	}
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", path, err)
	}
	if len(f.Types) == 0 {
		return nil, fmt.Errorf("registry file %s defines no types", path)
	}
	r, err := NewRegistry(f.Types...)
	if err != nil {
		return nil, fmt.Errorf("invalid registry file %s: %w", path, err)
	}
	return r, nil
}

func (r *Registry) Lookup(id string) (BlockType, bool) {
	if r == nil {
		return BlockType{}, false
	}
	i, ok := r.byID[id]
	if !ok {
		return BlockType{}, false
	}
	return r.types[i], true
}

// Types returns the catalog in declaration order.
func (r *Registry) Types() []BlockType {
	if r == nil {
		return nil
	}
	out := make([]BlockType, len(r.types))
	copy(out, r.types)
	return out
}
