package blocks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	types := r.Types()
	if len(types) != 5 {
		t.Fatalf("expected 5 default types, got %d", len(types))
	}
	bt, ok := r.Lookup("output_format")
	if !ok || bt.DisplayName != "Output Format" {
		t.Fatalf("unexpected lookup result: %#v %v", bt, ok)
	}
	if bt.Placeholder() != "Enter output format here..." {
		t.Fatalf("unexpected placeholder: %q", bt.Placeholder())
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Fatalf("unknown type should not resolve")
	}

	types[0].DisplayName = "mutated"
	if again, _ := r.Lookup(types[0].ID); again.DisplayName == "mutated" {
		t.Fatalf("Types must return a copy")
	}
}

func TestNewRegistryValidation(t *testing.T) {
	if _, err := NewRegistry(BlockType{ID: " "}); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if _, err := NewRegistry(BlockType{ID: "a"}, BlockType{ID: "a"}); err == nil {
		t.Fatalf("expected error for duplicate id")
	}
	r, err := NewRegistry(BlockType{ID: "note"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if bt, _ := r.Lookup("note"); bt.DisplayName != "note" {
		t.Fatalf("display name should default to id, got %q", bt.DisplayName)
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	content := `types:
  - id: persona
    name: Persona
    color: teal
  - id: context
    name: Context
    color: blue
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	types := r.Types()
	if len(types) != 2 || types[0].ID != "persona" || types[0].ColorTag != "teal" {
		t.Fatalf("unexpected types: %#v", types)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("types: []\n"), 0644); err != nil {
		t.Fatalf("write empty registry: %v", err)
	}
	if _, err := LoadRegistry(empty); err == nil {
		t.Fatalf("expected error for empty registry file")
	}
}
