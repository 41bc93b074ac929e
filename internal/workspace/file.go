package workspace

import (
	"fmt"
	"os"

	"github.com/kayz/promptblocks/internal/blocks"
	"gopkg.in/yaml.v3"
)

// File is the YAML form of a workspace used by the command line:
//
//	category: bugfix
//	blocks:
//	  - type: context
//	    content: |
//	      ...
type File struct {
	Category string         `yaml:"category,omitempty"`
	Blocks   []blocks.Block `yaml:"blocks"`
}

func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

func WriteFile(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load replaces the collection and category with the file's contents and
// aborts any drag session. Nothing changes if the file is invalid.
func (w *Workspace) Load(f *File) error {
	coll, err := blocks.NewCollection(f.Blocks...)
	if err != nil {
		return err
	}
	if f.Category != "" && !validCategory(f.Category) {
		return fmt.Errorf("unknown category: %q", f.Category)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.drag.Abort()
	w.replaceLocked(coll)
	if f.Category != "" {
		w.category = f.Category
	}
	return nil
}

// File captures the current collection and category.
func (w *Workspace) File() *File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &File{Category: w.category, Blocks: w.coll.Blocks()}
}
