package workspace

import (
	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/dragdrop"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/promptbuild"
)

// BlockView is a block with the presentation metadata of its type.
type BlockView struct {
	blocks.Block
	Name        string `json:"name"`
	Color       string `json:"color"`
	Placeholder string `json:"placeholder"`
	First       bool   `json:"first"`
	Last        bool   `json:"last"`
}

// Snapshot is a consistent view of the whole workspace.
type Snapshot struct {
	Category   string           `json:"category"`
	Blocks     []BlockView      `json:"blocks"`
	Drag       dragdrop.State   `json:"drag"`
	Generation generation.State `json:"generation"`
	CanUndo    bool             `json:"can_undo"`
	Prompt     string           `json:"prompt"`
}

func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	coll, drag, category, canUndo := w.coll, w.drag.State(), w.category, len(w.history) > 0
	w.mu.Unlock()

	registry := w.builder.Registry()
	list := coll.Blocks()
	views := make([]BlockView, 0, len(list))
	for i, b := range list {
		v := BlockView{Block: b, Name: promptbuild.FallbackHeader, First: i == 0, Last: i == len(list)-1}
		if t, ok := registry.Lookup(b.TypeID); ok {
			v.Name = t.DisplayName
			v.Color = t.ColorTag
			v.Placeholder = t.Placeholder()
		}
		views = append(views, v)
	}

	return Snapshot{
		Category:   category,
		Blocks:     views,
		Drag:       drag,
		Generation: w.client.State(),
		CanUndo:    canUndo,
		Prompt:     w.builder.Render(coll),
	}
}
