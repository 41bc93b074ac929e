// Package workspace ties one block collection, one drag session and one
// generation client together behind a single lock.
package workspace

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kayz/promptblocks/internal/blocks"
	"github.com/kayz/promptblocks/internal/dragdrop"
	"github.com/kayz/promptblocks/internal/generation"
	"github.com/kayz/promptblocks/internal/logger"
	"github.com/kayz/promptblocks/internal/persist"
	"github.com/kayz/promptblocks/internal/promptbuild"
)

// Category groups templates by the kind of task a prompt is for.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var Categories = []Category{
	{ID: "feature", Name: "New Feature"},
	{ID: "bugfix", Name: "Bug Fix"},
	{ID: "test", Name: "Test Cases"},
}

const DefaultCategory = "feature"

const defaultHistoryLimit = 50

// ErrNoStore is returned by template operations on a workspace without a store.
var ErrNoStore = errors.New("no template store configured")

// TemplateStore is the subset of persist.Store the workspace needs.
type TemplateStore interface {
	SaveTemplate(name, category string, list []blocks.Block) (*persist.Template, error)
	GetTemplate(name string) (*persist.Template, error)
}

type Option func(*Workspace)

// WithSeed starts the workspace with a context and a requirement block.
func WithSeed() Option {
	return func(w *Workspace) {
		w.coll = blocks.ApplyAll(w.coll,
			blocks.AddBlock{TypeID: "context"},
			blocks.AddBlock{TypeID: "requirement"},
		)
		list := w.coll.Blocks()
		w.coll = blocks.ApplyAll(w.coll,
			blocks.UpdateContent{ID: list[len(list)-2].ID, Content: "I am working on a React application that uses Next.js and Tailwind CSS."},
			blocks.UpdateContent{ID: list[len(list)-1].ID, Content: "Create a component for user authentication that includes login and signup forms."},
		)
	}
}

func WithStore(s TemplateStore) Option {
	return func(w *Workspace) { w.store = s }
}

// WithHistoryLimit bounds the undo history. Zero disables undo.
func WithHistoryLimit(n int) Option {
	return func(w *Workspace) {
		if n >= 0 {
			w.historyLimit = n
		}
	}
}

// Workspace serializes every mutation of its collection. It is safe for
// concurrent use.
type Workspace struct {
	mu           sync.Mutex
	builder      *promptbuild.Builder
	client       *generation.Client
	store        TemplateStore
	coll         blocks.Collection
	drag         dragdrop.Controller
	history      []blocks.Collection
	historyLimit int
	category     string
}

func New(builder *promptbuild.Builder, client *generation.Client, opts ...Option) *Workspace {
	w := &Workspace{
		builder:      builder,
		client:       client,
		historyLimit: defaultHistoryLimit,
		category:     DefaultCategory,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Workspace) Registry() *blocks.Registry {
	return w.builder.Registry()
}

func (w *Workspace) Client() *generation.Client {
	return w.client
}

// Blocks returns the current collection.
func (w *Workspace) Blocks() blocks.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.coll
}

// Apply runs cmds in order and returns the resulting collection.
// A sequence that changes nothing leaves no undo entry.
func (w *Workspace) Apply(cmds ...blocks.Command) blocks.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replaceLocked(blocks.ApplyAll(w.coll, cmds...))
	return w.coll
}

// Replace swaps in a whole collection, e.g. one loaded from a file.
func (w *Workspace) Replace(coll blocks.Collection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replaceLocked(coll)
}

func (w *Workspace) replaceLocked(next blocks.Collection) {
	if next.Equal(w.coll) {
		return
	}
	if w.historyLimit > 0 {
		w.history = append(w.history, w.coll)
		if len(w.history) > w.historyLimit {
			w.history = w.history[len(w.history)-w.historyLimit:]
		}
	}
	w.coll = next
}

// Undo restores the collection before the latest change. It reports false
// when there is nothing to undo.
func (w *Workspace) Undo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.history) == 0 {
		return false
	}
	last := len(w.history) - 1
	w.coll = w.history[last]
	w.history = w.history[:last]
	return true
}

func (w *Workspace) DragStart(sourceID string) dragdrop.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drag.Start(sourceID)
	return w.drag.State()
}

func (w *Workspace) DragHover(targetID string) dragdrop.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drag.Hover(targetID)
	return w.drag.State()
}

// DragDrop ends the drag session, applying its reorder if one is pending.
func (w *Workspace) DragDrop() blocks.Collection {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replaceLocked(w.drag.Drop(w.coll))
	return w.coll
}

func (w *Workspace) DragAbort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drag.Abort()
}

func (w *Workspace) Category() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.category
}

func (w *Workspace) SetCategory(id string) error {
	if !validCategory(id) {
		return fmt.Errorf("unknown category: %q", id)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.category = id
	return nil
}

func validCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Prompt renders the current collection without auditing it.
func (w *Workspace) Prompt() string {
	return w.builder.Render(w.Blocks())
}

// Generate serializes the current collection and submits it. The returned
// token identifies the submission. Build and Submit share one critical
// section so tokens follow the order of the collections they serialize.
func (w *Workspace) Generate() uint64 {
	w.mu.Lock()
	prompt := w.builder.Build(w.coll)
	token := w.client.Submit(prompt)
	w.mu.Unlock()
	logger.Debug("Submitted prompt (%d chars) as generation %d", len(prompt), token)
	return token
}

// SaveTemplate stores the current blocks under name in the current category.
func (w *Workspace) SaveTemplate(name string) (*persist.Template, error) {
	if w.store == nil {
		return nil, ErrNoStore
	}
	w.mu.Lock()
	list, category := w.coll.Blocks(), w.category
	w.mu.Unlock()
	return w.store.SaveTemplate(name, category, list)
}

// LoadTemplate replaces the collection with a saved template's blocks and
// selects its category. The replacement can be undone.
func (w *Workspace) LoadTemplate(name string) (*persist.Template, error) {
	if w.store == nil {
		return nil, ErrNoStore
	}
	t, err := w.store.GetTemplate(name)
	if err != nil {
		return nil, err
	}
	coll, err := blocks.NewCollection(t.Blocks...)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", t.Name, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.drag.Abort()
	w.replaceLocked(coll)
	if validCategory(t.Category) {
		w.category = t.Category
	}
	return t, nil
}
