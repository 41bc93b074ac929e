package blocks

import (
	"fmt"

	"github.com/google/uuid"
)

// Block is one labeled unit of prompt text. ID never changes once assigned.
type Block struct {
	ID      string `json:"id" yaml:"id"`
	TypeID  string `json:"type" yaml:"type"`
	Content string `json:"content" yaml:"content"`
}

// NewID mints a block id.
var NewID = uuid.NewString

// Collection is an immutable ordered sequence of blocks with unique ids.
// Every operation returns a new Collection and leaves the receiver untouched.
type Collection struct {
	blocks []Block
}

// NewCollection builds a collection from existing blocks.
// Blocks without an id get a fresh one; duplicate ids are rejected.
func NewCollection(blocks ...Block) (Collection, error) {
	seen := make(map[string]struct{}, len(blocks))
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.ID == "" {
			b.ID = NewID()
		}
		if _, exists := seen[b.ID]; exists {
			return Collection{}, fmt.Errorf("duplicate block id: %s", b.ID)
		}
		seen[b.ID] = struct{}{}
		out = append(out, b)
	}
	return Collection{blocks: out}, nil
}

// Blocks returns a copy of the sequence.
func (c Collection) Blocks() []Block {
	out := make([]Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

func (c Collection) Len() int {
	return len(c.blocks)
}

// Index returns the position of id, or -1.
func (c Collection) Index(id string) int {
	for i, b := range c.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) Get(id string) (Block, bool) {
	if i := c.Index(id); i >= 0 {
		return c.blocks[i], true
	}
	return Block{}, false
}

// Equal reports whether both collections hold the same blocks in the same order.
func (c Collection) Equal(other Collection) bool {
	if len(c.blocks) != len(other.blocks) {
		return false
	}
	for i := range c.blocks {
		if c.blocks[i] != other.blocks[i] {
			return false
		}
	}
	return true
}

// Add appends a block of the given type with a fresh id and empty content.
func (c Collection) Add(typeID string) Collection {
	return c.insertNew(Block{ID: NewID(), TypeID: typeID})
}

func (c Collection) insertNew(b Block) Collection {
	for b.ID == "" || c.Index(b.ID) >= 0 {
		b.ID = NewID()
	}
	out := make([]Block, len(c.blocks), len(c.blocks)+1)
	copy(out, c.blocks)
	return Collection{blocks: append(out, b)}
}

// Remove drops the block with id. Absent ids leave the collection unchanged.
func (c Collection) Remove(id string) Collection {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	out := make([]Block, 0, len(c.blocks)-1)
	out = append(out, c.blocks[:i]...)
	out = append(out, c.blocks[i+1:]...)
	return Collection{blocks: out}
}

func (c Collection) UpdateContent(id, content string) Collection {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	out := c.Blocks()
	out[i].Content = content
	return Collection{blocks: out}
}

func (c Collection) MoveUp(id string) Collection {
	i := c.Index(id)
	if i <= 0 {
		return c
	}
	return c.swap(i, i-1)
}

func (c Collection) MoveDown(id string) Collection {
	i := c.Index(id)
	if i < 0 || i == len(c.blocks)-1 {
		return c
	}
	return c.swap(i, i+1)
}

func (c Collection) swap(i, j int) Collection {
	out := c.Blocks()
	out[i], out[j] = out[j], out[i]
	return Collection{blocks: out}
}

// Reorder takes the source block out and reinserts it at the index the
// target occupied before the move.
func (c Collection) Reorder(sourceID, targetID string) Collection {
	if sourceID == targetID {
		return c
	}
	from := c.Index(sourceID)
	to := c.Index(targetID)
	if from < 0 || to < 0 {
		return c
	}
	moved := c.blocks[from]
	out := make([]Block, 0, len(c.blocks))
	out = append(out, c.blocks[:from]...)
	out = append(out, c.blocks[from+1:]...)
	out = append(out[:to], append([]Block{moved}, out[to:]...)...)
	return Collection{blocks: out}
}
