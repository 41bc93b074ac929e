package blocks

// Command is one editing step applied functionally to a Collection.
type Command interface {
	Apply(Collection) Collection
}

// AddBlock appends a block. ID is optional; an empty or already used id is
// replaced with a fresh one.
type AddBlock struct {
	TypeID string
	ID     string
}

func (a AddBlock) Apply(c Collection) Collection {
	return c.insertNew(Block{ID: a.ID, TypeID: a.TypeID})
}

type RemoveBlock struct {
	ID string
}

func (r RemoveBlock) Apply(c Collection) Collection {
	return c.Remove(r.ID)
}

type UpdateContent struct {
	ID      string
	Content string
}

func (u UpdateContent) Apply(c Collection) Collection {
	return c.UpdateContent(u.ID, u.Content)
}

type MoveUp struct {
	ID string
}

func (m MoveUp) Apply(c Collection) Collection {
	return c.MoveUp(m.ID)
}

type MoveDown struct {
	ID string
}

func (m MoveDown) Apply(c Collection) Collection {
	return c.MoveDown(m.ID)
}

type Reorder struct {
	SourceID string
	TargetID string
}

func (r Reorder) Apply(c Collection) Collection {
	return c.Reorder(r.SourceID, r.TargetID)
}

// ApplyAll folds cmds over c in order.
func ApplyAll(c Collection, cmds ...Command) Collection {
	for _, cmd := range cmds {
		c = cmd.Apply(c)
	}
	return c
}
