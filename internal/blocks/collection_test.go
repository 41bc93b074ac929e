package blocks

import (
	"math/rand"
	"strconv"
	"testing"
)

func ids(c Collection) []string {
	out := make([]string, 0, c.Len())
	for _, b := range c.Blocks() {
		out = append(out, b.ID)
	}
	return out
}

func sameIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func mustCollection(t *testing.T, blocks ...Block) Collection {
	t.Helper()
	c, err := NewCollection(blocks...)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	return c
}

func abcd(t *testing.T) Collection {
	return mustCollection(t,
		Block{ID: "a", TypeID: "context", Content: "A"},
		Block{ID: "b", TypeID: "requirement", Content: "B"},
		Block{ID: "c", TypeID: "context", Content: "C"},
		Block{ID: "d", TypeID: "example", Content: "D"},
	)
}

func TestNewCollectionRejectsDuplicateIDs(t *testing.T) {
	_, err := NewCollection(Block{ID: "x"}, Block{ID: "x"})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
	c := mustCollection(t, Block{TypeID: "context"})
	if c.Blocks()[0].ID == "" {
		t.Fatalf("expected generated id for block without one")
	}
}

func TestAddAppendsFreshEmptyBlock(t *testing.T) {
	c := abcd(t)
	next := c.Add("constraint")
	if next.Len() != 5 || c.Len() != 4 {
		t.Fatalf("expected receiver untouched and new len 5, got %d/%d", c.Len(), next.Len())
	}
	added := next.Blocks()[4]
	if added.TypeID != "constraint" || added.Content != "" || added.ID == "" {
		t.Fatalf("unexpected added block: %#v", added)
	}
	if c.Index(added.ID) >= 0 {
		t.Fatalf("added id collides with existing block")
	}
}

func TestAddBlockReplacesUsedID(t *testing.T) {
	c := abcd(t)
	next := AddBlock{TypeID: "context", ID: "a"}.Apply(c)
	if next.Len() != 5 {
		t.Fatalf("expected block appended")
	}
	if next.Blocks()[4].ID == "a" {
		t.Fatalf("duplicate id should have been replaced")
	}
	pinned := AddBlock{TypeID: "context", ID: "z"}.Apply(c)
	if pinned.Blocks()[4].ID != "z" {
		t.Fatalf("unused id should be kept")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := abcd(t)
	once := c.Remove("b")
	if !sameIDs(ids(once), "a", "c", "d") {
		t.Fatalf("unexpected order after remove: %v", ids(once))
	}
	twice := once.Remove("b")
	if !twice.Equal(once) {
		t.Fatalf("second remove changed the collection")
	}
}

func TestUpdateContent(t *testing.T) {
	c := abcd(t)
	next := c.UpdateContent("c", "changed")
	if b, _ := next.Get("c"); b.Content != "changed" {
		t.Fatalf("content not updated: %#v", b)
	}
	if b, _ := c.Get("c"); b.Content != "C" {
		t.Fatalf("receiver mutated: %#v", b)
	}
	if !c.UpdateContent("missing", "x").Equal(c) {
		t.Fatalf("update of absent id should be a no-op")
	}
}

func TestMoveUpDownEdges(t *testing.T) {
	c := abcd(t)
	if !c.MoveUp("a").Equal(c) {
		t.Fatalf("moveUp on first should be identity")
	}
	if !c.MoveDown("d").Equal(c) {
		t.Fatalf("moveDown on last should be identity")
	}
	if !c.MoveUp("missing").Equal(c) || !c.MoveDown("missing").Equal(c) {
		t.Fatalf("move of absent id should be identity")
	}
	if got := ids(c.MoveUp("c")); !sameIDs(got, "a", "c", "b", "d") {
		t.Fatalf("moveUp: %v", got)
	}
	if got := ids(c.MoveDown("b")); !sameIDs(got, "a", "c", "b", "d") {
		t.Fatalf("moveDown: %v", got)
	}
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name   string
		source string
		target string
		want   []string
	}{
		{"forward", "a", "c", []string{"b", "c", "a", "d"}},
		{"backward", "d", "b", []string{"a", "d", "b", "c"}},
		{"to end", "a", "d", []string{"b", "c", "d", "a"}},
		{"to front", "c", "a", []string{"c", "a", "b", "d"}},
		{"adjacent", "b", "c", []string{"a", "c", "b", "d"}},
		{"same id", "b", "b", []string{"a", "b", "c", "d"}},
		{"missing source", "x", "b", []string{"a", "b", "c", "d"}},
		{"missing target", "b", "x", []string{"a", "b", "c", "d"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := abcd(t)
			got := Reorder{SourceID: tc.source, TargetID: tc.target}.Apply(c)
			if !sameIDs(ids(got), tc.want...) {
				t.Fatalf("got %v, want %v", ids(got), tc.want)
			}
			want := map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"}
			for _, b := range got.Blocks() {
				if b.Content != want[b.ID] {
					t.Fatalf("content of %s changed: %q", b.ID, b.Content)
				}
			}
		})
	}
}

// Random command sequences never alter id or content of a block except
// through UpdateContent on that block.
func TestCommandsPreserveIdentityAndContent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	c := abcd(t)
	expected := map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"}

	pick := func() string {
		all := ids(c)
		if len(all) == 0 || rng.Intn(10) == 0 {
			return "missing"
		}
		return all[rng.Intn(len(all))]
	}

	for step := 0; step < 2000; step++ {
		var cmd Command
		switch rng.Intn(6) {
		case 0:
			cmd = AddBlock{TypeID: "context"}
		case 1:
			if rng.Intn(3) == 0 {
				cmd = RemoveBlock{ID: pick()}
			} else {
				cmd = MoveUp{ID: pick()}
			}
		case 2:
			id := pick()
			text := "v" + strconv.Itoa(step)
			cmd = UpdateContent{ID: id, Content: text}
			if _, ok := expected[id]; ok {
				expected[id] = text
			}
		case 3:
			cmd = MoveDown{ID: pick()}
		default:
			cmd = Reorder{SourceID: pick(), TargetID: pick()}
		}
		if rm, ok := cmd.(RemoveBlock); ok {
			delete(expected, rm.ID)
		}
		c = cmd.Apply(c)

		seen := map[string]bool{}
		for _, b := range c.Blocks() {
			if seen[b.ID] {
				t.Fatalf("step %d: duplicate id %s", step, b.ID)
			}
			seen[b.ID] = true
			if _, tracked := expected[b.ID]; !tracked {
				expected[b.ID] = b.Content
			}
			if expected[b.ID] != b.Content {
				t.Fatalf("step %d: block %s content %q, want %q", step, b.ID, b.Content, expected[b.ID])
			}
		}
		if len(seen) != len(expected) {
			t.Fatalf("step %d: tracked %d blocks, collection has %d", step, len(expected), len(seen))
		}
	}
}
