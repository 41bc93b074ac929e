package dragdrop

import (
	"testing"

	"github.com/kayz/promptblocks/internal/blocks"
)

func sample(t *testing.T) blocks.Collection {
	t.Helper()
	c, err := blocks.NewCollection(
		blocks.Block{ID: "a", TypeID: "context", Content: "A"},
		blocks.Block{ID: "b", TypeID: "requirement", Content: "B"},
		blocks.Block{ID: "c", TypeID: "example", Content: "C"},
	)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	return c
}

func order(c blocks.Collection) string {
	var s string
	for _, b := range c.Blocks() {
		s += b.ID
	}
	return s
}

func TestDropAppliesLastHover(t *testing.T) {
	var ctl Controller
	coll := sample(t)

	ctl.Start("a")
	if ctl.State().Phase != Dragging {
		t.Fatalf("expected dragging, got %v", ctl.State().Phase)
	}
	ctl.Hover("b")
	ctl.Hover("c")
	if st := ctl.State(); st.Phase != HoveringOver || st.TargetID != "c" {
		t.Fatalf("unexpected state: %#v", st)
	}

	got := ctl.Drop(coll)
	if order(got) != "bca" {
		t.Fatalf("expected bca, got %s", order(got))
	}
	if ctl.State().Phase != Idle {
		t.Fatalf("expected idle after drop")
	}
	if order(coll) != "abc" {
		t.Fatalf("input collection mutated")
	}
}

func TestAbortLeavesCollection(t *testing.T) {
	var ctl Controller
	coll := sample(t)
	ctl.Start("a")
	ctl.Hover("c")
	ctl.Abort()
	if ctl.State() != (State{}) {
		t.Fatalf("expected reset state, got %#v", ctl.State())
	}
	if got := ctl.Drop(coll); order(got) != "abc" {
		t.Fatalf("drop after abort must be a no-op, got %s", order(got))
	}
}

func TestDropWithoutHoverIsNoop(t *testing.T) {
	var ctl Controller
	coll := sample(t)
	ctl.Start("b")
	if got := ctl.Drop(coll); order(got) != "abc" {
		t.Fatalf("expected unchanged, got %s", order(got))
	}
}

func TestRestartWhileDraggingAbandonsSession(t *testing.T) {
	var ctl Controller
	coll := sample(t)
	ctl.Start("a")
	ctl.Hover("c")
	ctl.Start("c")
	if st := ctl.State(); st.Phase != Dragging || st.SourceID != "c" || st.TargetID != "" {
		t.Fatalf("unexpected state after restart: %#v", st)
	}
	ctl.Hover("a")
	if got := ctl.Drop(coll); order(got) != "cab" {
		t.Fatalf("expected cab, got %s", order(got))
	}
}

func TestHoverWhileIdleIgnored(t *testing.T) {
	var ctl Controller
	ctl.Hover("a")
	if ctl.State().Phase != Idle {
		t.Fatalf("hover outside a session must not start one")
	}
}

func TestDropReferencingRemovedBlock(t *testing.T) {
	var ctl Controller
	coll := sample(t)
	ctl.Start("a")
	ctl.Hover("c")
	coll = coll.Remove("c")
	if got := ctl.Drop(coll); order(got) != "ab" {
		t.Fatalf("stale target must be ignored, got %s", order(got))
	}
}
