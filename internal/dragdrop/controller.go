// Package dragdrop turns a pointer drag gesture into a single reorder command.
package dragdrop

import (
	"github.com/kayz/promptblocks/internal/blocks"
)

type Phase int

const (
	Idle Phase = iota
	Dragging
	HoveringOver
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case HoveringOver:
		return "hovering"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a snapshot of the drag session.
type State struct {
	Phase    Phase  `json:"phase"`
	SourceID string `json:"source_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`
}

// Controller holds the transient state of at most one drag session.
// It never owns block order; Drop hands a reorder to the caller's collection.
// A Controller is not safe for concurrent use.
type Controller struct {
	state State
}

func (c *Controller) State() State {
	return c.state
}

// Start begins a session on sourceID. A session already in progress is
// abandoned first.
func (c *Controller) Start(sourceID string) {
	c.state = State{Phase: Dragging, SourceID: sourceID}
}

// Hover records the block under the pointer; the last hover wins.
// Hover outside a session is ignored.
func (c *Controller) Hover(targetID string) {
	if c.state.Phase == Idle {
		return
	}
	c.state.Phase = HoveringOver
	c.state.TargetID = targetID
}

// Command returns the reorder a drop would apply, if any.
func (c *Controller) Command() (blocks.Reorder, bool) {
	if c.state.Phase != HoveringOver {
		return blocks.Reorder{}, false
	}
	return blocks.Reorder{SourceID: c.state.SourceID, TargetID: c.state.TargetID}, true
}

// Drop ends the session, applying the pending reorder to coll. Without a
// hover target the drop behaves like Abort. Stale ids are no-ops in Reorder.
func (c *Controller) Drop(coll blocks.Collection) blocks.Collection {
	cmd, ok := c.Command()
	c.state = State{}
	if !ok {
		return coll
	}
	return cmd.Apply(coll)
}

// Abort ends the session without touching any collection.
func (c *Controller) Abort() {
	c.state = State{}
}
