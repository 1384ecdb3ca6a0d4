package journey

import (
	"fmt"

	"github.com/LucasGeos/GKG/internal/models"
)

// Entry is the propagation scheme chosen for one routing node.
type Entry struct {
	NodeID   models.ID
	Template Template
	Findings *Matrix
}

// UnmappedContextError describes a routing node whose type and activity
// have no template. It is a diagnostic and never fails a computation.
type UnmappedContextError struct {
	Position int
	NodeID   models.ID
	Type     models.NodeType
	Active   models.Activity
}

func (e UnmappedContextError) Error() string {
	return fmt.Sprintf("journey: node %s at position %d: no template for (%s, %s)",
		e.NodeID, e.Position, e.Type, e.Active)
}

// Context is the ordered list of scheme entries for a journey.
type Context struct {
	Entries  []Entry
	Unmapped []UnmappedContextError
}

// Build selects a scheme for every routing node, in route order. Nodes with
// an unmapped (type, active) pair get no entry and are listed in Unmapped.
func Build(nodes []models.RoutingNode) Context {
	var jc Context
	for i, n := range nodes {
		t, ok := TemplateFor(n.Type, n.Active)
		if !ok {
			jc.Unmapped = append(jc.Unmapped, UnmappedContextError{
				Position: i,
				NodeID:   n.ID,
				Type:     n.Type,
				Active:   n.Active,
			})
			continue
		}
		jc.Entries = append(jc.Entries, Entry{NodeID: n.ID, Template: t, Findings: Scheme(t)})
	}
	return jc
}
