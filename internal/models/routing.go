package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NodeType classifies a routing node.
type NodeType string

// Routing node types.
const (
	NodeIntersection NodeType = "intersection"
	NodeConnecting   NodeType = "connecting"
	NodeEntranceExit NodeType = "entrance-exit"
	NodeBus          NodeType = "bus"
	NodeTrain        NodeType = "train"
)

// Activity is what the journey does at a routing node.
type Activity string

// Routing node activities.
const (
	ActivityTraverse Activity = "traverse"
	ActivityTurn     Activity = "turn"
	ActivityTransfer Activity = "transfer"
)

// RoutingNode is one k-level network node on the computed route.
type RoutingNode struct {
	ID       ID       `json:"id" yaml:"id"`
	Type     NodeType `json:"type" yaml:"type"`
	Active   Activity `json:"active" yaml:"active"`
	Geometry *Point   `json:"geometry,omitempty" yaml:"geometry,omitempty"`
}

// RoutingResult is the ordered list of routing nodes for one journey.
type RoutingResult struct {
	Nodes []RoutingNode `json:"nk_routing_nodes" yaml:"nk_routing_nodes"`
}

// Validate checks that the route has nodes and every node has an id.
// Type and activity values are not restricted: unknown pairs are filtered
// later when the journey context is built.
func (r *RoutingResult) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Nodes, validation.Required),
	); err != nil {
		return err
	}
	for i, n := range r.Nodes {
		if n.ID.IsZero() {
			return fmt.Errorf("nk_routing_nodes[%d]: id is required", i)
		}
	}
	return nil
}

// Boundaries returns the first and last routing nodes.
func (r *RoutingResult) Boundaries() (first, last RoutingNode, ok bool) {
	if len(r.Nodes) == 0 {
		return RoutingNode{}, RoutingNode{}, false
	}
	return r.Nodes[0], r.Nodes[len(r.Nodes)-1], true
}

// PhaseRegion is the stretch of a journey between two significant routing
// nodes.
type PhaseRegion struct {
	Start ID `json:"start" yaml:"start"`
	End   ID `json:"end" yaml:"end"`
}

// PhaseRegions pairs up consecutive bounding nodes: the first node, every
// transfer node, and the last node. A route with a single node has no
// regions.
func (r *RoutingResult) PhaseRegions() []PhaseRegion {
	first, last, ok := r.Boundaries()
	if !ok || len(r.Nodes) < 2 {
		return nil
	}
	bounds := []RoutingNode{first}
	for _, n := range r.Nodes[1 : len(r.Nodes)-1] {
		if n.Active == ActivityTransfer {
			bounds = append(bounds, n)
		}
	}
	bounds = append(bounds, last)

	regions := make([]PhaseRegion, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		regions = append(regions, PhaseRegion{Start: bounds[i].ID, End: bounds[i+1].ID})
	}
	return regions
}
