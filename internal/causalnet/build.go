package causalnet

import (
	"errors"

	"github.com/LucasGeos/GKG/internal/models"
)

// ErrNilSubgraph is returned by Build when no subgraph is given.
var ErrNilSubgraph = errors.New("causalnet: nil subgraph")

// Net is a fully resolved causal net. Variables[i].Index == i for every i.
type Net struct {
	Variables []*Variable
	Arcs      []*Arc

	byType map[VariableType]map[models.ID]int
}

// Build lifts sub into a causal net. Variables are indexed in category
// order (NK, SK, AR, SK_PLUS_ONE, SK_MINUS_ONE, FEATURES), then input order.
// Every arc endpoint is resolved before Build returns; an edge that names a
// vertex absent from its expected category yields a *GraphIntegrityError
// and no net.
func Build(sub *models.Subgraph) (*Net, error) {
	if sub == nil {
		return nil, ErrNilSubgraph
	}

	net := &Net{byType: make(map[VariableType]map[models.ID]int, len(variableLayout))}
	for _, l := range variableLayout {
		ids := make(map[models.ID]int)
		for _, v := range sub.VerticesOf(l.category) {
			idx := len(net.Variables)
			variable := &Variable{ID: v.ID, Index: idx, Type: l.typ}
			if l.typ == TypeFeature {
				variable.Geometry = v.Geometry
				variable.Layer = v.Type
			}
			net.Variables = append(net.Variables, variable)
			// first occurrence wins
			if _, dup := ids[v.ID]; !dup {
				ids[v.ID] = idx
			}
		}
		net.byType[l.typ] = ids
	}

	for _, l := range arcLayout {
		for _, e := range sub.EdgesOf(l.category) {
			parent, okParent := net.byType[l.parent][e.Parent]
			child, okChild := net.byType[l.child][e.Child]
			if !okParent || !okChild {
				return nil, &GraphIntegrityError{
					Category:      l.category,
					EdgeID:        e.EdgeID,
					ParentID:      e.Parent,
					ChildID:       e.Child,
					MissingParent: !okParent,
					MissingChild:  !okChild,
				}
			}
			net.Arcs = append(net.Arcs, &Arc{
				Type:     l.typ,
				EdgeID:   e.EdgeID,
				ParentID: e.Parent,
				ChildID:  e.Child,
				parent:   parent,
				child:    child,
			})
		}
	}

	for i, a := range net.Arcs {
		p := net.Variables[a.parent]
		p.OutArcs = append(p.OutArcs, i)
	}
	return net, nil
}

// Lookup returns the first variable of type t with the given id.
func (n *Net) Lookup(t VariableType, id models.ID) (*Variable, bool) {
	idx, ok := n.byType[t][id]
	if !ok {
		return nil, false
	}
	return n.Variables[idx], true
}

// Counts returns the number of variables per type. Types with no
// variables are present with a zero count.
func (n *Net) Counts() map[VariableType]int {
	out := make(map[VariableType]int, len(variableLayout))
	for _, t := range VariableTypes() {
		out[t] = 0
	}
	for _, v := range n.Variables {
		out[v.Type]++
	}
	return out
}

// ArcCounts returns the number of arcs per type.
func (n *Net) ArcCounts() map[ArcType]int {
	out := make(map[ArcType]int, len(arcLayout))
	for _, t := range ArcTypes() {
		out[t] = 0
	}
	for _, a := range n.Arcs {
		out[a.Type]++
	}
	return out
}
