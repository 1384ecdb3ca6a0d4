package causalnet

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/LucasGeos/GKG/internal/models"
)

// genSubgraph builds a subgraph with the given vertex count per category
// and one edge of every category from each parent-side vertex to the
// child-side vertex at the same position (modulo the child count).
func genSubgraph(counts []int) *models.Subgraph {
	sub := &models.Subgraph{
		Vertices: make(map[models.VertexCategory][]models.Vertex),
		Edges:    make(map[models.EdgeCategory][]models.Edge),
	}
	for ci, c := range models.VertexCategories {
		for i := 0; i < counts[ci]; i++ {
			sub.Vertices[c] = append(sub.Vertices[c], models.Vertex{
				ID: models.StringID(fmt.Sprintf("%s-%d", c, i)),
			})
		}
	}
	edgeID := 0
	for _, l := range arcLayout {
		parents := sub.Vertices[categoryOf(l.parent)]
		children := sub.Vertices[categoryOf(l.child)]
		if len(children) == 0 {
			continue
		}
		for i, p := range parents {
			edgeID++
			sub.Edges[l.category] = append(sub.Edges[l.category], models.Edge{
				EdgeID: models.IntID(int64(edgeID)),
				Parent: p.ID,
				Child:  children[i%len(children)].ID,
			})
		}
	}
	return sub
}

func categoryOf(t VariableType) models.VertexCategory {
	for _, l := range variableLayout {
		if l.typ == t {
			return l.category
		}
	}
	return ""
}

func TestNetInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	countGen := gen.IntRange(0, 6)

	properties.Property("indexes are a dense permutation in category order", prop.ForAll(
		func(nk, sk, ar, skp, skm, ft int) bool {
			counts := []int{nk, sk, ar, skp, skm, ft}
			net, err := Build(genSubgraph(counts))
			if err != nil {
				return false
			}
			i := 0
			for ci, typ := range VariableTypes() {
				for k := 0; k < counts[ci]; k++ {
					v := net.Variables[i]
					if v.Index != i || v.Type != typ {
						return false
					}
					if v.ID != models.StringID(fmt.Sprintf("%s-%d", models.VertexCategories[ci], k)) {
						return false
					}
					i++
				}
			}
			return i == len(net.Variables)
		},
		countGen, countGen, countGen, countGen, countGen, countGen,
	))

	properties.Property("arc endpoints match their ids and out-arcs are parent-only", prop.ForAll(
		func(nk, sk, ar, skp, skm, ft int) bool {
			net, err := Build(genSubgraph([]int{nk, sk, ar, skp, skm, ft}))
			if err != nil {
				return false
			}
			seen := make(map[int]bool, len(net.Arcs))
			for _, v := range net.Variables {
				for _, ai := range v.OutArcs {
					if net.Arcs[ai].Parent() != v.Index || seen[ai] {
						return false
					}
					seen[ai] = true
				}
			}
			if len(seen) != len(net.Arcs) {
				return false
			}
			for _, a := range net.Arcs {
				p, c := a.Endpoints()
				if net.Variables[p].ID != a.ParentID || net.Variables[c].ID != a.ChildID {
					return false
				}
			}
			return true
		},
		countGen, countGen, countGen, countGen, countGen, countGen,
	))

	properties.TestingRun(t)
}
