package causalnet

import "github.com/LucasGeos/GKG/internal/models"

// ArcType is fixed by the edge category an arc was built from.
type ArcType string

// Arc types.
const (
	ArcNKSK         ArcType = "nk_sk"
	ArcNKAR         ArcType = "nk_ar"
	ArcNKSKPlusOne  ArcType = "nk_sk_plus_one"
	ArcSKSKMinusOne ArcType = "sk_sk_minus_one"
	ArcARFeature    ArcType = "ar_feature"
)

// arcLayout maps each edge category to its arc type and the variable types
// expected at either end.
var arcLayout = []struct {
	category models.EdgeCategory
	typ      ArcType
	parent   VariableType
	child    VariableType
}{
	{models.EdgeNKSKBounds, ArcNKSK, TypeNK, TypeSK},
	{models.EdgeNKARActivates, ArcNKAR, TypeNK, TypeAR},
	{models.EdgeNKSKPlusOneBounds, ArcNKSKPlusOne, TypeNK, TypeSKPlusOne},
	{models.EdgeSKSKMinusOneRegion, ArcSKSKMinusOne, TypeSK, TypeSKMinusOne},
	{models.EdgeContainsFeature, ArcARFeature, TypeAR, TypeFeature},
}

// ArcTypes returns every arc type in construction order.
func ArcTypes() []ArcType {
	out := make([]ArcType, len(arcLayout))
	for i, l := range arcLayout {
		out[i] = l.typ
	}
	return out
}

// Arc is one edge of the subgraph lifted into the net.
type Arc struct {
	Type     ArcType
	EdgeID   models.ID
	ParentID models.ID
	ChildID  models.ID

	parent int
	child  int
}

// Endpoints returns the variable indexes of the parent and child.
func (a *Arc) Endpoints() (parent, child int) {
	return a.parent, a.child
}

// Parent returns the variable index of the arc's parent.
func (a *Arc) Parent() int { return a.parent }

// Child returns the variable index of the arc's child.
func (a *Arc) Child() int { return a.child }
