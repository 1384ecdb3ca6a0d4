// Package causalnet lifts a route subgraph into a causal net: indexed
// variables for vertices and typed arcs for edges.
package causalnet

import "github.com/LucasGeos/GKG/internal/models"

// VariableType is fixed by the vertex category a variable was built from.
type VariableType string

// Variable types.
const (
	TypeNK         VariableType = "nk"
	TypeSK         VariableType = "sk"
	TypeAR         VariableType = "ar"
	TypeSKPlusOne  VariableType = "sk_plus_one"
	TypeSKMinusOne VariableType = "sk_minus_one"
	TypeFeature    VariableType = "feature"
)

// variableLayout is the category order used to assign variable indexes.
var variableLayout = []struct {
	category models.VertexCategory
	typ      VariableType
}{
	{models.CategoryNK, TypeNK},
	{models.CategorySK, TypeSK},
	{models.CategoryAR, TypeAR},
	{models.CategorySKPlusOne, TypeSKPlusOne},
	{models.CategorySKMinusOne, TypeSKMinusOne},
	{models.CategoryFeatures, TypeFeature},
}

// VariableTypes returns every variable type in index order.
func VariableTypes() []VariableType {
	out := make([]VariableType, len(variableLayout))
	for i, l := range variableLayout {
		out[i] = l.typ
	}
	return out
}

// Variable is one vertex of the subgraph lifted into the net.
type Variable struct {
	ID    models.ID
	Index int
	Type  VariableType

	// Geometry and Layer are only set on feature variables.
	Geometry *models.Point
	Layer    string

	// OutArcs holds the indexes of arcs whose parent is this variable.
	OutArcs []int
}
