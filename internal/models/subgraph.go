package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ConceptualScales is the number of zoom/detail levels a selection covers.
const ConceptualScales = 5

// VertexCategory names one vertex list of a route subgraph.
type VertexCategory string

// Vertex categories, in causal net index order.
const (
	CategoryNK         VertexCategory = "NK"
	CategorySK         VertexCategory = "SK"
	CategoryAR         VertexCategory = "AR"
	CategorySKPlusOne  VertexCategory = "SK_PLUS_ONE"
	CategorySKMinusOne VertexCategory = "SK_MINUS_ONE"
	CategoryFeatures   VertexCategory = "FEATURES"
)

// VertexCategories lists every vertex category in causal net index order.
var VertexCategories = []VertexCategory{
	CategoryNK,
	CategorySK,
	CategoryAR,
	CategorySKPlusOne,
	CategorySKMinusOne,
	CategoryFeatures,
}

// EdgeCategory names one edge list of a route subgraph.
type EdgeCategory string

// Edge categories, in arc construction order.
const (
	EdgeNKSKBounds         EdgeCategory = "NK_SK_BOUNDS"
	EdgeNKARActivates      EdgeCategory = "NK_AR_ACTIVATES"
	EdgeNKSKPlusOneBounds  EdgeCategory = "NK_SK_PLUS_ONE_BOUNDS"
	EdgeSKSKMinusOneRegion EdgeCategory = "SK_SK_MINUS_ONE_IN_REGION"
	EdgeContainsFeature    EdgeCategory = "CONTAINS_FEATURE"
)

// EdgeCategories lists every edge category in arc construction order.
var EdgeCategories = []EdgeCategory{
	EdgeNKSKBounds,
	EdgeNKARActivates,
	EdgeNKSKPlusOneBounds,
	EdgeSKSKMinusOneRegion,
	EdgeContainsFeature,
}

// Vertex is one graph vertex record.
type Vertex struct {
	ID       ID     `json:"id" yaml:"id"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"` // source layer, e.g. OSM_POINTS
	Geometry *Point `json:"geometry,omitempty" yaml:"geometry,omitempty"`
}

// Edge is one directed graph edge record.
type Edge struct {
	EdgeID ID `json:"edge_id" yaml:"edge_id"`
	Parent ID `json:"parent" yaml:"parent"`
	Child  ID `json:"child" yaml:"child"`
}

// Subgraph is the materialized neighbourhood of a route: vertex and edge
// lists keyed by their explicit category.
type Subgraph struct {
	Vertices map[VertexCategory][]Vertex `json:"vertices" yaml:"vertices"`
	Edges    map[EdgeCategory][]Edge     `json:"edges" yaml:"edges"`
}

// VerticesOf returns the vertices of category c (nil when absent).
func (s *Subgraph) VerticesOf(c VertexCategory) []Vertex {
	if s == nil {
		return nil
	}
	return s.Vertices[c]
}

// EdgesOf returns the edges of category c (nil when absent).
func (s *Subgraph) EdgesOf(c EdgeCategory) []Edge {
	if s == nil {
		return nil
	}
	return s.Edges[c]
}

// Validate rejects unknown categories and records without ids.
func (s *Subgraph) Validate() error {
	for c, vs := range s.Vertices {
		if err := validation.Validate(string(c), validation.In(vertexCategoryNames()...)); err != nil {
			return fmt.Errorf("vertices: unknown category %q", c)
		}
		for i, v := range vs {
			if v.ID.IsZero() {
				return fmt.Errorf("vertices.%s[%d]: id is required", c, i)
			}
		}
	}
	for c, es := range s.Edges {
		if err := validation.Validate(string(c), validation.In(edgeCategoryNames()...)); err != nil {
			return fmt.Errorf("edges: unknown category %q", c)
		}
		for i, e := range es {
			if e.Parent.IsZero() || e.Child.IsZero() {
				return fmt.Errorf("edges.%s[%d]: parent and child are required", c, i)
			}
		}
	}
	return nil
}

func vertexCategoryNames() []any {
	out := make([]any, len(VertexCategories))
	for i, c := range VertexCategories {
		out[i] = string(c)
	}
	return out
}

func edgeCategoryNames() []any {
	out := make([]any, len(EdgeCategories))
	for i, c := range EdgeCategories {
		out[i] = string(c)
	}
	return out
}
