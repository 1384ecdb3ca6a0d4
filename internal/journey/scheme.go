// Package journey maps the routing nodes of a computed journey to the
// propagation schemes that drive activation at each conceptual scale.
package journey

import (
	"sort"

	"github.com/LucasGeos/GKG/internal/models"
)

// Finding columns. Each enables a group of arc types during propagation.
const (
	ColBounds     = iota // nk_sk, nk_sk_plus_one (depth 1)
	ColActivates         // nk_ar (depth 1)
	ColRegion            // sk_sk_minus_one (depth 2)
	ColContains          // ar_feature (depth 2)
	FindingColumns
)

// Finding is one row of a scheme: a 0/1 flag per column.
type Finding [FindingColumns]uint8

// Enabled reports whether column col is switched on.
func (f Finding) Enabled(col int) bool {
	return col >= 0 && col < FindingColumns && f[col] != 0
}

// IsZero reports whether every column is off.
func (f Finding) IsZero() bool {
	return f == Finding{}
}

// Matrix holds one finding row per conceptual scale.
type Matrix [models.ConceptualScales]Finding

// Template names a propagation scheme.
type Template string

// Templates.
const (
	TemplateOriginTransfer  Template = "origin_transfer"
	TemplateTurn            Template = "turn"
	TemplateLevelTransition Template = "level_transition"
	TemplateIntersection    Template = "intersection"
)

var (
	originTransfer = Matrix{
		{1, 0, 0, 0},
		{1, 1, 0, 0},
		{1, 1, 0, 1},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	turn = Matrix{
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 1, 0, 0},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	levelTransition = Matrix{
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 1, 1, 1},
		{1, 1, 1, 1},
	}
	intersection = Matrix{
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 0, 0, 0},
		{1, 1, 1, 1},
	}
)

var schemes = map[Template]*Matrix{
	TemplateOriginTransfer:  &originTransfer,
	TemplateTurn:            &turn,
	TemplateLevelTransition: &levelTransition,
	TemplateIntersection:    &intersection,
}

// Templates returns every template name in a stable order.
func Templates() []Template {
	return []Template{
		TemplateOriginTransfer,
		TemplateTurn,
		TemplateLevelTransition,
		TemplateIntersection,
	}
}

// Scheme returns the shared matrix for t, or nil for an unknown template.
// Callers must not modify it.
func Scheme(t Template) *Matrix {
	return schemes[t]
}

type nodeKey struct {
	typ    models.NodeType
	active models.Activity
}

var templateTable = map[nodeKey]Template{
	{models.NodeIntersection, models.ActivityTraverse}: TemplateLevelTransition,
	{models.NodeIntersection, models.ActivityTurn}:     TemplateTurn,
	{models.NodeConnecting, models.ActivityTraverse}:   TemplateIntersection,
	{models.NodeConnecting, models.ActivityTurn}:       TemplateLevelTransition,
	{models.NodeEntranceExit, models.ActivityTraverse}: TemplateIntersection,
	{models.NodeEntranceExit, models.ActivityTurn}:     TemplateLevelTransition,
	{models.NodeBus, models.ActivityTraverse}:          TemplateLevelTransition,
	{models.NodeBus, models.ActivityTransfer}:          TemplateOriginTransfer,
	{models.NodeTrain, models.ActivityTraverse}:        TemplateLevelTransition,
	{models.NodeTrain, models.ActivityTransfer}:        TemplateOriginTransfer,
}

// TemplateFor returns the template for a routing node type and activity.
func TemplateFor(typ models.NodeType, active models.Activity) (Template, bool) {
	t, ok := templateTable[nodeKey{typ, active}]
	return t, ok
}

// Mapping is one row of the template table.
type Mapping struct {
	Type     models.NodeType `json:"type" yaml:"type"`
	Active   models.Activity `json:"active" yaml:"active"`
	Template Template        `json:"template" yaml:"template"`
}

// Mappings returns the template table sorted by type, then activity.
func Mappings() []Mapping {
	out := make([]Mapping, 0, len(templateTable))
	for k, t := range templateTable {
		out = append(out, Mapping{Type: k.typ, Active: k.active, Template: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Active < out[j].Active
	})
	return out
}
