// Package selection holds the per-scale, per-category variable index sets
// filled by propagation and the payload derived from them.
package selection

import (
	"fmt"

	"github.com/tidwall/btree"

	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/models"
)

// Category is one of the four selection buckets of a scale.
type Category int

// Categories, in view order.
const (
	CategorySK Category = iota
	CategorySKPlusOne
	CategorySKMinusOne
	CategoryFeatures
	categoryCount
)

var categoryNames = [categoryCount]string{
	CategorySK:         "SK",
	CategorySKPlusOne:  "SK_PLUS_ONE",
	CategorySKMinusOne: "SK_MINUS_ONE",
	CategoryFeatures:   "FEATURES",
}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Categories returns the four categories in view order.
func Categories() []Category {
	return []Category{CategorySK, CategorySKPlusOne, CategorySKMinusOne, CategoryFeatures}
}

// CategoryOf maps a variable type to its selection category. nk and ar
// variables are traversal-only and report false.
func CategoryOf(t causalnet.VariableType) (Category, bool) {
	switch t {
	case causalnet.TypeSK:
		return CategorySK, true
	case causalnet.TypeSKPlusOne:
		return CategorySKPlusOne, true
	case causalnet.TypeSKMinusOne:
		return CategorySKMinusOne, true
	case causalnet.TypeFeature:
		return CategoryFeatures, true
	default:
		return 0, false
	}
}

// State is the selection of one computation. It only grows.
type State struct {
	cells [models.ConceptualScales][categoryCount]*btree.BTreeG[int]
}

func lessInt(a, b int) bool { return a < b }

// NewState returns an empty selection.
func NewState() *State {
	s := &State{}
	for scale := range s.cells {
		for c := range s.cells[scale] {
			s.cells[scale][c] = btree.NewBTreeG[int](lessInt)
		}
	}
	return s
}

// ValidScale reports whether scale is a conceptual scale index.
func ValidScale(scale int) bool {
	return scale >= 0 && scale < models.ConceptualScales
}

func (s *State) cell(scale int, c Category) *btree.BTreeG[int] {
	if !ValidScale(scale) || c < 0 || c >= categoryCount {
		return nil
	}
	return s.cells[scale][c]
}

// Merge adds idx to (scale, c) and reports whether it was new. Merging an
// index that is already present is a no-op.
func (s *State) Merge(scale int, c Category, idx int) bool {
	t := s.cell(scale, c)
	if t == nil {
		return false
	}
	_, replaced := t.Set(idx)
	return !replaced
}

// Contains reports whether idx is selected at (scale, c).
func (s *State) Contains(scale int, c Category, idx int) bool {
	t := s.cell(scale, c)
	if t == nil {
		return false
	}
	_, ok := t.Get(idx)
	return ok
}

// Indexes returns the selected indexes at (scale, c) in ascending order.
// The result is never nil.
func (s *State) Indexes(scale int, c Category) []int {
	out := []int{}
	t := s.cell(scale, c)
	if t == nil {
		return out
	}
	t.Scan(func(idx int) bool {
		out = append(out, idx)
		return true
	})
	return out
}

// Len returns the number of indexes at (scale, c).
func (s *State) Len(scale int, c Category) int {
	t := s.cell(scale, c)
	if t == nil {
		return 0
	}
	return t.Len()
}

// Total returns the number of indexes over all scales and categories.
func (s *State) Total() int {
	n := 0
	for scale := range s.cells {
		for _, t := range s.cells[scale] {
			n += t.Len()
		}
	}
	return n
}

// View returns the four index lists of one scale.
func (s *State) View(scale int) View {
	return View{
		SK:         s.Indexes(scale, CategorySK),
		SKPlusOne:  s.Indexes(scale, CategorySKPlusOne),
		SKMinusOne: s.Indexes(scale, CategorySKMinusOne),
		Features:   s.Indexes(scale, CategoryFeatures),
	}
}

// Views returns one view per conceptual scale.
func (s *State) Views() []View {
	out := make([]View, models.ConceptualScales)
	for scale := range out {
		out[scale] = s.View(scale)
	}
	return out
}

// Equal reports whether both selections hold the same indexes everywhere.
func (s *State) Equal(o *State) bool {
	for scale := 0; scale < models.ConceptualScales; scale++ {
		for _, c := range Categories() {
			a, b := s.Indexes(scale, c), o.Indexes(scale, c)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
		}
	}
	return true
}

// View is the selection of one scale as ascending index lists.
type View struct {
	SK         []int `json:"SK" yaml:"SK"`
	SKPlusOne  []int `json:"SK_PLUS_ONE" yaml:"SK_PLUS_ONE"`
	SKMinusOne []int `json:"SK_MINUS_ONE" yaml:"SK_MINUS_ONE"`
	Features   []int `json:"FEATURES" yaml:"FEATURES"`
}

// Of returns the list for category c.
func (v View) Of(c Category) []int {
	switch c {
	case CategorySK:
		return v.SK
	case CategorySKPlusOne:
		return v.SKPlusOne
	case CategorySKMinusOne:
		return v.SKMinusOne
	case CategoryFeatures:
		return v.Features
	default:
		return nil
	}
}
