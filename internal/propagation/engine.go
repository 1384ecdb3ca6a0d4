// Package propagation spreads activation from routing-node roots through a
// causal net and records the reached variables in a selection.
package propagation

import (
	"errors"
	"fmt"

	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/selection"
)

// MaxDepth is the deepest recursion level that can enable arcs.
const MaxDepth = 2

var (
	// ErrNilInput is returned when the root, net or selection is nil.
	ErrNilInput = errors.New("propagation: nil input")
	// ErrScaleOutOfRange is returned for a scale outside the conceptual scales.
	ErrScaleOutOfRange = selection.ErrScaleOutOfRange
)

// arcColumn gives, per depth, the finding column that enables each arc type.
var arcColumn = [MaxDepth + 1]map[causalnet.ArcType]int{
	1: {
		causalnet.ArcNKSK:        journey.ColBounds,
		causalnet.ArcNKSKPlusOne: journey.ColBounds,
		causalnet.ArcNKAR:        journey.ColActivates,
	},
	2: {
		causalnet.ArcSKSKMinusOne: journey.ColRegion,
		causalnet.ArcARFeature:    journey.ColContains,
	},
}

// ArcEnabled reports whether arcs of type t are followed at depth under row.
// Depths other than 1 and 2 enable nothing.
func ArcEnabled(row journey.Finding, depth int, t causalnet.ArcType) bool {
	if depth < 1 || depth > MaxDepth {
		return false
	}
	col, ok := arcColumn[depth][t]
	return ok && row.Enabled(col)
}

// Activate propagates from root at one scale using one finding row and
// merges every activated sk, sk_plus_one, sk_minus_one and feature variable
// into sel at that scale. Only arc children are activated.
func Activate(root *causalnet.Variable, net *causalnet.Net, scale int, row journey.Finding, sel *selection.State) error {
	w, err := newWalker(net, scale, row, sel)
	if err != nil {
		return err
	}
	if root == nil {
		return ErrNilInput
	}
	w.walk(root, 1)
	return nil
}

type walker struct {
	net   *causalnet.Net
	sel   *selection.State
	scale int
	row   journey.Finding

	activations int
	merged      int
}

func newWalker(net *causalnet.Net, scale int, row journey.Finding, sel *selection.State) (*walker, error) {
	if net == nil || sel == nil {
		return nil, ErrNilInput
	}
	if !selection.ValidScale(scale) {
		return nil, fmt.Errorf("%w: %d", ErrScaleOutOfRange, scale)
	}
	return &walker{net: net, sel: sel, scale: scale, row: row}, nil
}

func (w *walker) walk(v *causalnet.Variable, depth int) {
	if depth > MaxDepth {
		return
	}
	var activated []*causalnet.Variable
	for _, ai := range v.OutArcs {
		a := w.net.Arcs[ai]
		if !ArcEnabled(w.row, depth, a.Type) {
			continue
		}
		activated = append(activated, w.net.Variables[a.Child()])
	}
	w.activations += len(activated)

	for _, child := range activated {
		if c, ok := selection.CategoryOf(child.Type); ok {
			if w.sel.Merge(w.scale, c, child.Index) {
				w.merged++
			}
		}
	}
	for _, child := range activated {
		if child.Type != causalnet.TypeNK {
			w.walk(child, depth+1)
		}
	}
}
