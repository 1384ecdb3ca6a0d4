package selection

import (
	"errors"

	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/models"
)

// ErrScaleOutOfRange is returned for a scale outside 0..ConceptualScales-1.
var ErrScaleOutOfRange = errors.New("selection: scale out of range")

// Feature describes one variable of the net in a payload.
type Feature struct {
	ID       models.ID              `json:"id"`
	Type     causalnet.VariableType `json:"type"`
	Layer    string                 `json:"layer,omitempty"`
	Geometry *models.Point          `json:"geometry,omitempty"`
}

// Payload is the feature selection handed to the renderer: the variable
// list of the net and one view per scale whose indexes point into it.
type Payload struct {
	Features []Feature            `json:"features"`
	Views    []View               `json:"views"`
	Regions  []models.PhaseRegion `json:"regions"`
}

// NewPayload describes every variable of net, in index order, and the
// selection of every scale.
func NewPayload(net *causalnet.Net, st *State) *Payload {
	p := &Payload{
		Features: make([]Feature, 0, len(net.Variables)),
		Views:    st.Views(),
		Regions:  []models.PhaseRegion{},
	}
	for _, v := range net.Variables {
		p.Features = append(p.Features, Feature{
			ID:       v.ID,
			Type:     v.Type,
			Layer:    v.Layer,
			Geometry: v.Geometry,
		})
	}
	return p
}

// Selected returns the number of selected indexes per scale.
func (p *Payload) Selected() []int {
	out := make([]int, len(p.Views))
	for i, v := range p.Views {
		for _, c := range Categories() {
			out[i] += len(v.Of(c))
		}
	}
	return out
}
