package propagation

import (
	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/models"
	"github.com/LucasGeos/GKG/internal/selection"
)

// Stats summarizes one Run.
type Stats struct {
	Roots        int                          `json:"roots"`
	MissingRoots []models.ID                  `json:"missing_roots,omitempty"`
	Calls        int                          `json:"calls"`
	Activations  [models.ConceptualScales]int `json:"activations"`
	Merged       [models.ConceptualScales]int `json:"merged"`
}

// TotalActivations sums Activations over all scales.
func (s Stats) TotalActivations() int {
	n := 0
	for _, a := range s.Activations {
		n += a
	}
	return n
}

// Run propagates every context entry at every scale, starting from the nk
// variable with the entry's node id. Entries whose node is not in the net
// are listed in Stats.MissingRoots and skipped.
func Run(net *causalnet.Net, jc journey.Context) (*selection.State, Stats) {
	sel := selection.NewState()
	var stats Stats
	if net == nil {
		return sel, stats
	}
	for _, e := range jc.Entries {
		root, ok := net.Lookup(causalnet.TypeNK, e.NodeID)
		if !ok {
			stats.MissingRoots = append(stats.MissingRoots, e.NodeID)
			continue
		}
		if e.Findings == nil {
			continue
		}
		stats.Roots++
		for scale := 0; scale < models.ConceptualScales; scale++ {
			// scale is always valid here, so newWalker cannot fail
			w, _ := newWalker(net, scale, e.Findings[scale], sel)
			w.walk(root, 1)
			stats.Calls++
			stats.Activations[scale] += w.activations
			stats.Merged[scale] += w.merged
		}
	}
	return sel, stats
}
