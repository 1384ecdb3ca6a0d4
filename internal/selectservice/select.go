// Package selectservice runs selections end to end: decode, build the causal
// net, propagate the journey, cache and publish the payload.
package selectservice

import (
	"fmt"

	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/propagation"
	"github.com/LucasGeos/GKG/internal/selection"
)

// Result is the outcome of one pure selection run.
type Result struct {
	Payload   *selection.Payload
	Stats     propagation.Stats
	Variables int
	Arcs      int
	Unmapped  []journey.UnmappedContextError
}

// Select builds the causal net of job, derives the journey context from its
// routing result, propagates every entry at every scale and returns the
// payload with the phase regions of the route.
func Select(job *document.Job) (*Result, error) {
	if job == nil {
		return nil, fmt.Errorf("selectservice: nil job")
	}
	net, err := causalnet.Build(&job.Subgraph)
	if err != nil {
		return nil, err
	}
	jc := journey.Build(job.Result.Nodes)
	sel, stats := propagation.Run(net, jc)

	payload := selection.NewPayload(net, sel)
	if regions := job.Result.PhaseRegions(); regions != nil {
		payload.Regions = regions
	}
	return &Result{
		Payload:   payload,
		Stats:     stats,
		Variables: len(net.Variables),
		Arcs:      len(net.Arcs),
		Unmapped:  jc.Unmapped,
	}, nil
}
