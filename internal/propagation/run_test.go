package propagation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/models"
	"github.com/LucasGeos/GKG/internal/selection"
)

func TestRun_OriginTransferByScale(t *testing.T) {
	net := fullNet(t)
	jc := journey.Build([]models.RoutingNode{
		{ID: models.IntID(1), Type: models.NodeTrain, Active: models.ActivityTransfer},
	})

	sel, stats := Run(net, jc)

	empty := []int{}
	want := []selection.View{
		{SK: []int{1}, SKPlusOne: []int{3}, SKMinusOne: empty, Features: empty},
		{SK: []int{1}, SKPlusOne: []int{3}, SKMinusOne: empty, Features: empty},
		{SK: []int{1}, SKPlusOne: []int{3}, SKMinusOne: empty, Features: []int{5}},
		{SK: []int{1}, SKPlusOne: []int{3}, SKMinusOne: []int{4}, Features: []int{5}},
		{SK: []int{1}, SKPlusOne: []int{3}, SKMinusOne: []int{4}, Features: []int{5}},
	}
	if diff := cmp.Diff(want, sel.Views()); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, stats.Roots)
	assert.Equal(t, models.ConceptualScales, stats.Calls)
	// scale 0: sk, sk+1; scale 1: + ar; scale 2: + feature; scales 3-4: + sk-1
	assert.Equal(t, [models.ConceptualScales]int{2, 3, 4, 5, 5}, stats.Activations)
	assert.Equal(t, [models.ConceptualScales]int{2, 2, 3, 4, 4}, stats.Merged)
	assert.Empty(t, stats.MissingRoots)
}

func TestRun_MissingRootsAreSkipped(t *testing.T) {
	net := fullNet(t)
	jc := journey.Build([]models.RoutingNode{
		{ID: models.IntID(99), Type: models.NodeBus, Active: models.ActivityTransfer},
		{ID: models.IntID(1), Type: models.NodeConnecting, Active: models.ActivityTraverse},
	})

	sel, stats := Run(net, jc)

	assert.Equal(t, []models.ID{models.IntID(99)}, stats.MissingRoots)
	assert.Equal(t, 1, stats.Roots)
	// intersection template: only bounds below scale 4
	assert.Equal(t, []int{1}, sel.Indexes(0, selection.CategorySK))
	assert.Empty(t, sel.Indexes(3, selection.CategoryFeatures))
	assert.Equal(t, []int{5}, sel.Indexes(4, selection.CategoryFeatures))
}

func TestRun_RepeatedNodesDoNotDuplicate(t *testing.T) {
	net := fullNet(t)
	node := models.RoutingNode{ID: models.IntID(1), Type: models.NodeBus, Active: models.ActivityTransfer}

	once, _ := Run(net, journey.Build([]models.RoutingNode{node}))
	twice, stats := Run(net, journey.Build([]models.RoutingNode{node, node}))

	require.True(t, once.Equal(twice))
	assert.Equal(t, 2, stats.Roots)
	assert.Equal(t, once.Total(), stats.Merged[0]+stats.Merged[1]+stats.Merged[2]+stats.Merged[3]+stats.Merged[4])
}

func TestRun_NilNet(t *testing.T) {
	sel, stats := Run(nil, journey.Context{})
	require.NotNil(t, sel)
	assert.Zero(t, sel.Total())
	assert.Zero(t, stats.Calls)
}
