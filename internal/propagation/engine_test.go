package propagation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/models"
	"github.com/LucasGeos/GKG/internal/selection"
)

func ids(n ...int64) []models.Vertex {
	out := make([]models.Vertex, len(n))
	for i, id := range n {
		out[i] = models.Vertex{ID: models.IntID(id)}
	}
	return out
}

func e(id, parent, child int64) models.Edge {
	return models.Edge{EdgeID: models.IntID(id), Parent: models.IntID(parent), Child: models.IntID(child)}
}

// fullNet: nk 1 bounds sk 10 and sk+1 30, activates ar 20; sk 10 regions
// sk-1 40; ar 20 contains feature 50.
// Indexes: nk1=0 sk10=1 ar20=2 sk+1 30=3 sk-1 40=4 f50=5.
func fullNet(t *testing.T) *causalnet.Net {
	t.Helper()
	net, err := causalnet.Build(&models.Subgraph{
		Vertices: map[models.VertexCategory][]models.Vertex{
			models.CategoryNK:         ids(1),
			models.CategorySK:         ids(10),
			models.CategoryAR:         ids(20),
			models.CategorySKPlusOne:  ids(30),
			models.CategorySKMinusOne: ids(40),
			models.CategoryFeatures:   ids(50),
		},
		Edges: map[models.EdgeCategory][]models.Edge{
			models.EdgeNKSKBounds:         {e(1, 1, 10)},
			models.EdgeNKARActivates:      {e(2, 1, 20)},
			models.EdgeNKSKPlusOneBounds:  {e(3, 1, 30)},
			models.EdgeSKSKMinusOneRegion: {e(4, 10, 40)},
			models.EdgeContainsFeature:    {e(5, 20, 50)},
		},
	})
	require.NoError(t, err)
	return net
}

func root(t *testing.T, net *causalnet.Net, id int64) *causalnet.Variable {
	t.Helper()
	v, ok := net.Lookup(causalnet.TypeNK, models.IntID(id))
	require.True(t, ok)
	return v
}

func TestActivate_SingleBoundsArc(t *testing.T) {
	net, err := causalnet.Build(&models.Subgraph{
		Vertices: map[models.VertexCategory][]models.Vertex{
			models.CategoryNK: ids(1),
			models.CategorySK: ids(2),
		},
		Edges: map[models.EdgeCategory][]models.Edge{
			models.EdgeNKSKBounds: {e(9, 1, 2)},
		},
	})
	require.NoError(t, err)

	sel := selection.NewState()
	require.NoError(t, Activate(net.Variables[0], net, 0, journey.Finding{1, 0, 0, 0}, sel))

	assert.Equal(t, []int{1}, sel.Indexes(0, selection.CategorySK))
	assert.Equal(t, 1, sel.Total())
}

func TestActivate_ZeroRowLeavesSelection(t *testing.T) {
	net := fullNet(t)
	sel := selection.NewState()
	sel.Merge(2, selection.CategorySK, 1)

	require.NoError(t, Activate(root(t, net, 1), net, 2, journey.Finding{}, sel))
	assert.Equal(t, 1, sel.Total())
}

func TestActivate_TwoHops(t *testing.T) {
	net := fullNet(t)
	sel := selection.NewState()

	require.NoError(t, Activate(root(t, net, 1), net, 3, journey.Finding{1, 1, 1, 1}, sel))

	want := selection.View{SK: []int{1}, SKPlusOne: []int{3}, SKMinusOne: []int{4}, Features: []int{5}}
	if diff := cmp.Diff(want, sel.View(3)); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
	for scale := 0; scale < models.ConceptualScales; scale++ {
		if scale != 3 && sel.View(scale).SK == nil {
			t.Errorf("View(%d).SK is nil, want empty", scale)
		}
	}
}

func TestActivate_DepthTwoNeedsDepthOne(t *testing.T) {
	// bits 2 and 3 alone reach nothing: sk and ar are only activated at depth 1.
	net := fullNet(t)
	sel := selection.NewState()

	require.NoError(t, Activate(root(t, net, 1), net, 4, journey.Finding{0, 0, 1, 1}, sel))
	assert.Zero(t, sel.Total())
}

func TestActivate_ActivatesWithoutBounds(t *testing.T) {
	// ar is traversal-only: only its feature ends up selected.
	net := fullNet(t)
	sel := selection.NewState()

	require.NoError(t, Activate(root(t, net, 1), net, 2, journey.Finding{0, 1, 0, 1}, sel))

	want := selection.View{SK: []int{}, SKPlusOne: []int{}, SKMinusOne: []int{}, Features: []int{5}}
	if diff := cmp.Diff(want, sel.View(2)); diff != "" {
		t.Errorf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestActivate_NeverPastDepthTwo(t *testing.T) {
	net := fullNet(t)
	sel := selection.NewState()

	// Rooted at sk 10, its sk_sk_minus_one arc is evaluated at depth 1,
	// where it is disabled, and nothing below is ever visited.
	sk, ok := net.Lookup(causalnet.TypeSK, models.IntID(10))
	require.True(t, ok)
	require.NoError(t, Activate(sk, net, 4, journey.Finding{1, 1, 1, 1}, sel))
	assert.Zero(t, sel.Total())
}

func TestActivate_OnlyNKAndFeatures(t *testing.T) {
	net, err := causalnet.Build(&models.Subgraph{
		Vertices: map[models.VertexCategory][]models.Vertex{
			models.CategoryNK:       ids(1, 2),
			models.CategoryFeatures: ids(3),
		},
	})
	require.NoError(t, err)

	sel := selection.NewState()
	for scale := 0; scale < models.ConceptualScales; scale++ {
		require.NoError(t, Activate(net.Variables[0], net, scale, journey.Finding{1, 1, 1, 1}, sel))
	}
	assert.Zero(t, sel.Total())
}

func TestActivate_Idempotent(t *testing.T) {
	net := fullNet(t)
	once := selection.NewState()
	twice := selection.NewState()
	row := journey.Finding{1, 1, 1, 1}

	require.NoError(t, Activate(root(t, net, 1), net, 4, row, once))
	require.NoError(t, Activate(root(t, net, 1), net, 4, row, twice))
	require.NoError(t, Activate(root(t, net, 1), net, 4, row, twice))

	assert.True(t, once.Equal(twice))
}

func TestActivate_MisuseErrors(t *testing.T) {
	net := fullNet(t)
	r := root(t, net, 1)
	sel := selection.NewState()
	row := journey.Finding{1, 0, 0, 0}

	assert.ErrorIs(t, Activate(nil, net, 0, row, sel), ErrNilInput)
	assert.ErrorIs(t, Activate(r, nil, 0, row, sel), ErrNilInput)
	assert.ErrorIs(t, Activate(r, net, 0, row, nil), ErrNilInput)
	assert.ErrorIs(t, Activate(r, net, -1, row, sel), ErrScaleOutOfRange)
	assert.ErrorIs(t, Activate(r, net, models.ConceptualScales, row, sel), ErrScaleOutOfRange)
	assert.Zero(t, sel.Total())
}

func TestArcEnabled(t *testing.T) {
	all := journey.Finding{1, 1, 1, 1}
	tests := []struct {
		depth int
		typ   causalnet.ArcType
		want  bool
	}{
		{1, causalnet.ArcNKSK, true},
		{1, causalnet.ArcNKSKPlusOne, true},
		{1, causalnet.ArcNKAR, true},
		{1, causalnet.ArcSKSKMinusOne, false},
		{1, causalnet.ArcARFeature, false},
		{2, causalnet.ArcSKSKMinusOne, true},
		{2, causalnet.ArcARFeature, true},
		{2, causalnet.ArcNKSK, false},
		{0, causalnet.ArcNKSK, false},
		{3, causalnet.ArcARFeature, false},
	}
	for _, tt := range tests {
		if got := ArcEnabled(all, tt.depth, tt.typ); got != tt.want {
			t.Errorf("ArcEnabled(depth %d, %s) = %v, want %v", tt.depth, tt.typ, got, tt.want)
		}
	}
	if ArcEnabled(journey.Finding{0, 1, 1, 1}, 1, causalnet.ArcNKSKPlusOne) {
		t.Error("nk_sk_plus_one enabled without the bounds column")
	}
}
