package cluster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/symbol-tools-mcp/internal/cluster"
	"github.com/ironsheep/symbol-tools-mcp/internal/match"
	"github.com/ironsheep/symbol-tools-mcp/internal/raster"
	"github.com/ironsheep/symbol-tools-mcp/internal/symbol"
	"github.com/ironsheep/symbol-tools-mcp/internal/testutil"
)

func gate(t *testing.T, label string, pts []raster.Point) *symbol.Template {
	t.Helper()
	tmpl, err := symbol.New(symbol.Info{Label: label, Class: "Gate"}, pts)
	require.NoError(t, err)
	return tmpl
}

func TestGateTree(t *testing.T) {
	templates := []*symbol.Template{
		gate(t, "AND", testutil.AndGate()),
		gate(t, "OR", testutil.OrGate()),
		gate(t, "NOT", testutil.NotGate()),
	}
	cmp := match.NewComparator()

	tree, err := cluster.BuildTree(context.Background(), templates, cmp, cluster.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, 5, tree.Len())
	assert.Equal(t, 2, tree.Depth())

	unknown := gate(t, "unknown", testutil.AndGate())

	got := tree.Recognize(unknown, cluster.Exhaustive())
	require.True(t, got.Found())
	assert.Equal(t, "AND", got.Item.Label)
	assert.Equal(t, 1.0, got.Score)

	first := tree.RecognizeBestFirst(tree.NodesAtDepth(1), unknown, cluster.Exhaustive())
	assert.Equal(t, "AND", first.Item.Label)

	ranked := tree.RecognizeNBest(unknown, 3, cluster.Exhaustive())
	require.Len(t, ranked, 3)
	assert.Equal(t, "AND", ranked[0].Item.Label)
	assert.Less(t, ranked[1].Score, ranked[0].Score)
	assert.Less(t, ranked[2].Score, ranked[0].Score)

	brute := cluster.BruteForce(templates, unknown, cmp)
	assert.Equal(t, brute.Score, got.Score)
	assert.Equal(t, brute.Index, got.Index)
}

func TestGateTree_FusedScores(t *testing.T) {
	templates := []*symbol.Template{
		gate(t, "AND", testutil.AndGate()),
		gate(t, "OR", testutil.OrGate()),
		gate(t, "NOT", testutil.NotGate()),
	}

	results, err := match.FindBestMatches(testutil.AndGate(), templates, match.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "AND", results[0].Label)
	assert.InDelta(t, 0, results[0].Score, 1e-9)
	assert.Greater(t, results[1].Score, results[0].Score)
	assert.Greater(t, results[2].Score, results[0].Score)
}
