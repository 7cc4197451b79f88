package toposort_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relations-dil/go-relations-sqlite/pkg/toposort"
)

func index(list []string, val string) int {
	for idx, str := range list {
		if str == val {
			return idx
		}
	}

	return -1
}

func TestGraphAddNode(t *testing.T) {
	t.Parallel()

	graph := toposort.NewGraph()

	assert.True(t, graph.AddNode("account"))
	assert.False(t, graph.AddNode("account"))
	assert.Equal(t, 1, graph.Len())
}

func TestGraphAddEdge(t *testing.T) {
	t.Parallel()

	graph := toposort.NewGraph()

	assert.True(t, graph.AddEdge("account", "order"))
	assert.False(t, graph.AddEdge("account", "order"))

	// Edges insert missing nodes.
	assert.Equal(t, 2, graph.Len())
	assert.Equal(t, []string{"order"}, graph.FindChildren("account"))
	assert.Equal(t, []string{"account"}, graph.FindParents("order"))
}

func TestToposort(t *testing.T) {
	t.Parallel()

	graph := toposort.NewGraph()

	edges := [][2]string{
		{"account", "order"},
		{"account", "profile"},
		{"customer", "order"},
		{"order", "item"},
	}

	for _, edge := range edges {
		graph.AddEdge(edge[0], edge[1])
	}

	sorted, ok := graph.Toposort()
	assert.True(t, ok)

	for _, edge := range edges {
		assert.Less(t, index(sorted, edge[0]), index(sorted, edge[1]),
			"%s must come before %s", edge[0], edge[1])
	}

	// Ready nodes drain in name order, so the full ordering is stable.
	assert.Equal(t, []string{"account", "customer", "order", "item", "profile"}, sorted)
}

func TestToposortCycle(t *testing.T) {
	t.Parallel()

	graph := toposort.NewGraph()
	graph.AddEdge("account", "order")
	graph.AddEdge("order", "item")
	graph.AddEdge("item", "account")

	_, ok := graph.Toposort()
	assert.False(t, ok)
}

func TestFindCycle(t *testing.T) {
	t.Parallel()

	graph := toposort.NewGraph()
	graph.AddEdge("account", "order")
	graph.AddEdge("order", "item")
	graph.AddEdge("item", "account")
	graph.AddEdge("item", "ledger")

	assert.Equal(t, []string{"account", "order", "item"}, graph.FindCycle("account"))
	assert.Nil(t, graph.FindCycle("ledger"))
	assert.Nil(t, graph.FindCycle("missing"))
}
