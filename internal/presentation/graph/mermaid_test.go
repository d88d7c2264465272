package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cthstore/storefront/internal/presentation/graph"
	"github.com/cthstore/storefront/pkg/domain"
)

func node(id, label string, leaf bool, pageSize int) domain.Node {
	return domain.Node{
		ID:      id,
		Content: domain.Content{Label: label, Leaf: leaf},
		Config:  domain.NodeConfig{PageSize: pageSize},
	}
}

func TestGenerateMermaid(t *testing.T) {
	snap := &domain.Snapshot{
		Nodes: []domain.NodeState{
			{Node: node("catalog", "Catalog", false, 0), Parent: domain.NoParent, Children: []int{1, 2}, Exhausted: true},
			{Node: node("category_1", "Coffee", false, 2), Parent: 0, Children: []int{3, 4, 5}},
			{Node: node("category_2", "Tea \"loose\"", false, 0), Parent: 0},
			{Node: node("product_1", "Colombia", true, 0), Parent: 1},
			{Node: node("product_2", "Espresso", true, 0), Parent: 1},
			{Node: node("product_3", "Ethiopia", true, 0), Parent: 1},
		},
		Current: 1,
		Cursor:  1,
	}

	out := graph.GenerateMermaid(snap)
	for _, want := range []string{
		"graph TD\n",
		`n0(("Catalog"))`,
		`n1["Coffee …"]`,
		`n2["Tea 'loose'"]`,
		`n3(["Colombia"])`,
		"n0 --> n1",
		"n1 -.-> n3",
		"n1 -.-> n4",
		"n1 --> n5",
		"class n0 visited;",
		"class n1 current;",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "class n3")
}

func TestGenerateMermaid_Empty(t *testing.T) {
	assert.Equal(t, "graph TD\n", graph.GenerateMermaid(nil))
	assert.True(t, strings.HasPrefix(graph.GenerateMermaid(&domain.Snapshot{}), "graph TD"))
}
