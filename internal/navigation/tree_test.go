package navigation_test

import (
	"testing"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_AttachChildren(t *testing.T) {
	tree := navigation.NewTree(root(), nil)
	idx := tree.AttachChildren(tree.Root(), nodes("c", 3))

	require.Len(t, idx, 3)
	assert.Equal(t, idx, tree.Children(tree.Root()))
	for i, c := range idx {
		p, ok := tree.Parent(c)
		assert.True(t, ok)
		assert.Equal(t, tree.Root(), p)
		assert.Equal(t, i, tree.Position(tree.Root(), c))
	}
	_, ok := tree.Parent(tree.Root())
	assert.False(t, ok, "root has no parent")
}

func TestTree_DuplicateReplacesInPlace(t *testing.T) {
	tree := navigation.NewTree(root(), nil)
	tree.AttachChildren(tree.Root(), nodes("c", 3))

	replacement := domain.Node{ID: "c1", Content: domain.Content{Label: "new"}}
	idx := tree.AttachChild(tree.Root(), replacement)

	assert.Equal(t, 3, tree.ChildCount(tree.Root()))
	assert.Equal(t, 1, tree.Position(tree.Root(), idx))
	got, ok := tree.Child(tree.Root(), "c1")
	require.True(t, ok)
	assert.Equal(t, "new", tree.Node(got).Content.Label)
}

func TestTree_ClearChildren(t *testing.T) {
	tree := navigation.NewTree(root(), nil)
	tree.AttachChildren(tree.Root(), nodes("c", 3))

	tree.ClearChildren(tree.Root())

	assert.Equal(t, 0, tree.ChildCount(tree.Root()))
	_, ok := tree.Child(tree.Root(), "c0")
	assert.False(t, ok)
	assert.False(t, tree.Exhausted(tree.Root()))
}
