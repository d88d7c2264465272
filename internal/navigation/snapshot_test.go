package navigation_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cthstore/storefront/internal/navigation"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RestoreResumesNavigation(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.set("root", nodes("c", 8)...)
	src.set("c6", nodes("g", 2)...)

	e := navigation.New(root(), navigation.WithSource(src), navigation.WithRenderer(&fakeRenderer{}))
	_, err := e.Render(ctx, target)
	require.NoError(t, err)
	_, err = e.Handle(ctx, target, domain.Next())
	require.NoError(t, err)
	_, err = e.Handle(ctx, target, domain.Descend("c6"))
	require.NoError(t, err)

	raw, err := json.Marshal(e.Snapshot())
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	calls := src.callCount()
	restored, err := navigation.Restore(&snap, navigation.WithSource(src), navigation.WithRenderer(&fakeRenderer{}))
	require.NoError(t, err)
	assert.Equal(t, "c6", restored.Current().ID)
	assert.Equal(t, 0, restored.Cursor())

	view, err := restored.Handle(ctx, target, domain.Up())
	require.NoError(t, err)
	assert.Equal(t, 5, restored.Cursor())
	assert.Contains(t, childLabels(view), "c6")
	assert.Equal(t, calls+1, src.callCount(), "restored children are reused; only the edge is queried")
}

func TestSnapshot_CompactsDetachedNodes(t *testing.T) {
	e := navigation.New(root())
	e.Tree().AttachChildren(e.Tree().Root(), nodes("c", 4))
	e.ResetCurrent()
	e.Tree().AttachChildren(e.Tree().Root(), nodes("d", 2))

	snap := e.Snapshot()

	require.Len(t, snap.Nodes, 3)
	assert.Equal(t, domain.NoParent, snap.Nodes[0].Parent)
	assert.Equal(t, []int{1, 2}, snap.Nodes[0].Children)
	assert.Equal(t, "d0", snap.Nodes[1].Node.ID)
}

func TestRestore_Corrupt(t *testing.T) {
	good := func() *domain.Snapshot {
		return &domain.Snapshot{
			Nodes: []domain.NodeState{
				{Node: domain.Node{ID: "root"}, Parent: domain.NoParent, Children: []int{1}},
				{Node: domain.Node{ID: "a"}, Parent: 0},
			},
		}
	}

	_, err := navigation.Restore(good())
	require.NoError(t, err)

	cases := map[string]func(*domain.Snapshot){
		"empty":           func(s *domain.Snapshot) { s.Nodes = nil },
		"current range":   func(s *domain.Snapshot) { s.Current = 5 },
		"negative cursor": func(s *domain.Snapshot) { s.Cursor = -5 },
		"misaligned":      func(s *domain.Snapshot) { s.Cursor = 3 },
		"child range":     func(s *domain.Snapshot) { s.Nodes[0].Children = []int{7} },
		"wrong parent":    func(s *domain.Snapshot) { s.Nodes[1].Parent = 1 },
		"orphan":          func(s *domain.Snapshot) { s.Nodes[0].Children = nil },
		"root parent":     func(s *domain.Snapshot) { s.Nodes[0].Parent = 1 },
	}
	for name, corrupt := range cases {
		t.Run(name, func(t *testing.T) {
			s := good()
			corrupt(s)
			_, err := navigation.Restore(s)
			assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
		})
	}

	_, err = navigation.Restore(nil)
	assert.ErrorIs(t, err, domain.ErrCorruptSnapshot)
}
