package ports

import (
	"context"
	"testing"
	"time"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(42, 4200)
		session.Scene = domain.SceneFAQ
		session.FAQ = &domain.FAQContext{
			Search: "delivery",
			Engine: &domain.Snapshot{
				Nodes: []domain.NodeState{
					{Node: domain.Node{ID: "faq", Content: domain.Content{Text: "FAQ"}}, Parent: domain.NoParent, Children: []int{1}},
					{Node: domain.Node{ID: "faq_1", Content: domain.Content{Label: "Q1", Leaf: true}}, Parent: 0},
				},
				Current: 1,
			},
		}

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.SceneFAQ, loaded.Scene)
		require.NotNil(t, loaded.FAQ)
		assert.Equal(t, "delivery", loaded.FAQ.Search)
		require.NotNil(t, loaded.FAQ.Engine)
		assert.Equal(t, 1, loaded.FAQ.Engine.Current)
		assert.Equal(t, []int{1}, loaded.FAQ.Engine.Nodes[0].Children)
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		first := domain.NewSession(42, 4200)
		require.NoError(t, store.Save(ctx, sessionID, first))

		second := domain.NewSession(42, 4200)
		second.Scene = domain.SceneCart
		require.NoError(t, store.Save(ctx, sessionID, second))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.SceneCart, loaded.Scene)
	})

	t.Run("Isolation", func(t *testing.T) {
		session := domain.NewSession(42, 4200)
		session.Cart = &domain.CartContext{Total: 100}
		require.NoError(t, store.Save(ctx, sessionID, session))

		session.Cart.Total = 999

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), loaded.Cart.Total, "mutating a saved session must not leak into the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(42, 4200))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(1, 1))
		_ = store.Save(ctx, id2, domain.NewSession(2, 2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
