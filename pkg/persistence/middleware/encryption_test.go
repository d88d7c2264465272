package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cthstore/storefront/pkg/adapters/memory"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/persistence/middleware"
	"github.com/cthstore/storefront/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)

	ctx := context.Background()
	session := domain.NewSession(7, 70)
	session.Scene = domain.SceneFAQ
	session.FAQ = &domain.FAQContext{Search: "my-secret-search"}

	require.NoError(t, secure.Save(ctx, "7", session))

	stored, err := underlying.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.UserID)
	assert.Equal(t, domain.SceneName(""), stored.Scene, "scene must not leak into the envelope")
	assert.Nil(t, stored.FAQ)
	assert.NotEmpty(t, stored.Sealed)

	loaded, err := secure.Load(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, domain.SceneFAQ, loaded.Scene)
	require.NotNil(t, loaded.FAQ)
	assert.Equal(t, "my-secret-search", loaded.FAQ.Search)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	session := domain.NewSession(1, 10)
	session.Cart = &domain.CartContext{Total: 1450}
	require.NoError(t, oldStore.Save(ctx, "1", session))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "1")
	require.NoError(t, err, "fallback key must open sessions sealed with the old key")
	assert.Equal(t, int64(1450), loaded.Cart.Total)

	loaded.Cart.Total = 2900
	require.NoError(t, newStore.Save(ctx, "1", loaded))

	_, err = oldStore.Load(ctx, "1")
	assert.Error(t, err, "old key alone cannot open sessions sealed with the new key")
}

func TestEncryptionMiddleware_PlainSessionRejected(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), "3", domain.NewSession(3, 30)))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background(), "3")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
	assert.ErrorIs(t, err, domain.ErrCorruptSession)

	_, err = secure.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKeys(t *testing.T) {
	a, b := generateKey(t), generateKey(t)
	enc := base64.StdEncoding.EncodeToString

	cfg, err := middleware.ParseKeys(enc(a) + ", " + enc(b))
	require.NoError(t, err)
	assert.Equal(t, a, cfg.ActiveKey)
	assert.Equal(t, [][]byte{b}, cfg.FallbackKeys)

	_, err = middleware.ParseKeys("")
	assert.Error(t, err)

	_, err = middleware.ParseKeys(enc([]byte("too short")))
	assert.ErrorContains(t, err, "must be 32 bytes")

	_, err = middleware.ParseKeys(strings.Repeat("!", 44))
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.SessionStore) ports.SessionStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
