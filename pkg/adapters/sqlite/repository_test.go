package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cthstore/storefront/pkg/adapters/sqlite"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	ctx := context.Background()
	require.NoError(t, repo.Migrate(ctx))
	require.NoError(t, repo.Seed(ctx))
	return repo
}

func TestRepository_Catalog(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	top, err := repo.Subcategories(ctx, nil, ports.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Accessories", "Coffee", "Tea"}, []string{top[0].Name, top[1].Name, top[2].Name})

	tea := top[2].ID
	n, err := repo.CountSubcategories(ctx, &tea)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	subs, err := repo.Subcategories(ctx, &tea, ports.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Green tea", subs[0].Name)
	require.NotNil(t, subs[0].ParentID)
	assert.Equal(t, tea, *subs[0].ParentID)

	coffee := top[1].ID
	products, err := repo.Products(ctx, coffee, ports.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Colombia Supremo", products[0].Name)

	p, err := repo.Product(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1450), p.Price)

	_, err = repo.Product(ctx, 99999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_Cart(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	top, err := repo.Subcategories(ctx, nil, ports.Page{Limit: 10})
	require.NoError(t, err)
	products, err := repo.Products(ctx, top[1].ID, ports.Page{Limit: 10})
	require.NoError(t, err)
	a, b := products[0], products[1]

	require.NoError(t, repo.AddToCart(ctx, 7, a.ID, 2))
	require.NoError(t, repo.AddToCart(ctx, 7, a.ID, 1))
	require.NoError(t, repo.AddToCart(ctx, 7, b.ID, 1))

	lines, err := repo.AllCartLines(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 3, lines[0].Quantity, "adding an existing product increments the line")

	total, err := repo.CartTotal(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3*a.Price+b.Price, total)

	page, err := repo.CartLines(ctx, 7, ports.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, b.Name, page[0].Product.Name)

	assert.ErrorIs(t, repo.RemoveCartLine(ctx, 8, lines[0].ID), domain.ErrNotFound, "lines of other users are not removable")
	require.NoError(t, repo.RemoveCartLine(ctx, 7, lines[0].ID))

	require.NoError(t, repo.ClearCart(ctx, 7))
	total, err = repo.CartTotal(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRepository_FAQSearch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	all, err := repo.FAQ(ctx, "", ports.Page{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 7)

	found, err := repo.FAQ(ctx, "ORDER", ports.Page{Limit: 100})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Can I change my order?", found[0].Question)

	none, err := repo.FAQ(ctx, "100%", ports.Page{Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, none, "wildcards in the search are literal")
}

func TestRepository_UsersAndOrders(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.UpsertUser(ctx, domain.User{ID: 5, Username: "ann"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.UpsertUser(ctx, domain.User{ID: 5, Username: "ann2"})
	require.NoError(t, err)
	assert.False(t, created)

	id, err := repo.CreateOrder(ctx, domain.Order{
		UserID:          5,
		DeliveryAddress: `{"city":"Riga"}`,
		Total:           2500,
		Status:          domain.OrderPaid,
		Items: []domain.OrderItem{
			{ProductName: "Sencha", PriceAtPurchase: 1250, Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	orders, err := repo.Orders(ctx, 5)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderPaid, orders[0].Status)
	assert.Equal(t, []domain.OrderItem{{ProductName: "Sencha", PriceAtPurchase: 1250, Quantity: 2}}, orders[0].Items)
}

func TestRepository_Channels(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddChannel(ctx, "News", -1001, "https://t.me/news"))
	require.NoError(t, repo.AddChannel(ctx, "News", -1001, "https://t.me/news2"))

	chans, err := repo.ActiveChannels(ctx)
	require.NoError(t, err)
	require.Len(t, chans, 1)
	assert.Equal(t, "https://t.me/news2", chans[0].Link)
	assert.True(t, chans[0].Active)
}

func TestRepository_SeedIsIdempotent(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Seed(context.Background()))

	top, err := repo.Subcategories(context.Background(), nil, ports.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, top, 3)
}
