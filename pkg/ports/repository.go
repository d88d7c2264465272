package ports

import (
	"context"

	"github.com/cthstore/storefront/pkg/domain"
)

// Page is an offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// CatalogRepository reads categories and products.
type CatalogRepository interface {
	// Subcategories lists children of parentID (nil for top level), ordered by name.
	Subcategories(ctx context.Context, parentID *int64, page Page) ([]domain.Category, error)
	CountSubcategories(ctx context.Context, parentID *int64) (int, error)
	// Products lists products of a category, ordered by name.
	Products(ctx context.Context, categoryID int64, page Page) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (*domain.Product, error)
}

// CartRepository manages cart lines.
type CartRepository interface {
	CartLines(ctx context.Context, userID int64, page Page) ([]domain.CartLine, error)
	AllCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	CartTotal(ctx context.Context, userID int64) (int64, error)
	// AddToCart adds quantity to an existing line or creates one.
	AddToCart(ctx context.Context, userID, productID int64, quantity int) error
	// RemoveCartLine deletes a line owned by userID. Returns domain.ErrNotFound if absent.
	RemoveCartLine(ctx context.Context, userID, lineID int64) error
	ClearCart(ctx context.Context, userID int64) error
}

// FAQRepository searches FAQ entries.
type FAQRepository interface {
	// FAQ lists entries whose question contains search (case-insensitive), ordered by question.
	FAQ(ctx context.Context, search string, page Page) ([]domain.FAQEntry, error)
}

// UserRepository registers chat users.
type UserRepository interface {
	// UpsertUser creates or refreshes a user; created reports a new registration.
	UpsertUser(ctx context.Context, user domain.User) (created bool, err error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	// CreateOrder stores the order and its items and returns its id.
	CreateOrder(ctx context.Context, order domain.Order) (int64, error)
	Orders(ctx context.Context, userID int64) ([]domain.Order, error)
}

// ChannelRepository lists channels users must subscribe to.
type ChannelRepository interface {
	ActiveChannels(ctx context.Context) ([]domain.Channel, error)
}

// ShopRepository aggregates the storefront data ports.
type ShopRepository interface {
	CatalogRepository
	CartRepository
	FAQRepository
	UserRepository
	OrderRepository
	ChannelRepository
}
