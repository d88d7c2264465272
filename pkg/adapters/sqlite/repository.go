// Package sqlite implements the storefront data ports on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
	_ "modernc.org/sqlite"
)

// Repository implements ports.ShopRepository.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.ShopRepository = (*Repository)(nil)

// Open opens (or creates) the database at path.
func Open(path string) (*Repository, error) {
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %q: %w", path, err)
	}
	return New(db), nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// DB returns the underlying handle.
func (r *Repository) DB() *sql.DB { return r.db }

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Subcategories lists children of parentID (nil for top level) ordered by name.
func (r *Repository) Subcategories(ctx context.Context, parentID *int64, page ports.Page) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, parent_id FROM categories WHERE parent_id IS ? ORDER BY name, id LIMIT ? OFFSET ?`,
		nullable(parentID), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		var parent sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &parent); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if parent.Valid {
			p := parent.Int64
			c.ParentID = &p
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountSubcategories counts children of parentID.
func (r *Repository) CountSubcategories(ctx context.Context, parentID *int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id IS ?`, nullable(parentID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

const productColumns = `p.id, p.category_id, p.name, p.description, p.price, p.image, p.stock`

func scanProduct(s interface{ Scan(...any) error }, p *domain.Product) error {
	return s.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock)
}

// Products lists products of a category ordered by name.
func (r *Repository) Products(ctx context.Context, categoryID int64, page ports.Page) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.category_id = ? ORDER BY p.name, p.id LIMIT ? OFFSET ?`,
		categoryID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Product returns a product by id.
func (r *Repository) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = ?`, id), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

const cartQuery = `SELECT c.id, c.user_id, c.quantity, ` + productColumns + `
	FROM cart_items c JOIN products p ON p.id = c.product_id
	WHERE c.user_id = ? ORDER BY p.name, c.id`

func (r *Repository) queryCart(ctx context.Context, query string, args ...any) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var out []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		p := &l.Product
		if err := rows.Scan(&l.ID, &l.UserID, &l.Quantity, &p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CartLines lists a page of the user's cart.
func (r *Repository) CartLines(ctx context.Context, userID int64, page ports.Page) ([]domain.CartLine, error) {
	return r.queryCart(ctx, cartQuery+` LIMIT ? OFFSET ?`, userID, page.Limit, page.Offset)
}

// AllCartLines lists the whole cart.
func (r *Repository) AllCartLines(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return r.queryCart(ctx, cartQuery, userID)
}

// CartTotal sums price times quantity over the cart.
func (r *Repository) CartTotal(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(p.price * c.quantity), 0) FROM cart_items c JOIN products p ON p.id = c.product_id WHERE c.user_id = ?`,
		userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("cart total: %w", err)
	}
	return total, nil
}

// AddToCart adds quantity to the user's line for productID, creating it if needed.
// Users that never sent /start are registered on the fly.
func (r *Repository) AddToCart(ctx context.Context, userID, productID int64, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`, userID, r.now().Unix()); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return tx.Commit()
}

// RemoveCartLine deletes a line owned by userID.
func (r *Repository) RemoveCartLine(ctx context.Context, userID, lineID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, lineID, userID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cart line %d: %w", lineID, domain.ErrNotFound)
	}
	return nil
}

// ClearCart deletes every line of the user's cart.
func (r *Repository) ClearCart(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// FAQ lists entries whose question contains search, ordered by question.
func (r *Repository) FAQ(ctx context.Context, search string, page ports.Page) ([]domain.FAQEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, question, answer FROM faq_entries
		WHERE ? = '' OR question LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY question, id LIMIT ? OFFSET ?`,
		search, escapeLike(search), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("query faq: %w", err)
	}
	defer rows.Close()

	var out []domain.FAQEntry
	for rows.Next() {
		var e domain.FAQEntry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertUser registers a user or refreshes their names.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, user.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}

	if exists > 0 {
		_, err = tx.ExecContext(ctx, `UPDATE users SET username = ?, first_name = ? WHERE id = ?`, user.Username, user.FirstName, user.ID)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO users (id, username, first_name, created_at) VALUES (?, ?, ?, ?)`,
			user.ID, user.Username, user.FirstName, r.now().Unix())
	}
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}
	return exists == 0, tx.Commit()
}

// CreateOrder stores an order with its items in one transaction.
func (r *Repository) CreateOrder(ctx context.Context, order domain.Order) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	created := order.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, delivery_address, total, status, payment_details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		order.UserID, order.DeliveryAddress, order.Total, string(order.Status), order.PaymentDetails, created.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order id: %w", err)
	}

	for _, it := range order.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_name, price_at_purchase, quantity) VALUES (?, ?, ?, ?)`,
			id, it.ProductName, it.PriceAtPurchase, it.Quantity)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
	}
	return id, tx.Commit()
}

// Orders lists a user's orders, newest first, with their items.
func (r *Repository) Orders(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, delivery_address, total, status, payment_details, created_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		var created int64
		if err := rows.Scan(&o.ID, &o.UserID, &o.DeliveryAddress, &o.Total, &status, &o.PaymentDetails, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = domain.OrderStatus(status)
		o.CreatedAt = time.Unix(created, 0)
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.orderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repository) orderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT product_name, price_at_purchase, quantity FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductName, &it.PriceAtPurchase, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ActiveChannels lists channels flagged active.
func (r *Repository) ActiveChannels(ctx context.Context) ([]domain.Channel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, channel_id, link, is_active FROM channels WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var out []domain.Channel
	for rows.Next() {
		var c domain.Channel
		if err := rows.Scan(&c.ID, &c.Name, &c.ChannelID, &c.Link, &c.Active); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
