package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

type seedProduct struct {
	name, description string
	price             int64
	stock             int
	image             string
}

type seedCategory struct {
	name     string
	children []seedCategory
	products []seedProduct
}

var demoCatalog = []seedCategory{
	{
		name: "Tea",
		children: []seedCategory{
			{name: "Green tea", products: []seedProduct{
				{"Sencha", "Japanese steamed green tea with a grassy finish.", 1250, 40, ""},
				{"Gunpowder", "Rolled Chinese green tea, smoky and bold.", 990, 25, ""},
				{"Matcha", "Stone-ground ceremonial grade powder.", 2400, 10, ""},
			}},
			{name: "Black tea", products: []seedProduct{
				{"Assam", "Malty breakfast tea from Assam.", 1100, 30, ""},
				{"Darjeeling", "First flush, light and floral.", 1800, 12, ""},
				{"Earl Grey", "Black tea scented with bergamot.", 1050, 50, ""},
				{"Keemun", "Chinese black tea with a cocoa note.", 1300, 8, ""},
				{"Lapsang Souchong", "Pine smoked black tea.", 1400, 6, ""},
				{"Ceylon", "Bright and brisk Sri Lankan tea.", 950, 35, ""},
			}},
		},
	},
	{
		name: "Coffee",
		products: []seedProduct{
			{"Ethiopia Yirgacheffe", "Washed process, citrus and jasmine.", 1650, 20, ""},
			{"Colombia Supremo", "Balanced with caramel sweetness.", 1450, 30, ""},
			{"Espresso Blend", "Dark roast for espresso machines.", 1350, 40, ""},
		},
	},
	{
		name: "Accessories",
		products: []seedProduct{
			{"Gaiwan", "Porcelain lidded bowl, 150 ml.", 2200, 5, ""},
			{"Tea strainer", "Stainless steel mesh strainer.", 450, 100, ""},
		},
	},
}

var demoFAQ = [][2]string{
	{"How long does delivery take?", "Orders ship within two business days. Delivery takes 3 to 7 days depending on the region."},
	{"How do I pay?", "Open the cart, press Checkout and pay with the invoice sent to the chat."},
	{"Can I change my order?", "Contact support before the order is shipped and we will update it."},
	{"Do you ship abroad?", "Yes, to most countries. Shipping costs are shown at checkout."},
	{"How should I store tea?", "Keep it airtight, away from light, heat and strong smells."},
	{"Is there a minimum order?", "No, you can order a single item."},
	{"How do I return an item?", "Unopened items can be returned within 14 days of delivery."},
}

// Seed fills an empty database with a demo catalog and FAQ.
// It does nothing if any category exists.
func (r *Repository) Seed(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range demoCatalog {
		if err := seedTree(ctx, tx, nil, c); err != nil {
			return err
		}
	}
	for _, f := range demoFAQ {
		if _, err := tx.ExecContext(ctx, `INSERT INTO faq_entries (question, answer) VALUES (?, ?)`, f[0], f[1]); err != nil {
			return fmt.Errorf("seed faq: %w", err)
		}
	}
	return tx.Commit()
}

func seedTree(ctx context.Context, tx *sql.Tx, parent *int64, c seedCategory) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO categories (name, parent_id) VALUES (?, ?)`, c.name, nullable(parent))
	if err != nil {
		return fmt.Errorf("seed category %q: %w", c.name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, p := range c.products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (category_id, name, description, price, image, stock) VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.name, p.description, p.price, p.image, p.stock)
		if err != nil {
			return fmt.Errorf("seed product %q: %w", p.name, err)
		}
	}
	for _, child := range c.children {
		if err := seedTree(ctx, tx, &id, child); err != nil {
			return err
		}
	}
	return nil
}

// AddChannel registers a channel users must join.
func (r *Repository) AddChannel(ctx context.Context, name string, channelID int64, link string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO channels (name, channel_id, link, is_active) VALUES (?, ?, ?, 1)
		ON CONFLICT (channel_id) DO UPDATE SET name = excluded.name, link = excluded.link, is_active = 1`,
		name, channelID, link)
	if err != nil {
		return fmt.Errorf("add channel: %w", err)
	}
	return nil
}
