package shop

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cthstore/storefront/pkg/domain"
)

// Root node ids.
const (
	CatalogRootID = "catalog"
	CartRootID    = "cart"
	FAQRootID     = "faq"
)

// Node id prefixes.
const (
	categoryPrefix = "category_"
	productPrefix  = "product_"
	linePrefix     = "line_"
	faqPrefix      = "faq_"
)

// Meta keys of the node side channel.
const (
	MetaUserID    = "user_id"
	MetaProductID = "product_id"
	MetaSearch    = "search"
	MetaQuestion  = "question"
)

// CatalogRoot is the synthetic root of the catalog tree.
func CatalogRoot(pageSize int) domain.Node {
	return domain.Node{
		ID:      CatalogRootID,
		Content: domain.Content{Text: "**Catalog**\n\nChoose a category."},
		Config:  domain.NodeConfig{PageSize: pageSize},
	}
}

// CartRoot is the synthetic root of the cart tree showing the total.
func CartRoot(userID, total int64, currency string, pageSize int) domain.Node {
	n := domain.Node{
		ID:     CartRootID,
		Config: domain.NodeConfig{PageSize: pageSize},
	}
	n.SetMeta(MetaUserID, strconv.FormatInt(userID, 10))
	if total > 0 {
		n.Content.Text = fmt.Sprintf("**Your cart**\n\nTotal: %s", FormatMoney(total, currency))
		n.AddAction("Checkout 💳", TokenCheckout)
	} else {
		n.Content.Text = "**Your cart is empty**"
	}
	return n
}

// FAQRoot is the synthetic root of the FAQ tree.
func FAQRoot(pageSize int) domain.Node {
	return domain.Node{
		ID:      FAQRootID,
		Content: domain.Content{Text: "**Frequently asked questions**\n\nPick a question or send a message to search."},
		Config:  domain.NodeConfig{PageSize: pageSize},
	}
}

// CategoryNodeID is the node id of a category.
func CategoryNodeID(id int64) string { return categoryPrefix + strconv.FormatInt(id, 10) }

// ProductNodeID is the node id of a product.
func ProductNodeID(id int64) string { return productPrefix + strconv.FormatInt(id, 10) }

func categoryNode(c domain.Category, pageSize int) domain.Node {
	return domain.Node{
		ID: CategoryNodeID(c.ID),
		Content: domain.Content{
			Text:  "Category: **" + c.Name + "**",
			Label: c.Name,
		},
		Config: domain.NodeConfig{PageSize: pageSize},
	}
}

func productNode(p domain.Product, currency string) domain.Node {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", p.Name)
	if p.Description != "" {
		b.WriteString(p.Description + "\n\n")
	}
	fmt.Fprintf(&b, "Price: %s\n", FormatMoney(p.Price, currency))
	if p.Stock > 0 {
		fmt.Fprintf(&b, "In stock: %d", p.Stock)
	} else {
		b.WriteString("Out of stock")
	}

	n := domain.Node{
		ID: ProductNodeID(p.ID),
		Content: domain.Content{
			Text:  b.String(),
			Label: p.Name,
			Image: p.Image,
			Leaf:  true,
		},
	}
	n.SetMeta(MetaProductID, strconv.FormatInt(p.ID, 10))
	if p.Stock > 0 {
		n.AddAction("Add to cart 🛒", AddToken(p.ID))
	}
	return n
}

func cartLineNode(l domain.CartLine, currency string) domain.Node {
	text := fmt.Sprintf("**%s**\n\n%s × %d = %s",
		l.Product.Name, FormatMoney(l.Product.Price, currency), l.Quantity, FormatMoney(l.Total(), currency))
	n := domain.Node{
		ID: linePrefix + strconv.FormatInt(l.ID, 10),
		Content: domain.Content{
			Text:  text,
			Label: fmt.Sprintf("%s × %d", l.Product.Name, l.Quantity),
			Image: l.Product.Image,
			Leaf:  true,
		},
	}
	n.AddAction("Remove ❌", RemoveToken(l.ID))
	return n
}

func faqNode(e domain.FAQEntry, search string) domain.Node {
	n := domain.Node{
		ID: faqPrefix + strconv.FormatInt(e.ID, 10),
		Content: domain.Content{
			Text:  e.Answer,
			Label: e.Question,
			Leaf:  true,
		},
	}
	n.SetMeta(MetaQuestion, e.Question)
	if search != "" {
		n.SetMeta(MetaSearch, search)
	}
	return n
}

// FormatFAQ is the FAQ formatter: question header, answer, active search.
func FormatFAQ(text string, meta map[string]string) string {
	var b strings.Builder
	if q := meta[MetaQuestion]; q != "" {
		b.WriteString("Question: **" + q + "**\n\n")
	}
	b.WriteString(text)
	if s := meta[MetaSearch]; s != "" {
		b.WriteString("\n\nSearch query: _" + s + "_")
	}
	return b.String()
}

// Truncate shortens s to n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
