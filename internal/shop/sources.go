// Package shop binds the storefront data to the navigation engine: content
// sources for the catalog, cart and FAQ trees, node builders and action tokens.
package shop

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// Each source asks the repository for one row more than requested to learn
// whether another page exists.

// CatalogSource yields the subcategories, then the products, of a category.
type CatalogSource struct {
	Repo     ports.CatalogRepository
	Currency string
	PageSize int
}

// Load implements ports.ContentSource.
func (s *CatalogSource) Load(ctx context.Context, req ports.LoadRequest) (ports.LoadResult, error) {
	var parent *int64
	switch {
	case req.NodeID == CatalogRootID:
	case strings.HasPrefix(req.NodeID, categoryPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(req.NodeID, categoryPrefix), 10, 64)
		if err != nil {
			return ports.LoadResult{}, fmt.Errorf("bad category node %q: %w", req.NodeID, err)
		}
		parent = &id
	default:
		return ports.LoadResult{}, nil
	}

	want := req.Limit + 1
	subCount, err := s.Repo.CountSubcategories(ctx, parent)
	if err != nil {
		return ports.LoadResult{}, err
	}

	var out []domain.Node
	if req.Offset < subCount {
		subs, err := s.Repo.Subcategories(ctx, parent, ports.Page{Offset: req.Offset, Limit: want})
		if err != nil {
			return ports.LoadResult{}, err
		}
		for _, c := range subs {
			out = append(out, categoryNode(c, s.PageSize))
		}
	}

	if parent != nil && len(out) < want {
		products, err := s.Repo.Products(ctx, *parent, ports.Page{
			Offset: max(req.Offset-subCount, 0),
			Limit:  want - len(out),
		})
		if err != nil {
			return ports.LoadResult{}, err
		}
		for _, p := range products {
			out = append(out, productNode(p, s.Currency))
		}
	}

	return page(out, req.Limit), nil
}

// CartSource yields the lines of the cart owned by the root's user.
type CartSource struct {
	Repo     ports.CartRepository
	Currency string
}

// Load implements ports.ContentSource.
func (s *CartSource) Load(ctx context.Context, req ports.LoadRequest) (ports.LoadResult, error) {
	if req.NodeID != CartRootID {
		return ports.LoadResult{}, nil
	}
	userID, err := strconv.ParseInt(req.Params[MetaUserID], 10, 64)
	if err != nil {
		return ports.LoadResult{}, fmt.Errorf("cart root without user: %w", err)
	}

	lines, err := s.Repo.CartLines(ctx, userID, ports.Page{Offset: req.Offset, Limit: req.Limit + 1})
	if err != nil {
		return ports.LoadResult{}, err
	}
	out := make([]domain.Node, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineNode(l, s.Currency))
	}
	return page(out, req.Limit), nil
}

// FAQSource yields FAQ entries matching the root's search term.
type FAQSource struct {
	Repo ports.FAQRepository
}

// Load implements ports.ContentSource.
func (s *FAQSource) Load(ctx context.Context, req ports.LoadRequest) (ports.LoadResult, error) {
	if req.NodeID != FAQRootID {
		return ports.LoadResult{}, nil
	}
	search := req.Params[MetaSearch]

	entries, err := s.Repo.FAQ(ctx, search, ports.Page{Offset: req.Offset, Limit: req.Limit + 1})
	if err != nil {
		return ports.LoadResult{}, err
	}
	out := make([]domain.Node, 0, len(entries))
	for _, e := range entries {
		out = append(out, faqNode(e, search))
	}
	return page(out, req.Limit), nil
}

// page trims a limit+1 fetch and reports whether the extra row existed.
func page(nodes []domain.Node, limit int) ports.LoadResult {
	if len(nodes) > limit {
		return ports.LoadResult{Nodes: nodes[:limit], HasMore: true}
	}
	return ports.LoadResult{Nodes: nodes}
}
