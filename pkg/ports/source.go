package ports

import (
	"context"

	"github.com/cthstore/storefront/pkg/domain"
)

// LoadRequest asks a source for up to Limit children of NodeID starting at Offset.
type LoadRequest struct {
	NodeID string
	Limit  int
	Offset int
	Params map[string]string // the node's side-channel values
}

// LoadResult carries a page of children. An empty page with HasMore false is
// the only "no data" signal; errors are reserved for genuine failures.
type LoadResult struct {
	Nodes   []domain.Node
	HasMore bool
}

// ContentSource supplies children of a node on demand.
// Load must be idempotent for the same (NodeID, Offset, Params).
type ContentSource interface {
	Load(ctx context.Context, req LoadRequest) (LoadResult, error)
}

// SourceFunc adapts a function to ContentSource.
type SourceFunc func(ctx context.Context, req LoadRequest) (LoadResult, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context, req LoadRequest) (LoadResult, error) {
	return f(ctx, req)
}
