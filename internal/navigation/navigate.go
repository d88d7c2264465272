package navigation

import (
	"context"
	"fmt"

	"github.com/cthstore/storefront/pkg/domain"
)

// Handle applies a navigation action and re-renders the resulting position.
// Custom actions are returned as domain.ErrUnhandledAction for the scene to
// handle. An unknown child yields a *domain.NavigationFault and no render.
// If the render fails on the content source, the position is rolled back.
func (e *Engine) Handle(ctx context.Context, target domain.Target, action domain.Action) (domain.View, error) {
	if !action.IsNavigation() {
		return domain.View{}, fmt.Errorf("%w: %s", domain.ErrUnhandledAction, action)
	}

	prevNode, prevCursor := e.current, e.cursor
	if err := e.move(action); err != nil {
		return domain.View{}, err
	}

	view, err := e.build(ctx, &target)
	if err != nil {
		e.current, e.cursor = prevNode, prevCursor
		return domain.View{}, err
	}
	return view, e.deliver(ctx, target, view)
}

// move applies the cursor and node arithmetic of an action.
func (e *Engine) move(action domain.Action) error {
	node := e.tree.Node(e.current)
	size := node.PageSize()

	switch action.Kind {
	case domain.ActionNext:
		if e.canAdvance() {
			e.cursor += size
		} else {
			e.logger.Debug("Next ignored, no further children", "node_id", node.ID, "cursor", e.cursor)
		}

	case domain.ActionPrev:
		e.cursor = max(e.cursor-size, 0)

	case domain.ActionDescend:
		child, ok := e.tree.Child(e.current, action.Target)
		if action.Target == "" || !ok {
			e.logger.Warn("Descend to unknown child", "node_id", node.ID, "child_id", action.Target)
			return &domain.NavigationFault{Action: action, Reason: "unknown child"}
		}
		e.current = child
		e.cursor = 0

	case domain.ActionUp:
		parent, ok := e.tree.Parent(e.current)
		if !ok {
			return nil
		}
		parentSize := e.tree.Node(parent).PageSize()
		pos := max(e.tree.Position(parent, e.current), 0)
		e.cursor = (pos / parentSize) * parentSize
		e.current = parent

	case domain.ActionCurrent:
		// Re-render only.

	default:
		return fmt.Errorf("%w: %s", domain.ErrUnhandledAction, action)
	}
	return nil
}

// canAdvance reports whether a next page is known or may still be supplied.
func (e *Engine) canAdvance() bool {
	node := e.tree.Node(e.current)
	if node.Content.Leaf {
		return false
	}
	if e.tree.ChildCount(e.current) > e.cursor+node.PageSize() {
		return true
	}
	return e.sourceFor(node) != nil && !e.tree.Exhausted(e.current)
}
