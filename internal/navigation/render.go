package navigation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"time"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// errNoRenderer is wrapped in a RenderFailure when Render is called without a renderer.
var errNoRenderer = errors.New("no renderer configured")

// Render builds the view for the current position and hands it to the renderer.
// A source failure aborts before anything is delivered.
func (e *Engine) Render(ctx context.Context, target domain.Target) (domain.View, error) {
	view, err := e.build(ctx, &target)
	if err != nil {
		return view, err
	}
	return view, e.deliver(ctx, target, view)
}

// Build runs the load and layout steps for the current position without delivering.
func (e *Engine) Build(ctx context.Context) (domain.View, error) {
	return e.build(ctx, nil)
}

// build loads and lays out the current position. With a target, a node's
// loading text is shown in place of the triggering message while the source runs.
func (e *Engine) build(ctx context.Context, target *domain.Target) (domain.View, error) {
	idx := e.current
	node := e.tree.Node(idx)
	size := node.PageSize()

	hasMore := false
	if !node.Content.Leaf {
		known := e.tree.ChildCount(idx)
		if known > e.cursor+size {
			hasMore = true
		} else {
			e.showLoading(ctx, target, node)
			more, err := e.load(ctx, idx, size)
			if err != nil {
				return domain.View{}, err
			}
			// Children fetched beyond the window are shown even if the source says it is done.
			hasMore = more || e.tree.ChildCount(idx) > e.cursor+size
		}
	}

	return domain.View{
		Text:     e.format(node),
		Image:    node.Content.Image,
		Keyboard: e.layout(idx, hasMore),
	}, nil
}

func (e *Engine) deliver(ctx context.Context, target domain.Target, view domain.View) error {
	var err error
	if e.renderer == nil {
		err = errNoRenderer
	} else {
		_, err = e.renderer.Render(ctx, target, view)
	}

	if e.hooks.OnRender != nil {
		e.hooks.OnRender(ctx, &domain.RenderEvent{
			EventBase: domain.NewEventBase(domain.EventRender),
			NodeID:    e.Current().ID,
			Err:       err,
		})
	}
	if err != nil {
		e.logger.Error("Render failed", "node_id", e.Current().ID, "err", err)
		return &domain.RenderFailure{Err: err}
	}
	return nil
}

func (e *Engine) showLoading(ctx context.Context, target *domain.Target, node *domain.Node) {
	if target == nil || target.MessageID == 0 || e.renderer == nil || node.Config.LoadingText == "" {
		return
	}
	if e.sourceFor(node) == nil {
		return
	}
	if _, err := e.renderer.Render(ctx, *target, domain.View{Text: node.Config.LoadingText}); err != nil {
		e.logger.Debug("Loading notice not shown", "node_id", node.ID, "err", err)
	}
}

// sourceFor resolves the node's source override, falling back to the default.
func (e *Engine) sourceFor(node *domain.Node) ports.ContentSource {
	if name := node.Config.Source; name != "" {
		if src, ok := e.sources[name]; ok {
			return src
		}
		e.logger.Warn("Unknown content source override, using default", "node_id", node.ID, "source", name)
	}
	return e.source
}

type loadOutcome struct {
	res ports.LoadResult
	err error
}

// load asks the source for the page starting after the known children of idx
// and attaches the result. Nothing is attached unless the call succeeds.
func (e *Engine) load(ctx context.Context, idx, size int) (bool, error) {
	node := e.tree.Node(idx)
	src := e.sourceFor(node)
	if src == nil {
		return false, nil
	}

	req := ports.LoadRequest{
		NodeID: node.ID,
		Limit:  size,
		Offset: e.tree.ChildCount(idx),
		Params: maps.Clone(node.Content.Meta),
	}

	start := time.Now()
	res, err := e.callSource(ctx, src, req)
	elapsed := time.Since(start)

	if e.hooks.OnSourceLoad != nil {
		e.hooks.OnSourceLoad(ctx, &domain.LoadEvent{
			EventBase: domain.NewEventBase(domain.EventSourceLoad),
			NodeID:    req.NodeID,
			Offset:    req.Offset,
			Limit:     req.Limit,
			Count:     len(res.Nodes),
			HasMore:   res.HasMore,
			Duration:  elapsed,
			Err:       err,
		})
	}

	if err != nil {
		e.logger.Warn("Content source failed", "node_id", req.NodeID, "offset", req.Offset, "err", err)
		return false, &domain.SourceFailure{NodeID: req.NodeID, Err: err}
	}

	e.logger.Debug("Loaded children",
		"node_id", req.NodeID,
		"offset", req.Offset,
		"count", len(res.Nodes),
		"has_more", res.HasMore,
		"duration", elapsed,
	)
	e.tree.AttachChildren(idx, res.Nodes)
	e.tree.setExhausted(idx, !res.HasMore)
	return res.HasMore, nil
}

// callSource runs the source under the load timeout. A source that ignores
// its context still cannot hold the turn past the deadline.
func (e *Engine) callSource(ctx context.Context, src ports.ContentSource, req ports.LoadRequest) (ports.LoadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan loadOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- loadOutcome{err: fmt.Errorf("content source panicked: %v", r)}
			}
		}()
		res, err := src.Load(ctx, req)
		done <- loadOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return ports.LoadResult{}, ctx.Err()
	}
}

func (e *Engine) format(node *domain.Node) string {
	if e.formatter == nil {
		return node.Content.Text
	}
	return e.formatter(node.Content.Text, node.Content.Meta)
}

// layout builds the keyboard: child buttons two per row, the control row,
// the up row, then the node's custom actions and the global actions.
func (e *Engine) layout(idx int, hasMore bool) domain.Keyboard {
	node := e.tree.Node(idx)
	size := node.PageSize()
	var kb domain.Keyboard

	if !node.Content.Leaf {
		children := e.tree.Children(idx)
		end := min(e.cursor+size, len(children))
		var row []domain.Button
		for i := e.cursor; i < end; i++ {
			child := e.tree.Node(children[i])
			row = append(row, domain.Button{Label: child.Caption(), Action: domain.Descend(child.ID)})
			if len(row) == 2 {
				kb = append(kb, row)
				row = nil
			}
		}
		if len(row) > 0 {
			kb = append(kb, row)
		}

		var controls []domain.Button
		if e.cursor > 0 {
			controls = append(controls, domain.Button{Label: e.labels.Prev, Action: domain.Prev()})
		}
		if len(children) > size {
			controls = append(controls, domain.Button{Label: strconv.Itoa(e.cursor/size + 1), Action: domain.Current()})
		}
		if hasMore {
			controls = append(controls, domain.Button{Label: e.labels.Next, Action: domain.Next()})
		}
		if len(controls) > 0 {
			kb = append(kb, controls)
		}
	}

	if _, ok := e.tree.Parent(idx); ok {
		kb = append(kb, []domain.Button{{Label: e.labels.Up, Action: domain.Up()}})
	}
	if len(node.Actions) > 0 {
		kb = append(kb, append([]domain.Button(nil), node.Actions...))
	}
	if len(e.globals) > 0 {
		kb = append(kb, append([]domain.Button(nil), e.globals...))
	}
	return kb
}
