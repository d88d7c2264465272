// Package navigation implements the paginated tree navigation engine.
//
// An Engine shows one node of a lazily loaded content tree at a time, a page
// of its children as buttons, and the controls to move between pages and
// levels. Children are fetched from a ports.ContentSource only when the
// known ones do not cover the current page.
package navigation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// Engine owns the current position (node and cursor) in a content tree.
// It is not safe for concurrent use; callers serialize turns per user.
type Engine struct {
	tree    *Tree
	current int
	cursor  int

	source    ports.ContentSource
	sources   map[string]ports.ContentSource
	renderer  ports.Renderer
	formatter Formatter
	globals   []domain.Button
	labels    Labels
	timeout   time.Duration
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
}

// New creates an Engine positioned at root with cursor 0.
func New(root domain.Node, opts ...Option) *Engine {
	e := newEngine(opts...)
	e.tree = NewTree(root, e.logger)
	return e
}

func newEngine(opts ...Option) *Engine {
	e := &Engine{
		labels:  DefaultLabels,
		timeout: DefaultLoadTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore rebuilds an Engine from a snapshot. A snapshot with dangling or
// inconsistent references yields domain.ErrCorruptSnapshot.
func Restore(snap *domain.Snapshot, opts ...Option) (*Engine, error) {
	if snap == nil || len(snap.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty", domain.ErrCorruptSnapshot)
	}
	if snap.Nodes[0].Parent != domain.NoParent {
		return nil, fmt.Errorf("%w: root has a parent", domain.ErrCorruptSnapshot)
	}
	if snap.Current < 0 || snap.Current >= len(snap.Nodes) {
		return nil, fmt.Errorf("%w: current %d out of range", domain.ErrCorruptSnapshot, snap.Current)
	}
	if snap.Cursor < 0 {
		return nil, fmt.Errorf("%w: negative cursor", domain.ErrCorruptSnapshot)
	}
	if size := snap.Nodes[snap.Current].Node.PageSize(); snap.Cursor%size != 0 {
		return nil, fmt.Errorf("%w: cursor %d not aligned to page size %d", domain.ErrCorruptSnapshot, snap.Cursor, size)
	}

	e := newEngine(opts...)
	t := &Tree{entries: make([]*entry, len(snap.Nodes)), logger: e.logger}
	for i, ns := range snap.Nodes {
		t.entries[i] = &entry{
			node:      ns.Node.Clone(),
			parent:    ns.Parent,
			children:  append([]int(nil), ns.Children...),
			byID:      make(map[string]int, len(ns.Children)),
			exhausted: ns.Exhausted,
		}
	}
	for i, en := range t.entries {
		if i > 0 && (en.parent < 0 || en.parent >= len(t.entries)) {
			return nil, fmt.Errorf("%w: node %d has invalid parent %d", domain.ErrCorruptSnapshot, i, en.parent)
		}
		for _, c := range en.children {
			if c <= 0 || c >= len(t.entries) || t.entries[c].parent != i {
				return nil, fmt.Errorf("%w: node %d has invalid child %d", domain.ErrCorruptSnapshot, i, c)
			}
			id := t.entries[c].node.ID
			if _, dup := en.byID[id]; dup {
				return nil, fmt.Errorf("%w: duplicate child id %q", domain.ErrCorruptSnapshot, id)
			}
			en.byID[id] = c
		}
	}
	// Every non-root entry must be listed by its parent exactly once.
	for i := 1; i < len(t.entries); i++ {
		p := t.entries[i].parent
		if idx, ok := t.entries[p].byID[t.entries[i].node.ID]; !ok || idx != i {
			return nil, fmt.Errorf("%w: node %d is not listed by its parent", domain.ErrCorruptSnapshot, i)
		}
	}

	if n := len(t.reachable()); n != len(t.entries) {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable", domain.ErrCorruptSnapshot, len(t.entries)-n, len(t.entries))
	}

	e.tree = t
	e.current = snap.Current
	e.cursor = snap.Cursor
	return e, nil
}

// Snapshot serializes the engine, dropping detached entries.
func (e *Engine) Snapshot() *domain.Snapshot {
	order := e.tree.reachable()
	remap := make(map[int]int, len(order))
	for newIdx, oldIdx := range order {
		remap[oldIdx] = newIdx
	}

	snap := &domain.Snapshot{Nodes: make([]domain.NodeState, len(order)), Cursor: e.cursor}
	for newIdx, oldIdx := range order {
		en := e.tree.entries[oldIdx]
		parent := domain.NoParent
		if newIdx > 0 {
			parent = remap[en.parent]
		}
		var children []int
		for _, c := range en.children {
			children = append(children, remap[c])
		}
		snap.Nodes[newIdx] = domain.NodeState{
			Node:      en.node.Clone(),
			Parent:    parent,
			Children:  children,
			Exhausted: en.exhausted,
		}
	}

	cur, ok := remap[e.current]
	if !ok {
		e.logger.Warn("Current node detached from tree, snapshot falls back to root", "node_id", e.tree.Node(e.current).ID)
		cur, snap.Cursor = 0, 0
	}
	snap.Current = cur
	return snap
}

// Tree exposes the underlying arena.
func (e *Engine) Tree() *Tree { return e.tree }

// Current returns the node being displayed. Scenes may edit its Meta and Actions.
func (e *Engine) Current() *domain.Node { return e.tree.Node(e.current) }

// Root returns the root node.
func (e *Engine) Root() *domain.Node { return e.tree.Node(e.tree.Root()) }

// AtRoot reports whether the root is displayed.
func (e *Engine) AtRoot() bool { return e.current == e.tree.Root() }

// Cursor returns the offset of the first visible child.
func (e *Engine) Cursor() int { return e.cursor }

// JumpToRoot moves to the root with cursor 0 without rendering.
func (e *Engine) JumpToRoot() {
	e.current = e.tree.Root()
	e.cursor = 0
}

// ResetCurrent clears the displayed node's children and resets the cursor,
// so the next render reloads from offset 0.
func (e *Engine) ResetCurrent() {
	e.tree.ClearChildren(e.current)
	e.cursor = 0
}
