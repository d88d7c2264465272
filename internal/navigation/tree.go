package navigation

import (
	"log/slog"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/pkg/domain"
)

// entry is one arena slot. Relationships are arena indexes, never pointers.
type entry struct {
	node      domain.Node
	parent    int
	children  []int
	byID      map[string]int
	exhausted bool
}

// Tree is the known portion of a content hierarchy, stored as an arena.
// Index 0 is the root. Entries detached by ClearChildren or replacement stay
// in the arena until the next snapshot compaction.
type Tree struct {
	entries []*entry
	logger  *slog.Logger
}

// NewTree creates a tree holding only root.
func NewTree(root domain.Node, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tree{
		entries: []*entry{newEntry(root, domain.NoParent)},
		logger:  logger,
	}
}

func newEntry(node domain.Node, parent int) *entry {
	return &entry{node: node, parent: parent, byID: make(map[string]int)}
}

// Root returns the root index.
func (t *Tree) Root() int { return 0 }

// Len returns the arena size, including detached entries.
func (t *Tree) Len() int { return len(t.entries) }

// Node returns the node at idx. The pointer stays valid until the next compaction.
func (t *Tree) Node(idx int) *domain.Node {
	return &t.entries[idx].node
}

// Parent returns the parent index of idx.
func (t *Tree) Parent(idx int) (int, bool) {
	p := t.entries[idx].parent
	return p, p != domain.NoParent
}

// Children returns the ordered child indexes of idx.
func (t *Tree) Children(idx int) []int {
	return t.entries[idx].children
}

// ChildCount returns the number of known children of idx.
func (t *Tree) ChildCount(idx int) int {
	return len(t.entries[idx].children)
}

// Child resolves a child id of parent to its arena index.
func (t *Tree) Child(parent int, id string) (int, bool) {
	idx, ok := t.entries[parent].byID[id]
	return idx, ok
}

// Position returns the display position of child among parent's children, or -1.
func (t *Tree) Position(parent, child int) int {
	for i, c := range t.entries[parent].children {
		if c == child {
			return i
		}
	}
	return -1
}

// Exhausted reports whether the source said no more children exist for idx.
func (t *Tree) Exhausted(idx int) bool {
	return t.entries[idx].exhausted
}

func (t *Tree) setExhausted(idx int, v bool) {
	t.entries[idx].exhausted = v
}

// AttachChild inserts node under parent, or replaces the child with the same id
// in place. Replacement keeps the display position and is logged as a loader bug.
func (t *Tree) AttachChild(parent int, node domain.Node) int {
	p := t.entries[parent]
	idx := len(t.entries)
	t.entries = append(t.entries, newEntry(node, parent))

	if old, exists := p.byID[node.ID]; exists {
		t.logger.Warn("Duplicate child id from content source, replacing",
			"parent_id", p.node.ID,
			"node_id", node.ID,
		)
		t.entries[old].parent = domain.NoParent
		p.children[t.Position(parent, old)] = idx
		p.byID[node.ID] = idx
		return idx
	}

	p.children = append(p.children, idx)
	p.byID[node.ID] = idx
	return idx
}

// AttachChildren attaches nodes in argument order.
func (t *Tree) AttachChildren(parent int, nodes []domain.Node) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, t.AttachChild(parent, n))
	}
	return out
}

// ClearChildren forgets every known child of parent and its load state.
func (t *Tree) ClearChildren(parent int) {
	p := t.entries[parent]
	for _, c := range p.children {
		t.entries[c].parent = domain.NoParent
	}
	p.children = nil
	p.byID = make(map[string]int)
	p.exhausted = false
}

// reachable returns arena indexes reachable from the root in breadth-first order.
func (t *Tree) reachable() []int {
	order := []int{0}
	for i := 0; i < len(order); i++ {
		order = append(order, t.entries[order[i]].children...)
	}
	return order
}
