package domain

// NoParent marks the root entry of a snapshot.
const NoParent = -1

// NodeState is one arena entry of a persisted navigation tree.
type NodeState struct {
	Node     Node  `json:"node"`
	Parent   int   `json:"parent"`
	Children []int `json:"children,omitempty"`

	// Exhausted is set once the source reported no more children for this node.
	Exhausted bool `json:"exhausted,omitempty"`
}

// Snapshot is the serialized form of a navigation engine.
// Nodes[0] is the root.
type Snapshot struct {
	Nodes   []NodeState `json:"nodes"`
	Current int         `json:"current"`
	Cursor  int         `json:"cursor"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{Current: s.Current, Cursor: s.Cursor, Nodes: make([]NodeState, len(s.Nodes))}
	for i, n := range s.Nodes {
		out.Nodes[i] = NodeState{
			Node:      n.Node.Clone(),
			Parent:    n.Parent,
			Children:  append([]int(nil), n.Children...),
			Exhausted: n.Exhausted,
		}
	}
	return out
}
