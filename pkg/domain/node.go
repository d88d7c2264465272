package domain

// DefaultPageSize is the number of children shown per page when a node does not configure one.
const DefaultPageSize = 5

// Content is the displayable payload of a Node.
type Content struct {
	Text  string `json:"text"`
	Label string `json:"label,omitempty"` // Button caption when shown as a child
	Image string `json:"image,omitempty"` // URL or platform file id

	// Meta carries context (search term, product id, ...) to the loader and the formatter.
	Meta map[string]string `json:"meta,omitempty"`

	// Leaf nodes have no children and are never loaded.
	Leaf bool `json:"leaf,omitempty"`
}

// NodeConfig holds per-node navigation settings.
type NodeConfig struct {
	PageSize    int    `json:"page_size,omitempty"`
	LoadingText string `json:"loading_text,omitempty"`

	// Source names a content source overriding the engine default for this node.
	Source string `json:"source,omitempty"`
}

// Node represents one element of the content tree.
// Parent/child links are owned by the navigation arena, not by the node itself.
type Node struct {
	ID      string     `json:"id"`
	Content Content    `json:"content"`
	Actions []Button   `json:"actions,omitempty"`
	Config  NodeConfig `json:"config,omitempty"`
}

// PageSize returns the configured page size or DefaultPageSize.
func (n *Node) PageSize() int {
	if n.Config.PageSize > 0 {
		return n.Config.PageSize
	}
	return DefaultPageSize
}

// Caption returns the label used when the node is rendered as a child button.
func (n *Node) Caption() string {
	if n.Content.Label != "" {
		return n.Content.Label
	}
	return n.ID
}

// MetaValue returns a side-channel value, or "" when absent.
func (n *Node) MetaValue(key string) string {
	if n.Content.Meta == nil {
		return ""
	}
	return n.Content.Meta[key]
}

// SetMeta sets a side-channel value, allocating the map if needed.
func (n *Node) SetMeta(key, value string) {
	if n.Content.Meta == nil {
		n.Content.Meta = make(map[string]string)
	}
	n.Content.Meta[key] = value
}

// DeleteMeta removes a side-channel value.
func (n *Node) DeleteMeta(key string) {
	delete(n.Content.Meta, key)
}

// HasAction reports whether the node carries a custom action with the given token.
func (n *Node) HasAction(token string) bool {
	for _, b := range n.Actions {
		if b.Action.Kind == ActionCustom && b.Action.Target == token {
			return true
		}
	}
	return false
}

// AddAction appends a custom action unless one with the same token exists.
func (n *Node) AddAction(label, token string) {
	if n.HasAction(token) {
		return
	}
	n.Actions = append(n.Actions, Button{Label: label, Action: Custom(token)})
}

// RemoveAction drops every custom action bound to token.
func (n *Node) RemoveAction(token string) {
	kept := n.Actions[:0]
	for _, b := range n.Actions {
		if b.Action.Kind == ActionCustom && b.Action.Target == token {
			continue
		}
		kept = append(kept, b)
	}
	n.Actions = kept
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	c := n
	if n.Content.Meta != nil {
		c.Content.Meta = make(map[string]string, len(n.Content.Meta))
		for k, v := range n.Content.Meta {
			c.Content.Meta[k] = v
		}
	}
	if n.Actions != nil {
		c.Actions = append([]Button(nil), n.Actions...)
	}
	return c
}
