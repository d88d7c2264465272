// Package graph draws persisted navigation trees as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/cthstore/storefront/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of the loaded part of a
// navigation tree. Shapes:
//   - root: ((circle))
//   - leaf: ([stadium])
//   - branch: [rectangle], annotated with "…" while more children may exist
//
// The path from the root to the current node is styled "visited" and the
// current node "current". Children beyond the cursor page are drawn with a
// dotted edge.
func GenerateMermaid(snap *domain.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if snap == nil || len(snap.Nodes) == 0 {
		return sb.String()
	}

	for i, ns := range snap.Nodes {
		opener, closer := "[", "]"
		switch {
		case ns.Parent == domain.NoParent:
			opener, closer = "((", "))"
		case ns.Node.Content.Leaf:
			opener, closer = "([", "])"
		}

		label := escape(ns.Node.Caption())
		if !ns.Node.Content.Leaf && !ns.Exhausted && len(ns.Children) > 0 {
			label += " …"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(i), opener, label, closer)

		page := pageOf(snap, i)
		for pos, child := range ns.Children {
			arrow := "-->"
			if !page[pos] {
				arrow = "-.->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(i), arrow, nodeID(child))
		}
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps contrast on light and dark themes.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	if snap.Current < 0 || snap.Current >= len(snap.Nodes) {
		return sb.String()
	}
	seen := map[int]bool{snap.Current: true}
	for p := snap.Nodes[snap.Current].Parent; p != domain.NoParent && p < len(snap.Nodes) && !seen[p]; p = snap.Nodes[p].Parent {
		seen[p] = true
		fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(p))
	}
	fmt.Fprintf(&sb, "    class %s current;\n", nodeID(snap.Current))
	return sb.String()
}

// pageOf marks the children of node i shown on the current page. Only the
// current node has a cursor; every other node shows its first page.
func pageOf(snap *domain.Snapshot, i int) map[int]bool {
	ns := snap.Nodes[i]
	size := ns.Node.PageSize()
	start := 0
	if i == snap.Current {
		start = snap.Cursor * size
	}
	page := make(map[int]bool, size)
	for pos := start; pos < start+size && pos < len(ns.Children); pos++ {
		page[pos] = true
	}
	return page
}

func nodeID(i int) string {
	return fmt.Sprintf("n%d", i)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}
