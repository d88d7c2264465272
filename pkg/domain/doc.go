/*
Package domain contains the core models of the storefront.

It defines the content tree elements shown by the navigation engine, the
closed set of navigation actions, the rendered view handed to renderers and
the persisted conversation session. This package is kept pure and free of
I/O or persistence concerns.

# Key Entities

  - Node: An addressable unit of hierarchical content with lazily loaded children.
  - Action: A closed variant (Next, Prev, Descend, Up, Current, Custom) bound to a button.
  - View: Text, optional image and button rows produced by a render step.
  - Snapshot: The serialized form of a navigation engine (arena, current node, cursor).
  - Session: The per-user conversation state with typed per-scene contexts.
*/
package domain
