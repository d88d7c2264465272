/*
Package ports defines the driven ports (interfaces) of the storefront.

These interfaces decouple the navigation engine and the scene machine from
the chat platform, the relational data and the session backend.

# Key Interfaces

  - ContentSource: Supplies the children of a node, page by page.
  - Renderer: Delivers a rendered view as a sent or edited chat message.
  - SessionStore: Persists the per-user conversation session.
  - DistributedLocker: Coordinates per-user turns across replicas.
  - ShopRepository: Catalog, cart, FAQ, order and channel data.
*/
package ports
