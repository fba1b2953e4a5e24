package btree

// Accessor is the pluggable indirection (§4.3) that maps a node
// identifier to a node object and back. The tree never dereferences raw
// storage addresses; every traversal goes through one of these five
// operations.
type Accessor interface {
	// Select returns the live in-memory node for id. Side-effect-free
	// from the tree's point of view (a caching paged accessor may touch
	// its own cache, but must not mutate the node contents).
	Select(id NodeID) (*Node, error)

	// Insert registers a newly created node and mints an id for it.
	Insert(n *Node) (NodeID, error)

	// Update persists a node already registered under id: at-most-once
	// write per logical change.
	Update(id NodeID, n *Node) error

	// Remove unregisters a node; its id may be recycled. Select of that
	// id is undefined afterwards.
	Remove(id NodeID) error

	// List enumerates all live node ids, used only during tree
	// teardown.
	List() ([]NodeID, error)

	// Close releases any resources (open files, caches) held by the
	// accessor. Accessors without resources to release may no-op.
	Close() error
}
