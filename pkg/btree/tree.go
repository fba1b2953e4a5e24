package btree

import "sort"

// Tree is the ordered container: root identifier, height, branching
// factor, type descriptor, and accessor (§3). User calls resolve node
// identifiers through the accessor, which returns node objects; the
// tree mutates nodes and hands them back to the accessor for
// persistence. No part of this package dereferences a raw storage
// address.
type Tree struct {
	maxNodeSize int
	height      int
	rootID      NodeID
	typ         *TypeDescriptor
	accessor    Accessor
	hooks       Hooks
}

// Create builds a new tree with a freshly minted empty leaf as root.
// maxNodeSize (m) must be an even integer >= 4.
func Create(typ *TypeDescriptor, maxNodeSize int, accessor Accessor) (*Tree, error) {
	if maxNodeSize < 4 || maxNodeSize%2 != 0 {
		return nil, NewError(StatusInvalidParameters, "create", nil)
	}
	if typ == nil || accessor == nil {
		return nil, NewError(StatusInvalidParameters, "create", nil)
	}

	root := newLeaf(typ, maxNodeSize)
	rootID, err := accessor.Insert(root)
	if err != nil {
		return nil, NewError(StatusOutOfMemory, "create", err)
	}

	return &Tree{
		maxNodeSize: maxNodeSize,
		height:      1,
		rootID:      rootID,
		typ:         typ,
		accessor:    accessor,
		hooks:       noopHooks{},
	}, nil
}

// Open reattaches a Tree to a tree already persisted through accessor,
// rooted at rootID. Height is not itself persisted; Open recomputes it
// by walking from rootID down to a leaf, since every leaf in a valid
// tree sits at the same depth.
func Open(typ *TypeDescriptor, maxNodeSize int, accessor Accessor, rootID NodeID) (*Tree, error) {
	if maxNodeSize < 4 || maxNodeSize%2 != 0 {
		return nil, NewError(StatusInvalidParameters, "open", nil)
	}
	if typ == nil || accessor == nil {
		return nil, NewError(StatusInvalidParameters, "open", nil)
	}

	height := 1
	cur := rootID
	for {
		node, err := accessor.Select(cur)
		if err != nil {
			return nil, NewError(StatusInvalidState, "open", err)
		}
		if node.IsLeaf() {
			break
		}
		cur = node.Children[0]
		height++
	}

	return &Tree{
		maxNodeSize: maxNodeSize,
		height:      height,
		rootID:      rootID,
		typ:         typ,
		accessor:    accessor,
		hooks:       noopHooks{},
	}, nil
}

// SetHooks installs an event observer; pass nil to revert to a no-op.
func (t *Tree) SetHooks(h Hooks) {
	if h == nil {
		h = noopHooks{}
	}
	t.hooks = h
}

// Height returns the tree's current height.
func (t *Tree) Height() int { return t.height }

// MaxNodeSize returns the branching factor m.
func (t *Tree) MaxNodeSize() int { return t.maxNodeSize }

// RootID returns the current root node identifier.
func (t *Tree) RootID() NodeID { return t.rootID }

// Type returns the tree's type descriptor.
func (t *Tree) Type() *TypeDescriptor { return t.typ }

// MinFill returns the minimum number of keys a non-root node must hold
// at rest: ceil(m/2).
func (t *Tree) MinFill() int {
	return (t.maxNodeSize + 1) / 2
}

// SplitPivot returns the index at which an overflowing node is split:
// m/2.
func (t *Tree) SplitPivot() int {
	return t.maxNodeSize / 2
}

// Destroy tears the tree down: every live node is enumerated via the
// accessor's List and removed, then the accessor itself is closed.
func Destroy(t *Tree) error {
	ids, err := t.accessor.List()
	if err != nil {
		return NewError(StatusInvalidState, "destroy", err)
	}
	for _, id := range ids {
		if err := t.accessor.Remove(id); err != nil {
			return NewError(StatusInvalidState, "destroy", err)
		}
	}
	return t.accessor.Close()
}

// pathEntry records, for one level of a traversal, the node visited and
// either the child index followed to reach the next level, or (at the
// terminal entry) the position within that node relevant to the
// operation in progress: the insertion position on an insert miss, the
// matched key's index on a find/delete hit, or the removed index after
// a leaf deletion.
type pathEntry struct {
	id   NodeID
	node *Node
	pos  int
}

// nodeSearch returns the position of key within node's sorted Scores
// under the tree's comparator, and whether it was found there. On a
// miss the position is the unique insertion index.
func (t *Tree) nodeSearch(node *Node, key []byte) (int, bool) {
	cmp := t.typ.Compare
	pos := sort.Search(node.Size, func(i int) bool {
		return cmp(node.Scores[i], key) >= 0
	})
	found := pos < node.Size && cmp(node.Scores[pos], key) == 0
	return pos, found
}

// findPath walks from root to a leaf (or to the node holding key),
// recording the (node, position) pair visited at every level. It
// returns found=true as soon as key is located; on a miss the last
// entry is the leaf and its pos is the insertion position.
func (t *Tree) findPath(key []byte) ([]pathEntry, bool, error) {
	path := make([]pathEntry, 0, t.height)

	cur := t.rootID
	for level := 0; level < t.height; level++ {
		node, err := t.accessor.Select(cur)
		if err != nil {
			return nil, false, NewError(StatusInvalidState, "find", err)
		}

		pos, found := t.nodeSearch(node, key)
		path = append(path, pathEntry{id: cur, node: node, pos: pos})

		if found {
			return path, true, nil
		}
		if node.IsLeaf() {
			return path, false, nil
		}
		cur = node.Children[pos]
	}

	return path, false, nil
}

// Find performs a point lookup (§4.4.1). It returns whether the key is
// present and, if the tree's type descriptor carries values, the
// associated value.
func (t *Tree) Find(key []byte) (bool, []byte, error) {
	path, found, err := t.findPath(key)
	if err != nil {
		return false, nil, err
	}
	t.hooks.OnFind(found)
	if !found {
		return false, nil, nil
	}

	last := path[len(path)-1]
	var value []byte
	if last.node.Values != nil {
		value = last.node.Values[last.pos]
	}
	return true, value, nil
}
