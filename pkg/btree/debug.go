package btree

import (
	"fmt"
	"strings"
)

// inOrder walks the tree root to leaves, visiting children and keys in
// sorted order. visit is called once per key with its depth (0 =
// root); walk tracks the one piece of global state both Flatten
// and IsBalanced need (leaf depth consistency) via leafDepth.
func (t *Tree) inOrder(visit func(key, value []byte, depth int)) (leafDepth int, err error) {
	leafDepth = -1

	var walk func(id NodeID, depth int) error
	walk = func(id NodeID, depth int) error {
		node, err := t.accessor.Select(id)
		if err != nil {
			return NewError(StatusInvalidState, "walk", err)
		}

		if node.IsLeaf() {
			if leafDepth == -1 {
				leafDepth = depth
			} else if leafDepth != depth {
				return NewError(StatusInvalidState, "walk", nil)
			}
			for i := 0; i < node.Size; i++ {
				var v []byte
				if node.Values != nil {
					v = node.Values[i]
				}
				visit(node.Scores[i], v, depth)
			}
			return nil
		}

		for i := 0; i < node.Size; i++ {
			if err := walk(node.Children[i], depth+1); err != nil {
				return err
			}
			var v []byte
			if node.Values != nil {
				v = node.Values[i]
			}
			visit(node.Scores[i], v, depth)
		}
		return walk(node.Children[node.Size], depth+1)
	}

	err = walk(t.rootID, 0)
	return leafDepth, err
}

// Flatten returns the in-order sequence of keys (§4.4.5).
func (t *Tree) Flatten() ([][]byte, error) {
	keys := make([][]byte, 0)
	_, err := t.inOrder(func(key, value []byte, depth int) {
		keys = append(keys, key)
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// FlattenWithValues returns the in-order sequence of (key, value)
// pairs; value is nil for set-typed trees.
func (t *Tree) FlattenWithValues() ([][2][]byte, error) {
	pairs := make([][2][]byte, 0)
	_, err := t.inOrder(func(key, value []byte, depth int) {
		pairs = append(pairs, [2][]byte{key, value})
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// IsBalanced is a testing hook (§4.4.4): it walks the tree, verifies
// every non-root node meets the minimum fill ceil(m/2), that all leaves
// sit at the same depth, and that an in-order traversal of keys is
// strictly ascending with no duplicates. Unlike the original engine,
// the key scratch buffer it accumulates grows from the tree's actual
// cardinality (via append) rather than an a-priori (m+1)^(height+1)
// upper bound.
func (t *Tree) IsBalanced() (Status, error) {
	minFill := t.MinFill()

	var checkErr error
	sizeOK := true
	var walk func(id NodeID, isRoot bool) error
	walk = func(id NodeID, isRoot bool) error {
		node, err := t.accessor.Select(id)
		if err != nil {
			return err
		}
		if !isRoot && node.Size < minFill {
			sizeOK = false
		}
		if node.IsLeaf() {
			return nil
		}
		for i := 0; i <= node.Size; i++ {
			if err := walk(node.Children[i], false); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t.rootID, true); err != nil {
		return StatusInvalidState, NewError(StatusInvalidState, "is_balanced", err)
	}
	if !sizeOK {
		return StatusInvalidState, nil
	}

	keys := make([][]byte, 0)
	leafDepth, err := t.inOrder(func(key, value []byte, depth int) {
		keys = append(keys, key)
	})
	if err != nil {
		return StatusInvalidState, err
	}
	_ = leafDepth

	for i := 1; i < len(keys); i++ {
		if t.typ.Compare(keys[i-1], keys[i]) >= 0 {
			checkErr = NewError(StatusInvalidState, "is_balanced", nil)
			break
		}
	}
	if checkErr != nil {
		return StatusInvalidState, nil
	}

	return StatusOK, nil
}

// Print renders the tree as an indented layout for debugging. There is
// no semantic contract beyond deterministic output for a given state
// (§4.4.5).
func (t *Tree) Print() (string, error) {
	var b strings.Builder

	var walk func(id NodeID, depth int) error
	walk = func(id NodeID, depth int) error {
		node, err := t.accessor.Select(id)
		if err != nil {
			return err
		}

		indent := strings.Repeat("  ", depth)
		keys := make([]string, node.Size)
		for i := 0; i < node.Size; i++ {
			keys[i] = t.typ.Format(node.Scores[i])
		}
		fmt.Fprintf(&b, "%s[%s]\n", indent, strings.Join(keys, " "))

		if node.IsLeaf() {
			return nil
		}
		for i := 0; i <= node.Size; i++ {
			if err := walk(node.Children[i], depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(t.rootID, 0); err != nil {
		return "", NewError(StatusInvalidState, "print", err)
	}
	return b.String(), nil
}
