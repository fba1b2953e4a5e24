package btree

// Remove deletes key if present (§4.4.3). If the key does not exist,
// no change is made and Remove returns (StatusNotFound, nil).
func (t *Tree) Remove(key []byte) (Status, error) {
	path, found, err := t.findPath(key)
	if err != nil {
		return StatusInvalidState, err
	}
	if !found {
		t.hooks.OnRemove(StatusNotFound)
		return StatusNotFound, nil
	}

	full, err := t.extendToDeficientLeaf(path)
	if err != nil {
		return StatusInvalidState, err
	}

	if err := t.rebalance(full); err != nil {
		return StatusInvalidState, err
	}

	t.hooks.OnRemove(StatusOK)
	return StatusOK, nil
}

// extendToDeficientLeaf performs step 1-3 of §4.4.3: if the hit node is
// internal, it descends to the in-order predecessor (rightmost leaf of
// the left child subtree), swaps the deleted key with the leaf's last
// key, and removes the swapped entry from the leaf. If the hit node is
// already a leaf, it simply removes the entry in place. It returns the
// full path from root to the now-deficient leaf, with every entry's pos
// field carrying the child index used to reach the next entry (or, at
// the terminal entry, the index that was just removed) so the
// rebalance loop can walk back up using parent.pos alone.
func (t *Tree) extendToDeficientLeaf(path []pathEntry) ([]pathEntry, error) {
	hitLevel := len(path) - 1
	hit := path[hitLevel]

	if hit.node.IsLeaf() {
		hit.node.removeKeyAt(hit.pos)
		if err := t.accessor.Update(hit.id, hit.node); err != nil {
			return nil, NewError(StatusInvalidState, "remove", err)
		}
		return path, nil
	}

	full := append([]pathEntry(nil), path...)
	curID := hit.node.Children[hit.pos]
	for {
		node, err := t.accessor.Select(curID)
		if err != nil {
			return nil, NewError(StatusInvalidState, "remove", err)
		}
		if node.IsLeaf() {
			full = append(full, pathEntry{id: curID, node: node, pos: node.Size - 1})
			break
		}
		rightmost := node.Size
		full = append(full, pathEntry{id: curID, node: node, pos: rightmost})
		curID = node.Children[rightmost]
	}

	leaf := full[len(full)-1]
	predScore := leaf.node.Scores[leaf.pos]
	var predValue []byte
	if leaf.node.Values != nil {
		predValue = leaf.node.Values[leaf.pos]
	}

	hit.node.Scores[hit.pos] = predScore
	if hit.node.Values != nil {
		hit.node.Values[hit.pos] = predValue
	}
	if err := t.accessor.Update(hit.id, hit.node); err != nil {
		return nil, NewError(StatusInvalidState, "remove", err)
	}

	leaf.node.removeKeyAt(leaf.pos)
	if err := t.accessor.Update(leaf.id, leaf.node); err != nil {
		return nil, NewError(StatusInvalidState, "remove", err)
	}

	return full, nil
}

// rebalance implements §4.4.3 step 4-5: walk from the deficient leaf
// up to the root, borrowing from a sibling or merging as needed, tie
// breaking toward the left sibling per step 5.
func (t *Tree) rebalance(path []pathEntry) error {
	minFill := t.MinFill()

	for i := len(path) - 1; i >= 0; i-- {
		entry := path[i]
		node := entry.node

		if i == 0 {
			if node.Size >= 1 {
				return nil
			}
			if node.Children != nil && len(node.Children) > 0 {
				oldRootID := entry.id
				t.rootID = node.Children[0]
				t.height--
				if err := t.accessor.Remove(oldRootID); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
			}
			return nil
		}

		if node.Size >= minFill {
			return nil
		}

		parentEntry := path[i-1]
		parent := parentEntry.node
		childIdx := parentEntry.pos

		if childIdx > 0 {
			leftID := parent.Children[childIdx-1]
			left, err := t.accessor.Select(leftID)
			if err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
			if left.Size > minFill {
				t.borrowFromLeft(parent, childIdx, left, node)
				t.hooks.OnBorrow()
				if err := t.accessor.Update(leftID, left); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
				if err := t.accessor.Update(entry.id, node); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
				if err := t.accessor.Update(parentEntry.id, parent); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
				return nil
			}
		}

		if childIdx < parent.Size {
			rightID := parent.Children[childIdx+1]
			right, err := t.accessor.Select(rightID)
			if err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
			if right.Size > minFill {
				t.borrowFromRight(parent, childIdx, node, right)
				t.hooks.OnBorrow()
				if err := t.accessor.Update(rightID, right); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
				if err := t.accessor.Update(entry.id, node); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
				if err := t.accessor.Update(parentEntry.id, parent); err != nil {
					return NewError(StatusInvalidState, "remove", err)
				}
				return nil
			}
		}

		t.hooks.OnMerge()
		if childIdx > 0 {
			leftID := parent.Children[childIdx-1]
			left, err := t.accessor.Select(leftID)
			if err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
			sepScore, sepValue := parentSeparator(parent, childIdx-1)
			left.mergeInto(sepScore, sepValue, node)
			parent.removeKeyAt(childIdx - 1)

			if err := t.accessor.Update(leftID, left); err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
			if err := t.accessor.Remove(entry.id); err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
		} else {
			rightID := parent.Children[childIdx+1]
			right, err := t.accessor.Select(rightID)
			if err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
			sepScore, sepValue := parentSeparator(parent, childIdx)
			node.mergeInto(sepScore, sepValue, right)
			parent.removeKeyAt(childIdx)

			if err := t.accessor.Update(entry.id, node); err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
			if err := t.accessor.Remove(rightID); err != nil {
				return NewError(StatusInvalidState, "remove", err)
			}
		}

		if err := t.accessor.Update(parentEntry.id, parent); err != nil {
			return NewError(StatusInvalidState, "remove", err)
		}
		// parent is now the deficient candidate; loop continues at i-1.
	}

	return nil
}

func parentSeparator(parent *Node, idx int) (score, value []byte) {
	score = parent.Scores[idx]
	if parent.Values != nil {
		value = parent.Values[idx]
	}
	return score, value
}

// borrowFromLeft moves the parent separator at childIdx-1 into the
// front of deficient, and the left sibling's last entry up into that
// separator slot (§4.4.3 step 4, borrow-from-left case).
func (t *Tree) borrowFromLeft(parent *Node, childIdx int, left, deficient *Node) {
	sepIdx := childIdx - 1
	sepScore, sepValue := parentSeparator(parent, sepIdx)

	lastScore, lastValue, lastChild := left.popLastKey()
	deficient.prependKey(sepScore, sepValue, lastChild, deficient.Children != nil)

	parent.Scores[sepIdx] = lastScore
	if parent.Values != nil {
		parent.Values[sepIdx] = lastValue
	}
}

// borrowFromRight moves the parent separator at childIdx into the end
// of deficient, and the right sibling's first entry up into that
// separator slot (§4.4.3 step 4, borrow-from-right case).
func (t *Tree) borrowFromRight(parent *Node, childIdx int, deficient, right *Node) {
	sepScore, sepValue := parentSeparator(parent, childIdx)

	firstScore, firstValue, firstChild := right.popFirstKey()
	deficient.appendKey(sepScore, sepValue, firstChild, deficient.Children != nil)

	parent.Scores[childIdx] = firstScore
	if parent.Values != nil {
		parent.Values[childIdx] = firstValue
	}
}
