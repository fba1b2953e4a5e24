package btree

// Add inserts key (with an optional value, depending on the type
// descriptor) if absent (§4.4.2). If the key is already present, no
// change is made and Add returns (StatusFound, nil).
func (t *Tree) Add(key, value []byte) (Status, error) {
	if len(key) != t.typ.KeySize {
		return StatusInvalidParameters, NewError(StatusInvalidParameters, "add", nil)
	}
	if t.typ.ValueSize > 0 && len(value) != t.typ.ValueSize {
		return StatusInvalidParameters, NewError(StatusInvalidParameters, "add", nil)
	}

	path, found, err := t.findPath(key)
	if err != nil {
		return StatusInvalidState, err
	}
	if found {
		t.hooks.OnInsert(StatusFound)
		return StatusFound, nil
	}

	curScore, curValue := key, value
	var curChild NodeID
	hasChild := false

	for i := len(path) - 1; i >= 0; i-- {
		entry := path[i]
		node := entry.node

		if node.Size < t.maxNodeSize {
			node.insertKeyAt(entry.pos, curScore, curValue, curChild, hasChild)
			if err := t.accessor.Update(entry.id, node); err != nil {
				return StatusInvalidState, NewError(StatusInvalidState, "add", err)
			}
			t.hooks.OnInsert(StatusOK)
			return StatusOK, nil
		}

		right, medianScore, medianValue := splitForInsert(node, entry.pos, curScore, curValue, curChild, hasChild, t.maxNodeSize)
		t.hooks.OnSplit()

		rightID, err := t.accessor.Insert(right)
		if err != nil {
			return StatusOutOfMemory, NewError(StatusOutOfMemory, "add", err)
		}
		if err := t.accessor.Update(entry.id, node); err != nil {
			return StatusInvalidState, NewError(StatusInvalidState, "add", err)
		}

		curScore, curValue, curChild, hasChild = medianScore, medianValue, rightID, true

		if i == 0 {
			newRoot := newInternal(t.typ, t.maxNodeSize)
			newRoot.Scores = append(newRoot.Scores, curScore)
			if newRoot.Values != nil {
				newRoot.Values = append(newRoot.Values, curValue)
			}
			newRoot.Children = append(newRoot.Children, entry.id, curChild)
			newRoot.Size = 1

			newRootID, err := t.accessor.Insert(newRoot)
			if err != nil {
				return StatusOutOfMemory, NewError(StatusOutOfMemory, "add", err)
			}

			t.rootID = newRootID
			t.height++
			t.hooks.OnInsert(StatusOK)
			return StatusOK, nil
		}
	}

	return StatusInvalidState, NewError(StatusInvalidState, "add", nil)
}
