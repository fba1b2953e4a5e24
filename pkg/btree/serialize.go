package btree

import "encoding/binary"

// serializeNode writes n per the wire layout documented on package
// btree: a u32 size, then for each key its score bytes, its left child
// id (0 if leaf), and (if the descriptor carries a value) the value
// bytes, followed by the trailing child id for the size+1'th pointer.
func serializeNode(n *Node, td *TypeDescriptor) ([]byte, error) {
	out := make([]byte, 4, 8+n.Size*(td.KeySize+td.ValueSize+4))
	binary.BigEndian.PutUint32(out, uint32(n.Size))

	for i := 0; i < n.Size; i++ {
		if len(n.Scores[i]) != td.KeySize {
			return nil, NewError(StatusInvalidState, "serialize", nil)
		}
		out = append(out, n.Scores[i]...)

		var childID NodeID
		if n.Children != nil {
			childID = n.Children[i]
		}
		var childBuf [4]byte
		binary.BigEndian.PutUint32(childBuf[:], uint32(childID))
		out = append(out, childBuf[:]...)

		if td.ValueSize > 0 {
			var value []byte
			if n.Values != nil {
				value = n.Values[i]
			}
			if value == nil {
				value = make([]byte, td.ValueSize)
			} else if len(value) != td.ValueSize {
				return nil, NewError(StatusInvalidState, "serialize", nil)
			}
			out = append(out, value...)
		}
	}

	var trailing NodeID
	if n.Children != nil {
		trailing = n.Children[n.Size]
	}
	var trailingBuf [4]byte
	binary.BigEndian.PutUint32(trailingBuf[:], uint32(trailing))
	out = append(out, trailingBuf[:]...)

	return out, nil
}

// deserializeNode is the inverse of serializeNode. It fails with
// StatusMalformed if the buffer is truncated; it applies no bound on
// the stated size (see DeserializeNodeMax for the bounded form). If every child id read back is zero the node is
// treated as a leaf and no Children array is allocated.
func deserializeNode(data []byte, td *TypeDescriptor) (*Node, error) {
	return deserializeNodeMax(data, td, -1)
}

// DeserializeNodeMax decodes data per the wire layout documented on
// package btree, rejecting a stated size greater than maxNodeSize as
// StatusMalformed per §4.1. Accessors that persist nodes outside the
// tree's own calls (a page file, an LSM) know the tree's branching
// factor and should call this instead of a TypeDescriptor's unbounded
// Deserialize field, so a corrupt size word on disk is rejected rather
// than trusted.
func DeserializeNodeMax(data []byte, td *TypeDescriptor, maxNodeSize int) (*Node, error) {
	return deserializeNodeMax(data, td, maxNodeSize)
}

// deserializeNodeMax is deserializeNode with an explicit bound on the
// maximum node size (m); pass -1 to skip the bound check (used by
// callers that have no tree context, e.g. unit tests of the codec
// itself).
func deserializeNodeMax(data []byte, td *TypeDescriptor, maxNodeSize int) (*Node, error) {
	if len(data) < 4 {
		return nil, NewError(StatusMalformed, "deserialize", nil)
	}
	size := int(binary.BigEndian.Uint32(data))
	if size < 0 || (maxNodeSize >= 0 && size > maxNodeSize) {
		return nil, NewError(StatusMalformed, "deserialize", nil)
	}

	entryWidth := td.KeySize + 4 + td.ValueSize
	needed := 4 + size*entryWidth + 4
	if len(data) < needed {
		return nil, NewError(StatusMalformed, "deserialize", nil)
	}

	n := &Node{Size: size}
	n.Scores = make([][]byte, size)
	if td.ValueSize > 0 {
		n.Values = make([][]byte, size)
	}
	children := make([]NodeID, size+1)

	pos := 4
	anyChild := false
	for i := 0; i < size; i++ {
		score := make([]byte, td.KeySize)
		copy(score, data[pos:pos+td.KeySize])
		n.Scores[i] = score
		pos += td.KeySize

		cid := NodeID(binary.BigEndian.Uint32(data[pos : pos+4]))
		children[i] = cid
		if cid != 0 {
			anyChild = true
		}
		pos += 4

		if td.ValueSize > 0 {
			value := make([]byte, td.ValueSize)
			copy(value, data[pos:pos+td.ValueSize])
			n.Values[i] = value
			pos += td.ValueSize
		}
	}

	trailing := NodeID(binary.BigEndian.Uint32(data[pos : pos+4]))
	children[size] = trailing
	if trailing != 0 {
		anyChild = true
	}

	if anyChild {
		n.Children = children
	}

	return n, nil
}
