package btree

// splitForInsert splits node after it has overflowed while trying to
// accept (score, value, child) at pos (§4.4.2 step 3). Rather than
// transcribing the three positional cases (pos < m/2, pos == m/2,
// pos > m/2) as three separate branches, it first expands node's
// existing m entries plus the incoming one into a single (m+1)-key,
// (m+2)-child virtual array in sorted order, then slices that array at
// the pivot m/2. This produces exactly the distribution the three
// cases describe, without re-deriving separate index arithmetic for
// each one.
//
// node is mutated in place to become the left half; the returned Node
// is the new right sibling; the returned score/value is the promoted
// median to insert into the parent.
func splitForInsert(node *Node, pos int, score, value []byte, child NodeID, hasChild bool, m int) (*Node, []byte, []byte) {
	scores := make([][]byte, 0, m+1)
	scores = append(scores, node.Scores[:pos]...)
	scores = append(scores, score)
	scores = append(scores, node.Scores[pos:]...)

	var values [][]byte
	if node.Values != nil {
		values = make([][]byte, 0, m+1)
		values = append(values, node.Values[:pos]...)
		values = append(values, value)
		values = append(values, node.Values[pos:]...)
	}

	var children []NodeID
	if node.Children != nil {
		children = make([]NodeID, 0, m+2)
		children = append(children, node.Children[:pos+1]...)
		children = append(children, child)
		children = append(children, node.Children[pos+1:]...)
	}

	pivot := m / 2
	medianScore := scores[pivot]
	var medianValue []byte
	if values != nil {
		medianValue = values[pivot]
	}

	node.Scores = append(node.Scores[:0], scores[:pivot]...)
	node.Size = pivot
	if values != nil {
		node.Values = append(node.Values[:0], values[:pivot]...)
	}

	right := &Node{
		Scores: append([][]byte(nil), scores[pivot+1:]...),
		Size:   len(scores) - pivot - 1,
	}
	if values != nil {
		right.Values = append([][]byte(nil), values[pivot+1:]...)
	}

	if children != nil {
		node.Children = append(node.Children[:0], children[:pivot+1]...)
		right.Children = append([]NodeID(nil), children[pivot+1:]...)
	}

	return right, medianScore, medianValue
}
