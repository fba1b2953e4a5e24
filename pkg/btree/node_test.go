package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func k(v int64) []byte { return EncodeInt64Key(v) }

func TestNodeInsertKeyAtLeaf(t *testing.T) {
	td := LongSet()
	n := newLeaf(td, 4)
	n.insertKeyAt(0, k(5), nil, 0, false)
	n.insertKeyAt(0, k(2), nil, 0, false)
	n.insertKeyAt(1, k(3), nil, 0, false)

	require.Equal(t, 3, n.Size)
	assert.Equal(t, int64(2), DecodeInt64Key(n.Scores[0]))
	assert.Equal(t, int64(3), DecodeInt64Key(n.Scores[1]))
	assert.Equal(t, int64(5), DecodeInt64Key(n.Scores[2]))
}

func TestNodeRemoveKeyAtInternal(t *testing.T) {
	td := LongSet()
	n := newInternal(td, 4)
	n.Scores = append(n.Scores, k(1), k(2), k(3))
	n.Children = append(n.Children, 10, 20, 30, 40)
	n.Size = 3

	n.removeKeyAt(1)

	require.Equal(t, 2, n.Size)
	assert.Equal(t, int64(1), DecodeInt64Key(n.Scores[0]))
	assert.Equal(t, int64(3), DecodeInt64Key(n.Scores[1]))
	assert.Equal(t, []NodeID{10, 20, 40}, n.Children)
}

func TestNodePrependAppendPop(t *testing.T) {
	td := LongSet()
	n := newInternal(td, 4)
	n.Scores = append(n.Scores, k(5), k(6))
	n.Children = append(n.Children, 1, 2, 3)
	n.Size = 2

	n.prependKey(k(4), nil, 0, true)
	require.Equal(t, 3, n.Size)
	assert.Equal(t, int64(4), DecodeInt64Key(n.Scores[0]))
	assert.Equal(t, NodeID(0), n.Children[0])

	n.appendKey(k(7), nil, 99, true)
	require.Equal(t, 4, n.Size)
	assert.Equal(t, int64(7), DecodeInt64Key(n.Scores[3]))
	assert.Equal(t, NodeID(99), n.Children[len(n.Children)-1])

	score, _, child := n.popFirstKey()
	assert.Equal(t, int64(4), DecodeInt64Key(score))
	assert.Equal(t, NodeID(0), child)
	require.Equal(t, 3, n.Size)

	score, _, child = n.popLastKey()
	assert.Equal(t, int64(7), DecodeInt64Key(score))
	assert.Equal(t, NodeID(99), child)
	require.Equal(t, 2, n.Size)
}

func TestNodeMergeInto(t *testing.T) {
	td := LongSet()
	left := newInternal(td, 8)
	left.Scores = append(left.Scores, k(1))
	left.Children = append(left.Children, 10, 20)
	left.Size = 1

	right := newInternal(td, 8)
	right.Scores = append(right.Scores, k(3))
	right.Children = append(right.Children, 30, 40)
	right.Size = 1

	left.mergeInto(k(2), nil, right)

	require.Equal(t, 3, left.Size)
	assert.Equal(t, []int64{1, 2, 3}, []int64{
		DecodeInt64Key(left.Scores[0]),
		DecodeInt64Key(left.Scores[1]),
		DecodeInt64Key(left.Scores[2]),
	})
	assert.Equal(t, []NodeID{10, 20, 30, 40}, left.Children)
}
