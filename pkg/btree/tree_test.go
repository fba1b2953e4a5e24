package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemTree(t *testing.T, td *TypeDescriptor, m int) *Tree {
	t.Helper()
	tree, err := Create(td, m, NewMemoryAccessor())
	require.NoError(t, err)
	return tree
}

func mustAdd(t *testing.T, tree *Tree, v int64) {
	t.Helper()
	status, err := tree.Add(k(v), nil)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
}

func mustRemove(t *testing.T, tree *Tree, v int64) {
	t.Helper()
	status, err := tree.Remove(k(v))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
}

func flattenInt64(t *testing.T, tree *Tree) []int64 {
	t.Helper()
	keys, err := tree.Flatten()
	require.NoError(t, err)
	out := make([]int64, len(keys))
	for i, key := range keys {
		out[i] = DecodeInt64Key(key)
	}
	return out
}

// Five inserts into an m=4 tree overflow the root on the fifth insert
// (a node holds up to m keys and splits only when a key arrives while it
// already holds m): root [1 2 3 4] accepts key
// 5 by expanding to the virtual array [1 2 3 4 5], pivoting at m/2=2.
func TestTreeSplitsRootOnFifthInsert(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		mustAdd(t, tree, v)
	}

	assert.Equal(t, 2, tree.Height())
	root, err := tree.accessor.Select(tree.RootID())
	require.NoError(t, err)
	require.Equal(t, 1, root.Size)
	assert.Equal(t, int64(3), DecodeInt64Key(root.Scores[0]))

	left, err := tree.accessor.Select(root.Children[0])
	require.NoError(t, err)
	right, err := tree.accessor.Select(root.Children[1])
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, decodeAll(left.Scores))
	assert.Equal(t, []int64{4, 5}, decodeAll(right.Scores))

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, flattenInt64(t, tree))
	status, err := tree.IsBalanced()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

func decodeAll(keys [][]byte) []int64 {
	out := make([]int64, len(keys))
	for i, key := range keys {
		out[i] = DecodeInt64Key(key)
	}
	return out
}

// Inserting the same five keys in reverse order produces the same
// shape, since the tree is ordered by key rather than insertion order.
func TestTreeSplitReverseInsertMatchesForward(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	for _, v := range []int64{5, 4, 3, 2, 1} {
		mustAdd(t, tree, v)
	}

	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, flattenInt64(t, tree))
}

func TestTreeAddExistingKeyReturnsFound(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	mustAdd(t, tree, 1)

	status, err := tree.Add(k(1), nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFound, status)
	assert.Equal(t, 1, tree.Height())
}

func TestTreeRemoveAbsentKeyReturnsNotFound(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	mustAdd(t, tree, 1)

	status, err := tree.Remove(k(99))
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, status)
}

func TestTreeFindOnLongHashReturnsValue(t *testing.T) {
	tree := newMemTree(t, LongHash(), 4)
	status, err := tree.Add(k(1), k(100))
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	found, value, err := tree.Find(k(1))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(100), DecodeInt64Key(value))

	found, _, err = tree.Find(k(2))
	require.NoError(t, err)
	assert.False(t, found)
}

// Deleting 4 from root=[3] / left=[1,2] / right=[4,5] leaves the right
// leaf below the minimum fill while the left sibling holds exactly the
// minimum, so the right leaf merges with the left one rather than
// borrowing, and the now-empty root collapses into the
// merged leaf.
func TestTreeRemoveMergeCollapsesRoot(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		mustAdd(t, tree, v)
	}
	require.Equal(t, 2, tree.Height())

	mustRemove(t, tree, 4)

	assert.Equal(t, 1, tree.Height())
	assert.Equal(t, []int64{1, 2, 3, 5}, flattenInt64(t, tree))

	root, err := tree.accessor.Select(tree.RootID())
	require.NoError(t, err)
	assert.True(t, root.IsLeaf())

	status, err := tree.IsBalanced()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

// With root=[3], left=[0,1,2], right=[4,5], deleting 4 leaves the right
// leaf deficient (size 1) while the left sibling holds 3 keys, more
// than the minimum fill: the deficient leaf borrows the left sibling's
// last key through the parent separator instead of merging.
func TestTreeRemoveBorrowsFromLeftSibling(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	for _, v := range []int64{1, 2, 3, 4, 5, 0} {
		mustAdd(t, tree, v)
	}
	require.Equal(t, 2, tree.Height())

	mustRemove(t, tree, 4)

	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, []int64{0, 1, 2, 3, 5}, flattenInt64(t, tree))

	root, err := tree.accessor.Select(tree.RootID())
	require.NoError(t, err)
	require.Equal(t, 1, root.Size)
	assert.Equal(t, int64(2), DecodeInt64Key(root.Scores[0]))

	status, err := tree.IsBalanced()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

// root=[3,6], left=[1,2], mid=[4,5], right=[7,8,9]: deleting 2 makes the
// leftmost leaf deficient with no left sibling to borrow from, and its
// right sibling is already at minimum fill, so it merges with that
// sibling; the parent shrinks but does not collapse since it retains one
// key.
func TestTreeRemoveMergeWithoutRootCollapse(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	for _, v := range []int64{1, 2, 3, 4, 5, 6, 7, 8, 9} {
		mustAdd(t, tree, v)
	}
	require.Equal(t, 2, tree.Height())

	mustRemove(t, tree, 2)

	assert.Equal(t, 2, tree.Height())
	assert.Equal(t, []int64{1, 3, 4, 5, 6, 7, 8, 9}, flattenInt64(t, tree))

	root, err := tree.accessor.Select(tree.RootID())
	require.NoError(t, err)
	require.Equal(t, 1, root.Size)
	assert.Equal(t, int64(6), DecodeInt64Key(root.Scores[0]))

	status, err := tree.IsBalanced()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

// Deleting an internal node's key swaps in its in-order predecessor
// before rebalancing, exercising extendToDeficientLeaf's descent.
func TestTreeRemoveInternalKeySwapsPredecessor(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		mustAdd(t, tree, v)
	}

	mustRemove(t, tree, 3)

	assert.Equal(t, []int64{1, 2, 4, 5}, flattenInt64(t, tree))
	status, err := tree.IsBalanced()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

func TestTreeInsertRemoveInversionLeavesEmptyBalancedTree(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	values := []int64{5, 2, 9, 1, 7, 3, 8, 4, 6, 0, -1, -5}
	for _, v := range values {
		mustAdd(t, tree, v)
	}
	for _, v := range values {
		mustRemove(t, tree, v)
	}

	assert.Equal(t, 1, tree.Height())
	keys, err := tree.Flatten()
	require.NoError(t, err)
	assert.Empty(t, keys)

	status, err := tree.IsBalanced()
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
}

func TestTreeRejectsWrongKeySize(t *testing.T) {
	tree := newMemTree(t, LongSet(), 4)
	status, err := tree.Add([]byte{1, 2, 3}, nil)
	require.Error(t, err)
	assert.Equal(t, StatusInvalidParameters, status)
}

func TestCreateRejectsOddOrSmallBranchingFactor(t *testing.T) {
	_, err := Create(LongSet(), 3, NewMemoryAccessor())
	assert.Error(t, err)

	_, err = Create(LongSet(), 2, NewMemoryAccessor())
	assert.Error(t, err)
}

func TestDestroyReleasesAllNodes(t *testing.T) {
	accessor := NewMemoryAccessor()
	tree, err := Create(LongSet(), 4, accessor)
	require.NoError(t, err)
	for _, v := range []int64{1, 2, 3, 4, 5} {
		mustAdd(t, tree, v)
	}

	require.NoError(t, Destroy(tree))
	assert.Equal(t, 0, accessor.Len())
}
