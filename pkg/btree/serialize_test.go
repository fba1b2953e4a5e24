package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeLeaf(t *testing.T) {
	td := LongHash()
	n := newLeaf(td, 4)
	n.Scores = append(n.Scores, k(1), k(2))
	n.Values = append(n.Values, k(100), k(200))
	n.Size = 2

	data, err := serializeNode(n, td)
	require.NoError(t, err)
	assert.Len(t, data, td.MaxPageSize(4)-2*(td.KeySize+td.ValueSize+4))

	back, err := deserializeNodeMax(data, td, 4)
	require.NoError(t, err)
	assert.True(t, equalNode(n, back))
	assert.True(t, back.IsLeaf())
}

func TestSerializeDeserializeInternal(t *testing.T) {
	td := LongSet()
	n := newInternal(td, 4)
	n.Scores = append(n.Scores, k(10), k(20))
	n.Children = append(n.Children, 1, 2, 3)
	n.Size = 2

	data, err := serializeNode(n, td)
	require.NoError(t, err)

	back, err := deserializeNodeMax(data, td, 4)
	require.NoError(t, err)
	assert.True(t, equalNode(n, back))
	assert.False(t, back.IsLeaf())
}

func TestDeserializeMalformedTruncated(t *testing.T) {
	td := LongSet()
	_, err := deserializeNodeMax([]byte{0, 0, 0, 1}, td, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, StatusErr(StatusMalformed))
}

func TestDeserializeMalformedOversizedHeader(t *testing.T) {
	td := LongSet()
	data := make([]byte, 4)
	data[3] = 99
	_, err := deserializeNodeMax(data, td, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, StatusErr(StatusMalformed))
}

func TestSerializeRejectsWrongKeySize(t *testing.T) {
	td := LongSet()
	n := newLeaf(td, 4)
	n.Scores = append(n.Scores, []byte{1, 2, 3})
	n.Size = 1

	_, err := serializeNode(n, td)
	require.Error(t, err)
	assert.ErrorIs(t, err, StatusErr(StatusInvalidState))
}
