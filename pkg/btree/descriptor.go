// Package btree implements the generic on-disk B-tree engine that
// underlies an embeddable ordered key-value store: node layout, search,
// insertion with splits, deletion with borrow/merge rebalance, and the
// accessor abstraction that lets the tree run over an in-memory map or a
// persistent page file.
//
// # Wire format
//
// One serialized node is, big-endian throughout:
//
//	[ size : u32 ]
//	for i in 0..size:
//	    [ score : KeySize bytes ]
//	    [ child_id_i : u32 ]        -- 0 if leaf
//	    (if ValueSize > 0) [ value : ValueSize bytes ]
//	[ child_id_size : u32 ]        -- 0 if leaf
//
// The trailing child id carries the size+1'th pointer. A node whose
// child ids are all zero is read back as a leaf. The maximum serialized
// size of a node is 8 + m*(KeySize+ValueSize+4) bytes, where m is the
// tree's max node size.
//
// # Type descriptors
//
// A TypeDescriptor is a value-neutral description of one kind of tree:
// key size, value size (zero for sets), a comparator, a formatter for
// debug output, and serialize/deserialize functions. LongSet and
// LongHash are the two descriptors required by callers; additional
// descriptors are external extensions.
package btree

import (
	"encoding/binary"
	"fmt"
)

// Comparator returns -1, 0, or +1 according to whether a sorts before,
// equal to, or after b under the type's total order.
type Comparator func(a, b []byte) int

// Formatter renders a key as a human-readable string for debug output.
type Formatter func(key []byte) string

// TypeDescriptor describes one kind of tree: the byte size of a key
// ("score"), the byte size of an associated value (zero for sets), a
// total-order comparator, a debug formatter, and the node (de)serializer
// pair used by the accessor.
type TypeDescriptor struct {
	Name        string
	KeySize     int
	ValueSize   int
	Compare     Comparator
	Format      Formatter
	Serialize   func(n *Node, td *TypeDescriptor) ([]byte, error)
	Deserialize func(data []byte, td *TypeDescriptor) (*Node, error)
}

// MaxPageSize returns the maximum serialized size of any node of a tree
// with the given branching factor under this descriptor: 8 + m*(S_k+S_v+4).
func (td *TypeDescriptor) MaxPageSize(maxNodeSize int) int {
	return 8 + maxNodeSize*(td.KeySize+td.ValueSize+4)
}

func int64Compare(a, b []byte) int {
	av := int64(binary.BigEndian.Uint64(a))
	bv := int64(binary.BigEndian.Uint64(b))
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	default:
		return 0
	}
}

func int64Format(key []byte) string {
	return fmt.Sprintf("%d", int64(binary.BigEndian.Uint64(key)))
}

// LongSet returns the type descriptor for a set of 8-byte signed
// integers: no value payload, numeric comparator, matching rl_btree's
// long_set in the original engine.
func LongSet() *TypeDescriptor {
	td := &TypeDescriptor{
		Name:      "long_set",
		KeySize:   8,
		ValueSize: 0,
		Compare:   int64Compare,
		Format:    int64Format,
	}
	td.Serialize = serializeNode
	td.Deserialize = deserializeNode
	return td
}

// LongHash returns the type descriptor for a map from 8-byte signed
// integers to 8-byte values, matching rl_btree's long_hash.
func LongHash() *TypeDescriptor {
	td := &TypeDescriptor{
		Name:      "long_hash",
		KeySize:   8,
		ValueSize: 8,
		Compare:   int64Compare,
		Format:    int64Format,
	}
	td.Serialize = serializeNode
	td.Deserialize = deserializeNode
	return td
}

// EncodeInt64Key encodes a signed 64-bit integer as an 8-byte big-endian
// score usable with LongSet/LongHash.
func EncodeInt64Key(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

// DecodeInt64Key is the inverse of EncodeInt64Key.
func DecodeInt64Key(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}
