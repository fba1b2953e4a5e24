// Package kvaccessor implements a btree.Accessor (§4.3) backed by a
// Pebble LSM tree instead of the fixed-page file pkg/pagestore uses.
// Where the paged accessor owns its own free list and page cache,
// Pebble already provides crash-safe persistence, a write-ahead log,
// and block caching, so this accessor is a thin id-to-key mapping over
// Create/Read/Update/Delete, the same vocabulary the teacher's
// pkg/storage.DefaultStorage exposes over the identical dependency.
package kvaccessor

import (
	"encoding/binary"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/kvbtree/pkg/btree"
)

const nextIDCounterKey = "kvbtree:next_id"

// PebbleAccessor implements btree.Accessor by encoding node ids as
// big-endian uint32 keys in a Pebble database, one database per tree.
// Unlike pkg/pagestore's PagedAccessor, it has no fixed page geometry
// and no free list: Pebble's own compaction reclaims space from
// deleted keys.
type PebbleAccessor struct {
	db          *pebble.DB
	td          *btree.TypeDescriptor
	maxNodeSize int
	sessionID   ksuid.KSUID
	nextID      uint32
}

// Open opens (creating if absent) a Pebble database at dir to back a
// tree using type descriptor td and branching factor maxNodeSize (m).
// Each Open stamps the accessor with a fresh KSUID session id, used
// purely as a breadcrumb recoverable via SessionID rather than as a
// record identifier; it is held in memory only and not written to the
// database.
func Open(dir string, td *btree.TypeDescriptor, maxNodeSize int) (*PebbleAccessor, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("kvaccessor: open: %w", err)
	}

	a := &PebbleAccessor{db: db, td: td, maxNodeSize: maxNodeSize, sessionID: ksuid.New(), nextID: 1}

	if err := a.loadNextID(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *PebbleAccessor) loadNextID() error {
	data, closer, err := a.db.Get([]byte(nextIDCounterKey))
	if err == pebble.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("kvaccessor: load next id: %w", err)
	}
	defer closer.Close()
	if len(data) == 4 {
		a.nextID = binary.BigEndian.Uint32(data)
	}
	return nil
}

func (a *PebbleAccessor) persistNextID() error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, a.nextID)
	return a.db.Set([]byte(nextIDCounterKey), buf, pebble.Sync)
}

// SessionID returns the KSUID stamped when this accessor was opened.
func (a *PebbleAccessor) SessionID() ksuid.KSUID { return a.sessionID }

func encodeNodeKey(id btree.NodeID) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

// Select implements btree.Accessor.
func (a *PebbleAccessor) Select(id btree.NodeID) (*btree.Node, error) {
	data, closer, err := a.db.Get(encodeNodeKey(id))
	if err != nil {
		return nil, btree.NewError(btree.StatusInvalidState, "kvaccessor.select", err)
	}
	defer closer.Close()

	return btree.DeserializeNodeMax(data, a.td, a.maxNodeSize)
}

// Insert implements btree.Accessor.
func (a *PebbleAccessor) Insert(n *btree.Node) (btree.NodeID, error) {
	id := btree.NodeID(a.nextID)
	a.nextID++

	data, err := a.td.Serialize(n, a.td)
	if err != nil {
		return 0, err
	}
	if err := a.db.Set(encodeNodeKey(id), data, pebble.Sync); err != nil {
		return 0, btree.NewError(btree.StatusOutOfMemory, "kvaccessor.insert", err)
	}
	if err := a.persistNextID(); err != nil {
		return 0, err
	}
	return id, nil
}

// Update implements btree.Accessor.
func (a *PebbleAccessor) Update(id btree.NodeID, n *btree.Node) error {
	data, err := a.td.Serialize(n, a.td)
	if err != nil {
		return err
	}
	if err := a.db.Set(encodeNodeKey(id), data, pebble.Sync); err != nil {
		return btree.NewError(btree.StatusInvalidState, "kvaccessor.update", err)
	}
	return nil
}

// Remove implements btree.Accessor.
func (a *PebbleAccessor) Remove(id btree.NodeID) error {
	if err := a.db.Delete(encodeNodeKey(id), pebble.Sync); err != nil {
		return btree.NewError(btree.StatusInvalidState, "kvaccessor.remove", err)
	}
	return nil
}

// List implements btree.Accessor by iterating every node key in the
// database; used only during tree teardown.
func (a *PebbleAccessor) List() ([]btree.NodeID, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{0, 0, 0, 0},
		UpperBound: []byte{0xff, 0xff, 0xff, 0xff, 0xff},
	})
	if err != nil {
		return nil, fmt.Errorf("kvaccessor: list: %w", err)
	}
	defer iter.Close()

	var ids []btree.NodeID
	for valid := iter.First(); valid; valid = iter.Next() {
		key := iter.Key()
		if len(key) != 4 {
			continue // skips nextIDCounterKey, which is not 4 bytes
		}
		ids = append(ids, btree.NodeID(binary.BigEndian.Uint32(key)))
	}
	return ids, iter.Error()
}

// Close implements btree.Accessor.
func (a *PebbleAccessor) Close() error {
	return a.db.Close()
}
