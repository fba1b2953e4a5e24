package pagestore

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/kvbtree/pkg/btree"
)

// slotOverhead is the per-page bookkeeping in front of a serialized
// node: a one-byte live flag and a four-byte payload length.
const slotOverhead = 5

// PagedAccessor persists one node per fixed-size page of a single file,
// satisfying btree.Accessor (§4.3) byte-for-byte per the wire format in
// package btree. It is the disk-backed counterpart to
// btree.MemoryAccessor: grounded on the teacher's pkg/store log writer
// and reader (buffered *os.File, explicit offset tracking, explicit
// Sync), adapted from a sequential append log to fixed-offset random
// access, since page identity here is a node id rather than a write
// sequence position.
type PagedAccessor struct {
	mutex sync.Mutex
	file  *os.File
	td    *btree.TypeDescriptor

	pageSize      int
	maxNodeSize   int
	nextPageIndex uint32
	freeList      []uint32 // stack of reclaimed page indices

	rootPageID uint32
	height     uint32

	cache *pageCache
	hooks Hooks
}

// Config controls how a page file is opened.
type Config struct {
	Path        string
	Type        *btree.TypeDescriptor
	MaxNodeSize int
	// CacheSize is the number of decoded nodes kept warm; values below
	// 1 are clamped to 1.
	CacheSize int
}

// Open creates the page file at Config.Path if it does not exist, or
// opens and validates an existing one. An existing file's recorded page
// geometry must match Config.Type/MaxNodeSize; a mismatch is reported
// as btree.StatusInvalidParameters since the caller asked to open one
// tree's page file as if it were another's.
func Open(cfg Config) (*PagedAccessor, error) {
	if cfg.Type == nil {
		return nil, btree.NewError(btree.StatusInvalidParameters, "pagestore.open", nil)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
		return nil, fmt.Errorf("pagestore: open: %w", err)
	}

	file, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("pagestore: open: %w", err)
	}

	pageSize := slotOverhead + cfg.Type.MaxPageSize(cfg.MaxNodeSize)

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("pagestore: open: %w", err)
	}

	var hdr fileHeader
	if stat.Size() == 0 {
		hdr = fileHeader{
			pageSize:      uint32(pageSize),
			keySize:       uint32(cfg.Type.KeySize),
			valueSize:     uint32(cfg.Type.ValueSize),
			maxNodeSize:   uint32(cfg.MaxNodeSize),
			nextPageIndex: 0,
			rootPageID:    0,
			height:        0,
			sessionID:     ksuid.New(),
		}
		if _, err := file.WriteAt(encodeHeader(hdr), 0); err != nil {
			file.Close()
			return nil, fmt.Errorf("pagestore: open: write header: %w", err)
		}
		if err := file.Sync(); err != nil {
			file.Close()
			return nil, fmt.Errorf("pagestore: open: sync header: %w", err)
		}
	} else {
		buf := make([]byte, headerSize)
		if _, err := file.ReadAt(buf, 0); err != nil {
			file.Close()
			return nil, fmt.Errorf("pagestore: open: read header: %w", err)
		}
		hdr, err = decodeHeader(buf)
		if err != nil {
			file.Close()
			return nil, err
		}
		if hdr.pageSize != uint32(pageSize) || hdr.keySize != uint32(cfg.Type.KeySize) ||
			hdr.valueSize != uint32(cfg.Type.ValueSize) || hdr.maxNodeSize != uint32(cfg.MaxNodeSize) {
			file.Close()
			return nil, btree.NewError(btree.StatusInvalidParameters, "pagestore.open", nil)
		}
		// Re-stamp the session id: each open is a new crash-recovery epoch.
		hdr.sessionID = ksuid.New()
		if _, err := file.WriteAt(encodeHeader(hdr), 0); err != nil {
			file.Close()
			return nil, fmt.Errorf("pagestore: open: restamp session: %w", err)
		}
	}

	a := &PagedAccessor{
		file:          file,
		td:            cfg.Type,
		pageSize:      pageSize,
		maxNodeSize:   cfg.MaxNodeSize,
		nextPageIndex: hdr.nextPageIndex,
		rootPageID:    hdr.rootPageID,
		height:        hdr.height,
		cache:         newPageCache(cfg.CacheSize),
		hooks:         noopHooks{},
	}

	if err := a.rebuildFreeList(); err != nil {
		file.Close()
		return nil, err
	}

	return a, nil
}

// SetHooks installs an event observer; pass nil to revert to a no-op.
func (a *PagedAccessor) SetHooks(h Hooks) {
	if h == nil {
		h = noopHooks{}
	}
	a.mutex.Lock()
	a.hooks = h
	a.mutex.Unlock()
}

// rebuildFreeList scans every allocated page's live flag and queues the
// free ones for reuse; it is the reload-time counterpart to the live
// flag Remove clears, so a reopened file recovers reclaimed pages
// without needing a separate persisted free-list journal.
func (a *PagedAccessor) rebuildFreeList() error {
	a.freeList = a.freeList[:0]
	flag := make([]byte, 1)
	for i := uint32(0); i < a.nextPageIndex; i++ {
		if _, err := a.file.ReadAt(flag, a.pageOffset(i)); err != nil {
			return fmt.Errorf("pagestore: rebuild free list: %w", err)
		}
		if flag[0] == 0 {
			a.freeList = append(a.freeList, i)
		}
	}
	return nil
}

func (a *PagedAccessor) pageOffset(idx uint32) int64 {
	return int64(headerSize) + int64(idx)*int64(a.pageSize)
}

// Select implements btree.Accessor.
func (a *PagedAccessor) Select(id btree.NodeID) (*btree.Node, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if n, ok := a.cache.get(id); ok {
		a.hooks.OnPageRead(true)
		return n, nil
	}
	a.hooks.OnPageRead(false)

	node, err := a.readPage(id)
	if err != nil {
		return nil, err
	}
	a.cachePut(id, node)
	return node, nil
}

func (a *PagedAccessor) readPage(id btree.NodeID) (*btree.Node, error) {
	idx := uint32(id) - 1
	if id == 0 || idx >= a.nextPageIndex {
		return nil, btree.NewError(btree.StatusInvalidState, "pagestore.select", nil)
	}

	slot := make([]byte, a.pageSize)
	if _, err := a.file.ReadAt(slot, a.pageOffset(idx)); err != nil {
		return nil, fmt.Errorf("pagestore: select: %w", err)
	}
	if slot[0] == 0 {
		return nil, btree.NewError(btree.StatusInvalidState, "pagestore.select", nil)
	}
	length := binary.BigEndian.Uint32(slot[1:5])
	node, err := btree.DeserializeNodeMax(slot[5:5+length], a.td, a.maxNodeSize)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Insert implements btree.Accessor.
func (a *PagedAccessor) Insert(n *btree.Node) (btree.NodeID, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var idx uint32
	if len(a.freeList) > 0 {
		idx = a.freeList[len(a.freeList)-1]
		a.freeList = a.freeList[:len(a.freeList)-1]
	} else {
		idx = a.nextPageIndex
		a.nextPageIndex++
		if err := a.persistNextPageIndex(); err != nil {
			return 0, err
		}
	}

	id := btree.NodeID(idx + 1)
	if err := a.writePage(idx, n); err != nil {
		return 0, err
	}
	a.cachePut(id, n)
	return id, nil
}

// Update implements btree.Accessor.
func (a *PagedAccessor) Update(id btree.NodeID, n *btree.Node) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	idx := uint32(id) - 1
	if id == 0 || idx >= a.nextPageIndex {
		return btree.NewError(btree.StatusInvalidState, "pagestore.update", nil)
	}
	if err := a.writePage(idx, n); err != nil {
		return err
	}
	a.cachePut(id, n)
	return nil
}

func (a *PagedAccessor) writePage(idx uint32, n *btree.Node) error {
	payload, err := a.td.Serialize(n, a.td)
	if err != nil {
		return err
	}

	slot := make([]byte, a.pageSize)
	slot[0] = 1
	binary.BigEndian.PutUint32(slot[1:5], uint32(len(payload)))
	copy(slot[5:], payload)

	if _, err := a.file.WriteAt(slot, a.pageOffset(idx)); err != nil {
		return fmt.Errorf("pagestore: write page: %w", err)
	}
	a.hooks.OnPageWrite()
	return a.file.Sync()
}

func (a *PagedAccessor) persistNextPageIndex() error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, a.nextPageIndex)
	if _, err := a.file.WriteAt(buf, 24); err != nil {
		return fmt.Errorf("pagestore: persist page count: %w", err)
	}
	return a.file.Sync()
}

// Root returns the page file's recorded root node id and tree height,
// and whether one has been persisted yet (false for a freshly created
// file with no tree attached).
func (a *PagedAccessor) Root() (btree.NodeID, int, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.rootPageID == 0 {
		return 0, 0, false
	}
	return btree.NodeID(a.rootPageID), int(a.height), true
}

// PersistRoot records the tree's current root node id and height in the
// file header, so a later Open/Root call resumes at the live root
// instead of assuming node id 1 is still the root: a root split mints a
// new page for the new root and demotes the old root to a child, so the
// original root id is only valid before the first split.
func (a *PagedAccessor) PersistRoot(id btree.NodeID, height int) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.rootPageID = uint32(id)
	a.height = uint32(height)

	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], a.rootPageID)
	binary.BigEndian.PutUint32(buf[4:8], a.height)
	if _, err := a.file.WriteAt(buf, 28); err != nil {
		return fmt.Errorf("pagestore: persist root: %w", err)
	}
	return a.file.Sync()
}

// Remove implements btree.Accessor: the page's live flag is cleared and
// its index pushed onto the free list for reuse by a later Insert.
func (a *PagedAccessor) Remove(id btree.NodeID) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	idx := uint32(id) - 1
	if id == 0 || idx >= a.nextPageIndex {
		return nil
	}

	if _, err := a.file.WriteAt([]byte{0}, a.pageOffset(idx)); err != nil {
		return fmt.Errorf("pagestore: remove: %w", err)
	}
	if err := a.file.Sync(); err != nil {
		return fmt.Errorf("pagestore: remove: %w", err)
	}

	a.freeList = append(a.freeList, idx)
	a.cache.remove(id)
	a.hooks.OnPageEvict()
	return nil
}

// List implements btree.Accessor by scanning every allocated page's
// live flag; used only during tree teardown.
func (a *PagedAccessor) List() ([]btree.NodeID, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	ids := make([]btree.NodeID, 0, a.nextPageIndex)
	flag := make([]byte, 1)
	for i := uint32(0); i < a.nextPageIndex; i++ {
		if _, err := a.file.ReadAt(flag, a.pageOffset(i)); err != nil {
			return nil, fmt.Errorf("pagestore: list: %w", err)
		}
		if flag[0] != 0 {
			ids = append(ids, btree.NodeID(i+1))
		}
	}
	return ids, nil
}

// Close implements btree.Accessor.
func (a *PagedAccessor) Close() error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.file.Close()
}

func (a *PagedAccessor) cachePut(id btree.NodeID, n *btree.Node) {
	evicted, didEvict := a.cache.put(id, n)
	if didEvict {
		_ = evicted
		a.hooks.OnPageEvict()
	}
}
