package pagestore

import (
	"container/list"

	"github.com/ssargent/kvbtree/pkg/btree"
)

// pageCache is a fixed-capacity least-recently-used cache from node id
// to a decoded node, so repeated Select calls on hot pages skip the
// disk round trip. Capacity is clamped to at least 1: a paged accessor
// with no cache at all would re-read every node on every traversal
// step, which defeats the point of caching pages rather than records.
type pageCache struct {
	capacity int
	entries  map[btree.NodeID]*list.Element
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	id   btree.NodeID
	node *btree.Node
}

func newPageCache(capacity int) *pageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &pageCache{
		capacity: capacity,
		entries:  make(map[btree.NodeID]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *pageCache) get(id btree.NodeID) (*btree.Node, bool) {
	el, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).node, true
}

// put returns the evicted id, if any, so the caller can tell its hooks.
func (c *pageCache) put(id btree.NodeID, node *btree.Node) (evicted btree.NodeID, didEvict bool) {
	if el, ok := c.entries[id]; ok {
		el.Value.(*cacheEntry).node = node
		c.order.MoveToFront(el)
		return 0, false
	}

	el := c.order.PushFront(&cacheEntry{id: id, node: node})
	c.entries[id] = el

	if c.order.Len() > c.capacity {
		back := c.order.Back()
		c.order.Remove(back)
		evictedEntry := back.Value.(*cacheEntry)
		delete(c.entries, evictedEntry.id)
		return evictedEntry.id, true
	}
	return 0, false
}

func (c *pageCache) remove(id btree.NodeID) {
	if el, ok := c.entries[id]; ok {
		c.order.Remove(el)
		delete(c.entries, id)
	}
}
