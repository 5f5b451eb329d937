package http

import (
	"container/list"
	"strconv"
	"sync"
	"time"

	"bilancio/internal/report"
	"bilancio/internal/services"
)

// snapshotCache keeps recently computed report snapshots, keyed by owner
// and period, with TTL expiry and LRU eviction. Record writes invalidate
// a whole owner at once since any period of that owner may be stale.
type snapshotCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]*list.Element
	order   *list.List
}

type snapshotEntry struct {
	key       string
	owner     string
	snap      *services.Snapshot
	expiresAt time.Time
}

func newSnapshotCache(maxSize int, ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

func snapshotKey(owner string, p report.Period) string {
	return owner + "|" + string(p.Mode) + "|" + strconv.Itoa(p.Year) + "|" + strconv.Itoa(int(p.Month))
}

func (c *snapshotCache) Get(owner string, p report.Period) (*services.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[snapshotKey(owner, p)]
	if !ok {
		return nil, false
	}
	entry := elem.Value.(*snapshotEntry)
	if time.Now().After(entry.expiresAt) {
		c.drop(elem)
		return nil, false
	}
	c.order.MoveToFront(elem)
	return entry.snap, true
}

func (c *snapshotCache) Put(owner string, p report.Period, snap *services.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := snapshotKey(owner, p)
	entry := &snapshotEntry{
		key:       key,
		owner:     owner,
		snap:      snap,
		expiresAt: time.Now().Add(c.ttl),
	}
	if elem, ok := c.entries[key]; ok {
		elem.Value = entry
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(entry)
	if c.order.Len() > c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			c.drop(oldest)
		}
	}
}

// InvalidateOwner evicts every cached period of one owner.
func (c *snapshotCache) InvalidateOwner(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []*list.Element
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*snapshotEntry).owner == owner {
			stale = append(stale, elem)
		}
	}
	for _, elem := range stale {
		c.drop(elem)
	}
}

func (c *snapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *snapshotCache) drop(elem *list.Element) {
	entry := elem.Value.(*snapshotEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
