// Package ocr caches text recognition of small grayscale clips in front of an
// external recognizer.
package ocr

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/soocke/pixel-agent-go/domain/pic"
)

// Similar is the largest per-byte difference two clips may have and still
// be treated as the same key.
const Similar = 15

// DefaultCapacity bounds a Cache built without an explicit capacity.
const DefaultCapacity = 15

// Key identifies a clip by fuzzy content equality.
type Key struct {
	clip *pic.Gray
}

// NewKey snapshots g; later changes to g do not affect the key.
func NewKey(g *pic.Gray) Key { return Key{clip: g.Clone()} }

// Hash depends on the dimensions only, so fuzzy-equal keys always share it.
func (k Key) Hash() int { return k.clip.Width*10000 + k.clip.Height }

// Equal reports identical dimensions and every byte within Similar.
func (k Key) Equal(o Key) bool {
	a, b := k.clip, o.clip
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	for i, v := range a.Pix {
		d := int(v) - int(b.Pix[i])
		if d > Similar || -d > Similar {
			return false
		}
	}
	return true
}

// Policy selects which entry goes when the cache is full.
type Policy int

const (
	// EvictOldestInserted ignores lookups when ordering entries.
	EvictOldestInserted Policy = iota
	// EvictLeastRecentlyUsed refreshes an entry on every hit.
	EvictLeastRecentlyUsed
)

func (p Policy) String() string {
	if p == EvictLeastRecentlyUsed {
		return "lru"
	}
	return "oldest"
}

type entry struct {
	key  Key
	text string
}

// Cache maps clips to recognized text. Entries are ordered in a simplelru
// list keyed by insertion id; hash buckets resolve fuzzy equality. Not safe
// for concurrent use.
type Cache struct {
	policy  Policy
	order   *simplelru.LRU[uint64, *entry]
	buckets map[int][]uint64
	nextID  uint64
}

// NewCache builds a cache holding at most capacity entries (DefaultCapacity
// when capacity <= 0).
func NewCache(capacity int, policy Policy) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{policy: policy, buckets: map[int][]uint64{}}
	// simplelru only fails for a non-positive size
	c.order, _ = simplelru.NewLRU[uint64, *entry](capacity, c.evicted)
	return c
}

func (c *Cache) evicted(id uint64, e *entry) {
	h := e.key.Hash()
	ids := c.buckets[h]
	for i, v := range ids {
		if v == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(c.buckets, h)
	} else {
		c.buckets[h] = ids
	}
}

func (c *Cache) lookup(k Key) (uint64, *entry, bool) {
	for _, id := range c.buckets[k.Hash()] {
		e, ok := c.order.Peek(id)
		if ok && e.key.Equal(k) {
			return id, e, true
		}
	}
	return 0, nil, false
}

// Get returns the text stored under a key equal to k.
func (c *Cache) Get(k Key) (string, bool) {
	id, e, ok := c.lookup(k)
	if !ok {
		return "", false
	}
	if c.policy == EvictLeastRecentlyUsed {
		c.order.Get(id)
	}
	return e.text, true
}

// Insert stores text under k. The first write wins: an existing equal key
// keeps both its position and its text.
func (c *Cache) Insert(k Key, text string) {
	if _, _, ok := c.lookup(k); ok {
		return
	}
	c.nextID++
	id := c.nextID
	c.buckets[k.Hash()] = append(c.buckets[k.Hash()], id)
	c.order.Add(id, &entry{key: k, text: text})
}

// Len reports the number of entries.
func (c *Cache) Len() int { return c.order.Len() }

// Purge drops every entry.
func (c *Cache) Purge() {
	c.order.Purge()
	c.buckets = map[int][]uint64{}
}
