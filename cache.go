package groupcache

import (
	"sync"

	"github.com/peerbyte/groupcache/lru"
)

// cache wraps an *lru.Cache[string, ByteView] with a mutex and byte/hit/
// evict accounting. Values stored and returned are always ByteView; Get
// returns a Clone of the stored value so the caller can Release it
// independently of the copy still held by the cache.
type cache struct {
	mu     sync.Mutex
	nbytes int64
	llru   *lru.Cache[string, ByteView]
	nget   int64
	nhit   int64
	nevict int64

	// group/cacheType back-reference lets the evict hook and add/get
	// report into the owning Group's optional metrics sink without the
	// lru package knowing anything about groupcache or Prometheus.
	group     *Group
	cacheType CacheType
}

func (c *cache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var items int64
	if c.llru != nil {
		items = int64(c.llru.Len())
	}
	return CacheStats{
		Bytes:     c.nbytes,
		Items:     items,
		Gets:      c.nget,
		Hits:      c.nhit,
		Evictions: c.nevict,
	}
}

// add inserts value under key, cloning storage is unnecessary since
// ByteView is already a reference-counted handle: the cache takes a Clone
// of value (bumping its refcount) rather than a bare copy, so the caller's
// own handle and the cache's stored handle can be Released independently.
// On a replace, only the value's length changes nbytes; the key was
// already counted at first insert and must not be added again.
func (c *cache) add(key string, value ByteView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.llru == nil {
		c.llru = lru.New[string, ByteView](0)
		c.llru.OnEvicted = func(key string, value ByteView) {
			c.nbytes -= int64(len(key)) + int64(value.Len())
			c.nevict++
			if c.group != nil {
				c.group.metrics.incCacheEvictions(c.cacheType)
				c.group.metrics.setCacheBytes(c.cacheType, c.nbytes)
			}
			value.Release()
		}
	}
	stored := value.Clone()
	if old, hadOld := c.llru.Add(key, stored); hadOld {
		c.nbytes += int64(value.Len()) - int64(old.Len())
		old.Release()
	} else {
		c.nbytes += int64(len(key)) + int64(value.Len())
	}
	if c.group != nil {
		c.group.metrics.setCacheBytes(c.cacheType, c.nbytes)
	}
}

func (c *cache) get(key string) (value ByteView, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nget++
	if c.llru == nil {
		return ByteView{}, false
	}
	v, ok := c.llru.Get(key)
	if !ok {
		return ByteView{}, false
	}
	c.nhit++
	return v.Clone(), true
}

func (c *cache) removeOldest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.llru != nil {
		c.llru.RemoveOldest()
	}
}

func (c *cache) bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nbytes
}
