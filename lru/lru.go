/*
Copyright 2013 Google Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package lru implements an ordered, size-capped map with an eviction hook.
package lru

import "container/list"

// EvictCallback is invoked once per removed entry, before its storage is
// reused, with the key and value that were removed.
type EvictCallback[K comparable, V any] func(key K, value V)

// Cache is an LRU cache keyed by any comparable type. It is not safe for
// concurrent access; callers that need that provide their own locking (see
// the synchronized cache built on top of this in the root package).
type Cache[K comparable, V any] struct {
	// MaxEntries is the maximum number of cache entries before an item
	// is evicted. Zero means no limit.
	MaxEntries int

	// OnEvicted optionally specifies a callback run when an entry is
	// purged, whether by RemoveOldest, Remove, or Add displacing the
	// oldest entry to stay under MaxEntries.
	OnEvicted EvictCallback[K, V]

	ll    *list.List
	cache map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a new Cache. If maxEntries is zero, the cache has no size
// limit and eviction is left to the caller.
func New[K comparable, V any](maxEntries int) *Cache[K, V] {
	return &Cache[K, V]{
		MaxEntries: maxEntries,
		ll:         list.New(),
		cache:      make(map[K]*list.Element),
	}
}

// Add inserts or updates key with value, moving it to the front of the
// recency list. If key was already present, its previous value is returned
// alongside true. If adding key pushes the cache over MaxEntries, the
// least-recently-used entry is evicted.
func (c *Cache[K, V]) Add(key K, value V) (old V, hadOld bool) {
	if c.cache == nil {
		c.cache = make(map[K]*list.Element)
		c.ll = list.New()
	}
	if ee, ok := c.cache[key]; ok {
		c.ll.MoveToFront(ee)
		e := ee.Value.(*entry[K, V])
		old, hadOld = e.value, true
		e.value = value
		return old, hadOld
	}
	ele := c.ll.PushFront(&entry[K, V]{key, value})
	c.cache[key] = ele
	if c.MaxEntries != 0 && c.ll.Len() > c.MaxEntries {
		c.RemoveOldest()
	}
	return old, hadOld
}

// Get looks up key, promoting it to the front of the recency list on a hit.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if c.cache == nil {
		return
	}
	if ele, hit := c.cache[key]; hit {
		c.ll.MoveToFront(ele)
		return ele.Value.(*entry[K, V]).value, true
	}
	return
}

// Remove deletes key from the cache, if present, running OnEvicted.
func (c *Cache[K, V]) Remove(key K) {
	if c.cache == nil {
		return
	}
	if ele, hit := c.cache[key]; hit {
		c.removeElement(ele)
	}
}

// RemoveOldest removes the least-recently-used entry, if any, running
// OnEvicted.
func (c *Cache[K, V]) RemoveOldest() {
	if c.cache == nil {
		return
	}
	if ele := c.ll.Back(); ele != nil {
		c.removeElement(ele)
	}
}

func (c *Cache[K, V]) removeElement(e *list.Element) {
	c.ll.Remove(e)
	kv := e.Value.(*entry[K, V])
	delete(c.cache, kv.key)
	if c.OnEvicted != nil {
		c.OnEvicted(kv.key, kv.value)
	}
}

// Iterate calls fn for every entry from most- to least-recently-used, until
// fn returns false or entries are exhausted. It is the caller's
// responsibility to synchronize against concurrent mutation.
func (c *Cache[K, V]) Iterate(fn func(key K, value V) bool) {
	if c.cache == nil {
		return
	}
	for e := c.ll.Front(); e != nil; e = e.Next() {
		kv := e.Value.(*entry[K, V])
		if !fn(kv.key, kv.value) {
			return
		}
	}
}

// Len returns the number of items in the cache.
func (c *Cache[K, V]) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.ll.Len()
}

// Clear purges all stored items from the cache, running OnEvicted for each.
func (c *Cache[K, V]) Clear() {
	if c.OnEvicted != nil {
		for _, e := range c.cache {
			kv := e.Value.(*entry[K, V])
			c.OnEvicted(kv.key, kv.value)
		}
	}
	c.ll = nil
	c.cache = nil
}
