/*
Copyright 2012 Google Inc.

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

// Package groupcache provides a read-through, single-flighted cache that
// shares load across a set of peer processes.
//
// Each Get first consults this process's local caches, then, if the key
// is not locally owned, delegates to whichever peer the consistent-hash
// ring says owns it. In the common case, many concurrent cache misses for
// the same key across a set of peers collapse into exactly one load.
package groupcache

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/peerbyte/groupcache/groupcachepb"
	"github.com/peerbyte/groupcache/singleflight"
)

// A Getter loads the value for a key from this process's authoritative
// data source. It is called at most once concurrently per key (per
// process); the single-flight layer above it handles deduping concurrent
// callers. The returned value is owned by the caller: Getter must not
// retain it after returning.
type Getter interface {
	Get(ctx context.Context, key string) (ByteView, error)
}

// GetterFunc implements Getter with a plain function.
type GetterFunc func(ctx context.Context, key string) (ByteView, error)

// Get implements Getter.
func (f GetterFunc) Get(ctx context.Context, key string) (ByteView, error) {
	return f(ctx, key)
}

var (
	mu     sync.RWMutex
	groups = make(map[string]*Group)

	initPeerServerOnce sync.Once
	initPeerServer     func()
)

// GetGroup returns the named group previously created with NewGroup, or
// nil if there's no such group.
func GetGroup(name string) *Group {
	mu.RLock()
	g := groups[name]
	mu.RUnlock()
	return g
}

// NewGroup creates a named, coordinated cache in front of getter. The
// group name must be unique per process; constructing a second Group with
// the same name panics.
func NewGroup(name string, cacheBytes int64, getter Getter, opts ...Option) *Group {
	return newGroup(name, cacheBytes, getter, nil, opts...)
}

func newGroup(name string, cacheBytes int64, getter Getter, peers PeerPicker, opts ...Option) *Group {
	if getter == nil {
		panic("groupcache: nil Getter")
	}

	g := &Group{
		name:       name,
		getter:     getter,
		peers:      peers,
		cacheBytes: cacheBytes,
		loadGroup:  &singleflight.Group[ByteView]{},
		logger:     zap.NewNop(),
		metrics:    noopMetrics{},
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.mainCache.group, g.mainCache.cacheType = g, MainCache
	g.hotCache.group, g.hotCache.cacheType = g, HotCache

	for _, opt := range opts {
		opt(g)
	}

	mu.Lock()
	defer mu.Unlock()
	initPeerServerOnce.Do(callInitPeerServer)
	if _, dup := groups[name]; dup {
		panic("groupcache: duplicate registration of group " + name)
	}
	if fn := newGroupHook; fn != nil {
		fn(g)
	}
	groups[name] = g
	return g
}

// newGroupHook, if non-nil, is called right after a new group is created.
var newGroupHook func(*Group)

// RegisterNewGroupHook registers a hook run each time a group is created.
func RegisterNewGroupHook(fn func(*Group)) {
	if newGroupHook != nil {
		panic("groupcache: RegisterNewGroupHook called more than once")
	}
	newGroupHook = fn
}

// RegisterServerStart registers a hook run once, when the first group is
// created, so a peer server can be brought up lazily.
func RegisterServerStart(fn func()) {
	if initPeerServer != nil {
		panic("groupcache: RegisterServerStart called more than once")
	}
	initPeerServer = fn
}

func callInitPeerServer() {
	if initPeerServer != nil {
		initPeerServer()
	}
}

// Group is a cache namespace with its own loader, peer picker, caches, and
// statistics. Every operation on a Group is safe for concurrent use.
type Group struct {
	name   string
	getter Getter

	peersOnce sync.Once
	peers     PeerPicker

	// cacheBytes is the combined byte budget for mainCache+hotCache. A
	// value <= 0 disables caching entirely (no lookups, no inserts).
	cacheBytes int64

	// mainCache holds entries this process is authoritative for.
	mainCache cache

	// hotCache holds entries this process is not authoritative for but
	// that are popular enough to mirror locally, avoiding a network
	// hotspot on the owning peer.
	hotCache cache

	// loadGroup ensures at most one concurrent load (local or peer) is
	// in flight per key.
	loadGroup *singleflight.Group[ByteView]

	logger  *zap.Logger
	metrics metricsSink

	randMu sync.Mutex
	rand   *rand.Rand

	// Stats are monotonic, relaxed-consistency counters on this group.
	Stats Stats
}

// Stats are per-group statistics. Every field is monotonically
// increasing; readers are not guaranteed a consistent cross-counter
// snapshot.
type Stats struct {
	Gets           AtomicInt // any Get request, including those served on behalf of a peer
	CacheHits      AtomicInt // a cache (main or hot) satisfied the request
	PeerLoads      AtomicInt // a remote peer satisfied the request (not an error)
	PeerErrors     AtomicInt // a remote peer fetch failed and fell back to the local loader
	Loads          AtomicInt // gets - cacheHits
	LoadsDeduped   AtomicInt // loads that actually ran a callback, after single-flight dedup
	LocalLoads     AtomicInt // successful local getter invocations
	LocalLoadErrs  AtomicInt // failed local getter invocations
	ServerRequests AtomicInt // gets that arrived over the wire from a peer
}

// Name returns the group's name.
func (g *Group) Name() string { return g.name }

func (g *Group) initPeers() {
	if g.peers == nil {
		g.peers = getPeers(g.name)
	}
}

// Get returns the value for key, loading it if necessary. On a cache hit
// the returned ByteView is a clone the caller must Release when done; on a
// miss it's the freshly loaded (and, for owned buffers, freshly
// reference-counted) value.
func (g *Group) Get(ctx context.Context, key string) (ByteView, error) {
	g.peersOnce.Do(g.initPeers)
	g.Stats.Gets.Add(1)
	g.metrics.incGets()

	if value, ok := g.lookupCache(key); ok {
		g.Stats.CacheHits.Add(1)
		g.metrics.incCacheHits()
		return value, nil
	}

	return g.load(ctx, key)
}

// load runs the single-flighted load path for key: local caches are
// re-checked (another waiter may have populated them), then a peer is
// tried, then the local getter.
func (g *Group) load(ctx context.Context, key string) (ByteView, error) {
	g.Stats.Loads.Add(1)
	g.metrics.incLoads()

	value, err := g.loadGroup.Do(key, func() (ByteView, error) {
		return g.doLoad(ctx, key)
	})
	if err != nil {
		return ByteView{}, err
	}
	return value, nil
}

func (g *Group) doLoad(ctx context.Context, key string) (ByteView, error) {
	// Re-check the cache: two concurrent callers can both miss it and
	// both call loadGroup.Do before either acquires its mutex; one
	// scheduling of that race runs this callback twice, serially. If we
	// didn't recheck, the second run would load the value again even
	// though the first run has already cached it.
	if value, ok := g.lookupCache(key); ok {
		g.Stats.CacheHits.Add(1)
		g.metrics.incCacheHits()
		return value, nil
	}
	g.Stats.LoadsDeduped.Add(1)
	g.metrics.incLoadsDeduped()

	if peer, ok := g.peers.PickPeer(key); ok {
		value, err := g.getFromPeer(ctx, peer, key)
		if err == nil {
			g.Stats.PeerLoads.Add(1)
			g.metrics.incPeerLoads()
			return value, nil
		}
		g.logger.Warn("groupcache: peer load failed, falling back to local getter",
			zap.String("group", g.name),
			zap.String("key", key),
			zap.String("peer", peer.Name()),
			zap.Error(err),
		)
		g.Stats.PeerErrors.Add(1)
		g.metrics.incPeerErrors()
	}

	value, err := g.getLocally(ctx, key)
	if err != nil {
		g.Stats.LocalLoadErrs.Add(1)
		g.metrics.incLocalLoadErrs()
		return ByteView{}, &LoaderError{Key: key, Err: err}
	}
	g.Stats.LocalLoads.Add(1)
	g.metrics.incLocalLoads()
	g.populateCache(key, value, &g.mainCache)
	return value, nil
}

func (g *Group) getLocally(ctx context.Context, key string) (ByteView, error) {
	return g.getter.Get(ctx, key)
}

func (g *Group) getFromPeer(ctx context.Context, peer PeerGetter, key string) (ByteView, error) {
	req := &groupcachepb.GetRequest{Group: g.name, Key: key}
	res, err := peer.Get(ctx, req)
	if err != nil {
		return ByteView{}, &PeerTransportError{Peer: peer.Name(), Err: err}
	}
	if res.Value == nil {
		return ByteView{}, ErrMissingPeerResponseValue
	}
	value := Owned(res.Value)

	// Mirror remote hits into the hot cache some of the time, to avoid
	// making the owning peer's network card a hotspot for popular keys.
	// populateCache clones value for its own storage, same as the
	// main-cache populate in doLoad, so value itself stays valid and owned by
	// this call for the return below.
	if g.randIntn(10) == 0 {
		g.populateCache(key, value, &g.hotCache)
	}
	return value, nil
}

// randIntn is rand.Intn(n) guarded by a mutex, since *rand.Rand is not
// itself safe for concurrent use.
func (g *Group) randIntn(n int) int {
	g.randMu.Lock()
	defer g.randMu.Unlock()
	return g.rand.Intn(n)
}

func (g *Group) lookupCache(key string) (ByteView, bool) {
	if g.cacheBytes <= 0 {
		return ByteView{}, false
	}
	if value, ok := g.mainCache.get(key); ok {
		return value, true
	}
	return g.hotCache.get(key)
}

// populateCache inserts value under key into c, then evicts the oldest
// entry of the hot cache while it holds more than an eighth of the main
// cache's bytes, and of the main cache otherwise, until main+hot bytes fall
// back under budget. The hot-cache-vs-main-cache victim comparison (hot > main/8) is
// preserved exactly as the system it's modeled on computes it; do not
// "fix" the asymmetry even if it looks like it skews toward evicting the
// hot cache too eagerly.
func (g *Group) populateCache(key string, value ByteView, c *cache) {
	if g.cacheBytes <= 0 {
		return
	}
	c.add(key, value)

	for {
		mainBytes := g.mainCache.bytes()
		hotBytes := g.hotCache.bytes()
		if mainBytes+hotBytes < g.cacheBytes {
			return
		}
		victim := &g.mainCache
		if hotBytes > mainBytes/8 {
			victim = &g.hotCache
		}
		victim.removeOldest()
	}
}

// CacheType identifies one of a Group's two caches.
type CacheType int

const (
	// MainCache holds entries this process is authoritative for.
	MainCache CacheType = iota + 1
	// HotCache holds popular entries mirrored from peers.
	HotCache
)

// CacheStats returns a snapshot of statistics for the named cache.
func (g *Group) CacheStats(which CacheType) CacheStats {
	switch which {
	case MainCache:
		return g.mainCache.stats()
	case HotCache:
		return g.hotCache.stats()
	default:
		return CacheStats{}
	}
}

// CacheStats are returned by Group.CacheStats.
type CacheStats struct {
	Bytes     int64
	Items     int64
	Gets      int64
	Hits      int64
	Evictions int64
}

// An AtomicInt is an int64 incremented and read with relaxed atomics.
type AtomicInt int64

// Add atomically adds n to i.
func (i *AtomicInt) Add(n int64) { atomic.AddInt64((*int64)(i), n) }

// Get atomically reads i.
func (i *AtomicInt) Get() int64 { return atomic.LoadInt64((*int64)(i)) }

func (i *AtomicInt) String() string { return strconv.FormatInt(i.Get(), 10) }
