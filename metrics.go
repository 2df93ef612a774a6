package groupcache

// metrics.go is a thin, optional Prometheus facade over Group.Stats and
// CacheStats. When a Group is built without WithMetrics, every call here
// goes through noopMetrics, whose methods are empty.
// Metric names and the shard-per-group-name label follow the pattern in
// Voskan-arena-cache/pkg/metrics.go.

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricsSink receives the same events that update Group.Stats, so a
// Prometheus-backed implementation stays in lockstep with the in-process
// atomic counters without re-deriving them.
type metricsSink interface {
	incGets()
	incCacheHits()
	incPeerLoads()
	incPeerErrors()
	incLoads()
	incLoadsDeduped()
	incLocalLoads()
	incLocalLoadErrs()
	incServerRequests()
	setCacheBytes(which CacheType, n int64)
	incCacheEvictions(which CacheType)
}

type noopMetrics struct{}

func (noopMetrics) incGets()                            {}
func (noopMetrics) incCacheHits()                        {}
func (noopMetrics) incPeerLoads()                        {}
func (noopMetrics) incPeerErrors()                       {}
func (noopMetrics) incLoads()                            {}
func (noopMetrics) incLoadsDeduped()                     {}
func (noopMetrics) incLocalLoads()                       {}
func (noopMetrics) incLocalLoadErrs()                    {}
func (noopMetrics) incServerRequests()                   {}
func (noopMetrics) setCacheBytes(CacheType, int64)       {}
func (noopMetrics) incCacheEvictions(CacheType)          {}

type promMetrics struct {
	group string

	gets           prometheus.Counter
	cacheHits      prometheus.Counter
	peerLoads      prometheus.Counter
	peerErrors     prometheus.Counter
	loads          prometheus.Counter
	loadsDeduped   prometheus.Counter
	localLoads     prometheus.Counter
	localLoadErrs  prometheus.Counter
	serverRequests prometheus.Counter

	cacheBytes     *prometheus.GaugeVec
	cacheEvictions *prometheus.CounterVec
}

func newPromMetrics(group string, reg *prometheus.Registry) *promMetrics {
	label := prometheus.Labels{"group": group}
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "groupcache",
			Name:        name,
			Help:        help,
			ConstLabels: label,
		})
		reg.MustRegister(c)
		return c
	}

	pm := &promMetrics{
		group:          group,
		gets:           counter("gets_total", "Total Group.Get calls."),
		cacheHits:      counter("cache_hits_total", "Gets served from main or hot cache."),
		peerLoads:      counter("peer_loads_total", "Successful loads fetched from a peer."),
		peerErrors:     counter("peer_errors_total", "Peer fetch failures that fell back to the local loader."),
		loads:          counter("loads_total", "Gets that missed the cache and required a load."),
		loadsDeduped:   counter("loads_deduped_total", "Loads that actually ran, after single-flight dedup."),
		localLoads:     counter("local_loads_total", "Successful loads from the local getter."),
		localLoadErrs:  counter("local_load_errors_total", "Local getter failures."),
		serverRequests: counter("server_requests_total", "Gets served on behalf of a peer over the wire."),
		cacheBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "groupcache",
			Name:        "cache_bytes",
			Help:        "Live bytes held by a cache (main or hot).",
			ConstLabels: label,
		}, []string{"cache"}),
		cacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "groupcache",
			Name:        "cache_evictions_total",
			Help:        "Entries evicted from a cache (main or hot).",
			ConstLabels: label,
		}, []string{"cache"}),
	}
	reg.MustRegister(pm.cacheBytes, pm.cacheEvictions)
	return pm
}

func cacheTypeLabel(which CacheType) string {
	if which == HotCache {
		return "hot"
	}
	return "main"
}

func (m *promMetrics) incGets()            { m.gets.Inc() }
func (m *promMetrics) incCacheHits()       { m.cacheHits.Inc() }
func (m *promMetrics) incPeerLoads()       { m.peerLoads.Inc() }
func (m *promMetrics) incPeerErrors()      { m.peerErrors.Inc() }
func (m *promMetrics) incLoads()           { m.loads.Inc() }
func (m *promMetrics) incLoadsDeduped()    { m.loadsDeduped.Inc() }
func (m *promMetrics) incLocalLoads()      { m.localLoads.Inc() }
func (m *promMetrics) incLocalLoadErrs()   { m.localLoadErrs.Inc() }
func (m *promMetrics) incServerRequests()  { m.serverRequests.Inc() }

func (m *promMetrics) setCacheBytes(which CacheType, n int64) {
	m.cacheBytes.WithLabelValues(cacheTypeLabel(which)).Set(float64(n))
}

func (m *promMetrics) incCacheEvictions(which CacheType) {
	m.cacheEvictions.WithLabelValues(cacheTypeLabel(which)).Inc()
}
