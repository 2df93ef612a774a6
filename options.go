package groupcache

import (
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Group at construction time. See NewGroup.
type Option func(*Group)

// WithLogger plugs an external zap.Logger. The default is zap.NewNop(), so
// a Group is silent unless a caller opts in. Only a failed peer fetch
// (before falling back to the local getter) ever logs; cache hits,
// single-flight waits and local loader errors never do.
func WithLogger(l *zap.Logger) Option {
	return func(g *Group) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics for the group's Stats and
// CacheStats counters, registered against reg. Passing nil (the default)
// disables metrics entirely; the hot path then only calls the no-op
// methods of noopMetrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(g *Group) {
		if reg != nil {
			g.metrics = newPromMetrics(g.name, reg)
		}
	}
}

// WithRand overrides the random source used for hot-cache promotion
// decisions (spec: a remote load is mirrored into the hot cache with
// probability 1/10). The default source is seeded from the current time.
func WithRand(r *rand.Rand) Option {
	return func(g *Group) {
		if r != nil {
			g.rand = r
		}
	}
}

// WithPeers injects a PeerPicker directly, bypassing the process-wide
// registry (RegisterPeerPicker/RegisterPerGroupPeerPicker). Useful for
// tests and for processes that want distinct peer pools per group.
func WithPeers(p PeerPicker) Option {
	return func(g *Group) {
		if p != nil {
			g.peers = p
			g.peersOnce.Do(func() {}) // mark peers as already resolved
		}
	}
}
