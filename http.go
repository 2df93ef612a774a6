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

package groupcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/peerbyte/groupcache/consistenthash"
	"github.com/peerbyte/groupcache/groupcachepb"
)

const defaultBasePath = "/_groupcache/"

const defaultHTTPReplicas = 50

// HTTPPool implements PeerPicker for a pool of HTTP peers, keyed on their
// base URL, e.g. "https://example.net:8000". A process constructs exactly
// one HTTPPool and registers it via RegisterPeerPicker so every Group in
// the process shares the same peer ring.
type HTTPPool struct {
	// Context optionally builds a request-scoped context.Context for each
	// incoming peer request. If nil, context.Background() is used.
	Context func(*http.Request) context.Context

	// Transport optionally overrides the http.RoundTripper used by the
	// client side of peer-to-peer requests. If nil, http.DefaultTransport
	// is used.
	Transport func(context.Context) http.RoundTripper

	// self is this peer's own base URL; PickPeer never returns self.
	self string

	opts HTTPPoolOptions

	mu          sync.Mutex
	peers       *consistenthash.Ring
	httpGetters map[string]*httpGetter
}

// HTTPPoolOptions configures an HTTPPool.
type HTTPPoolOptions struct {
	// BasePath specifies the HTTP path prefix that serves groupcache
	// requests. Defaults to "/_groupcache/".
	BasePath string

	// Replicas is the number of consistent-hash virtual nodes per real
	// peer. Defaults to 50.
	Replicas int

	// HashFn is the consistent-hash function. Defaults to
	// crc32.ChecksumIEEE.
	HashFn consistenthash.Hash
}

// NewHTTPPool initializes an HTTPPool for self (this process's own base
// URL), registers it as the process-wide peer picker, and registers it as
// the HTTP handler for its base path on http.DefaultServeMux.
func NewHTTPPool(self string) *HTTPPool {
	p := NewHTTPPoolOpts(self, nil)
	http.Handle(p.opts.BasePath, p)
	return p
}

var httpPoolMade bool

// NewHTTPPoolOpts initializes an HTTPPool for self with the given options.
// Unlike NewHTTPPool it does not register itself as an HTTP handler; the
// caller must http.Handle(pool.opts.BasePath, pool) itself. May be called
// at most once per process.
func NewHTTPPoolOpts(self string, o *HTTPPoolOptions) *HTTPPool {
	if httpPoolMade {
		panic("groupcache: NewHTTPPool must be called only once")
	}
	httpPoolMade = true

	p := &HTTPPool{
		self:        self,
		httpGetters: make(map[string]*httpGetter),
	}
	if o != nil {
		p.opts = *o
	}
	if p.opts.BasePath == "" {
		p.opts.BasePath = defaultBasePath
	}
	if p.opts.Replicas == 0 {
		p.opts.Replicas = defaultHTTPReplicas
	}
	p.peers = consistenthash.New(p.opts.Replicas, p.opts.HashFn)

	RegisterPeerPicker(func() PeerPicker { return p })
	return p
}

// Set replaces the pool's peer list. Each entry must be a valid base URL,
// e.g. "http://example.net:8000".
func (p *HTTPPool) Set(peers ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.peers = consistenthash.New(p.opts.Replicas, p.opts.HashFn)
	p.peers.Add(peers...)
	p.httpGetters = make(map[string]*httpGetter, len(peers))
	for _, peer := range peers {
		p.httpGetters[peer] = &httpGetter{transport: p.Transport, baseURL: peer + p.opts.BasePath}
	}
}

// PickPeer implements PeerPicker.
func (p *HTTPPool) PickPeer(key string) (PeerGetter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.peers.IsEmpty() {
		return nil, false
	}
	if peer := p.peers.Get(key); peer != p.self {
		return p.httpGetters[peer], true
	}
	return nil, false
}

// ServeHTTP answers a peer's request for a key. The request path is
// expected to be <BasePath><group>/<key>, URL-escaped.
func (p *HTTPPool) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, p.opts.BasePath) {
		http.Error(w, "unexpected path: "+r.URL.Path, http.StatusBadRequest)
		return
	}
	parts := strings.SplitN(r.URL.Path[len(p.opts.BasePath):], "/", 2)
	if len(parts) != 2 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	groupName, err := url.PathUnescape(parts[0])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	key, err := url.PathUnescape(parts[1])
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	group := GetGroup(groupName)
	if group == nil {
		http.Error(w, "no such group: "+groupName, http.StatusNotFound)
		return
	}

	ctx := context.Background()
	if p.Context != nil {
		ctx = p.Context(r)
	}

	group.Stats.ServerRequests.Add(1)
	group.metrics.incServerRequests()
	value, err := group.Get(ctx, key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer value.Release()

	body := (&groupcachepb.GetResponse{Value: value.ByteSlice()}).Marshal()
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.Write(body)
}

// httpGetter is the PeerGetter implementation HTTPPool hands out for each
// configured peer.
type httpGetter struct {
	transport func(context.Context) http.RoundTripper
	baseURL   string
}

// Name implements PeerGetter.
func (h *httpGetter) Name() string { return h.baseURL }

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Get implements PeerGetter.
func (h *httpGetter) Get(ctx context.Context, in *groupcachepb.GetRequest) (*groupcachepb.GetResponse, error) {
	u := fmt.Sprintf(
		"%v%v/%v",
		h.baseURL,
		url.PathEscape(in.Group),
		url.PathEscape(in.Key),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	tr := http.DefaultTransport
	if h.transport != nil {
		tr = h.transport(ctx)
	}
	res, err := tr.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned: %v", res.Status)
	}

	b := bufferPool.Get().(*bytes.Buffer)
	b.Reset()
	defer bufferPool.Put(b)
	if _, err := io.Copy(b, res.Body); err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	out := new(groupcachepb.GetResponse)
	if err := out.Unmarshal(b.Bytes()); err != nil {
		return nil, fmt.Errorf("decoding response body: %w", err)
	}
	return out, nil
}
