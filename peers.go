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

// peers.go defines how a Group finds and talks to the peers that may
// authoritatively own a key it does not.

package groupcache

import (
	"context"

	"github.com/peerbyte/groupcache/groupcachepb"
)

// PeerGetter is the interface a peer transport implements so a Group can
// fetch a key from whichever peer owns it.
type PeerGetter interface {
	// Get fetches the value for in.Key in in.Group from this peer.
	Get(ctx context.Context, in *groupcachepb.GetRequest) (*groupcachepb.GetResponse, error)

	// Name identifies this peer (e.g. its base URL), for logging and
	// stats.
	Name() string
}

// PeerPicker locates the peer that owns a given key.
type PeerPicker interface {
	// PickPeer returns the peer that owns key and true, or ok=false if
	// this process owns the key itself.
	PickPeer(key string) (peer PeerGetter, ok bool)
}

// NoPeers is a PeerPicker that never finds a remote peer; every key is
// treated as locally owned. It is the default when no peer transport has
// been registered.
type NoPeers struct{}

// PickPeer implements PeerPicker.
func (NoPeers) PickPeer(key string) (peer PeerGetter, ok bool) { return nil, false }

// portPicker resolves a PeerPicker for a named group. It's set at most
// once, by RegisterPeerPicker or RegisterPerGroupPeerPicker (typically
// from an HTTPPool's constructor), and each Group consults it on its
// first Get unless WithPeers supplied a picker.
var portPicker func(groupName string) PeerPicker

// RegisterPeerPicker registers the process-wide peer picker factory. It
// must be called at most once, and is typically called indirectly by a
// peer transport's constructor (e.g. NewHTTPPool).
func RegisterPeerPicker(fn func() PeerPicker) {
	if portPicker != nil {
		panic("groupcache: RegisterPeerPicker called more than once")
	}
	portPicker = func(string) PeerPicker { return fn() }
}

// RegisterPerGroupPeerPicker registers a peer picker factory that may vary
// by group name. Mutually exclusive with RegisterPeerPicker.
func RegisterPerGroupPeerPicker(fn func(groupName string) PeerPicker) {
	if portPicker != nil {
		panic("groupcache: RegisterPeerPicker called more than once")
	}
	portPicker = fn
}

func getPeers(groupName string) PeerPicker {
	if portPicker == nil {
		return NoPeers{}
	}
	if pk := portPicker(groupName); pk != nil {
		return pk
	}
	return NoPeers{}
}
