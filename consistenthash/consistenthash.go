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

// Package consistenthash provides a replicated consistent-hash ring used to
// route keys to peers.
package consistenthash

import (
	"hash/crc32"
	"sort"
	"strconv"
)

// Hash maps a byte string onto a 32-bit ring position.
type Hash func(data []byte) uint32

const defaultReplicas = 50

// Ring is a consistent-hash ring of member keys (typically peer addresses).
// It is not safe for concurrent use; callers that share a Ring across
// goroutines (the HTTP peer pool does) must guard it with their own mutex.
type Ring struct {
	hash     Hash
	replicas int
	keys     []int          // sorted ascending
	hashMap  map[int]string // ring position -> member key
}

// New creates a Ring with the given replica count (virtual nodes per
// member). A non-positive replicas defaults to 50; a nil fn defaults to
// crc32.ChecksumIEEE.
func New(replicas int, fn Hash) *Ring {
	if replicas <= 0 {
		replicas = defaultReplicas
	}
	r := &Ring{
		replicas: replicas,
		hash:     fn,
		hashMap:  make(map[int]string),
	}
	if r.hash == nil {
		r.hash = crc32.ChecksumIEEE
	}
	return r
}

// IsEmpty reports whether the ring has no members.
func (r *Ring) IsEmpty() bool {
	return len(r.keys) == 0
}

// Add inserts members into the ring in bulk, sorting the position list
// once at the end rather than after each member. A member already present
// (detected by probing its replica-0 position) is left untouched.
func (r *Ring) Add(members ...string) {
	changed := false
	for _, key := range members {
		if r.addReplicas(key) {
			changed = true
		}
	}
	if changed {
		sort.Ints(r.keys)
	}
}

// AddOne inserts a single member key, matching this package's
// add(key) -> already_present:bool contract. It reports true (and leaves
// the ring unchanged) if key was already a member.
func (r *Ring) AddOne(key string) (alreadyPresent bool) {
	if !r.addReplicas(key) {
		return true
	}
	sort.Ints(r.keys)
	return false
}

// addReplicas appends key's replica positions to the unsorted position
// list and reports whether it did so (false if key was already present).
func (r *Ring) addReplicas(key string) bool {
	if r.contains(key) {
		return false
	}
	for i := 0; i < r.replicas; i++ {
		hash := int(r.hash([]byte(strconv.Itoa(i) + key)))
		r.keys = append(r.keys, hash)
		r.hashMap[hash] = key
	}
	return true
}

// contains reports whether key's replica-0 position is already on the ring.
func (r *Ring) contains(key string) bool {
	if len(r.keys) == 0 {
		return false
	}
	_, ok := r.hashMap[int(r.hash([]byte(strconv.Itoa(0)+key)))]
	return ok
}

// Get returns the member owning probeKey, or "" if the ring is empty. Ties
// are broken by scanning to the smallest ring position greater than or
// equal to probeKey's hash, wrapping around to position 0 if none is found.
func (r *Ring) Get(probeKey string) string {
	if r.IsEmpty() {
		return ""
	}
	hash := int(r.hash([]byte(probeKey)))

	idx := sort.Search(len(r.keys), func(i int) bool { return r.keys[i] >= hash })
	if idx == len(r.keys) {
		idx = 0
	}
	return r.hashMap[r.keys[idx]]
}

// Reset removes every member from the ring.
func (r *Ring) Reset() {
	r.keys = nil
	r.hashMap = make(map[int]string)
}
