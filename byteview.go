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

package groupcache

import (
	"bytes"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// A ByteView holds an immutable view of bytes. It wraps either a static,
// non-owning view (a string literal, or a []byte the caller guarantees
// outlives the view) or a window into a reference-counted owned buffer.
// Either way the contents never change once a ByteView exists; clones and
// sub-slices share the same underlying storage rather than copying it.
//
// ByteView is meant to be used as a value type, like time.Time: pass it
// around, don't take its address.
type ByteView struct {
	b     []byte // current window: set for a static []byte view or an owned view
	s     string // set for a static string view; mutually exclusive with b
	owned *ownedBuf
}

// ownedBuf is the reference-counted heap buffer behind an owned ByteView.
// refs starts at 1 when the buffer is created; Clone increments it,
// Release decrements it and marks the buffer freed when it reaches zero.
// In Go the backing array is reclaimed by the garbage collector regardless
// of refs — freed is bookkeeping, not a real deallocation — but it makes
// the clone/release discipline this cache's design is built around a
// checkable invariant rather than a purely aspirational one.
type ownedBuf struct {
	refs  atomic.Int32
	freed atomic.Bool
}

// Static returns a non-owning view over s. Clone and Release are no-ops on
// a static view.
func Static(s string) ByteView {
	return ByteView{s: s}
}

// StaticBytes returns a non-owning view over b. The caller must not mutate
// b for as long as any ByteView or clone derived from it is in use.
func StaticBytes(b []byte) ByteView {
	return ByteView{b: b}
}

// Copy returns an owned view holding a fresh copy of b. The caller retains
// ownership of b itself.
func Copy(b []byte) ByteView {
	return Owned(cloneBytes(b))
}

// Owned returns an owned view that takes ownership of b: the caller must
// not retain or mutate b after this call.
func Owned(b []byte) ByteView {
	buf := &ownedBuf{}
	buf.refs.Store(1)
	return ByteView{b: b, owned: buf}
}

// Clone returns a view sharing the same underlying storage as v. For an
// owned view this increments the refcount; for a static view it is a
// no-op. The returned ByteView must eventually be Released independently
// of v.
func (v ByteView) Clone() ByteView {
	if v.owned != nil {
		v.owned.refs.Add(1)
	}
	return v
}

// Release decrements the refcount of an owned view's backing buffer,
// marking it freed once no clone remains. Release on a static view, or on
// the zero ByteView, is a no-op. Releasing an owned ByteView more times
// than it was cloned panics, since that indicates a double-free.
func (v ByteView) Release() {
	if v.owned == nil {
		return
	}
	switch n := v.owned.refs.Add(-1); {
	case n == 0:
		v.owned.freed.Store(true)
	case n < 0:
		panic("groupcache: ByteView released more times than cloned")
	}
}

// Len returns the view's length.
func (v ByteView) Len() int {
	if v.b != nil {
		return len(v.b)
	}
	return len(v.s)
}

// ByteSlice returns a copy of the data as a byte slice, safe for the
// caller to mutate.
func (v ByteView) ByteSlice() []byte {
	if v.b != nil {
		return cloneBytes(v.b)
	}
	return []byte(v.s)
}

// String returns the data as a string, copying if necessary.
func (v ByteView) String() string {
	if v.b != nil {
		return string(v.b)
	}
	return v.s
}

// At returns the byte at index i.
func (v ByteView) At(i int) byte {
	if v.b != nil {
		return v.b[i]
	}
	return v.s[i]
}

// Slice returns the view between from and to, sharing storage (and, for an
// owned view, a refcount) with v. The result must be Released independently
// of v when v is owned.
func (v ByteView) Slice(from, to int) ByteView {
	if v.owned != nil {
		v.owned.refs.Add(1)
		return ByteView{b: v.b[from:to], owned: v.owned}
	}
	if v.b != nil {
		return ByteView{b: v.b[from:to]}
	}
	return ByteView{s: v.s[from:to]}
}

// SliceFrom is equivalent to Slice(from, v.Len()).
func (v ByteView) SliceFrom(from int) ByteView {
	return v.Slice(from, v.Len())
}

// Equal reports whether v and v2 hold the same bytes.
func (v ByteView) Equal(v2 ByteView) bool {
	if v2.b != nil {
		return v.EqualBytes(v2.b)
	}
	return v.EqualString(v2.s)
}

// EqualString reports whether v holds the same bytes as s.
func (v ByteView) EqualString(s string) bool {
	if v.b == nil {
		return v.s == s
	}
	return len(s) == len(v.b) && string(v.b) == s
}

// EqualBytes reports whether v holds the same bytes as b.
func (v ByteView) EqualBytes(b []byte) bool {
	if v.b != nil {
		return bytes.Equal(v.b, b)
	}
	return len(b) == len(v.s) && v.s == string(b)
}

// Hash returns a fast, non-cryptographic 64-bit hash of v's content. Keys
// and values hash identically regardless of whether they're held as a
// static string, static bytes, or an owned buffer.
func (v ByteView) Hash() uint64 {
	if v.b != nil {
		return xxhash.Sum64(v.b)
	}
	return xxhash.Sum64String(v.s)
}

// Reader returns a strings.Reader over v's content.
func (v ByteView) Reader() *strings.Reader {
	return strings.NewReader(v.String())
}

func (v ByteView) GoString() string {
	return fmt.Sprintf("groupcache.ByteView{%q}", v.String())
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
