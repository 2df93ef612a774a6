package groupcache

import "testing"

func TestStaticViewBasics(t *testing.T) {
	v := Static("hello")
	if v.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", v.Len())
	}
	if v.String() != "hello" {
		t.Fatalf("String() = %q, want hello", v.String())
	}
	if v.At(1) != 'e' {
		t.Fatalf("At(1) = %q, want 'e'", v.At(1))
	}
	// Clone/Release on a static view must never panic.
	c := v.Clone()
	c.Release()
	v.Release()
}

func TestOwnedViewCloneRelease(t *testing.T) {
	v := Owned([]byte("owned-data"))
	c1 := v.Clone()
	c2 := c1.Clone()

	if !v.EqualString("owned-data") || !c1.EqualString("owned-data") || !c2.EqualString("owned-data") {
		t.Fatalf("clones diverged from source content")
	}

	v.Release()
	c1.Release()
	c2.Release() // last release; must not panic
}

func TestOwnedViewDoubleReleasePanics(t *testing.T) {
	v := Owned([]byte("x"))
	v.Release()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on double release")
		}
	}()
	v.Release()
}

func TestCopyDoesNotAliasSource(t *testing.T) {
	src := []byte("mutable")
	v := Copy(src)
	src[0] = 'X'
	if !v.EqualString("mutable") {
		t.Fatalf("Copy aliased caller's backing array: got %q", v.String())
	}
	v.Release()
}

func TestByteSliceReturnsIndependentCopy(t *testing.T) {
	v := Owned([]byte("abc"))
	defer v.Release()
	b := v.ByteSlice()
	b[0] = 'z'
	if !v.EqualString("abc") {
		t.Fatalf("mutating ByteSlice() result affected the view: got %q", v.String())
	}
}

func TestSliceSharesStorageAndRefcount(t *testing.T) {
	v := Owned([]byte("hello world"))
	sub := v.Slice(6, 11)
	if sub.String() != "world" {
		t.Fatalf("Slice(6,11) = %q, want world", sub.String())
	}
	// sub holds its own clone of the refcount; both must be released
	// independently without panicking.
	sub.Release()
	v.Release()
}

func TestSliceFrom(t *testing.T) {
	v := Static("hello world")
	sub := v.SliceFrom(6)
	if sub.String() != "world" {
		t.Fatalf("SliceFrom(6) = %q, want world", sub.String())
	}
}

func TestEqual(t *testing.T) {
	a := Static("same")
	b := Owned([]byte("same"))
	defer b.Release()
	if !a.Equal(b) || !b.Equal(a) {
		t.Fatalf("Equal() false for matching content across static/owned views")
	}
	c := Static("different")
	if a.Equal(c) {
		t.Fatalf("Equal() true for different content")
	}
}

func TestHashConsistentAcrossRepresentations(t *testing.T) {
	a := Static("consistent-hash-me")
	b := Owned([]byte("consistent-hash-me"))
	defer b.Release()
	if a.Hash() != b.Hash() {
		t.Fatalf("Hash() differs between static and owned views of identical content")
	}
}
