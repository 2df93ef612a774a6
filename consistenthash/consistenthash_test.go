package consistenthash

import (
	"strconv"
	"testing"
)

// identityHash makes ring placement predictable: a numeric string hashes
// to its own integer value, so replica rotation is easy to reason about.
func identityHash(key []byte) uint32 {
	n, _ := strconv.Atoi(string(key))
	return uint32(n)
}

func TestRingEmpty(t *testing.T) {
	r := New(3, identityHash)
	if !r.IsEmpty() {
		t.Fatalf("new ring reports non-empty")
	}
	if got := r.Get("anything"); got != "" {
		t.Fatalf("Get on empty ring = %q, want \"\"", got)
	}
}

func TestRingBasicLookup(t *testing.T) {
	r := New(3, identityHash)
	r.Add("6", "4", "2")

	cases := map[string]string{
		"2":  "2",
		"11": "2",
		"23": "4",
		"27": "2", // wraps around past the largest replica position
	}
	for probe, want := range cases {
		if got := r.Get(probe); got != want {
			t.Errorf("Get(%q) = %q, want %q", probe, got, want)
		}
	}
}

func TestRingAddIsIdempotentPerMember(t *testing.T) {
	r := New(3, identityHash)
	r.Add("6", "4", "2")
	before := r.Get("11")
	r.Add("4") // already present; must not duplicate replicas
	after := r.Get("11")
	if before != after {
		t.Fatalf("Get(11) changed from %q to %q after re-adding an existing member", before, after)
	}
}

func TestRingAddMoreMembersShiftsOwnership(t *testing.T) {
	r := New(3, identityHash)
	r.Add("6", "4", "2")
	r.Add("8")

	got := r.Get("27")
	if got != "8" {
		t.Fatalf("Get(27) = %q, want %q after adding 8", got, "8")
	}
}

func TestRingAddOneReportsAlreadyPresent(t *testing.T) {
	r := New(3, identityHash)
	if already := r.AddOne("4"); already {
		t.Fatalf("AddOne(4) on empty ring reported already present")
	}
	if already := r.AddOne("4"); !already {
		t.Fatalf("AddOne(4) again reported not already present")
	}
	if got := r.Get("11"); got != "4" {
		t.Fatalf("Get(11) = %q, want 4", got)
	}
}

func TestRingReset(t *testing.T) {
	r := New(3, identityHash)
	r.Add("6", "4", "2")
	r.Reset()
	if !r.IsEmpty() {
		t.Fatalf("ring non-empty after Reset")
	}
	if got := r.Get("2"); got != "" {
		t.Fatalf("Get after Reset = %q, want \"\"", got)
	}
}

func TestRingDefaults(t *testing.T) {
	r := New(0, nil)
	if r.replicas != defaultReplicas {
		t.Fatalf("replicas = %d, want default %d", r.replicas, defaultReplicas)
	}
	if r.hash == nil {
		t.Fatalf("hash function is nil, want crc32.ChecksumIEEE default")
	}
}

// TestRingStableAcrossIndependentInstances verifies two independently
// constructed rings with the same replica count, hash function, and member
// set agree on every key's owner — consistent hashing only helps if every
// process computes the same routing decision.
func TestRingStableAcrossIndependentInstances(t *testing.T) {
	members := []string{"peerA", "peerB", "peerC", "peerD"}
	r1 := New(50, nil)
	r1.Add(members...)
	r2 := New(50, nil)
	r2.Add(members...)

	for i := 0; i < 1000; i++ {
		key := "key-" + strconv.Itoa(i)
		if g1, g2 := r1.Get(key), r2.Get(key); g1 != g2 {
			t.Fatalf("key %q: ring1 owner %q != ring2 owner %q", key, g1, g2)
		}
	}
}
