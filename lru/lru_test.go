package lru

import "testing"

func TestCacheGetAfterAdd(t *testing.T) {
	c := New[string, int](0)
	c.Add("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get(missing) hit, want miss")
	}
}

func TestCacheAddReplacesValueAndReturnsOld(t *testing.T) {
	c := New[string, int](0)
	c.Add("a", 1)
	old, hadOld := c.Add("a", 2)
	if !hadOld || old != 1 {
		t.Fatalf("Add old=%v hadOld=%v, want 1, true", old, hadOld)
	}
	v, _ := c.Get("a")
	if v != 2 {
		t.Fatalf("Get(a) = %v, want 2", v)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](2)
	c.OnEvicted = func(key string, value int) { evicted = append(evicted, key) }

	c.Add("a", 1)
	c.Add("b", 2)
	c.Get("a") // touch a, making b the LRU entry
	c.Add("c", 3)

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted = %v, want [b]", evicted)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b still present after eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a missing, should have survived eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("c missing, should have just been added")
	}
}

func TestCacheRemove(t *testing.T) {
	var evicted []string
	c := New[string, int](0)
	c.OnEvicted = func(key string, value int) { evicted = append(evicted, key) }
	c.Add("a", 1)
	c.Remove("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a present after Remove")
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Fatalf("evicted = %v, want [a]", evicted)
	}
	c.Remove("nonexistent") // must not panic or call OnEvicted again
	if len(evicted) != 1 {
		t.Fatalf("evicted = %v after removing nonexistent key", evicted)
	}
}

func TestCacheIterateOrderAndStop(t *testing.T) {
	c := New[string, int](0)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	c.Get("a") // a becomes most-recently-used

	var order []string
	c.Iterate(func(key string, value int) bool {
		order = append(order, key)
		return true
	})
	want := []string{"a", "c", "b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	var stopped []string
	c.Iterate(func(key string, value int) bool {
		stopped = append(stopped, key)
		return false
	})
	if len(stopped) != 1 || stopped[0] != "a" {
		t.Fatalf("stopped = %v, want [a]", stopped)
	}
}

func TestCacheClearRunsOnEvicted(t *testing.T) {
	evicted := 0
	c := New[string, int](0)
	c.OnEvicted = func(key string, value int) { evicted++ }
	c.Add("a", 1)
	c.Add("b", 2)
	c.Clear()
	if evicted != 2 {
		t.Fatalf("evicted = %d, want 2", evicted)
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", c.Len())
	}
}

func TestZeroValueCacheIsUsable(t *testing.T) {
	var c Cache[string, int]
	c.Add("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}
}
