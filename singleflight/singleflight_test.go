package singleflight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestDoSingleCall(t *testing.T) {
	var g Group[string]
	v, err := g.Do("key", func() (string, error) { return "value", nil })
	if err != nil || v != "value" {
		t.Fatalf("Do = %v, %v; want value, nil", v, err)
	}
}

func TestDoPropagatesError(t *testing.T) {
	var g Group[string]
	wantErr := errors.New("boom")
	_, err := g.Do("key", func() (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("Do err = %v, want %v", err, wantErr)
	}
}

// TestDoDedupsConcurrentCallers spins up a large number of concurrent
// callers for the same key while a single in-flight call is deliberately
// held open; exactly one of them should execute fn.
func TestDoDedupsConcurrentCallers(t *testing.T) {
	const n = 128

	var g Group[int]
	var calls int32
	release := make(chan struct{})
	started := make(chan struct{})

	var eg errgroup.Group
	var once sync.Once
	results := make([]int, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			v, err := g.Do("shared-key", func() (int, error) {
				atomic.AddInt32(&calls, 1)
				once.Do(func() { close(started) })
				<-release
				return 42, nil
			})
			results[i] = v
			errs[i] = err
			return nil
		})
	}

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("no call ever started")
	}
	close(release)

	if err := eg.Wait(); err != nil {
		t.Fatalf("eg.Wait() = %v", err)
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("fn invoked %d times, want exactly 1", got)
	}
	for i, v := range results {
		if errs[i] != nil || v != 42 {
			t.Fatalf("caller %d got %v, %v; want 42, nil", i, v, errs[i])
		}
	}
}

// TestDoRunsAgainAfterCompletion confirms a completed call's bookkeeping is
// cleaned up so a subsequent Do for the same key runs fn again rather than
// replaying the stale result forever.
func TestDoRunsAgainAfterCompletion(t *testing.T) {
	var g Group[int]
	var calls int32
	fn := func() (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	first, _ := g.Do("key", fn)
	second, _ := g.Do("key", fn)

	if first != 1 || second != 2 {
		t.Fatalf("first, second = %d, %d; want 1, 2", first, second)
	}
}
