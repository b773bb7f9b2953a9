package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedLock_SerializesSameKey(t *testing.T) {
	var l KeyedLock
	var active, peak, runs int32

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "gameweek:3")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&runs, 1)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	if runs != workers {
		t.Fatalf("expected every caller to run, got %d", runs)
	}
	if peak != 1 {
		t.Fatalf("expected one holder at a time, saw %d", peak)
	}
	if len(l.slots) != 0 {
		t.Fatalf("expected released slots to be dropped, got %d", len(l.slots))
	}
}

func TestKeyedLock_DistinctKeysDoNotBlock(t *testing.T) {
	var l KeyedLock
	unlockA, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("lock a: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("lock b while a is held: %v", err)
	}
	unlockB()
}

func TestKeyedLock_WaitHonorsContext(t *testing.T) {
	var l KeyedLock
	unlock, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "a"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	again()
}
