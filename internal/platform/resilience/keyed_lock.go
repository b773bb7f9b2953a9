package resilience

import (
	"context"
	"sync"
)

// KeyedLock serializes callers sharing a key. Unlike SingleFlight, every
// caller runs its own work once it holds the key.
type KeyedLock struct {
	mu    sync.Mutex
	slots map[string]*keySlot
}

type keySlot struct {
	held chan struct{}
	refs int
}

// Lock blocks until key is free or ctx is done. The returned func releases
// the key and must be called exactly once.
func (l *KeyedLock) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]*keySlot)
	}
	slot, ok := l.slots[key]
	if !ok {
		slot = &keySlot{held: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.held <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-slot.held
				l.release(key, slot)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	}
}

func (l *KeyedLock) release(key string, slot *keySlot) {
	l.mu.Lock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}
