package session

import (
	"context"
	"sync"
)

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedLock serializes work per session id without blocking unrelated
// sessions. Entries are created lazily and dropped once the last holder
// or waiter is gone.
type KeyedLock struct {
	entries map[string]*lockEntry
	mtx     sync.Mutex
}

// Acquire enters the critical section for key, or gives up when ctx is
// done and returns ErrLockTimeout. The returned release func must be
// called exactly once.
func (l *KeyedLock) Acquire(ctx context.Context, key string) (func(), error) {
	l.mtx.Lock()
	entry, exists := l.entries[key]
	if !exists {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	l.mtx.Unlock()

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			l.put(key, entry)
		}, nil
	case <-ctx.Done():
		l.put(key, entry)
		return nil, ErrLockTimeout
	}
}

func (l *KeyedLock) put(key string, entry *lockEntry) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{
		entries: map[string]*lockEntry{},
		mtx:     sync.Mutex{},
	}
}
