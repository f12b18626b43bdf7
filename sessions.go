package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"
)

var ErrSessionsClosed = errors.New("session cache closed")

type session[V any] struct {
	value    V
	expireAt time.Time
}

// SessionCache keeps one value per key until it has been idle for the
// TTL. After Shutdown starts, existing sessions can still be updated but
// no new ones are accepted.
type SessionCache[V any] struct {
	mu          sync.RWMutex
	cleanerOnce sync.Once
	cleanerCh   chan struct{}
	items       map[string]session[V]
	ttl         time.Duration
	now         func() time.Time
	inShutdown  atomic.Bool
	closed      atomic.Bool
}

func NewSessionCache[V any](ttl, cleanupInterval time.Duration) *SessionCache[V] {
	sc := &SessionCache[V]{
		cleanerCh: make(chan struct{}),
		items:     make(map[string]session[V]),
		ttl:       ttl,
		now:       time.Now,
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-sc.cleanerCh:
				return
			case <-ticker.C:
				sc.cleanExpired()
			}
		}
	}()
	return sc
}

// Set stores value under key and restarts its TTL.
func (sc *SessionCache[V]) Set(key string, value V) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if _, exists := sc.items[key]; sc.inShutdown.Load() && !exists {
		return false
	}

	sc.items[key] = session[V]{
		value:    value,
		expireAt: sc.now().Add(sc.ttl),
	}
	return true
}

func (sc *SessionCache[V]) Get(key string) (V, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	item, exists := sc.items[key]
	if !exists || sc.now().After(item.expireAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

func (sc *SessionCache[V]) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.items)
}

func (sc *SessionCache[V]) IsEmpty() bool {
	return sc.Len() == 0
}

const shutdownIntervalMax = 500 * time.Millisecond

// Shutdown stops accepting new sessions and waits for the existing ones
// to expire or for ctx to be done.
func (sc *SessionCache[V]) Shutdown(ctx context.Context) error {
	if sc.closed.Load() || sc.inShutdown.Swap(true) {
		return ErrSessionsClosed
	}
	sc.closeCleaner()

	intervalBase := time.Millisecond
	nextInterval := func() time.Duration {
		interval := intervalBase + rand.N(intervalBase/10+1)

		intervalBase *= 2
		if intervalBase > shutdownIntervalMax {
			intervalBase = shutdownIntervalMax
		}
		return interval
	}

	timer := time.NewTimer(nextInterval())
	defer timer.Stop()
	for {
		sc.cleanExpired()
		if sc.IsEmpty() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			timer.Reset(nextInterval())
		}
	}
}

// Close drops every session immediately. It may follow a Shutdown that
// gave up waiting.
func (sc *SessionCache[V]) Close() error {
	if sc.closed.Swap(true) {
		return ErrSessionsClosed
	}
	sc.inShutdown.Store(true)
	sc.closeCleaner()

	sc.mu.Lock()
	defer sc.mu.Unlock()
	clear(sc.items)
	return nil
}

func (sc *SessionCache[V]) cleanExpired() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	now := sc.now()
	for k, v := range sc.items {
		if now.After(v.expireAt) {
			delete(sc.items, k)
		}
	}
}

func (sc *SessionCache[V]) closeCleaner() {
	sc.cleanerOnce.Do(func() {
		close(sc.cleanerCh)
	})
}
