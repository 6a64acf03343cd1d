package cache

import (
	"sync"
	"time"
)

// Value caches a single computed value for a fixed TTL. Used for the
// store setup-status flag so every request does not hit the database.
// The clock is injected so expiry is testable.
type Value struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	load  func() (interface{}, error)
	value interface{}
	until time.Time
}

func NewValue(ttl time.Duration, load func() (interface{}, error)) *Value {
	return &Value{ttl: ttl, now: time.Now, load: load}
}

func NewValueWithClock(ttl time.Duration, now func() time.Time, load func() (interface{}, error)) *Value {
	return &Value{ttl: ttl, now: now, load: load}
}

// Get returns the cached value, reloading it once the TTL has elapsed.
// A failed reload keeps the previous value out of the cache. The lock
// is held across load on purpose: concurrent callers after expiry wait
// for one reload instead of issuing duplicate fetches, which is the
// behavior a credential cache wants.
func (v *Value) Get() (interface{}, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.value != nil && v.now().Before(v.until) {
		return v.value, nil
	}

	val, err := v.load()
	if err != nil {
		return nil, err
	}
	v.value = val
	v.until = v.now().Add(v.ttl)
	return val, nil
}

// Invalidate drops the cached value so the next Get reloads.
func (v *Value) Invalidate() {
	v.mu.Lock()
	v.value = nil
	v.mu.Unlock()
}
