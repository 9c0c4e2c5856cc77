package cachestore

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is a process-local Backend built on sync.Map. Keys are
// independent and written far less often than they are read, which is the
// access pattern sync.Map is tuned for.
//
// With a positive TTL an entry expires ttl after its last Save. Expired
// entries are removed when they are loaded and by a sweep that runs at most
// once per TTL, on Save, so keys that are never read again do not pile up.
type MemoryBackend struct {
	values sync.Map // Key: cache key, Value: memoryEntry
	ttl    time.Duration
	now    func() time.Time

	sweepMu   sync.Mutex
	nextSweep time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time // Zero means never.
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// NewMemoryBackend creates an empty in-memory backend whose entries never
// expire.
func NewMemoryBackend() *MemoryBackend {
	return NewMemoryBackendWithTTL(0)
}

// NewMemoryBackendWithTTL creates an empty in-memory backend whose entries
// expire ttl after they were saved. A ttl of zero or less disables expiry.
func NewMemoryBackendWithTTL(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{ttl: ttl, now: time.Now}
}

// Load retrieves a value. A missing or expired key is not an error.
func (m *MemoryBackend) Load(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return "", false, nil
	}
	e := v.(memoryEntry)
	if e.expired(m.now()) {
		m.values.CompareAndDelete(key, v)
		return "", false, nil
	}
	return e.value, true, nil
}

// Save stores a value, replacing any previous one.
func (m *MemoryBackend) Save(ctx context.Context, key, value string) error {
	e := memoryEntry{value: value}
	if m.ttl > 0 {
		now := m.now()
		e.expires = now.Add(m.ttl)
		m.sweep(now)
	}
	m.values.Store(key, e)
	return nil
}

// Len reports how many entries are stored, expired ones included until they
// are swept.
func (m *MemoryBackend) Len() int {
	n := 0
	m.values.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *MemoryBackend) sweep(now time.Time) {
	m.sweepMu.Lock()
	if now.Before(m.nextSweep) {
		m.sweepMu.Unlock()
		return
	}
	m.nextSweep = now.Add(m.ttl)
	m.sweepMu.Unlock()

	m.values.Range(func(k, v any) bool {
		if v.(memoryEntry).expired(now) {
			m.values.CompareAndDelete(k, v)
		}
		return true
	})
}
