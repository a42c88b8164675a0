package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	sess    *Session
	expires time.Time
}

// MemoryRepository is a mutex-guarded in-memory store with optional TTL
// eviction. A zero TTL disables expiry. Expired entries are removed
// lazily on access and by a periodic sweep of the whole map.
type MemoryRepository struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry
	stop  chan struct{}
	once  sync.Once
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	r := &MemoryRepository{
		ttl:   ttl,
		items: make(map[string]entry),
		stop:  make(chan struct{}),
	}
	if ttl > 0 {
		go r.janitor()
	}
	return r
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Session, bool, error) {
	r.mu.RLock()
	e, ok := r.items[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if r.expired(e) {
		r.evictIfExpired(id)
		return nil, false, nil
	}
	return e.sess, true, nil
}

func (r *MemoryRepository) Put(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()
	e := entry{sess: sess}
	if r.ttl > 0 {
		e.expires = time.Now().Add(r.ttl)
	}
	r.mu.Lock()
	r.items[sess.ID] = e
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine.
func (r *MemoryRepository) Close() {
	r.once.Do(func() { close(r.stop) })
}

// evictIfExpired re-checks expiry under the write lock; a Put may have
// refreshed the entry since the caller's read, and a fresh entry must
// survive.
func (r *MemoryRepository) evictIfExpired(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.items[id]; ok && r.expired(e) {
		delete(r.items, id)
	}
}

func (r *MemoryRepository) expired(e entry) bool {
	return r.ttl > 0 && time.Now().After(e.expires)
}

func (r *MemoryRepository) janitor() {
	interval := r.ttl
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			r.mu.Lock()
			for id, e := range r.items {
				if now.After(e.expires) {
					delete(r.items, id)
				}
			}
			r.mu.Unlock()
		case <-r.stop:
			return
		}
	}
}

var _ Repository = (*MemoryRepository)(nil)

// KeyedMutex serializes turns per session id. Two concurrent turns
// racing on one record would break monotonic fill, so a turn holds the
// session's stripe for its full duration.
type KeyedMutex struct {
	stripes [64]sync.Mutex
}

func (m *KeyedMutex) Lock(key string) func() {
	stripe := &m.stripes[fnv32(key)%uint32(len(m.stripes))]
	stripe.Lock()
	return stripe.Unlock
}

func fnv32(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
