package session

import (
	"context"
	"log"
	"sync"
	"time"
)

const DefaultIdleTimeout = 30 * time.Minute

type managedStore struct {
	store    *Store
	lastUsed time.Time
}

// Manager keeps one open Store per session id. Stores left unused for the
// idle timeout are dropped and reopened from storage on the next visit.
type Manager struct {
	storageFor func(sessionID string) Storage
	opts       Options
	idle       time.Duration
	now        func() time.Time

	mu        sync.Mutex
	stores    map[string]*managedStore
	lastSweep time.Time
}

// NewManager returns a Manager that opens sessions on the storage returned
// by storageFor.
func NewManager(storageFor func(sessionID string) Storage, opts Options) *Manager {
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Manager{
		storageFor: storageFor,
		opts:       opts,
		idle:       idle,
		now:        time.Now,
		stores:     map[string]*managedStore{},
	}
}

// Get returns the store for sessionID, loading it on first use.
func (m *Manager) Get(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.idle/4 {
		m.sweepLocked(now)
	}

	if e, ok := m.stores[sessionID]; ok {
		e.lastUsed = now
		return e.store, nil
	}

	s, err := Open(ctx, m.storageFor(sessionID), m.opts)
	if err != nil {
		return nil, err
	}
	m.stores[sessionID] = &managedStore{store: s, lastUsed: now}
	return s, nil
}

// Sweep drops stores idle for longer than the idle timeout and returns how
// many were dropped. Stores with a lookup in flight are kept.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

func (m *Manager) sweepLocked(now time.Time) int {
	m.lastSweep = now
	dropped := 0
	for id, e := range m.stores {
		if now.Sub(e.lastUsed) < m.idle || e.store.Busy() {
			continue
		}
		delete(m.stores, id)
		dropped++
	}
	if dropped > 0 {
		log.Printf("session_evicted count=%d open=%d", dropped, len(m.stores))
	}
	return dropped
}

// Len returns the number of open stores.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

// Wait blocks until background work of every open store has finished.
func (m *Manager) Wait() {
	m.mu.Lock()
	stores := make([]*Store, 0, len(m.stores))
	for _, e := range m.stores {
		stores = append(stores, e.store)
	}
	m.mu.Unlock()

	for _, s := range stores {
		s.Wait()
	}
}
