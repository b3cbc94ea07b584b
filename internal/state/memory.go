package state

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	pending Pending
	expires time.Time
}

// MemoryStore is the single-process Store used when no Redis URL is configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[int64]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Set(_ context.Context, telegramID int64, p Pending) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p == None {
		delete(m.entries, telegramID)
		return nil
	}

	now := m.now()
	m.entries[telegramID] = entry{pending: p, expires: now.Add(m.ttl)}

	// sweep expired flags so abandoned prompts do not accumulate
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MemoryStore) Take(_ context.Context, telegramID int64) (Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[telegramID]
	if !ok {
		return None, nil
	}
	delete(m.entries, telegramID)

	if m.now().After(e.expires) {
		return None, nil
	}
	return e.pending, nil
}
