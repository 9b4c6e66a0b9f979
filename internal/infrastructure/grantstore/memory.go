package grantstore

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/breakout/internal/domain"
)

// retention keeps consumed and expired grants around long enough for a
// second redemption to report GrantConsumed/GrantExpired instead of
// InvalidGrant.
const retention = 10 * time.Minute

type InMemory struct {
	grants    map[string]*domain.JoinGrant
	byUser    map[string]string // user ID -> latest grant ID
	mu        sync.Mutex
	stopClean chan struct{}
	cleanOnce sync.Once
}

func NewInMemory() *InMemory {
	return &InMemory{
		grants:    make(map[string]*domain.JoinGrant),
		byUser:    make(map[string]string),
		stopClean: make(chan struct{}),
	}
}

func (m *InMemory) Save(ctx context.Context, grant *domain.JoinGrant) error {
	if grant == nil || grant.ID == "" || grant.UserID == "" {
		return domain.ErrInvalidParameter
	}

	cpy := *grant

	m.mu.Lock()
	defer m.mu.Unlock()

	m.grants[grant.ID] = &cpy
	m.byUser[grant.UserID] = grant.ID
	return nil
}

func (m *InMemory) Consume(ctx context.Context, grantID string, now time.Time) (*domain.JoinGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	grant, ok := m.grants[grantID]
	if !ok {
		return nil, domain.ErrInvalidGrant
	}
	if grant.Consumed() {
		return nil, domain.ErrGrantConsumed
	}
	if grant.Expired(now) {
		return nil, domain.ErrGrantExpired
	}

	consumedAt := now
	grant.ConsumedAt = &consumedAt

	cpy := *grant
	return &cpy, nil
}

func (m *InMemory) PendingForUser(ctx context.Context, userID string, now time.Time) (*domain.JoinGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byUser[userID]
	if !ok {
		return nil, domain.ErrGrantNotFound
	}

	grant, ok := m.grants[id]
	if !ok || grant.Consumed() || grant.Expired(now) {
		return nil, domain.ErrGrantNotFound
	}

	cpy := *grant
	return &cpy, nil
}

// Run evicts stale grants until ctx is done or Close is called.
func (m *InMemory) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.removeStale(now)
		case <-m.stopClean:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *InMemory) removeStale(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := now.Add(-retention)
	for id, grant := range m.grants {
		if grant.ExpiresAt.Before(cutoff) {
			delete(m.grants, id)
			if m.byUser[grant.UserID] == id {
				delete(m.byUser, grant.UserID)
			}
		}
	}
}

func (m *InMemory) Close() error {
	m.cleanOnce.Do(func() {
		close(m.stopClean)
	})
	return nil
}
