// Package lock provides short-lived named leases on a shared key-value store.
//
// The manager fails open: when the store is missing or returns any error,
// Acquire and Release report success and exclusion rests on the caller's own
// consistency checks.
package lock

import (
	"context"
	"sync"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const roomKeyPrefix = "booking:lock:"

// RoomKey is the lease key guarding admissions for one room.
func RoomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

type Manager struct {
	store      domain.KVStore
	defaultTTL time.Duration
	logger     *zerolog.Logger
}

// NewManager builds a lease manager. A nil store puts it permanently in degraded mode.
func NewManager(store domain.KVStore, defaultTTL time.Duration, logger *zerolog.Logger) *Manager {
	if defaultTTL <= 0 {
		defaultTTL = models.DefaultLockTTL
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		store:      store,
		defaultTTL: defaultTTL,
		logger:     logger,
	}
}

// Acquire sets key to token only if no live lease exists, in one atomic SET NX.
func (m *Manager) Acquire(ctx context.Context, key, token string, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	if m.store == nil {
		m.failOpen("acquire", key, nil)
		return true
	}

	ok, err := m.store.SetNX(ctx, key, token, ttl)
	if err != nil {
		m.failOpen("acquire", key, err)
		return true
	}

	metrics.IncLockAcquire(ok)
	if !ok {
		m.logger.Debug().Str("key", key).Msg("lease busy")
	}
	return ok
}

// Release deletes key only while it still holds token.
func (m *Manager) Release(ctx context.Context, key, token string) bool {
	if m.store == nil {
		m.failOpen("release", key, nil)
		return true
	}

	ok, err := m.store.CompareAndDelete(ctx, key, token)
	if err != nil {
		m.failOpen("release", key, err)
		return true
	}
	if !ok {
		m.logger.Warn().Str("key", key).Msg("lease was not held at release; it expired or was taken over")
	}
	return ok
}

func (m *Manager) failOpen(op, key string, err error) {
	metrics.IncLockFailOpen(op)
	ev := m.logger.Warn().Str("op", op).Str("key", key)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("lease store unavailable, proceeding without lock")
}

// Lease is one successful acquisition.
type Lease struct {
	Key   string
	Token string
	TTL   time.Duration

	manager *Manager
	once    sync.Once
}

// TryLock acquires key with a fresh holder token. It never waits: false means the key is busy.
func (m *Manager) TryLock(ctx context.Context, key string, ttl time.Duration) (*Lease, bool) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	lease := &Lease{
		Key:     key,
		Token:   uuid.NewString(),
		TTL:     ttl,
		manager: m,
	}
	if !m.Acquire(ctx, key, lease.Token, ttl) {
		return nil, false
	}
	return lease, true
}

// Release gives the lease back. Only the first call reaches the store.
func (l *Lease) Release(ctx context.Context) bool {
	released := false
	l.once.Do(func() {
		released = l.manager.Release(ctx, l.Key, l.Token)
	})
	return released
}
