package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rayypan/invoicegeneration/internal/domain/entity"
	"github.com/rayypan/invoicegeneration/internal/domain/repository"
)

// MemorySessionRepository keeps live form sessions in memory. Sessions exist
// only for the lifetime of a form mount, so there is no database behind this:
// abandoned sessions are reaped by a TTL sweep instead.
type MemorySessionRepository struct {
	sessions    map[uuid.UUID]*entity.FormSession
	mu          sync.RWMutex
	entryTTL    time.Duration
	cleanupTick time.Duration
}

// MemorySessionConfig holds tuning for the in-memory store.
type MemorySessionConfig struct {
	EntryTTL        time.Duration // how long an untouched session survives
	CleanupInterval time.Duration // how often the sweep runs
}

// DefaultMemorySessionConfig returns sensible defaults.
func DefaultMemorySessionConfig() MemorySessionConfig {
	return MemorySessionConfig{
		EntryTTL:        2 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// NewMemorySessionRepository creates the store and starts its sweep goroutine.
func NewMemorySessionRepository(cfg MemorySessionConfig) *MemorySessionRepository {
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = DefaultMemorySessionConfig().EntryTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultMemorySessionConfig().CleanupInterval
	}

	r := &MemorySessionRepository{
		sessions:    make(map[uuid.UUID]*entity.FormSession),
		entryTTL:    cfg.EntryTTL,
		cleanupTick: cfg.CleanupInterval,
	}

	go r.cleanupLoop()

	return r
}

// Save stores or replaces a session.
func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.FormSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// GetByID returns the live session, or (nil, nil) when it does not exist.
func (r *MemorySessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.FormSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id], nil
}

// Delete discards a session.
func (r *MemorySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (r *MemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *MemorySessionRepository) cleanupLoop() {
	ticker := time.NewTicker(r.cleanupTick)
	defer ticker.Stop()

	for range ticker.C {
		r.cleanup(time.Now())
	}
}

// cleanup removes sessions untouched for longer than the TTL. A session mid
// submission is never reaped. Submitting and UpdatedAt are guarded by the
// session lock, not the store lock, so each session is inspected under its own
// lock. Lock order is session before store, same as the service's
// mutate-then-Save path.
func (r *MemorySessionRepository) cleanup(now time.Time) {
	r.mu.RLock()
	candidates := make([]*entity.FormSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		candidates = append(candidates, session)
	}
	r.mu.RUnlock()

	cutoff := now.Add(-r.entryTTL)
	for _, session := range candidates {
		session.Lock()
		if !session.Submitting && session.UpdatedAt.Before(cutoff) {
			r.mu.Lock()
			delete(r.sessions, session.ID)
			r.mu.Unlock()
		}
		session.Unlock()
	}
}

var _ repository.SessionRepository = (*MemorySessionRepository)(nil)
