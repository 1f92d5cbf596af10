package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MuzammilBaloch-22/Cakelora/internal/event"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository"
)

// CartSessions hands out one CartManager per session. Managers are created on
// first use and evicted after sitting idle; their content stays in the slot
// store and is restored when the session returns. A manager is never evicted
// while a caller holds it, so a session has at most one live manager.
type CartSessions struct {
	slot    repository.SlotStore
	catalog repository.CatalogRepository
	events  event.Publisher
	logger  *slog.Logger
	idle    time.Duration
	opts    []CartOption
	now     func() time.Time

	mu       sync.Mutex
	managers map[string]*sessionEntry
}

type sessionEntry struct {
	manager  *CartManager
	lastUsed time.Time
	inUse    int
}

// DefaultDiscardTimeout bounds the slot delete issued when an empty cart is
// evicted.
const DefaultDiscardTimeout = 5 * time.Second

// NewCartSessions creates a session registry. A zero idle duration disables
// eviction. opts are applied to every manager it creates.
func NewCartSessions(
	slot repository.SlotStore,
	catalog repository.CatalogRepository,
	events event.Publisher,
	logger *slog.Logger,
	idle time.Duration,
	opts ...CartOption,
) *CartSessions {
	return &CartSessions{
		slot:     slot,
		catalog:  catalog,
		events:   events,
		logger:   logger,
		idle:     idle,
		opts:     opts,
		now:      time.Now,
		managers: make(map[string]*sessionEntry),
	}
}

// Acquire returns the manager for sessionID, restoring it from the slot store
// if it is not held in memory. The manager is pinned until release is called;
// release is safe to call more than once.
func (s *CartSessions) Acquire(ctx context.Context, sessionID string) (*CartManager, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.managers[sessionID]
	if !ok {
		opts := append([]CartOption{WithSessionID(sessionID)}, s.opts...)
		m := NewCartManager(ctx, s.slot, s.catalog, s.events, s.logger, opts...)
		e = &sessionEntry{manager: m}
		s.managers[sessionID] = e
		cartActiveSessions.Inc()
	}
	e.lastUsed = s.now()
	e.inUse++

	var once sync.Once
	return e.manager, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			e.inUse--
			e.lastUsed = s.now()
		})
	}
}

// Len returns the number of managers held in memory.
func (s *CartSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.managers)
}

// EvictIdle drops managers that nobody holds and that have been unused for
// longer than the idle duration, and returns how many were dropped. The slot
// of an evicted cart that was emptied is deleted.
func (s *CartSessions) EvictIdle(ctx context.Context) int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted, discarded int
	for id, e := range s.managers {
		if e.inUse > 0 || !e.lastUsed.Before(cutoff) {
			continue
		}
		delete(s.managers, id)
		evicted++
		if e.manager.discardable() && s.discard(ctx, e.manager.SlotKey()) {
			discarded++
		}
	}
	if evicted > 0 {
		cartActiveSessions.Sub(float64(evicted))
		s.logger.DebugContext(ctx, "evicted idle cart sessions",
			slog.Int("evicted", evicted),
			slog.Int("discarded", discarded),
			slog.Int("remaining", len(s.managers)),
		)
	}
	return evicted
}

// discard deletes an empty cart's slot. Callers hold mu so a returning
// session cannot restore and rewrite the key in between.
func (s *CartSessions) discard(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultDiscardTimeout)
	defer cancel()

	if err := s.slot.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete empty cart slot",
			slog.String("slot_key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// Run evicts idle sessions every interval until ctx is done.
func (s *CartSessions) Run(ctx context.Context, interval time.Duration) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle(ctx)
		}
	}
}
