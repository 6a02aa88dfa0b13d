package infra

import (
	"context"
	"sync"
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Store é o backend do flood guard: um token bucket (x/time/rate) por IP de
// origem, com cache por chave e limpeza periódica das chaves ociosas.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*storeEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          domain.Clock
	logger       *zap.Logger
}

type storeEntry struct {
	b        *bucket
	lastSeen time.Time
}

// bucket adapta *rate.Limiter a domain.Limiter usando o relógio do Store.
type bucket struct {
	lim *rate.Limiter
	now domain.Clock
}

// Take reserva um token; se ele só estaria disponível no futuro, desfaz a
// reserva e devolve a espera.
func (b *bucket) Take() (bool, time.Duration) {
	now := b.now()
	r := b.lim.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return false, wait
	}
	return true, 0
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

func WithStoreClock(c domain.Clock) StoreOption {
	return func(s *Store) { s.now = c }
}

func WithStoreLogger(lg *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = lg }
}

func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*storeEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RPS() float64                { return float64(s.rps) }
func (s *Store) Burst() int                  { return s.burst }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// RetryAfter é o intervalo entre tokens (nunca menos de 1s). Serve de
// fallback para quando Take não consegue prever a espera.
func (s *Store) RetryAfter() time.Duration {
	if s.rps <= 0 {
		return time.Second
	}
	d := time.Duration(float64(time.Second) / float64(s.rps))
	if d < time.Second {
		return time.Second
	}
	return d
}

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[string(key)]; ok {
		ent.lastSeen = now
		return ent.b
	}

	b := &bucket{lim: rate.NewLimiter(s.rps, s.burst), now: s.now}
	s.entries[string(key)] = &storeEntry{b: b, lastSeen: now}
	return b
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove as chaves sem acesso há mais de idleTTL e devolve quantas saíram.
func (s *Store) Cleanup() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.Cleanup(); n > 0 {
					s.logger.Debug("flood guard cleanup", zap.Int("removed", n))
				}
			}
		}
	}()
}
