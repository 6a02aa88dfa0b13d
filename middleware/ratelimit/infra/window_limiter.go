package infra

import (
	"context"
	"sync"
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const defaultShards = 32

// WindowLimiter guarda a última compra permitida de cada cliente e aplica
// domain.Decide de forma atômica por chave.
//
// O mapa é dividido em shards (xxhash da chave) com um mutex cada, para que
// chaves diferentes decidam em paralelo e a varredura nunca segure todo o mapa.
type WindowLimiter struct {
	shards []*windowShard

	window       time.Duration
	janitorEvery time.Duration
	clock        domain.Clock
	logger       *zap.Logger
}

type windowShard struct {
	mu      sync.Mutex
	records map[domain.Key]*domain.ClientRecord
}

type WindowOption func(*WindowLimiter)

// WithWindow troca a janela (padrão domain.Window).
func WithWindow(d time.Duration) WindowOption {
	return func(l *WindowLimiter) { l.window = d }
}

// WithShards define o número de shards (mínimo 1).
func WithShards(n int) WindowOption {
	return func(l *WindowLimiter) {
		if n < 1 {
			n = 1
		}
		l.shards = newShards(n)
	}
}

// WithJanitorEvery define o intervalo da varredura (padrão: a própria janela).
func WithJanitorEvery(d time.Duration) WindowOption {
	return func(l *WindowLimiter) { l.janitorEvery = d }
}

// WithClock define o relógio usado pelo janitor.
func WithClock(c domain.Clock) WindowOption {
	return func(l *WindowLimiter) { l.clock = c }
}

func WithWindowLogger(lg *zap.Logger) WindowOption {
	return func(l *WindowLimiter) { l.logger = lg }
}

func NewWindowLimiter(opts ...WindowOption) *WindowLimiter {
	l := &WindowLimiter{
		shards: newShards(defaultShards),
		window: domain.Window,
		clock:  domain.WallClock,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.janitorEvery == 0 {
		l.janitorEvery = l.window
	}
	return l
}

func newShards(n int) []*windowShard {
	shards := make([]*windowShard, n)
	for i := range shards {
		shards[i] = &windowShard{records: make(map[domain.Key]*domain.ClientRecord)}
	}
	return shards
}

func (l *WindowLimiter) Window() time.Duration { return l.window }

func (l *WindowLimiter) shardFor(key domain.Key) *windowShard {
	h := xxhash.Sum64String(string(key))
	return l.shards[h%uint64(len(l.shards))]
}

// Attempt implementa domain.PurchaseLimiter.
func (l *WindowLimiter) Attempt(key domain.Key, now time.Time) domain.PurchaseDecision {
	sh := l.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	prev := sh.records[key]
	dec := domain.Decide(prev, now, l.window)
	if !dec.Allowed {
		return dec
	}

	if prev == nil {
		sh.records[key] = &domain.ClientRecord{Key: key, LastPurchaseAt: now}
	} else {
		prev.LastPurchaseAt = now
	}
	return dec
}

// Lookup devolve uma cópia do registro da chave, se existir.
func (l *WindowLimiter) Lookup(key domain.Key) (domain.ClientRecord, bool) {
	sh := l.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[key]
	if !ok {
		return domain.ClientRecord{}, false
	}
	return *rec, true
}

// Len devolve o número de clientes com registro.
func (l *WindowLimiter) Len() int {
	n := 0
	for _, sh := range l.shards {
		sh.mu.Lock()
		n += len(sh.records)
		sh.mu.Unlock()
	}
	return n
}

// EvictStale remove os registros ociosos há mais de EvictionMultiple janelas.
// Trava um shard por vez. Devolve quantos registros foram removidos.
func (l *WindowLimiter) EvictStale(now time.Time) int {
	removed := 0
	for _, sh := range l.shards {
		sh.mu.Lock()
		for k, rec := range sh.records {
			if domain.IsStale(*rec, now, l.window) {
				delete(sh.records, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// StartJanitor inicia uma goroutine que roda EvictStale periodicamente.
// Pare cancelando o contexto; o canal devolvido fecha quando a goroutine sai.
func (l *WindowLimiter) StartJanitor(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if l.janitorEvery <= 0 {
		close(done)
		return done
	}

	t := time.NewTicker(l.janitorEvery)
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := l.EvictStale(l.clock()); n > 0 {
					l.logger.Debug("evicted idle clients",
						zap.Int("removed", n),
						zap.Int("remaining", l.Len()))
				}
			}
		}
	}()
	return done
}
