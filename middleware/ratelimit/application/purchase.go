package application

import (
	"context"
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

// PurchaseService é o caso de uso "comprar milho": lê o relógio, pede a
// decisão ao limiter e registra a estatística.
//
// A estatística é best-effort: erro vira log e nunca muda a decisão.
type PurchaseService struct {
	Limiter domain.PurchaseLimiter
	Clock   domain.Clock
	Stats   domain.StatsStore
	Logger  *zap.Logger
}

// PurchaseRequest carrega metadados opcionais para as estatísticas.
type PurchaseRequest struct {
	Key    domain.Key
	Method string
	Path   string
}

func (s PurchaseService) Attempt(ctx context.Context, req PurchaseRequest) domain.PurchaseDecision {
	now := s.now()

	if s.Limiter == nil {
		return domain.PurchaseDecision{Allowed: true, AllowedAt: now}
	}

	dec := s.Limiter.Attempt(req.Key, now)

	if s.Stats != nil {
		err := s.Stats.Record(ctx, domain.StatsEvent{
			Key:     req.Key,
			Allowed: dec.Allowed,
			Method:  req.Method,
			Path:    req.Path,
			At:      now,
		})
		if err != nil {
			s.logger().Warn("failed to record purchase stats", zap.Error(err))
		}
	}
	return dec
}

func (s PurchaseService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return domain.WallClock()
}

func (s PurchaseService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
