package application

import (
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"
)

// ThrottleService decide o flood guard por IP de origem.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// RetryAfter só é usado quando o bucket não sabe dizer a espera.
type ThrottleService struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
}

func (s ThrottleService) Decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}
	ok, wait := lim.Take()
	if ok {
		return domain.Decision{Allowed: true}
	}
	if wait <= 0 {
		wait = s.RetryAfter
	}
	return domain.Decision{Allowed: false, RetryAfter: wait}
}
