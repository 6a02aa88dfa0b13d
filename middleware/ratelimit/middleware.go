package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/application"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

// ThrottleOptions configura o flood guard.
type ThrottleOptions struct {
	Store               domain.LimiterStore
	KeyFn               KeyFunc
	TrustXForwardedFor  bool
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	Logger              *zap.Logger
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// Throttle aplica um token bucket por IP de origem antes da regra de compra.
// A chave nunca vem do x-client-id: trocar de client id não fura o limite.
func Throttle(opts ThrottleOptions) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = OriginKeyFunc(opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	svc := application.ThrottleService{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", strconv.FormatFloat(ri.RPS(), 'f', -1, 64))
					w.Header().Set("X-RateLimit-Burst", strconv.Itoa(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if !dec.Allowed {
				opts.Logger.Info("flood guard rejected request",
					zap.String("origin", key),
					zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter.Seconds()))
				reject(w, http.StatusTooManyRequests, "429 Too Many Requests: demasiadas solicitudes desde esta dirección. Intenta luego.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
