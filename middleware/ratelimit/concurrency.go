package ratelimit

import (
	"net/http"
	"time"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/infra"

	"go.uber.org/zap"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *zap.Logger
}

// ConcurrencyMiddleware limita quantas requisições são atendidas ao mesmo tempo.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	pool := infra.NewChanPool(opts.Max, opts.AcquireTimeout)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := pool.Acquire(r.Context())
			if !ok {
				opts.Logger.Warn("concurrency limit reached",
					zap.Int("in_flight", pool.InFlight()),
					zap.Int("capacity", pool.Cap()),
					zap.String("path", r.URL.Path))
				reject(w, opts.RejectStatus, "Servicio ocupado, intenta de nuevo en unos segundos.")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
