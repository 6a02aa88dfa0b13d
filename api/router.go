// Package api expõe a API HTTP do Bob's Corn (health, compra e estatísticas).
package api

import (
	"net/http"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/application"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Options struct {
	Purchases application.PurchaseService
	// ClientKey identifica o comprador. Padrão: x-client-id, senão RemoteAddr.
	ClientKey ratelimit.KeyFunc
	// Stats alimenta GET /api/stats. Nil responde 404.
	Stats domain.StatsReader

	Throttle    ratelimit.ThrottleOptions
	Concurrency ratelimit.ConcurrencyOptions

	CORSAllowedOrigins []string
	Logger             *zap.Logger
}

// NewRouter monta o roteador chi com a cadeia:
// request id -> access log -> recover -> CORS -> concorrência -> handler.
// O flood guard, quando configurado, vale só para POST /api/buy.
func NewRouter(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ClientKey == nil {
		opts.ClientKey = ratelimit.ClientKeyFunc(ratelimit.ClientIDHeader, false)
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}
	if opts.Throttle.Logger == nil {
		opts.Throttle.Logger = opts.Logger
	}
	if opts.Concurrency.Logger == nil {
		opts.Concurrency.Logger = opts.Logger
	}

	h := &handlers{
		purchases: opts.Purchases,
		clientKey: opts.ClientKey,
		stats:     opts.Stats,
		logger:    opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(opts.Logger))
	r.Use(recoverer(opts.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", ratelimit.ClientIDHeader, RequestIDHeader},
		ExposedHeaders: []string{"Retry-After", RequestIDHeader},
		MaxAge:         300,
	}))

	// antes de Route: sub-roteadores herdam estes handlers
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.ConcurrencyMiddleware(opts.Concurrency))

		r.Get("/health", h.health)
		r.With(ratelimit.Throttle(opts.Throttle)).Post("/buy", h.buy)
		r.Get("/stats", h.purchaseStats)
	})

	return r
}
