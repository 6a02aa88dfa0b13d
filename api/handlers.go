package api

import (
	"net/http"
	"strconv"

	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/application"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"

	"go.uber.org/zap"
)

const (
	ServiceName    = "bobs-corn"
	ServiceVersion = "1.0.0"

	MessagePurchaseOK     = "¡Compra exitosa! 🌽 Gracias por apoyar a Bob."
	MessagePurchaseDenied = "429 Too Many Requests: solo 1 compra por minuto por cliente. Intenta luego."
)

type healthResponse struct {
	OK      bool   `json:"ok"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type purchaseResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	BoughtAt int64  `json:"boughtAt"`
}

type purchaseDeniedResponse struct {
	OK                bool   `json:"ok"`
	Message           string `json:"message"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
	NextAllowedAt     int64  `json:"nextAllowedAt"`
}

type statsResponse struct {
	OK      bool  `json:"ok"`
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

type handlers struct {
	purchases application.PurchaseService
	clientKey func(r *http.Request) string
	stats     domain.StatsReader
	logger    *zap.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Name: ServiceName, Version: ServiceVersion})
}

func (h *handlers) buy(w http.ResponseWriter, r *http.Request) {
	key := domain.Key(h.clientKey(r))

	dec := h.purchases.Attempt(r.Context(), application.PurchaseRequest{
		Key:    key,
		Method: r.Method,
		Path:   r.URL.Path,
	})

	if dec.Allowed {
		writeJSON(w, http.StatusOK, purchaseResponse{
			OK:       true,
			Message:  MessagePurchaseOK,
			BoughtAt: dec.AllowedAt.UnixMilli(),
		})
		return
	}

	h.logger.Debug("purchase denied",
		zap.Int("retry_after_seconds", dec.RetryAfterSeconds),
		zap.String("request_id", RequestIDFrom(r.Context())))

	w.Header().Set("Retry-After", strconv.Itoa(dec.RetryAfterSeconds))
	writeJSON(w, http.StatusTooManyRequests, purchaseDeniedResponse{
		OK:                false,
		Message:           MessagePurchaseDenied,
		RetryAfterSeconds: dec.RetryAfterSeconds,
		NextAllowedAt:     dec.NextAllowedAt.UnixMilli(),
	})
}

func (h *handlers) purchaseStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusNotFound, "Estadísticas no disponibles.")
		return
	}

	totals, err := h.stats.Totals(r.Context())
	if err != nil {
		h.logger.Warn("failed to read purchase stats", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "No se pudieron leer las estadísticas.")
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{OK: true, Allowed: totals.Allowed, Denied: totals.Denied})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Recurso no encontrado.")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
}
