package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joel110399/bobs-corn-api/api"
	"github.com/joel110399/bobs-corn-api/config"
	"github.com/joel110399/bobs-corn-api/logging"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/application"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/domain"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/infra"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func runServe(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	lg, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	handler, err := buildHandler(ctx, cfg, lg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("shutdown error", zap.Error(err))
		}
	}()

	lg.Info("Bob's Corn API listening",
		zap.String("addr", cfg.Addr()),
		zap.String("version", api.ServiceVersion))
	lg.Info("purchase limit",
		zap.Duration("window", domain.Window),
		zap.Duration("janitor_interval", cfg.JanitorInterval),
		zap.String("client_id_header", cfg.ClientIDHeader),
		zap.Bool("trust_xff", cfg.TrustXFF))
	lg.Info("flood guard",
		zap.Bool("enabled", cfg.Flood.Enabled),
		zap.Float64("rps", cfg.Flood.RPS),
		zap.Int("burst", cfg.Flood.Burst))
	lg.Info("stats",
		zap.String("backend", cfg.Stats.Backend),
		zap.String("redis_addr", cfg.Stats.RedisAddr),
		zap.Bool("track_keys", cfg.Stats.TrackKeys))
	lg.Info("concurrency",
		zap.Int("max", cfg.ConcurrencyMax),
		zap.Duration("acquire_timeout", cfg.ConcurrencyTimeout))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	lg.Info("server stopped")
	return nil
}

// buildHandler monta limiter, janitors, stats e roteador. As goroutines de
// limpeza vivem até ctx ser cancelado.
func buildHandler(ctx context.Context, cfg config.Config, lg *zap.Logger) (http.Handler, error) {
	limiter := infra.NewWindowLimiter(
		infra.WithJanitorEvery(cfg.JanitorInterval),
		infra.WithWindowLogger(lg.Named("limiter")),
	)
	limiter.StartJanitor(ctx)

	stats, reader, err := newStatsStore(ctx, cfg.Stats)
	if err != nil {
		return nil, err
	}

	throttle := ratelimit.ThrottleOptions{
		TrustXForwardedFor: cfg.TrustXFF,
		Logger:             lg.Named("flood"),
	}
	if cfg.Flood.Enabled {
		store := infra.NewStore(cfg.Flood.RPS, cfg.Flood.Burst, infra.WithStoreLogger(lg.Named("flood")))
		store.StartJanitor(ctx)
		throttle.Store = store
		throttle.RetryAfter = store.RetryAfter()
	}

	return api.NewRouter(api.Options{
		Purchases: application.PurchaseService{
			Limiter: limiter,
			Stats:   stats,
			Logger:  lg.Named("purchase"),
		},
		ClientKey: ratelimit.ClientKeyFunc(cfg.ClientIDHeader, cfg.TrustXFF),
		Stats:     reader,
		Throttle:  throttle,
		Concurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.ConcurrencyMax,
			AcquireTimeout: cfg.ConcurrencyTimeout,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             lg.Named("http"),
	}), nil
}

// newStatsStore cria o backend de estatísticas. O cliente Redis é fechado
// quando ctx termina.
func newStatsStore(ctx context.Context, cfg config.StatsConfig) (domain.StatsStore, domain.StatsReader, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil, nil
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		s := infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.Prefix),
			infra.WithStatsTTL(cfg.TTL),
			infra.WithStatsTrackKeys(cfg.TrackKeys),
		)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis stats ping error: %w", err)
		}

		go func() {
			<-ctx.Done()
			_ = rdb.Close()
		}()

		return s, s, nil
	default:
		s := infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.TrackKeys))
		return s, s, nil
	}
}
