package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joel110399/bobs-corn-api/config"
	"github.com/joel110399/bobs-corn-api/middleware/ratelimit/infra"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStatsStore_Backends(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, reader, err := newStatsStore(ctx, config.StatsConfig{Backend: config.BackendNone})
	require.NoError(t, err)
	require.Nil(t, store)
	require.Nil(t, reader)

	store, reader, err = newStatsStore(ctx, config.StatsConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	require.IsType(t, &infra.MemoryStatsStore{}, store)
	require.NotNil(t, reader)

	mr := miniredis.RunT(t)
	store, reader, err = newStatsStore(ctx, config.StatsConfig{
		Backend:   config.BackendRedis,
		RedisAddr: mr.Addr(),
		Prefix:    "bobscorn:purchases",
	})
	require.NoError(t, err)
	require.IsType(t, &infra.RedisStatsStore{}, store)
	require.NotNil(t, reader)
}

func TestNewStatsStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := newStatsStore(context.Background(), config.StatsConfig{
		Backend:   config.BackendRedis,
		RedisAddr: addr,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis stats ping error")
}

func TestBuildHandler_ServesPurchases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	h, err := buildHandler(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	buy := func(clientID string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/buy", nil)
		req.Header.Set("x-client-id", clientID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, buy("alice"))
	require.Equal(t, http.StatusTooManyRequests, buy("alice"))
	require.Equal(t, http.StatusOK, buy("bob"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.JSONEq(t, `{"ok":true,"allowed":2,"denied":1}`, rec.Body.String())
}

func TestBuildHandler_DefaultsDoNotThrottleDistinctClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(config.New())
	require.NoError(t, err)

	h, err := buildHandler(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/buy", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("x-client-id", fmt.Sprintf("client-%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "client-%d", i)
	}

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "health #%d", i)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), "bobs-corn 1.0.0"))
}

func TestServeCmd_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("STATS_BACKEND", "postgres")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "config error")
}

func TestRootCmd_AcceptsServeFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--port", "70000"},
		{"serve", "--port", "70000"},
	} {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(context.Background())
		require.Error(t, err, "%v", args)
		// a flag chegou ao viper: falha na validação, não no parse
		require.Contains(t, err.Error(), "PORT must be between 1 and 65535, got 70000", "%v", args)
	}
}
