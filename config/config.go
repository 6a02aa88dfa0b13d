// Package config lê a configuração do serviço a partir de variáveis de
// ambiente (e flags da CLI) usando viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

type Config struct {
	Host string
	Port int

	LogLevel  string
	LogFormat string

	ClientIDHeader  string
	TrustXFF        bool
	JanitorInterval time.Duration

	Flood FloodConfig

	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration

	CORSAllowedOrigins []string

	Stats StatsConfig

	ShutdownTimeout time.Duration
}

// FloodConfig controla o token bucket por IP de origem.
type FloodConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type StatsConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
	TrackKeys     bool
}

// SetDefaults registra os valores padrão. As chaves são os nomes das
// variáveis de ambiente em minúsculas (PORT -> port).
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "")
	v.SetDefault("port", 3001)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("client_id_header", "x-client-id")
	v.SetDefault("trust_xff", false)
	v.SetDefault("janitor_interval", time.Minute)
	v.SetDefault("flood_enabled", false)
	v.SetDefault("flood_rps", 20.0)
	v.SetDefault("flood_burst", 40)
	v.SetDefault("concurrency_max", 100)
	v.SetDefault("concurrency_timeout", time.Duration(0))
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("stats_backend", BackendMemory)
	v.SetDefault("stats_redis_addr", "")
	v.SetDefault("stats_redis_password", "")
	v.SetDefault("stats_redis_db", 0)
	v.SetDefault("stats_prefix", "bobscorn:purchases")
	v.SetDefault("stats_ttl", 24*time.Hour)
	v.SetDefault("stats_track_keys", false)
	v.SetDefault("shutdown_timeout", 10*time.Second)
}

// New devolve um viper com defaults e leitura automática do ambiente.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// Load materializa e valida a configuração.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Host:               strings.TrimSpace(v.GetString("host")),
		Port:               v.GetInt("port"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		ClientIDHeader:     strings.TrimSpace(v.GetString("client_id_header")),
		TrustXFF:           v.GetBool("trust_xff"),
		JanitorInterval:    v.GetDuration("janitor_interval"),
		ConcurrencyMax:     v.GetInt("concurrency_max"),
		ConcurrencyTimeout: v.GetDuration("concurrency_timeout"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
		Flood: FloodConfig{
			Enabled: v.GetBool("flood_enabled"),
			RPS:     v.GetFloat64("flood_rps"),
			Burst:   v.GetInt("flood_burst"),
		},
		Stats: StatsConfig{
			Backend:       strings.ToLower(strings.TrimSpace(v.GetString("stats_backend"))),
			RedisAddr:     strings.TrimSpace(v.GetString("stats_redis_addr")),
			RedisPassword: v.GetString("stats_redis_password"),
			RedisDB:       v.GetInt("stats_redis_db"),
			Prefix:        v.GetString("stats_prefix"),
			TTL:           v.GetDuration("stats_ttl"),
			TrackKeys:     v.GetBool("stats_track_keys"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ClientIDHeader == "" {
		return errors.New("CLIENT_ID_HEADER must not be empty")
	}
	if c.JanitorInterval <= 0 {
		return errors.New("JANITOR_INTERVAL must be > 0")
	}
	if c.Flood.Enabled {
		if c.Flood.RPS <= 0 {
			return errors.New("FLOOD_RPS must be > 0")
		}
		if c.Flood.Burst <= 0 {
			return errors.New("FLOOD_BURST must be > 0")
		}
	}
	if c.ConcurrencyMax < 0 {
		return errors.New("CONCURRENCY_MAX must be >= 0")
	}
	switch c.Stats.Backend {
	case BackendMemory, BackendNone:
	case BackendRedis:
		if c.Stats.RedisAddr == "" {
			return errors.New("STATS_REDIS_ADDR is required when STATS_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STATS_BACKEND must be one of memory, redis, none; got %q", c.Stats.Backend)
	}
	return nil
}

// Addr é o endereço de escuta do servidor HTTP.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
