package domain

// Contratos do flood guard (token bucket por IP de origem).

import "time"

// Key identifica um cliente de forma opaca (client id, IP, ...).
type Key string

// Limiter decide se uma requisição pode passar agora. Quando não pode, wait
// é quanto falta para o próximo token (0 se não houver previsão).
//
// A camada de infra usa golang.org/x/time/rate.
type Limiter interface {
	Take() (ok bool, wait time.Duration)
}

// LimiterStore obtém um limiter por chave (ex: IP de origem).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	RetryAfter time.Duration
}
