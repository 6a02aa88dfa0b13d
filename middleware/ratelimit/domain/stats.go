package domain

import (
	"context"
	"time"
)

// StatsEvent representa o resultado de uma tentativa de compra.
//
// Method/Path são strings genéricas para não acoplar ao HTTP.
//
// Observação: cuidado com cardinalidade ao guardar Key (um client id por
// requisição pode explodir o número de chaves no Redis).
type StatsEvent struct {
	Key     Key
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência das estatísticas de compra.
//
// O chamador trata erro como best-effort (não muda a decisão).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// Totals são os contadores agregados de compras permitidas e negadas.
type Totals struct {
	Allowed int64
	Denied  int64
}

// StatsReader é implementado pelos stores que conseguem informar os totais.
type StatsReader interface {
	Totals(ctx context.Context) (Totals, error)
}
