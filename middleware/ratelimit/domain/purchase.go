package domain

import "time"

const (
	// Window é a janela em que um cliente pode fazer no máximo uma compra.
	Window = 60 * time.Second

	// EvictionMultiple define quantas janelas um registro pode ficar ocioso
	// antes de ser removido pela varredura.
	EvictionMultiple = 3
)

// Clock devolve o instante atual. Injetável para testes.
type Clock func() time.Time

// WallClock é o relógio padrão, com resolução de milissegundos.
func WallClock() time.Time {
	return time.UnixMilli(time.Now().UnixMilli())
}

// ClientRecord guarda a última compra permitida de um cliente.
// Tentativas negadas nunca alteram o registro.
type ClientRecord struct {
	Key            Key
	LastPurchaseAt time.Time
}

// PurchaseDecision é o resultado de uma tentativa de compra.
//
// Quando Allowed, só AllowedAt é preenchido. Quando negada,
// RetryAfterSeconds (> 0) e NextAllowedAt são preenchidos.
type PurchaseDecision struct {
	Allowed           bool
	AllowedAt         time.Time
	RetryAfterSeconds int
	NextAllowedAt     time.Time
}

// PurchaseLimiter decide e registra tentativas de compra por chave.
// Lookup, decisão e atualização acontecem de forma atômica por chave.
type PurchaseLimiter interface {
	Attempt(key Key, now time.Time) PurchaseDecision
}

// Decide aplica a regra de uma compra por janela.
//
// prev é nil quando o cliente não tem registro. O limite da janela é
// inclusivo: now-last == window já permite a compra.
func Decide(prev *ClientRecord, now time.Time, window time.Duration) PurchaseDecision {
	if prev == nil {
		return PurchaseDecision{Allowed: true, AllowedAt: now}
	}

	elapsed := now.Sub(prev.LastPurchaseAt)
	if elapsed >= window {
		return PurchaseDecision{Allowed: true, AllowedAt: now}
	}

	// relógio voltou no tempo: conta como se nada tivesse passado
	if elapsed < 0 {
		elapsed = 0
	}

	return PurchaseDecision{
		Allowed:           false,
		RetryAfterSeconds: ceilSeconds(window - elapsed),
		NextAllowedAt:     prev.LastPurchaseAt.Add(window),
	}
}

// IsStale informa se o registro ficou ocioso além do limite de remoção.
func IsStale(rec ClientRecord, now time.Time, window time.Duration) bool {
	return now.Sub(rec.LastPurchaseAt) > window*EvictionMultiple
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
