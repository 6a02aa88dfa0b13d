package infra

import (
	"context"
	"sync/atomic"
	"time"
)

// ChanPool é o semáforo das rotas /api: um channel de capacidade fixa mais
// um contador de vagas ocupadas, usado no log quando o pool está cheio.
type ChanPool struct {
	sem      chan struct{}
	timeout  time.Duration
	inFlight atomic.Int64
}

// NewChanPool cria um pool com `max` vagas. acquireTimeout <= 0 espera até o
// ctx do chamador encerrar.
func NewChanPool(max int, acquireTimeout time.Duration) *ChanPool {
	return &ChanPool{sem: make(chan struct{}, max), timeout: acquireTimeout}
}

// Acquire ocupa uma vaga. Com ok=false nada foi adquirido e release é nil;
// com ok=true release pode ser chamado mais de uma vez.
func (p *ChanPool) Acquire(ctx context.Context) (release func(), ok bool) {
	select {
	case p.sem <- struct{}{}:
		return p.take(), true
	default:
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	select {
	case p.sem <- struct{}{}:
		return p.take(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *ChanPool) take() func() {
	p.inFlight.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			p.inFlight.Add(-1)
			<-p.sem
		}
	}
}

// InFlight devolve quantas vagas estão ocupadas agora.
func (p *ChanPool) InFlight() int { return int(p.inFlight.Load()) }

func (p *ChanPool) Cap() int { return cap(p.sem) }
