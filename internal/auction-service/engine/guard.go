package engine

import "sync/atomic"

// guard garante no máximo uma operação protegida em andamento.
// Uma chamada que encontra o guard ocupado falha na hora em vez de esperar.
type guard struct {
	locked atomic.Bool
}

// enter adquire o guard; o release retornado deve ser chamado via defer
func (g *guard) enter() (release func(), err error) {
	if !g.locked.CompareAndSwap(false, true) {
		return nil, ErrReentrantCall
	}
	return func() { g.locked.Store(false) }, nil
}

func (g *guard) held() bool {
	return g.locked.Load()
}
