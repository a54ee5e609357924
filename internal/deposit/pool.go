package deposit

import "sync"

// GridPool recycles per-worker accumulation grids of one fixed size.
// Grids come out of Get zeroed.
type GridPool struct {
	pool sync.Pool
	size int
}

func NewGridPool(size int) *GridPool {
	return &GridPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]float64, size)
			},
		},
	}
}

func (p *GridPool) Size() int { return p.size }

func (p *GridPool) Get() []float64 {
	return p.pool.Get().([]float64)
}

// Put zeroes g and returns it to the pool. Grids of the wrong size are dropped.
func (p *GridPool) Put(g []float64) {
	if len(g) == p.size {
		clear(g)
		p.pool.Put(g)
	}
}
