package model

import "sync"

// GridPool recycles grid allocations for next-generation targets. Callers
// must only Put grids that nothing else references anymore; the session
// hands a superseded generation back once its render has returned.
type GridPool struct {
	pool sync.Pool
}

func NewGridPool() *GridPool {
	return &GridPool{
		pool: sync.Pool{
			New: func() interface{} {
				return &Grid{}
			},
		},
	}
}

// Get retrieves a grid from the pool, resized and fully cleared.
func (p *GridPool) Get(width, height int) *Grid {
	g := p.pool.Get().(*Grid)
	g.Reset(width, height)
	return g
}

// Put returns a grid to the pool, clearing its state. A nil pool is safe.
func (p *GridPool) Put(g *Grid) {
	if p == nil || g == nil {
		return
	}
	// Clear the grid before returning to pool
	g.Clear()
	p.pool.Put(g)
}
