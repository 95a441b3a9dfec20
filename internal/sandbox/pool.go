package sandbox

import (
	"context"
	"sync"
	"time"
)

// Pool manages reusable runtimes
type Pool struct {
	config   Config
	runtimes chan *Runtime
	size     int
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// PoolStats is a point-in-time view of the pool
type PoolStats struct {
	Size      int  `json:"size"`
	Available int  `json:"available"`
	InUse     int  `json:"in_use"`
	Closed    bool `json:"closed"`
}

// NewPool creates a pool with size pre-built runtimes
func NewPool(config Config, size int) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	pool := &Pool{
		config:   config,
		runtimes: make(chan *Runtime, size),
		size:     size,
		done:     make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		rt, err := New(config)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.runtimes <- rt
	}

	return pool, nil
}

// Acquire takes a runtime, waiting up to AcquireTimeout
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return nil, ErrPoolClosed
	}

	wait := p.config.AcquireTimeout
	if wait <= 0 {
		wait = DefaultConfig().AcquireTimeout
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case rt := <-p.runtimes:
		return rt, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrAcquireTimeout
	}
}

// Release resets a runtime and returns it to the pool. A runtime that
// fails to reset is replaced.
func (p *Pool) Release(rt *Runtime) error {
	if err := rt.Reset(); err != nil {
		rt.Close()
		fresh, newErr := New(p.config)
		if newErr != nil {
			return err
		}
		rt = fresh
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return rt.Close()
	}

	select {
	case p.runtimes <- rt:
		return nil
	default:
		return rt.Close()
	}
}

// Evaluate runs snippet on a pooled runtime
func (p *Pool) Evaluate(ctx context.Context, snippet string, page *Page) (*Result, error) {
	rt, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(rt)

	return rt.Evaluate(ctx, snippet, page)
}

// Close closes the pool and idle runtimes. Runtimes still in use are
// closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	for {
		select {
		case rt := <-p.runtimes:
			rt.Close()
		default:
			return nil
		}
	}
}

// Stats returns pool statistics
func (p *Pool) Stats() PoolStats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	available := len(p.runtimes)
	return PoolStats{
		Size:      p.size,
		Available: available,
		InUse:     p.size - available,
		Closed:    p.closed,
	}
}
