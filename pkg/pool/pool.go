package pool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of store operations running at once so slow
// database calls cannot pile up unbounded under connection load.
type Pool struct {
	sem *semaphore.Weighted
}

func New(size int64) *Pool {
	return &Pool{
		sem: semaphore.NewWeighted(size),
	}
}

// Do runs fn once a worker slot is available. It returns the context error
// if the caller goes away while waiting for a slot.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	return fn(ctx)
}
