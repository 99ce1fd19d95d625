package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
)

// Pool executes handlers concurrently with a fixed upper bound, keeping
// fan-out against external APIs in check.
//
// Behavior:
//   - Go blocks while the pool is at its limit
//   - Panics inside handlers are recovered and logged with a stack trace
//   - Errors returned by handlers are logged, not propagated
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// New creates a pool running at most limit handlers at once.
func New(limit int) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{sem: make(chan struct{}, limit)}
}

// Go schedules a handler for execution, waiting for a free slot first.
func (p *Pool) Go(ctx context.Context, handler func(ctx context.Context) error) {
	p.wg.Add(1)
	p.sem <- struct{}{}

	go func() {
		defer p.wg.Done()
		defer func() { <-p.sem }()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger := ctxlog.From(ctx)
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(ctx); err != nil {
			logger := ctxlog.From(ctx)
			logger.Error("error in async handler", "error", err)
		}
	}()
}

// Wait blocks until every scheduled handler has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
