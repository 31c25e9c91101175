package app

import (
	"context"
	"sync"

	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
)

// Request purposes. A new request of a purpose supersedes the previous one.
const (
	purposeScreen  = "screen"
	purposeItems   = "items"
	purposeEPG     = "epg"
	purposeDetails = "details"
	purposeHome    = "home"
	purposeLogin   = "login"
	purposeSearch  = "search"
)

// staleGuard hands out generation numbers per purpose. A result is applied
// only if its generation is still the latest one.
type staleGuard struct {
	gens map[string]uint64
}

func newStaleGuard() *staleGuard {
	return &staleGuard{gens: make(map[string]uint64)}
}

func (g *staleGuard) next(purpose string) uint64 {
	g.gens[purpose]++
	return g.gens[purpose]
}

func (g *staleGuard) current(purpose string, gen uint64) bool {
	return g.gens[purpose] == gen
}

// invalidate makes every outstanding request of the given purposes stale.
func (g *staleGuard) invalidate(purposes ...string) {
	for _, p := range purposes {
		g.gens[p]++
	}
}

// async runs work off the event loop. The function it returns is applied
// on the loop unless a newer request of the same purpose, or a screen
// change, made it stale.
func (c *Controller) async(purpose string, work func(ctx context.Context) func()) {
	gen := c.guard.next(purpose)
	ctx := c.ctx
	c.opts.Go(func() {
		apply := work(ctx)
		c.opts.Dispatch(func() {
			if !c.guard.current(purpose, gen) {
				logging.Debug("Discarding stale result", zap.String("purpose", purpose), zap.Uint64("generation", gen))
				return
			}
			if apply != nil {
				apply()
			}
		})
	})
}

// Loop is a minimal event loop for running a Controller without a UI
// framework. Dispatch may be called from any goroutine, including the
// loop itself.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{signal: make(chan struct{}, 1)}
}

// Dispatch queues f. It never blocks.
func (l *Loop) Dispatch(f func()) {
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Run executes queued functions in order until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.signal:
		}

		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			f := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			f()
		}
	}
}

// Call runs f on the loop and waits for it to finish, or for ctx to end.
func (l *Loop) Call(ctx context.Context, f func()) error {
	done := make(chan struct{})
	l.Dispatch(func() {
		defer close(done)
		f()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
