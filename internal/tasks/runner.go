// Package tasks owns fire-and-forget background work. Network publishes
// are detached from the command that triggered them, so a command can
// return while its publish is still in flight; Close drains everything
// before the process exits.
package tasks

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Runner owns a set of background goroutines under one base context.
// Tasks launched with Go keep running after their caller returns; Close
// cancels the base context and waits for all of them.
type Runner struct {
	log    *logrus.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRunner creates a runner rooted at the given context.
func NewRunner(parent context.Context, log *logrus.Logger) *Runner {
	ctx, cancel := context.WithCancel(parent)
	return &Runner{log: log, ctx: ctx, cancel: cancel}
}

// Go launches fn on its own goroutine. A non-nil return is logged with the
// task name and otherwise dropped: background tasks are best-effort by
// contract. After Close, Go is a no-op.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.WithField("task", name).Warn("runner closed, task dropped")
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		if err := fn(r.ctx); err != nil {
			r.log.WithField("task", name).WithError(err).Error("background task failed")
		}
	}()
}

// Close cancels in-flight tasks and waits for them to return. Idempotent.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// Wait blocks until every launched task has returned, without cancelling.
// Lets tests and shutdown paths drain naturally-finishing work.
func (r *Runner) Wait() {
	r.wg.Wait()
}
