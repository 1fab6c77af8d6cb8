package workers

import (
	"context"
	"log/slog"

	"social-chat/contract"
)

// Ensure *ActionWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*ActionWorker)(nil)

// ActionWorker is one unit of the pool draining the action queue.
// Each job runs inside the handler's own failure boundary, so a failing action
// never stops the worker.
type ActionWorker struct {
	jobs    <-chan contract.Job
	handler contract.IActionHandler
	log     *slog.Logger
}

func NewActionWorker(jobs <-chan contract.Job, handler contract.IActionHandler, log *slog.Logger) *ActionWorker {
	return &ActionWorker{jobs: jobs, handler: handler, log: log}
}

// NewActionPool builds count workers sharing the same queue.
func NewActionPool(count int, jobs <-chan contract.Job, handler contract.IActionHandler, log *slog.Logger) []contract.Worker {
	pool := make([]contract.Worker, 0, count)
	for i := 0; i < count; i++ {
		pool = append(pool, NewActionWorker(jobs, handler, log.With("worker", i)))
	}
	return pool
}

func (w *ActionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case job, ok := <-w.jobs:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.handler.Handle(ctx, job)
		}
	}
}
