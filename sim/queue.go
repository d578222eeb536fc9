// sim/queue.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/rand"
)

const commandQueueLength = 256

// CommandQueue runs jobs one at a time in the order they were submitted.
// Each job waits for a random delay first, as a pilot would before
// responding to an instruction.
type CommandQueue struct {
	jobs chan func(context.Context)
	done chan struct{}

	// Only called from Run.
	delay func() time.Duration

	lg *log.Logger
}

func NewCommandQueue(minDelay, maxDelay time.Duration, lg *log.Logger) *CommandQueue {
	r := rand.New()
	return &CommandQueue{
		jobs:  make(chan func(context.Context), commandQueueLength),
		done:  make(chan struct{}),
		delay: func() time.Duration { return r.Duration(minDelay, maxDelay) },
		lg:    lg,
	}
}

// Submit adds a job to the queue. It blocks if the queue is full.
func (q *CommandQueue) Submit(ctx context.Context, job func(context.Context)) error {
	select {
	case <-q.done:
		return ErrCommandQueueStopped
	default:
	}

	select {
	case q.jobs <- job:
		return nil
	case <-q.done:
		return ErrCommandQueueStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run runs the queued jobs until ctx is cancelled; jobs that haven't
// been run by then are dropped.
func (q *CommandQueue) Run(ctx context.Context) error {
	defer close(q.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case job := <-q.jobs:
			d := q.delay()
			t := time.NewTimer(d)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
			q.lg.Debug("running command", slog.Duration("delay", d), slog.Int("queued", len(q.jobs)))
			q.run(ctx, job)
		}
	}
}

func (q *CommandQueue) run(ctx context.Context, job func(context.Context)) {
	defer q.lg.CatchAndReportCrash()
	job(ctx)
}
