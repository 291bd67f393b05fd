package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when the job buffer cannot accept another job.
var ErrQueueFull = errors.New("the parse queue is full, try again later")

const queueBuffer = 256

// Queue feeds parse jobs to a fixed pool of workers. Jobs are durable
// rows, the channel only carries their IDs, so a full restart loses
// nothing but the in-flight run.
type Queue struct {
	jobs    chan uuid.UUID
	workers int
	runner  *Runner

	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewQueue(runner *Runner, workers int) *Queue {
	if workers < 1 {
		workers = 1
	}

	return &Queue{
		jobs:    make(chan uuid.UUID, queueBuffer),
		workers: workers,
		runner:  runner,
	}
}

// Start launches the worker pool. Workers exit when the context is
// cancelled or the queue is stopped.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)

		go func(worker int) {
			defer q.wg.Done()

			for {
				select {
				case <-ctx.Done():
					return
				case jobID, ok := <-q.jobs:
					if !ok {
						return
					}

					queueDepth.Dec()
					log.Debug().Int("worker", worker).Str("job", jobID.String()).Msg("picked up parse job")
					q.runner.Run(ctx, jobID)
				}
			}
		}(i)
	}
}

// Enqueue hands a job to the pool without blocking the request path.
func (q *Queue) Enqueue(jobID uuid.UUID) error {
	select {
	case q.jobs <- jobID:
		queueDepth.Inc()
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to drain.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}
