// Package tasks runs fire-and-forget background work, such as dictionary loads
// and imports, on a fixed set of goroutines.
package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Job is a unit of work submitted to a Pool. Its error is logged and otherwise
// discarded; jobs report results through their own channels.
type Job func(ctx context.Context) error

// Pool runs jobs using a fixed number of goroutines.
type Pool struct {
	jobs      chan Job
	quit      chan struct{}
	wg        sync.WaitGroup
	workers   int
	closeOnce sync.Once
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"task pool closed"}

// PoolError is the error type returned by pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }

// NewPool creates a pool with the given number of workers and queue capacity.
func NewPool(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &Pool{
		jobs:    make(chan Job, queue),
		quit:    make(chan struct{}),
		workers: workers,
	}
}

// Start launches the workers. They run until ctx is done or Close is called;
// on Close, jobs already queued are run before the workers exit.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-p.jobs:
					p.run(ctx, job)
				case <-p.quit:
					p.drain(ctx)
					return
				}
			}
		}()
	}
}

func (p *Pool) drain(ctx context.Context) {
	for {
		select {
		case job := <-p.jobs:
			p.run(ctx, job)
		default:
			return
		}
	}
}

func (p *Pool) run(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Task panicked: %v", r)
		}
	}()
	if err := job(ctx); err != nil {
		log.Debugf("Task failed: %v", err)
	}
}

// Submit queues a job, blocking while the queue is full. It returns
// ErrPoolClosed once Close has been called, including for callers blocked on
// a full queue.
func (p *Pool) Submit(job Job) error {
	select {
	case <-p.quit:
		return ErrPoolClosed
	default:
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	}
}

// Close stops accepting jobs and waits for the workers to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.quit) })
	p.wg.Wait()
}
