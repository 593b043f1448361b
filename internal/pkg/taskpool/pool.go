package taskpool

import (
	"log/slog"
	"sync"
)

// Pool is a bounded worker pool for blocking collaborator calls (enrichment
// lookups, webhook posts) triggered from request handlers. Submission never
// blocks the caller: when the queue is saturated the task is dropped with a
// warning, preserving the "never slow down the HTTP response" contract
// without unbounded goroutine creation.
type Pool struct {
	log   *slog.Logger
	tasks chan func()

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// New starts a pool with the given number of workers and queue capacity.
func New(log *slog.Logger, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	p := &Pool{
		log:   log,
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", "panic", r)
		}
	}()
	task()
}

// TrySubmit enqueues a task without blocking. Returns false when the pool is
// saturated or stopped; the task is then dropped.
func (p *Pool) TrySubmit(name string, task func()) bool {
	select {
	case <-p.done:
		p.log.Warn("task dropped, pool stopped", "task", name)
		return false
	default:
	}

	select {
	case p.tasks <- task:
		return true
	default:
		p.log.Warn("task dropped, pool saturated", "task", name)
		return false
	}
}

// Stop signals the workers to exit and waits for in-flight tasks to finish.
// Queued but unstarted tasks are discarded.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}
