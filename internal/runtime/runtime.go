package runtime

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Runtime is the event-driven domain: a single consumer goroutine draining a
// bounded FIFO task queue. Discord session operations are only valid on this
// loop, so request handlers hand work across with Submit and never wait for
// completion.
//
// Concurrency guarantees:
//   - Submit is safe from any goroutine and never blocks.
//   - Tasks execute in submission order, one at a time.
//   - A panicking task is logged and does not take down the loop.
type Runtime struct {
	log   *slog.Logger
	tasks chan task
	ready atomic.Bool

	stopOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

type task struct {
	name string
	fn   func()
}

// New constructs a Runtime with a bounded task queue. Run must be called for
// tasks to execute.
func New(log *slog.Logger, queueSize int) *Runtime {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Runtime{
		log:     log,
		tasks:   make(chan task, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Run is the consumer loop. It returns after Stop, once queued tasks have
// drained.
func (r *Runtime) Run() {
	defer close(r.stopped)
	for {
		select {
		case t := <-r.tasks:
			r.exec(t)
		case <-r.done:
			// Drain what was accepted before shutdown.
			for {
				select {
				case t := <-r.tasks:
					r.exec(t)
				default:
					return
				}
			}
		}
	}
}

func (r *Runtime) exec(t task) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("scheduled task panicked", "task", t.name, "panic", rec)
		}
	}()
	t.fn()
}

// SetReady flips the readiness signal. Work submitted while not ready is
// dropped rather than queued indefinitely; there is no durable queue.
func (r *Runtime) SetReady(ready bool) {
	r.ready.Store(ready)
}

// Ready reports whether the event domain is accepting work.
func (r *Runtime) Ready() bool {
	return r.ready.Load()
}

// Submit enqueues fn onto the loop without blocking. Returns false, with a
// logged warning, when the runtime is not ready, stopped, or the queue is
// full; the work is then lost by design.
func (r *Runtime) Submit(name string, fn func()) bool {
	if !r.ready.Load() {
		r.log.Warn("task dropped, runtime not ready", "task", name)
		return false
	}
	select {
	case <-r.done:
		r.log.Warn("task dropped, runtime stopped", "task", name)
		return false
	default:
	}

	select {
	case r.tasks <- task{name: name, fn: fn}:
		return true
	default:
		r.log.Warn("task dropped, queue full", "task", name)
		return false
	}
}

// Stop marks the runtime unready, stops the loop and waits for accepted
// tasks to finish. Idempotent.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() {
		r.ready.Store(false)
		close(r.done)
	})
	<-r.stopped
}
