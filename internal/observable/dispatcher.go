package observable

import (
	"log/slog"
	"sync"
)

// Dispatcher is an Executor that runs work in submission order on one goroutine.
// Execute never blocks, so listeners running on the dispatcher may post again.
type Dispatcher struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher; queueSize is the initial queue capacity
func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &Dispatcher{
		queue: make([]func(), 0, queueSize),
		done:  make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

// Execute queues fn. Work submitted after Close is dropped.
func (d *Dispatcher) Execute(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		slog.Warn("Dispatcher closed, dropping notification")
		return
	}
	d.queue = append(d.queue, fn)
	d.cond.Signal()
}

// Close stops accepting work and waits for queued work to finish
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.cond.Signal()
	}
	d.mu.Unlock()
	<-d.done
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.safeRun(fn)
	}
}

func (d *Dispatcher) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Listener panicked", "panic", r)
		}
	}()
	fn()
}
