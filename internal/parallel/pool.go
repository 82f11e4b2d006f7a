// Package parallel resolves buffer sources on a pool of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines with one queue each.
//
// Tasks are handed out round-robin; a worker whose queue runs dry steals from
// the others, so a few slow resolves do not leave the rest of the pool idle.
//
// Pool is safe for concurrent use. Tasks must not call Run or Submit on the
// pool that runs them.
type Pool struct {
	workers int
	queues  []chan func()

	// mu is held for reading while tasks are queued and for writing while
	// the pool shuts down, so no task is queued after the workers stop.
	mu      sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool starts a pool with the given number of workers. A count below 1
// means GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)
	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.work(i)
	}
	return p
}

func (p *Pool) work(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			run(task)
			continue
		default:
		}

		if task := p.steal(id); task != nil {
			task()
			continue
		}

		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			run(task)
		}
	}
}

func run(task func()) {
	if task != nil {
		task()
	}
}

func drain(queue chan func()) {
	for {
		select {
		case task := <-queue:
			run(task)
		default:
			return
		}
	}
}

// steal takes one task from any other worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := range p.queues {
		if i == id {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Run executes every task and returns when all have finished. It is a no-op
// on a closed pool. Run may overlap with Close: either every task runs or
// none does.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 {
		return
	}

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			task()
		}
	}
	p.mu.RUnlock()

	wg.Wait()
}

// Submit queues one task on the shortest queue without waiting for it.
func (p *Pool) Submit(task func()) {
	if task == nil {
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() {
		return
	}
	best := 0
	for i := 1; i < p.workers; i++ {
		if len(p.queues[i]) < len(p.queues[best]) {
			best = i
		}
	}
	p.queues[best] <- task
}

// Close stops accepting work, lets queued tasks finish and stops the
// workers. It waits for Run and Submit calls that are still queueing. It
// may be called more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

// Pending returns an approximate count of queued tasks.
func (p *Pool) Pending() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}
