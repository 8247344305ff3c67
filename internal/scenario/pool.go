package scenario

import (
	"log/slog"
	"sync"
)

// Task is a unit of work executed by the pool.
type Task func(workerID int) error

// WorkerPool runs tasks on a bounded set of workers. Wait is the barrier
// between submitting the last task and acting on the results: it returns
// only after every submitted task has finished.
type WorkerPool struct {
	NumWorkers int
	tasks      chan Task

	wg     sync.WaitGroup // workers
	taskWG sync.WaitGroup // tasks

	mu       sync.Mutex
	firstErr error
}

// NewWorkerPool creates a pool with the given number of workers. The task
// channel is buffered so submitting never deadlocks against slow workers.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	bufferSize := numWorkers * 10
	if bufferSize < 100 {
		bufferSize = 100
	}
	return &WorkerPool{
		NumWorkers: numWorkers,
		tasks:      make(chan Task, bufferSize),
	}
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	for i := 0; i < p.NumWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := task(id); err != nil {
			slog.Debug("pool task failed", "worker", id, "error", err)
			p.mu.Lock()
			if p.firstErr == nil {
				p.firstErr = err
			}
			p.mu.Unlock()
		}
		p.taskWG.Done()
	}
}

// Submit adds a task to the pool.
func (p *WorkerPool) Submit(t Task) {
	p.taskWG.Add(1)
	p.tasks <- t
}

// Wait blocks until all submitted tasks have completed.
func (p *WorkerPool) Wait() {
	p.taskWG.Wait()
}

// Stop closes the task channel and waits for the workers to exit.
func (p *WorkerPool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}

// FirstErr returns the first task error observed, if any.
func (p *WorkerPool) FirstErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstErr
}
