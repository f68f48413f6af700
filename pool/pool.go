// Package pool schedules request tasks onto a fixed number of concurrent
// slots. Submissions queue in FIFO order and are admitted as slots free up;
// completion order depends only on how long each task takes. The pool is the
// sole backpressure mechanism: queue depth is unbounded by design.
package pool

import (
	"context"
	"fmt"
	"sync"

	"github.com/wesleyorama2/fetchpool/fetch"
)

// DefaultConcurrency is used when New is given a non-positive limit.
const DefaultConcurrency = 4

// Factory is a deferred unit of work: invoking it starts one request task.
// Nothing runs until the pool admits the factory into a slot.
type Factory func() (*fetch.Task, error)

// Result pairs a completed response with the transport handle it ran on. On
// failure Response is nil; Handle is still set when a task was started, so a
// caller can inspect or reuse it.
type Result struct {
	Response *fetch.Response
	Handle   fetch.Handle
}

// Job is the completion token for one submission. It resolves exactly once,
// with the task's Result or with its error.
type Job struct {
	done   chan struct{}
	result Result
	err    error
}

// Done is closed once the job has resolved.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the outcome. It must only be called after Done is closed.
func (j *Job) Result() (Result, error) {
	return j.result, j.err
}

// Wait blocks until the job resolves or ctx is cancelled. Cancelling ctx
// gives up on the wait; it does not pull the job out of the queue.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-j.done:
		return j.result, j.err
	}
}

type entry struct {
	factory Factory
	job     *Job
}

// Pool runs request factories with a fixed number of concurrency slots.
type Pool struct {
	mu     sync.Mutex
	limit  int
	active int
	queue  []*entry
}

// New creates a pool that runs at most limit tasks concurrently. A
// non-positive limit selects DefaultConcurrency.
func New(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Pool{limit: limit}
}

// Enqueue appends a factory to the queue and returns its Job. When a slot is
// free the factory is invoked right away, on the caller's goroutine; a full
// pool leaves it queued until a running task finishes. A factory error or
// panic rejects only this submission and never affects sibling jobs.
func (p *Pool) Enqueue(factory Factory) *Job {
	job := &Job{done: make(chan struct{})}
	p.mu.Lock()
	p.queue = append(p.queue, &entry{factory: factory, job: job})
	p.mu.Unlock()
	p.dispatch()
	return job
}

// Limit returns the configured concurrency limit.
func (p *Pool) Limit() int {
	return p.limit
}

// Active returns the number of occupied slots.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Queued returns the number of submissions still waiting for a slot.
func (p *Pool) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// dispatch admits queued entries while slots are free, invoking each factory
// in submission order. It returns as soon as the pool is saturated or the
// queue is empty.
func (p *Pool) dispatch() {
	for {
		p.mu.Lock()
		if p.active >= p.limit || len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		next := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()

		task, err := start(next.factory)
		if err != nil {
			// The slot frees immediately; the loop re-checks and keeps
			// admitting, so one bad factory never stalls the queue.
			p.finish(next.job, Result{}, err)
			continue
		}
		go p.await(next.job, task)
	}
}

// await parks on one running task, forwards its outcome and re-runs dispatch
// so the freed slot is handed to the next queued submission.
func (p *Pool) await(job *Job, task *fetch.Task) {
	<-task.Done()
	resp, err := task.Result()
	p.finish(job, Result{Response: resp, Handle: task.Handle()}, err)
	p.dispatch()
}

// finish releases the slot, then resolves the job. The slot is free by the
// time a waiter observes the outcome.
func (p *Pool) finish(job *Job, result Result, err error) {
	p.mu.Lock()
	p.active--
	p.mu.Unlock()

	job.result = result
	job.err = err
	close(job.done)
}

// start invokes a factory, converting a panic into a rejection.
func start(factory Factory) (task *fetch.Task, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pool: task factory panicked: %v", r)
		}
	}()
	return factory()
}
