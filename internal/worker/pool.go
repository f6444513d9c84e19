// Package worker runs contract analyses concurrently.
package worker

import (
	"context"
	"sort"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

type queued struct {
	seq int
	job Job
}

// Pool manages a pool of workers that execute jobs concurrently
type Pool struct {
	workers    int
	jobQueue   chan queued
	collector  *ResultCollector
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu        sync.Mutex
	submitted int
	closed    bool
}

// NewPool creates a worker pool bound to ctx; cancelling ctx stops it
// like Shutdown
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queued, workers*2),
		collector:  NewResultCollector(),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.collector.add(q.seq, q.job.Execute(p.ctx))
		}
	}
}

// Submit queues a job. It returns false once the pool is shut down or
// waited on.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.ctx.Err() != nil {
		return false
	}
	seq := p.submitted

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- queued{seq: seq, job: job}:
		p.submitted++
		return true
	}
}

// Wait stops accepting jobs, waits for the queued ones and returns their
// results in submission order
func (p *Pool) Wait() []Result {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobQueue)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.cancelFunc()
	return p.collector.Results()
}

// Shutdown stops the pool; queued jobs that have not started are dropped
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
}

type sequenced struct {
	seq    int
	result Result
}

// ResultCollector gathers results from many goroutines
type ResultCollector struct {
	results []sequenced
	mu      sync.Mutex
}

// NewResultCollector creates a new result collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make([]sequenced, 0),
	}
}

func (c *ResultCollector) add(seq int, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, sequenced{seq: seq, result: result})
}

// Results returns all collected results ordered by sequence
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	sorted := make([]sequenced, len(c.results))
	copy(sorted, c.results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].seq < sorted[j].seq })

	out := make([]Result, len(sorted))
	for i, s := range sorted {
		out[i] = s.result
	}
	return out
}
