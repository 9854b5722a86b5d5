// Package worker provides a bounded pool for running expensive work off the
// request goroutine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrShutdown is returned by Do once Shutdown was called.
var ErrShutdown = errors.New("shutdown signal received")

// Job is the unit of work the pool executes.
type Job func(ctx context.Context) error

// Pool limits how many jobs run at any given time.
type Pool struct {
	wg           sync.WaitGroup
	mu           sync.RWMutex
	semaphore    chan struct{}
	shutdown     chan struct{}
	shutdownOnce sync.Once
	running      map[string]context.CancelFunc
}

// New creates a pool that runs at most maxRunning jobs concurrently.
func New(maxRunning int) (*Pool, error) {
	if maxRunning <= 0 {
		return nil, errors.New("max running jobs must be greater than 0")
	}

	semaphore := make(chan struct{}, maxRunning)

	//fill it
	for range maxRunning {
		semaphore <- struct{}{}
	}

	p := Pool{
		semaphore: semaphore,
		shutdown:  make(chan struct{}),
		running:   make(map[string]context.CancelFunc),
	}
	return &p, nil
}

// Running returns the number of running jobs.
func (p *Pool) Running() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.running)
}

// Do waits for a free slot and runs job, returning its error. When ctx ends
// first Do returns ctx.Err() and the job, if it already started, finishes in
// the background holding its slot.
func (p *Pool) Do(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-p.shutdown:
		return ErrShutdown
	default:
	}

	//block here waiting for a slot, or ctx timeout or shutdown even before start.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.shutdown:
		return ErrShutdown
	case <-p.semaphore:
	}

	jobId := uuid.NewString()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(time.Minute)
	}

	//the job is controlled by the pool, not by the caller.
	jobCtx, cancel := context.WithDeadline(context.Background(), deadline)

	func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.running[jobId] = cancel
	}()

	done := make(chan error, 1)

	p.wg.Add(1)
	go func() {
		//separate defer for this, a panicking job must still free its slot
		defer func() {
			p.semaphore <- struct{}{}
		}()

		defer func() {
			cancel()

			func() {
				p.mu.Lock()
				defer p.mu.Unlock()
				delete(p.running, jobId)
			}()

			p.wg.Done()
		}()

		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("job panic: %v", r)
			}
		}()

		done <- job(jobCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs, cancels running ones and waits for them to
// return.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		close(p.shutdown)
	})

	func() {
		p.mu.RLock()
		defer p.mu.RUnlock()
		for _, cancel := range p.running {
			cancel()
		}
	}()

	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		//not enough time for clean shutdown
		return ctx.Err()
	}
}
