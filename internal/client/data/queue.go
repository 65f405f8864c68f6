package data

import (
	"context"
	"sync"
	"time"
)

const propagationTimeout = 10 * time.Second

// propagator runs backend propagation work in the background with at most
// one request in flight per record. An op enqueued while its record's
// worker is busy replaces any previously waiting op, so a burst of
// mutations on one record collapses into a single follow-up request. Ops
// for different records run independently.
type propagator struct {
	mu     sync.Mutex
	queues map[string]*recordQueue
	wg     sync.WaitGroup
}

type recordQueue struct {
	busy bool
	next func(context.Context)
}

func newPropagator() *propagator {
	return &propagator{queues: make(map[string]*recordQueue)}
}

// Enqueue schedules op for the record identified by key.
func (p *propagator) Enqueue(key string, op func(context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	q := p.queues[key]
	if q == nil {
		q = &recordQueue{}
		p.queues[key] = q
	}
	if q.busy {
		q.next = op
		return
	}
	q.busy = true
	p.wg.Add(1)
	go p.run(q, op)
}

func (p *propagator) run(q *recordQueue, op func(context.Context)) {
	defer p.wg.Done()
	for {
		ctx, cancel := context.WithTimeout(context.Background(), propagationTimeout)
		op(ctx)
		cancel()

		p.mu.Lock()
		if q.next != nil {
			op, q.next = q.next, nil
			p.mu.Unlock()
			continue
		}
		q.busy = false
		p.mu.Unlock()
		return
	}
}

// Flush blocks until all in-flight and queued ops finish, or ctx expires.
func (p *propagator) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
