package commitproc

import (
	"sync"

	"github.com/raftzoo/zoocore/pkg/metrics"
	"github.com/raftzoo/zoocore/pkg/request"
)

// inputQueue is the bounded, multi-producer FIFO backing input_queue
// (spec.md §4.6/§5). Pushing while the queue is at its bound blocks the
// caller until space frees up or the queue is closed; close makes every
// blocked and future push return false immediately, which is what lets
// Enqueue "silently drop" once the processor is shutting down instead of
// blocking forever.
type inputQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []request.Request
	bound  int
	closed bool
}

func newInputQueue(bound int) *inputQueue {
	q := &inputQueue{bound: bound}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push blocks until there is room or the queue closes. It reports
// whether req was actually enqueued, and broadcasts so both a blocked
// producer (waiting for space) and the worker (waiting for work) wake.
func (q *inputQueue) push(req request.Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) >= q.bound && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return false
	}
	q.items = append(q.items, req)
	metrics.InputQueueDepth.Set(float64(len(q.items)))
	q.cond.Broadcast()
	return true
}

// drain removes and returns every item currently queued. The size is
// fixed at entry so a steady stream of new arrivals during the call
// can't grow the batch the worker processes this iteration.
func (q *inputQueue) drain() []request.Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	metrics.InputQueueDepth.Set(0)
	q.cond.Broadcast()
	return out
}

func (q *inputQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *inputQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
