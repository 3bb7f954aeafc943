package session

import (
	"context"
	"log"
	"sync"

	"github.com/pickuppal/pickuppal/internal/domain"
	"github.com/pickuppal/pickuppal/internal/infra/observability"
)

// Queue runs submitted operations one at a time, in submission order, on a
// single owner goroutine.
//
// Lifecycle of one operation:
//  1. Do enqueues it (or gives up if ctx is done first)
//  2. The owner dequeues it; if ctx was cancelled meanwhile it is skipped
//  3. Otherwise it runs to completion, even if the caller stops caring
//
// So a cancelled call either never touched state or fully committed.
type Queue struct {
	mu     sync.RWMutex
	tasks  chan *task
	closed bool
	wg     sync.WaitGroup

	statsMu   sync.Mutex
	processed int64
	skipped   int64
}

type task struct {
	ctx  context.Context
	fn   func() error
	err  error
	done chan struct{}
}

// NewQueue starts the owner goroutine. size bounds pending operations.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	q := &Queue{tasks: make(chan *task, size)}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for t := range q.tasks {
		observability.QueueDepth.Dec()
		if err := t.ctx.Err(); err != nil {
			t.err = err
			q.count(false)
			close(t.done)
			continue
		}
		t.err = q.exec(t.fn)
		q.count(true)
		close(t.done)
	}
}

// exec runs fn, turning a panic into an error so the owner keeps serving.
func (q *Queue) exec(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[session] operation panicked: %v", r)
			err = errPanicked
		}
	}()
	return fn()
}

func (q *Queue) count(ran bool) {
	q.statsMu.Lock()
	if ran {
		q.processed++
	} else {
		q.skipped++
	}
	q.statsMu.Unlock()
}

// Do submits fn and waits for it. It returns ctx.Err() if the operation was
// abandoned before it started, otherwise fn's error.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	t := &task{ctx: ctx, fn: fn, done: make(chan struct{})}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return domain.ErrQueueClosed
	}
	// Counted before the send: the owner may dequeue and Dec immediately.
	observability.QueueDepth.Inc()
	select {
	case q.tasks <- t:
	case <-ctx.Done():
		observability.QueueDepth.Dec()
		q.mu.RUnlock()
		return ctx.Err()
	}
	q.mu.RUnlock()

	// Once enqueued the owner always closes done, so wait unconditionally.
	<-t.done
	return t.err
}

// Close stops accepting work, finishes what is queued and stops the owner.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()
	q.wg.Wait()
}

// QueueStats returns queue statistics.
type QueueStats struct {
	Processed int64 `json:"processed"`
	Skipped   int64 `json:"skipped"`
	Pending   int   `json:"pending"`
}

// Stats returns current queue statistics.
func (q *Queue) Stats() QueueStats {
	q.statsMu.Lock()
	defer q.statsMu.Unlock()
	return QueueStats{
		Processed: q.processed,
		Skipped:   q.skipped,
		Pending:   len(q.tasks),
	}
}
