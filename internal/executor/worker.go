package executor

import (
	"context"
	"errors"
	"sync"
)

// ErrWorkerStopped is returned by Worker.Do after the worker has stopped.
var ErrWorkerStopped = errors.New("executor worker stopped")

// task is one unit of work for the worker goroutine.
type task struct {
	fn   func()
	done chan struct{}
}

// taskQueue is an unbounded FIFO with a coalescing signal channel, so the
// run loop can wait on it alongside ctx.Done().
type taskQueue struct {
	mu     sync.Mutex
	tasks  []task
	closed bool
	signal chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{
		tasks:  make([]task, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// enqueue appends t. Returns false if the queue is closed.
func (q *taskQueue) enqueue(t task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, t)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue pops the front task without blocking.
func (q *taskQueue) tryDequeue() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return task{}, false
	}
	t := q.tasks[0]
	q.tasks[0] = task{}
	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}
	return t, true
}

func (q *taskQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.tasks) == 0
}

func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}

// Worker runs calls on one dedicated goroutine, detached from the caller's
// goroutine. Used to execute the live backend off-context.
//
// Panics raised by a task are not recovered and terminate the process.
type Worker struct {
	queue   *taskQueue
	stopped chan struct{}
}

// StartWorker starts a worker that runs until ctx is done or Close is called.
func StartWorker(ctx context.Context) *Worker {
	w := &Worker{queue: newTaskQueue(), stopped: make(chan struct{})}
	go w.run(ctx)
	return w
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stopped)
	defer w.queue.close()

	for {
		if t, ok := w.queue.tryDequeue(); ok {
			t.fn()
			close(t.done)
			continue
		}
		if w.queue.drained() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-w.queue.signal:
		}
	}
}

// Do runs fn on the worker goroutine and waits for it to finish.
// Returns ErrWorkerStopped if the worker stops before fn runs.
func (w *Worker) Do(fn func()) error {
	t := task{fn: fn, done: make(chan struct{})}
	if !w.queue.enqueue(t) {
		return ErrWorkerStopped
	}
	select {
	case <-t.done:
		return nil
	case <-w.stopped:
		select {
		case <-t.done:
			return nil
		default:
			return ErrWorkerStopped
		}
	}
}

// Close stops accepting work, finishes queued tasks and waits for the
// worker goroutine to exit.
func (w *Worker) Close() {
	w.queue.close()
	<-w.stopped
}
