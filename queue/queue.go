// Package queue provides the cooperative scheduler used for deferred
// callbacks.
package queue

// TaskID identifies a scheduled task. The zero TaskID is never issued.
type TaskID uint64

// Scheduler runs callbacks at the next quiescent point of the host loop.
type Scheduler interface {
	// Schedule queues fn to run once.
	Schedule(fn func()) TaskID
	// Cancel removes a queued task. It reports false if the task already
	// ran or was never queued.
	Cancel(id TaskID) bool
}

// Compile time check to ensure Idle satisfies the Scheduler interface.
var _ Scheduler = (*Idle)(nil)

type task struct {
	id TaskID
	fn func()
}

// Idle is a FIFO scheduler drained explicitly by the host.
type Idle struct {
	tasks   []task
	pending map[TaskID]struct{}
	nextID  TaskID
}

// NewIdle creates an empty Idle scheduler.
func NewIdle() *Idle {
	return &Idle{pending: make(map[TaskID]struct{})}
}

// Schedule appends fn to the queue.
func (q *Idle) Schedule(fn func()) TaskID {
	q.nextID++
	q.tasks = append(q.tasks, task{id: q.nextID, fn: fn})
	q.pending[q.nextID] = struct{}{}
	return q.nextID
}

// Cancel removes a pending task.
func (q *Idle) Cancel(id TaskID) bool {
	if _, ok := q.pending[id]; !ok {
		return false
	}
	delete(q.pending, id)
	return true
}

// Len returns the number of pending tasks.
func (q *Idle) Len() int { return len(q.pending) }

// Drain runs every task queued before the call, in order, and returns the
// number of tasks run. Tasks scheduled by a running task wait for the next
// Drain.
func (q *Idle) Drain() int {
	batch := q.tasks
	q.tasks = nil
	ran := 0
	for _, t := range batch {
		if _, ok := q.pending[t.id]; !ok {
			continue // cancelled
		}
		delete(q.pending, t.id)
		t.fn()
		ran++
	}
	return ran
}
