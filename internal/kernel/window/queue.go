package window

import "fmt"

// DefaultQueueSize mirrors EVENT_QUEUE_SIZE.
const DefaultQueueSize = 20

var (
	ErrQueueFull  = fmt.Errorf("window: event queue full")
	ErrQueueEmpty = fmt.Errorf("window: event queue empty")
)

// Queue is a fixed-capacity ring buffer of Events, grounded on queue.rs's
// ArrayQueue<T, N>: put_idx/get_idx advance modulo the buffer length, and
// dequeueRan (whether a dequeue, not an enqueue, ran most recently) disambiguates the
// full-vs-empty case when the two indices coincide, since a plain
// index-equality check can't tell them apart on its own.
type Queue struct {
	buffer     []Event
	putIdx     int
	getIdx     int
	dequeueRan bool
}

// NewQueue builds an empty queue of the given capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{buffer: make([]Event, capacity), dequeueRan: true}
}

func (q *Queue) IsEmpty() bool {
	return q.putIdx == q.getIdx && q.dequeueRan
}

func (q *Queue) IsFull() bool {
	return q.putIdx == q.getIdx && !q.dequeueRan
}

// Enqueue mirrors ArrayQueue::enqueue, returning ErrQueueFull instead of
// the original's bool-false on a full buffer.
func (q *Queue) Enqueue(e Event) error {
	if q.IsFull() {
		return ErrQueueFull
	}
	q.buffer[q.putIdx] = e
	q.putIdx = (q.putIdx + 1) % len(q.buffer)
	q.dequeueRan = false
	return nil
}

// Dequeue mirrors ArrayQueue::dequeue.
func (q *Queue) Dequeue() (Event, error) {
	if q.IsEmpty() {
		return Event{}, ErrQueueEmpty
	}
	e := q.buffer[q.getIdx]
	q.getIdx = (q.getIdx + 1) % len(q.buffer)
	q.dequeueRan = true
	return e, nil
}

func (q *Queue) Len() int {
	if q.IsEmpty() {
		return 0
	}
	if q.putIdx > q.getIdx {
		return q.putIdx - q.getIdx
	}
	return len(q.buffer) - q.getIdx + q.putIdx
}

func (q *Queue) Cap() int { return len(q.buffer) }
