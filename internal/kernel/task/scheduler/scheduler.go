// Package scheduler implements the per-CPU scheduling policies of spec.md
// §5: a priority round-robin scheduler (four priority buckets, a two-pass
// sweep, a fixed quantum) and a plain round-robin fallback, both satisfying
// a common Policy interface so bring-up can select one per spec.md's
// Design Notes.
//
// Grounded on original_source/kernel/src/task/scheduler/{mod.rs,prr.rs,
// rr.rs}: the Schedulable trait becomes Policy, and ListQueue<Task> (an
// intrusive doubly-linked list threaded through Task itself) becomes a
// plain slice-backed FIFO, since Go TCBs are not threaded with raw
// sibling-in-queue pointers the way the original's NonNull<Task> list is.
package scheduler

import (
	"fmt"

	"github.com/sonhs99/redos-go/internal/kernel/task"
	"github.com/sonhs99/redos-go/internal/kernel/task/manager"
	"github.com/sonhs99/redos-go/internal/timeslice"
)

// ErrNotFound mirrors manager.ErrNotFound for callers that only depend on
// this package.
var ErrNotFound = fmt.Errorf("scheduler: task not found")

// Policy is the scheduling strategy contract every CPU's run queue
// implements, mirroring scheduler/mod.rs's Schedulable trait.
type Policy interface {
	RunningTask() (*task.TCB, bool)
	SetRunningTask(t *task.TCB)

	NextTask() (*task.TCB, bool)
	PushTask(t *task.TCB)

	Tick()
	ResetTick()
	Expired() bool

	PushWait(t *task.TCB)
	NextWait() (*task.TCB, bool)

	RemoveTask(t *task.TCB) error
	ChangePriority(mgr *manager.Manager, id task.ID, priority uint8) error

	LastFPUUsed() (task.ID, bool)
	SetFPUUsed(id task.ID)
}

// readyQueue is a plain FIFO over *task.TCB, standing in for ListQueue<Task>.
type readyQueue struct {
	items []*task.TCB
}

func (q *readyQueue) push(t *task.TCB) { q.items = append(q.items, t) }

func (q *readyQueue) pop() (*task.TCB, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

func (q *readyQueue) length() int { return len(q.items) }

func (q *readyQueue) remove(t *task.TCB) bool {
	for i, item := range q.items {
		if item == t {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Dispatch picks the next runnable task from p, retires the currently
// running one back onto the ready queue, and runs the low-level
// ContextSwitch between the two — the orchestration a timer-tick
// interrupt handler performs once a policy decides a switch is due.
// The elapsed time of the task being retired is recorded under
// timeslice.TimesliceContextSwitch so a replayed trace shows how much
// wall-clock each task actually held the CPU.
func Dispatch(p Policy, recorder *timeslice.Recorder) (prev, next *task.TCB, ok bool) {
	next, ok = p.NextTask()
	if !ok {
		return nil, nil, false
	}

	prev, _ = p.RunningTask()
	if prev != nil {
		p.PushTask(prev)
		if recorder != nil {
			recorder.Record(timeslice.TimesliceContextSwitch)
		}
		task.ContextSwitch(&prev.Context, &next.Context, nil, nil)
	}

	p.SetRunningTask(next)
	p.ResetTick()
	return prev, next, true
}
