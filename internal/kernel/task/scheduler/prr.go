package scheduler

import (
	"github.com/sonhs99/redos-go/internal/kernel/task"
	"github.com/sonhs99/redos-go/internal/kernel/task/manager"
)

// Quantum is the number of timer ticks a task runs before its slice
// expires, spec.md §5's "4-tick quantum".
const Quantum = 0x4

// NumPriority is the scheduler's bucket count, spec.md §5's "4 priority
// buckets".
const NumPriority = 4

// prioritySize is how many of the 256 raw priority values fall into one
// bucket: 256 / 4 = 64.
const prioritySize = 256 / NumPriority

// PriorityRoundRobin implements spec.md §5's default policy: tasks are
// bucketed into NumPriority queues by priority/prioritySize, and NextTask
// sweeps the buckets twice so that a bucket which was at its per-round
// execute limit on pass one gets a second chance on pass two before the
// scheduler reports no runnable task.
//
// Grounded on scheduler/prr.rs's PriorityRoundRobinScheduler.
type PriorityRoundRobin struct {
	running *task.TCB
	queues  [NumPriority]readyQueue
	wait    readyQueue
	execute [NumPriority]int

	processCount uint64
	lastFPU      task.ID
	haveLastFPU  bool
}

// NewPriorityRoundRobin builds a fresh scheduler with an empty set of
// queues and a full quantum.
func NewPriorityRoundRobin() *PriorityRoundRobin {
	return &PriorityRoundRobin{processCount: Quantum}
}

func priorityBucket(p uint8) int { return int(p) / prioritySize }

func (s *PriorityRoundRobin) RunningTask() (*task.TCB, bool) { return s.running, s.running != nil }

func (s *PriorityRoundRobin) SetRunningTask(t *task.TCB) { s.running = t }

// NextTask is the two-pass sweep of spec.md §5: buckets are visited in
// priority order, and a bucket yields its head task while
// execute[priority] (the tasks it has yielded this round) is below its
// current queue length. A bucket whose count has reached its length has
// that count reset to 0 and the sweep moves to the next bucket; the second
// pass gives every bucket reset on the first pass another chance.
func (s *PriorityRoundRobin) NextTask() (*task.TCB, bool) {
	for pass := 0; pass < 2; pass++ {
		for priority := 0; priority < NumPriority; priority++ {
			if s.execute[priority] < s.queues[priority].length() {
				s.execute[priority]++
				return s.queues[priority].pop()
			}
			s.execute[priority] = 0
		}
	}
	return nil, false
}

func (s *PriorityRoundRobin) PushTask(t *task.TCB) {
	s.queues[priorityBucket(t.Flags.Priority())].push(t)
}

func (s *PriorityRoundRobin) Tick() {
	if s.processCount != 0 {
		s.processCount--
	}
}

func (s *PriorityRoundRobin) ResetTick() { s.processCount = Quantum }

func (s *PriorityRoundRobin) Expired() bool { return s.processCount == 0 }

func (s *PriorityRoundRobin) PushWait(t *task.TCB) { s.wait.push(t) }

func (s *PriorityRoundRobin) NextWait() (*task.TCB, bool) { return s.wait.pop() }

func (s *PriorityRoundRobin) RemoveTask(t *task.TCB) error {
	if !s.queues[priorityBucket(t.Flags.Priority())].remove(t) {
		return ErrNotFound
	}
	return nil
}

// ChangePriority moves a task to a new priority bucket. If the task is not
// the one currently running, it is pulled out of its current bucket first
// (by its old priority) so PushTask re-buckets it correctly next time it is
// made runnable; a currently-running task is not queued anywhere, so there
// is nothing to remove.
func (s *PriorityRoundRobin) ChangePriority(mgr *manager.Manager, id task.ID, priority uint8) error {
	t, ok := mgr.Get(id)
	if !ok {
		return ErrNotFound
	}
	if s.running == nil || s.running.ID != id {
		_ = s.RemoveTask(t)
	}
	t.Flags = t.Flags.WithPriority(priority)
	return nil
}

func (s *PriorityRoundRobin) LastFPUUsed() (task.ID, bool) { return s.lastFPU, s.haveLastFPU }

func (s *PriorityRoundRobin) SetFPUUsed(id task.ID) {
	s.lastFPU = id
	s.haveLastFPU = true
}
