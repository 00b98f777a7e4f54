package scheduler

import (
	"github.com/sonhs99/redos-go/internal/kernel/task"
	"github.com/sonhs99/redos-go/internal/kernel/task/manager"
)

// rrQuantum matches rr.rs's shorter PROCESSTIME_COUNT (2 ticks): the plain
// round robin policy does not reward priority, so it hands out the CPU
// more eagerly to keep latency down.
const rrQuantum = 0x2

// RoundRobin is the priority-blind fallback policy: a single FIFO ready
// queue, no buckets. Grounded on scheduler/rr.rs's RoundRobinScheduler.
type RoundRobin struct {
	running *task.TCB
	queue   readyQueue
	wait    readyQueue

	processCount uint64
	lastFPU      task.ID
	haveLastFPU  bool
}

// NewRoundRobin builds a fresh plain round-robin scheduler.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{processCount: rrQuantum}
}

func (s *RoundRobin) RunningTask() (*task.TCB, bool) { return s.running, s.running != nil }

func (s *RoundRobin) SetRunningTask(t *task.TCB) { s.running = t }

func (s *RoundRobin) NextTask() (*task.TCB, bool) { return s.queue.pop() }

func (s *RoundRobin) PushTask(t *task.TCB) { s.queue.push(t) }

func (s *RoundRobin) Tick() {
	if s.processCount != 0 {
		s.processCount--
	}
}

func (s *RoundRobin) ResetTick() { s.processCount = rrQuantum }

func (s *RoundRobin) Expired() bool { return s.processCount == 0 }

func (s *RoundRobin) PushWait(t *task.TCB) { s.wait.push(t) }

func (s *RoundRobin) NextWait() (*task.TCB, bool) { return s.wait.pop() }

func (s *RoundRobin) RemoveTask(t *task.TCB) error {
	if !s.queue.remove(t) {
		return ErrNotFound
	}
	return nil
}

// ChangePriority only records the new priority in the task's flags: like
// rr.rs's RoundRobinScheduler, this plain FIFO policy ignores priority, so
// queue order is unchanged.
func (s *RoundRobin) ChangePriority(mgr *manager.Manager, id task.ID, priority uint8) error {
	t, ok := mgr.Get(id)
	if !ok {
		return ErrNotFound
	}
	t.Flags = t.Flags.WithPriority(priority)
	return nil
}

func (s *RoundRobin) LastFPUUsed() (task.ID, bool) { return s.lastFPU, s.haveLastFPU }

func (s *RoundRobin) SetFPUUsed(id task.ID) {
	s.lastFPU = id
	s.haveLastFPU = true
}
