package scheduler

import (
	"testing"

	"github.com/sonhs99/redos-go/internal/kernel/task"
	"github.com/sonhs99/redos-go/internal/kernel/task/manager"
)

func newTCB(id task.ID, priority uint8) *task.TCB {
	return task.New(id, "t", 0, 0, 0x1000, 0x1000, task.Flags(0).WithPriority(priority))
}

func newManagerWithOne(t *testing.T, s Policy) *manager.Manager {
	t.Helper()
	mgr := manager.New(4)
	if _, err := mgr.Allocate("t", 0, 0, 0x1000, 0x1000, task.Flags(0).WithPriority(0)); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	return mgr
}

func TestPriorityRoundRobinTwoPassSweep(t *testing.T) {
	s := NewPriorityRoundRobin()

	low := newTCB(1, 0)    // bucket 0
	high := newTCB(2, 250) // bucket 3

	s.PushTask(low)
	s.PushTask(high)

	got, ok := s.NextTask()
	if !ok || got != low {
		t.Fatalf("expected bucket 0's task first, got %+v ok=%v", got, ok)
	}

	// Bucket 0 is now empty (execute[0] reset to 0 on the same call that
	// found it exhausted), so the sweep continues to bucket 3 within the
	// same two-pass call.
	got, ok = s.NextTask()
	if !ok || got != high {
		t.Fatalf("expected bucket 3's task on the continued sweep, got %+v ok=%v", got, ok)
	}

	if _, ok := s.NextTask(); ok {
		t.Fatalf("expected no runnable task once both buckets are drained")
	}
}

func TestPriorityRoundRobinQuantumExpiry(t *testing.T) {
	s := NewPriorityRoundRobin()
	for i := 0; i < Quantum; i++ {
		if s.Expired() {
			t.Fatalf("expected not expired before %d ticks", Quantum)
		}
		s.Tick()
	}
	if !s.Expired() {
		t.Fatalf("expected expired after %d ticks", Quantum)
	}
	s.ResetTick()
	if s.Expired() {
		t.Fatalf("expected not expired immediately after ResetTick")
	}
}

func TestPriorityRoundRobinChangePriorityRebuckets(t *testing.T) {
	s := NewPriorityRoundRobin()
	mgr := newManagerWithOne(t, s)

	tc, _ := mgr.Get(1)
	s.PushTask(tc)

	if err := s.ChangePriority(mgr, 1, 250); err != nil {
		t.Fatalf("ChangePriority: %v", err)
	}
	if tc.Flags.Priority() != 250 {
		t.Fatalf("expected priority updated to 250, got %d", tc.Flags.Priority())
	}
	// The task was removed from bucket 0 by ChangePriority; it must be
	// re-pushed to land in its new bucket.
	s.PushTask(tc)
	got, ok := s.NextTask()
	if !ok || got != tc {
		t.Fatalf("expected the re-bucketed task to be returned")
	}
}

func TestDispatchSwitchesAndRequeuesPrevious(t *testing.T) {
	s := NewRoundRobin()
	a := newTCB(1, 0)
	b := newTCB(2, 0)
	s.SetRunningTask(a)
	s.PushTask(b)

	prev, next, ok := Dispatch(s, nil)
	if !ok || prev != a || next != b {
		t.Fatalf("expected switch from a to b, got prev=%+v next=%+v ok=%v", prev, next, ok)
	}
	running, _ := s.RunningTask()
	if running != b {
		t.Fatalf("expected b now running")
	}
	got, ok := s.NextTask()
	if !ok || got != a {
		t.Fatalf("expected a requeued behind b, got %+v", got)
	}
}

func TestDispatchReturnsFalseWhenNothingRunnable(t *testing.T) {
	s := NewRoundRobin()
	if _, _, ok := Dispatch(s, nil); ok {
		t.Fatalf("expected no dispatch with an empty ready queue")
	}
}

func TestRoundRobinIgnoresPriority(t *testing.T) {
	s := NewRoundRobin()
	a := newTCB(1, 0)
	b := newTCB(2, 255)
	s.PushTask(a)
	s.PushTask(b)

	got, ok := s.NextTask()
	if !ok || got != a {
		t.Fatalf("expected FIFO order regardless of priority, got %+v", got)
	}
	got, ok = s.NextTask()
	if !ok || got != b {
		t.Fatalf("expected second task b, got %+v", got)
	}
}
