package ksync

import "sync/atomic"

// IRQState tracks whether interrupts are enabled for one CPU. Real
// hardware has a single flags-register IF bit per core; this is that bit,
// modeled explicitly because Go has no per-goroutine equivalent of CLI/STI
// to hook into.
type IRQState struct {
	enabled atomic.Bool
}

// NewIRQState returns a state with interrupts enabled, matching a CPU that
// has completed bring-up.
func NewIRQState() *IRQState {
	s := &IRQState{}
	s.enabled.Store(true)
	return s
}

// Enabled reports the current IF bit.
func (s *IRQState) Enabled() bool {
	return s.enabled.Load()
}

// WithoutInterrupts disables interrupts, runs fn, and restores whatever the
// IF bit was before the call. It is required around any operation that
// both acquires a lock also taken from interrupt context and must not
// deadlock if this CPU were preempted mid-critical-section.
func (s *IRQState) WithoutInterrupts(fn func()) {
	prior := s.enabled.Swap(false)
	defer s.enabled.Store(prior)
	fn()
}
