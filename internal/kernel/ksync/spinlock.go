// Package ksync provides the synchronization primitives shared by every
// kernel subsystem: a ticket-free spinlock, a write-once cell, and the
// interrupt-gate guard that protects locks also taken from interrupt
// context.
package ksync

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a single AtomicBool test-and-set lock. It is not reentrant
// and not fair: under contention, acquisition order is unspecified.
type Spinlock struct {
	locked atomic.Bool
}

// Lock spins until the lock is acquired.
func (s *Spinlock) Lock() {
	for !s.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// TryLock attempts to acquire the lock without spinning.
func (s *Spinlock) TryLock() bool {
	return s.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking an unlocked Spinlock is a bug in the
// caller and is not detected here, matching the teacher's own MMIO/PIO
// handlers which trust their callers to hold the right lock.
func (s *Spinlock) Unlock() {
	s.locked.Store(false)
}
