// Package pmtimer models the ACPI power-management timer spec.md §6
// names as the kernel's wait/sleep time source: a free-running counter at
// a fixed 3.579545 MHz, read through the port FADT.PM_TMR_BLK names.
//
// Grounded on original_source/kernel/src/timer/{mod.rs,pm.rs} (PM_TIMER,
// read_pm_count, convert_ms_to_tick/convert_us_to_tick, wait_tick/wait_ms/
// wait_us, sleep) and timer/pit.rs (the legacy 8254 PIT, kept as a
// secondary counter for code paths that run before ACPI tables are
// parsed). The original reads this counter via `in32` on a fixed I/O
// port; this package models the free-running counter directly as state
// advanced by Tick, since there is no real I/O port to fault through in
// a hosted build.
package pmtimer

import "github.com/sonhs99/redos-go/internal/kernel/ksync"

// Frequency is the ACPI PM timer's fixed input clock, 3.579545 MHz.
const Frequency = 3_579_545

// Timer is the free-running 24/32-bit PM timer counter.
type Timer struct {
	lock    ksync.Spinlock
	counter uint32
}

// New builds a timer at count 0.
func New() *Timer { return &Timer{} }

// Read returns the current counter value, mirroring read_pm_count's in32.
func (t *Timer) Read() uint32 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.counter
}

// Tick advances the free-running counter by n, standing in for hardware
// incrementing it once per clock pulse. Wraps naturally on overflow, the
// same as the real 24-bit (or 32-bit, per FADT flags) hardware counter.
func (t *Timer) Tick(n uint32) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.counter += n
}

// ConvertMsToTick mirrors convert_ms_to_tick.
func ConvertMsToTick(ms uint32) uint32 { return ms * Frequency / 1000 }

// ConvertUsToTick mirrors convert_us_to_tick.
func ConvertUsToTick(us uint32) uint32 { return us * Frequency / 1_000_000 }

// WaitElapsed reports whether at least tick counts have passed since
// start, using wraparound-safe subtraction exactly as wait_tick's
// read_pm_count().wrapping_sub(start) does.
func (t *Timer) WaitElapsed(start uint32, tick uint32) bool {
	return t.Read()-start >= tick
}
