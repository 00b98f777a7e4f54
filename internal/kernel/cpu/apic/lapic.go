// Package apic models the local APIC and IO-APIC of spec.md §6: the
// registers bring-up programs to route interrupts and drive the
// scheduler's timer tick, plus the IO-APIC's redirection table.
//
// Grounded on original_source/kernel/src/interrupt/apic.rs
// (LocalAPICRegisters, APICTimer, IOAPICRegister, LocalAPICIntCommand,
// LocalAPICError, LocalAPICSVR) and the teacher's
// internal/devices/amd64/chipset/ioapic.go (redirection-table entry
// modeling and its read/write-mask discipline). The original addresses
// these as raw MMIO at fixed physical addresses (0xFEE00000 for the
// LAPIC, 0xFEC00000 for the IO-APIC); since this kernel never maps real
// MMIO, both are modeled as plain in-memory register files instead of
// volatile reads/writes through unsafe pointers.
package apic

import "github.com/sonhs99/redos-go/internal/kernel/ksync"

// LAPIC is one CPU's local APIC: interrupt command register, error
// register, spurious-interrupt vector register, ID register and timer.
type LAPIC struct {
	lock ksync.Spinlock

	id       uint8
	eoiCount uint64
	errorReg uint32
	svr      uint32
	icrLow   uint32
	icrHigh  uint32

	Timer Timer
}

// NewLAPIC builds a LAPIC identified by id (its local APIC ID, as read
// from local_apic_id() in the original).
func NewLAPIC(id uint8) *LAPIC {
	return &LAPIC{id: id}
}

// ID returns this CPU's local APIC ID.
func (l *LAPIC) ID() uint8 { return l.id }

// NotifyEndOfInterrupt implements cpu/intr.EOINotifier: writing 0 to the
// EOI register, mirroring EndOfInterrupt::notify's write_volatile(0).
func (l *LAPIC) NotifyEndOfInterrupt() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.eoiCount++
}

// EOICount reports how many times EOI has been signaled, for tests and
// diagnostics (there being no real MMIO register to read back).
func (l *LAPIC) EOICount() uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.eoiCount
}

// WriteICR programs the interrupt command register, mirroring
// LocalAPICIntCommand::write's high-then-low MMIO write order (the high
// dword carries the destination, the low dword triggers delivery once
// written).
func (l *LAPIC) WriteICR(low, high uint32) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.icrHigh = high
	l.icrLow = low
}

// ReadICR reads back the low dword, as LocalAPICIntCommand::read does.
func (l *LAPIC) ReadICR() uint32 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.icrLow
}

// WriteSVR programs the spurious-interrupt vector register (bit 8 enables
// the APIC).
func (l *LAPIC) WriteSVR(v uint32) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.svr = v
}

func (l *LAPIC) ReadSVR() uint32 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.svr
}

// ReadError reads the APIC error status register.
func (l *LAPIC) ReadError() uint32 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.errorReg
}

// SetError is a test/simulation hook: a real LAPIC sets this register
// itself when an error condition occurs; there is no such hardware here.
func (l *LAPIC) SetError(v uint32) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.errorReg = v
}
