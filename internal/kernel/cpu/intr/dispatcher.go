package intr

import (
	"github.com/sonhs99/redos-go/internal/kernel/ksync"
	"github.com/sonhs99/redos-go/internal/kernel/task"
)

// HandlerFunc matches handler_without_err_code's wrapped signature: a
// plain exception/IRQ handler that only sees the stack frame.
type HandlerFunc func(frame *Frame)

// HandlerWithError matches handler_with_err_code's wrapped signature: an
// exception that also receives the CPU-pushed error code.
type HandlerWithError func(frame *Frame, errorCode uint64)

// TimerHandlerFunc matches handler_with_context's wrapped signature: the
// APIC timer handler, which runs with full ring-0 segment selectors
// reloaded and sees the interrupted task's register context directly
// (so it can hand it to a context switch), rather than just the frame.
type TimerHandlerFunc func(ctx *task.Context)

// EOINotifier is implemented by cpu/apic.LAPIC. Dispatcher calls it after
// every handler in handler.rs's IRQ range, mirroring their trailing
// LocalAPICRegisters::default().end_of_interrupt().notify() call.
type EOINotifier interface {
	NotifyEndOfInterrupt()
}

type slotKind int

const (
	slotEmpty slotKind = iota
	slotPlain
	slotError
	slotTimer
)

type slot struct {
	kind    slotKind
	plain   HandlerFunc
	errored HandlerWithError
	timer   TimerHandlerFunc
}

// Dispatcher is the vector -> handler routing table, standing in for the
// combination of idt.rs's EntryTable and the asm trampolines in
// handler.rs that actually invoke the registered function.
type Dispatcher struct {
	lock  ksync.Spinlock
	slots [256]slot
	eoi   EOINotifier
}

// NewDispatcher builds an empty dispatcher. eoi may be nil in tests that
// don't care about end-of-interrupt signaling.
func NewDispatcher(eoi EOINotifier) *Dispatcher {
	return &Dispatcher{eoi: eoi}
}

// Install registers a plain handler (common_exception, divided_by_zero,
// break_point, invalid_opcode, the IRQ-range dummy handler, pata1/2,
// xhci).
func (d *Dispatcher) Install(vector Vector, h HandlerFunc) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.slots[vector] = slot{kind: slotPlain, plain: h}
}

// InstallWithError registers a handler that also receives an error code
// (double_fault, general_protection, page_fault).
func (d *Dispatcher) InstallWithError(vector Vector, h HandlerWithError) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.slots[vector] = slot{kind: slotError, errored: h}
}

// InstallTimer registers the APIC timer's context-carrying handler.
func (d *Dispatcher) InstallTimer(vector Vector, h TimerHandlerFunc) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.slots[vector] = slot{kind: slotTimer, timer: h}
}

func isIRQRange(v Vector) bool { return v >= IRQStart && v < IRQStart+16 }

// Dispatch runs whatever is installed at vector (a no-op if nothing is),
// then signals end-of-interrupt for every vector the original's handlers
// acknowledge on the way out: the 16 remapped legacy IRQs plus PATA1,
// PATA2, XHCI and APICTimer. common_exception and the CPU exception
// vectors below 0x20 are not acknowledged, matching the original (they
// loop forever instead of returning).
func (d *Dispatcher) Dispatch(vector Vector, frame *Frame, errorCode uint64, ctx *task.Context) {
	d.lock.Lock()
	s := d.slots[vector]
	d.lock.Unlock()

	switch s.kind {
	case slotPlain:
		if s.plain != nil {
			s.plain(frame)
		}
	case slotError:
		if s.errored != nil {
			s.errored(frame, errorCode)
		}
	case slotTimer:
		if s.timer != nil {
			s.timer(ctx)
		}
	}

	if d.eoi == nil {
		return
	}
	if isIRQRange(vector) || vector == PATA1 || vector == PATA2 || vector == XHCI || vector == APICTimer {
		d.eoi.NotifyEndOfInterrupt()
	}
}
