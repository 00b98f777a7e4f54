// Package intr is the interrupt dispatch layer of spec.md §6: it turns a
// vector number into a call to a registered handler, in place of the
// IDT + naked-asm-trampoline mechanism the original kernel relies on.
//
// Grounded on original_source/kernel/src/interrupt/{mod.rs,handler.rs,
// asm.rs}. The three handler_with{,_err_code}/handler_with_context asm
// macros there exist solely to build a raw stack frame and restore
// segment registers around a plain extern "C" function; Go has no
// equivalent of "a naked trampoline that ends in iretq", so Dispatcher
// calls registered Go closures directly and the three macros collapse
// into three handler signatures (HandlerFunc, HandlerWithError,
// TimerHandlerFunc).
package intr

// Vector names the fixed interrupt vectors spec.md §6 assigns.
type Vector uint8

const (
	// IRQStart is the first of 16 remapped legacy IRQ vectors (0x20-0x2F).
	IRQStart Vector = 0x20
	// PATA1 and PATA2 are the primary/secondary ATA channel vectors.
	PATA1 Vector = 0x2E
	PATA2 Vector = 0x2F
	// XHCI is the USB host controller's MSI/legacy vector.
	XHCI Vector = 0x40
	// APICTimer is the local APIC timer's vector, the scheduler's tick source.
	APICTimer Vector = 0x41
)

// Frame mirrors handler.rs's ExceptionStackFrame: the five words the CPU
// (or, here, the simulated caller) pushes before an interrupt handler
// runs.
type Frame struct {
	InstructionPointer uint64
	CodeSegment        uint64
	CPUFlags           uint64
	StackPointer       uint64
	StackSegment       uint64
}
