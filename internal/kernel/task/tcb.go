package task

// Flags is the bitfield spec.md §3 stores inline with each task: a priority
// (low byte) plus three single-bit markers. Grounded on tcb.rs's TaskFlags
// constants.
type Flags uint64

const (
	priorityMask Flags = 0xFF
	Terminate    Flags = 1 << 63
	Thread       Flags = 1 << 62
	System       Flags = 1 << 61
)

// Priority extracts the low-byte priority (0-255, lower numeric value runs
// first per spec.md §5's four-bucket scheduler).
func (f Flags) Priority() uint8 { return uint8(f & priorityMask) }

// WithPriority returns f with its priority byte replaced.
func (f Flags) WithPriority(p uint8) Flags {
	return (f &^ priorityMask) | Flags(p)
}

func (f Flags) has(bit Flags) bool { return f&bit != 0 }

func (f Flags) Terminating() bool { return f.has(Terminate) }
func (f Flags) IsThread() bool    { return f.has(Thread) }
func (f Flags) IsSystem() bool    { return f.has(System) }

// ID is a task-manager-issued handle. The original kernel links parent,
// child and sibling tasks with raw Option<NonNull<Task>> pointers; spec.md's
// Design Notes §9 calls that out as unsafe-in-spirit for a reimplementation,
// so here the tree is expressed as IDs resolved through the task manager's
// table rather than pointers a Go GC cannot safely alias.
type ID uint64

// NoTask is the zero ID, reserved (the manager never issues it), used as a
// "no parent"/"no sibling" sentinel rather than a pointer option type.
const NoTask ID = 0

// TCB is one task's control block: its saved context, FPU state, identity,
// flags, process-tree links, stack/memory extents, and affinity.
//
// Grounded on tcb.rs's Task struct, with parent/child/sibling converted from
// NonNull<Task> to ID per the note above, and stack_addr/memory_addr kept as
// plain uint64 offsets into a simulated address space rather than real
// virtual addresses.
type TCB struct {
	Context Context
	FPU     FPUContext

	ID    ID
	Flags Flags

	Parent  ID
	Child   ID
	Sibling ID

	StackAddr uint64
	StackSize uint64

	MemoryAddr uint64
	MemorySize uint64

	APICID   uint32
	Affinity uint32

	Name string

	// exitReturnAddress is the synthetic return address tcb.rs pushes onto
	// a new task's stack so that a task whose entry point returns instead
	// of calling TaskExit falls into the exit trampoline. Modeled as a
	// field rather than an actual write into a byte-addressed stack since
	// this simulation never executes the stack as code.
	exitReturnAddress uint64
}

// ExitReturnAddress returns the address a new task resumes at if its entry
// function returns normally.
func (t *TCB) ExitReturnAddress() uint64 { return t.exitReturnAddress }

// Segment selectors installed for every new task: ring 0 code/data, flat
// model, matching gdt.rs's fixed GDT layout.
const (
	codeSelector = 0x08
	dataSelector = 0x10

	// rflagsIF is the interrupt-enable flag; every new task starts with
	// interrupts enabled once it is first scheduled.
	rflagsIF = 0x0200
)

// New builds a fresh TCB whose Context is primed so that the first
// ContextSwitch into it behaves like a function call into entry: rsp sits
// at the top of the given stack (minus one word, for the synthetic return
// address), segment selectors are the kernel's flat ring-0 selectors, and
// rflags has interrupts enabled.
//
// exitAddr is the return address written at the top of the stack — the
// address of the task-exit trampoline a real task falls into if entry ever
// returns, mirroring tcb.rs's push of exit_inner's address.
func New(id ID, name string, entry, exitAddr, stackAddr, stackSize uint64, flags Flags) *TCB {
	rsp := stackAddr + stackSize - 8

	t := &TCB{
		ID:        id,
		Name:      name,
		Flags:     flags,
		Parent:    NoTask,
		Child:     NoTask,
		Sibling:   NoTask,
		StackAddr: stackAddr,
		StackSize: stackSize,
		FPU:       newFPUContext(),
	}
	t.Context = Context{
		GS: dataSelector, FS: dataSelector, ES: dataSelector, DS: dataSelector,
		RBP:    rsp,
		RIP:    entry,
		CS:     codeSelector,
		RFLAGS: rflagsIF,
		RSP:    rsp,
		SS:     dataSelector,
	}
	t.exitReturnAddress = exitAddr
	return t
}
