package descriptor

// GateOptions is idt.rs's EntryOptions: present bit, interrupt-disable-on-
// entry bit, descriptor privilege level, and interrupt-stack-table index,
// packed the same way (bit 15 present, bit 8 disable-interrupts, bits
// 13-14 DPL, bits 0-2 stack index) even though nothing here writes them
// into a real packed u16 — the layout is kept so a test can assert the
// exact bit positions against idt.rs's constants.
type GateOptions struct {
	Present          bool
	DisableInterrupt bool
	DPL              uint8
	StackIndex       uint8
}

// NewGateOptions returns idt.rs's EntryOptions::new() default: present,
// interrupt gate (IF cleared on entry), DPL 0, stack index 0.
func NewGateOptions() GateOptions {
	return GateOptions{Present: true, DisableInterrupt: true}
}

// Pack encodes the options the way EntryOptions's bitfield does, for tests
// that want to check against idt.rs's documented bit layout.
func (o GateOptions) Pack() uint16 {
	v := uint16(0x8E00) // EntryOptions::new()'s base value, before field overrides
	if o.Present {
		v |= 0x8000
	} else {
		v &^= 0x8000
	}
	if o.DisableInterrupt {
		v |= 0x0100
	} else {
		v &^= 0x0100
	}
	v = (v &^ 0x6000) | (uint16(o.DPL) << 13 & 0x6000)
	v = (v &^ 0x0007) | (uint16(o.StackIndex) & 0x0007)
	return v
}

// Entry is one IDT slot: the selector the handler runs under plus its gate
// options. The handler itself is not stored here (Go has no "pointer to a
// naked asm trampoline" to hold); Dispatcher keeps handlers in a parallel
// table keyed by the same vector.
type Entry struct {
	Selector uint16
	Options  GateOptions
	present  bool
}

// Table is the 256-entry IDT, grounded on idt.rs's EntryTable.
type Table struct {
	entries [256]Entry
}

// NewTable returns a table with every slot blank, matching
// EntryTable::new().
func NewTable() *Table {
	return &Table{}
}

// Set installs selector/options for vector, mirroring
// EntryTable::set_handler minus the function pointer (carried instead by
// cpu/intr.Dispatcher).
func (t *Table) Set(vector uint8, selector uint16, options GateOptions) {
	t.entries[vector] = Entry{Selector: selector, Options: options, present: true}
}

// Get returns the entry installed at vector, if any.
func (t *Table) Get(vector uint8) (Entry, bool) {
	e := t.entries[vector]
	return e, e.present
}
