// Package descriptor models the kernel's GDT and IDT: the flat-model
// segment selectors every task context uses (see internal/kernel/task),
// and the 256-entry interrupt descriptor table that routes vectors to
// handlers.
//
// Grounded on original_source/kernel/src/gdt.rs and
// interrupt/idt.rs. Go programs cannot install a real GDT/IDT or execute
// lgdt/lidt, so this package keeps the data model (selectors, gate
// options, the 256-entry table) and drops the actual table-load and
// segment-register-load instructions; internal/kernel/cpu/intr.Dispatcher
// is what a real IDT's "call the handler" step becomes here.
package descriptor

// Flat-model selectors installed by gdt.rs's init_gdt: one code and one
// data segment, used for both DS/ES/FS/GS and SS.
const (
	CodeSelector uint16 = 0x08
	DataSelector uint16 = 0x10
)

// GDT is a placeholder for the loaded state: in the original this is a
// mutable static GlobalDescriptorTable loaded once at boot. Here it just
// records that initialization happened, since there is no real descriptor
// table to install.
type GDT struct {
	loaded bool
}

// New returns an unloaded GDT.
func New() *GDT { return &GDT{} }

// Load marks the flat code/data segments as installed. Idempotent, mirroring
// init_gdt being safe to call once during bring-up.
func (g *GDT) Load() { g.loaded = true }

// Loaded reports whether Load has run.
func (g *GDT) Loaded() bool { return g.loaded }
