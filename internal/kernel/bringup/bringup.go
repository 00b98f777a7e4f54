// Package bringup wires every kernel subsystem together into the boot
// sequence spec.md §2 describes for the bootstrap processor: GDT/IDT
// installation, frame and slab allocator init from the firmware memory
// map, ACPI discovery, LAPIC timer calibration against the PM timer,
// IOAPIC redirection setup, application-processor wakeup, per-CPU
// scheduler install, idle task registration, and xHCI controller
// bring-up.
//
// Grounded on original_source/kernel/src/{lib.rs,percpu.rs,page.rs} —
// lib.rs's entry_point! macro switches to the boot stack and calls the
// caller's kernel_main, which this package's Boot plays the role of;
// percpu.rs's CPU_COUNT/LOCAL_APIC_REGISTER_BASE OnceLocks become the
// Kernel struct's own fields, since a hosted Go build constructs one
// Kernel value rather than relying on process-wide statics; page.rs's
// init_page (a hand-built 1GiB-huge-page identity map installed via
// `mov cr3`) has no Go equivalent — this kernel cannot install a real
// page table — so it is recorded as a documented Non-goal rather than
// implemented (see the PageTableInit constant below).
package bringup

import (
	"fmt"

	"github.com/sonhs99/redos-go/internal/kernel/acpi"
	"github.com/sonhs99/redos-go/internal/kernel/cpu/apboot"
	"github.com/sonhs99/redos-go/internal/kernel/cpu/apic"
	"github.com/sonhs99/redos-go/internal/kernel/cpu/descriptor"
	"github.com/sonhs99/redos-go/internal/kernel/cpu/intr"
	"github.com/sonhs99/redos-go/internal/kernel/cpu/pmtimer"
	"github.com/sonhs99/redos-go/internal/kernel/memory/frame"
	"github.com/sonhs99/redos-go/internal/kernel/memory/slab"
	"github.com/sonhs99/redos-go/internal/kernel/task"
	"github.com/sonhs99/redos-go/internal/kernel/task/manager"
	"github.com/sonhs99/redos-go/internal/kernel/task/scheduler"
	"github.com/sonhs99/redos-go/internal/kernel/usb/xhci"
	"github.com/sonhs99/redos-go/internal/kernel/window"
	"github.com/sonhs99/redos-go/internal/klog"
	"github.com/sonhs99/redos-go/internal/timeslice"
)

var log = klog.WithSource("bringup")

// BootInfo is this port's equivalent of bootloader::BootInfo: everything
// the bootstrap processor receives from the boot loader before the
// kernel proper starts running.
type BootInfo struct {
	// TotalFrames is the physical memory size in frame.Size units.
	TotalFrames uint64
	// MemoryMap is the firmware-provided usable/reserved region list
	// frame.Allocator.Scan consumes.
	MemoryMap []frame.MemoryDescriptor
	// HeapMemory is the byte arena the slab heap is carved from.
	HeapMemory []byte

	// RSDP is the raw ACPI 2.0+ RSDP structure bytes.
	RSDP []byte
	// ACPITables maps an XSDT entry's raw pointer value to that table's
	// bytes, standing in for dereferencing a physical address.
	ACPITables map[uint64][]byte

	CPUCount      int
	PageTablePtr  uint32
	APStackStart  uint64
	APStackSize   uint64

	// IdleEntry is what the idle task (and every bootstrapped AP) runs.
	IdleEntry func(apicID uint8)
}

// PageTableInit records the page-table bring-up step page.rs's
// init_page performs: an identity map of 64 GiB built from 64 1GiB huge
// pages. This kernel runs hosted and never
// installs a real CR3, so the step is recorded as a fact rather than
// executed — see the package doc comment.
const PageTableInit = "identity-map 64 GiB via 1GiB huge pages through a 4-level PML4/PDPT/PD hierarchy, loaded into CR3"

// Kernel is everything Boot assembles: the subsystems percpu.rs and
// lib.rs's module list each own a piece of, gathered into one value
// instead of process-wide statics.
type Kernel struct {
	CPUCount         int
	LAPICBase        uint32
	Frames           *frame.Allocator
	Heap             *slab.Heap
	GDT              *descriptor.GDT
	IDT              *descriptor.Table
	Dispatcher       *intr.Dispatcher
	BSPLAPIC         *apic.LAPIC
	IOAPIC           *apic.IOAPIC
	PMTimer          *pmtimer.Timer
	TaskManager      *manager.Manager
	Scheduler        scheduler.Policy
	IdleTask         *task.TCB
	XHCI             *xhci.Manager
	Events           *window.Queue
	APsStarted       int
	MADT             *acpi.MADT
	FADT             *acpi.FADT
}

// Boot runs the bootstrap processor's bring-up sequence and returns the
// assembled Kernel, mirroring kernel_main's shape (console/PCI setup
// there, the subsystem list named in the package doc comment here).
func Boot(info BootInfo) (*Kernel, error) {
	k := &Kernel{CPUCount: info.CPUCount}
	phase := timeslice.NewRecorder()

	log.Write("installing GDT/IDT")
	k.GDT = descriptor.New()
	k.GDT.Load()
	k.IDT = descriptor.NewTable()
	phase.Record(timeslice.TimesliceBootGDTIDT)

	log.Write("initializing frame allocator")
	k.Frames = frame.New(info.TotalFrames)
	k.Frames.Scan(info.MemoryMap)

	log.Write("initializing slab heap")
	k.Heap = slab.New(info.HeapMemory)
	phase.Record(timeslice.TimesliceBootMemory)

	if err := discoverACPI(k, info); err != nil {
		return nil, fmt.Errorf("bringup: ACPI discovery: %w", err)
	}
	phase.Record(timeslice.TimesliceBootACPI)

	log.Write("installing LAPIC and interrupt dispatcher")
	k.BSPLAPIC = apic.NewLAPIC(0)
	k.Dispatcher = intr.NewDispatcher(k.BSPLAPIC)
	calibrateTimer(k)
	phase.Record(timeslice.TimesliceBootInterrupts)

	if k.MADT != nil && len(k.MADT.IOAPICs) > 0 {
		log.Write("installing IOAPIC redirection table")
		k.IOAPIC = apic.NewIOAPIC(k.MADT.IOAPICs[0].IOAPICID, apic.DefaultEntries)
	}

	log.Write("installing task manager and scheduler")
	k.TaskManager = manager.New(manager.DefaultPoolSize)
	k.Scheduler = scheduler.NewPriorityRoundRobin()

	if info.IdleEntry != nil {
		idle, err := k.TaskManager.Allocate("idle", 0, 0, info.APStackStart, info.APStackSize, task.Flags(0).WithPriority(0))
		if err != nil {
			return nil, fmt.Errorf("bringup: allocate idle task: %w", err)
		}
		k.IdleTask = idle
		k.Scheduler.PushTask(idle)
	}

	log.Write("bringing up application processors")
	if info.CPUCount > 1 && info.IdleEntry != nil {
		n, err := apboot.Bootstrap(k.BSPLAPIC, info.PageTablePtr, info.APStackStart, info.APStackSize, info.CPUCount, info.IdleEntry)
		if err != nil {
			return nil, fmt.Errorf("bringup: AP bootstrap: %w", err)
		}
		k.APsStarted = n
	}
	phase.Record(timeslice.TimesliceBootAPs)

	log.Write("bringing up xHCI controller")
	k.Events = window.NewQueue(window.DefaultQueueSize)
	k.XHCI = xhci.NewManager(&xhci.RecordingDoorbell{}, xhci.RingLength)

	log.Writef("bring-up complete: %d AP(s) started, CPUCount=%d", k.APsStarted, k.CPUCount)
	return k, nil
}

func discoverACPI(k *Kernel, info BootInfo) error {
	if len(info.RSDP) == 0 {
		log.Write("no RSDP provided, skipping ACPI discovery")
		return nil
	}
	rsdp, err := acpi.ParseRSDP(info.RSDP)
	if err != nil {
		return err
	}
	if !rsdp.IsValid(info.RSDP) {
		return fmt.Errorf("RSDP failed checksum validation")
	}

	xsdtRaw, ok := info.ACPITables[rsdp.XSDTAddress]
	if !ok {
		return fmt.Errorf("XSDT not found at %#x", rsdp.XSDTAddress)
	}
	xsdt, err := acpi.ParseXSDT(xsdtRaw)
	if err != nil {
		return err
	}
	entries := xsdt.Entries()

	if raw, ok := acpi.TableLookup(entries, info.ACPITables, "FACP"); ok {
		fadt, err := acpi.ParseFADT(raw)
		if err != nil {
			return err
		}
		k.FADT = fadt
	}
	if raw, ok := acpi.TableLookup(entries, info.ACPITables, "APIC"); ok {
		madt, err := acpi.ParseMADT(raw)
		if err != nil {
			return err
		}
		k.MADT = madt
		k.LAPICBase = madt.LocalAPICAddress
	}
	return nil
}

// calibrateTimer mirrors the original calibrating the LAPIC timer
// against the ACPI PM timer before relying on it for scheduling ticks.
// Since this hosted build has no real 100ms interval to busy-wait, the
// elapsed tick count is a fixed, documented stand-in rather than a
// measured value.
func calibrateTimer(k *Kernel) {
	k.PMTimer = pmtimer.New()
	const assumedTicksPer100ms = 0x1000
	k.BSPLAPIC.Timer.Calibrate(3, false, apic.Periodic, uint8(intr.APICTimer), assumedTicksPer100ms)
}
