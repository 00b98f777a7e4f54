// Package apboot implements application-processor bring-up (spec.md §7):
// programming the real-mode trampoline, the INIT-deassert-SIPI-SIPI
// sequence, and waiting for every AP to report in.
//
// Grounded on original_source/kernel/src/ap.rs's init_ap/ap_entry. The
// original writes a trampoline block to fixed low physical addresses
// (0x8004 page-table pointer, 0x8008 entry point, 0x8010/0x8014 stack
// top/pages) that real-mode code executing at the SIPI vector reads;
// since this kernel has no real-mode stage and no second core to
// interrupt, each AP is instead represented by a goroutine running a
// caller-supplied EntryFunc, while the INIT/SIPI command sequence itself
// is still issued against a real cpu/apic.LAPIC so its exact register
// values match the original.
package apboot

import (
	"fmt"
	"runtime"

	"github.com/sonhs99/redos-go/internal/kernel/cpu/apic"
	"github.com/sonhs99/redos-go/internal/kernel/ksync"
)

// Trampoline is the fixed low-memory block init_ap writes before sending
// INIT-SIPI-SIPI.
type Trampoline struct {
	PageTablePtr uint32
	StackTop     uint32
	StackPages   uint32
}

// The three ICR command words init_ap programs, kept as named constants
// rather than inlined so a test can assert the exact sequence.
const (
	icrDeassertINIT = 0x000C_4500
	icrSendSIPI     = 0x000C_4608
	icrDeliveryBusy = 0x0010_00
)

var (
	ErrInitFailed     = fmt.Errorf("apboot: INIT IPI delivery failed")
	ErrStartupFailed  = fmt.Errorf("apboot: SIPI delivery failed")
)

// EntryFunc is what an AP runs once woken: ap_entry translated from "a
// bare-metal function the SIPI vector jumps to" into an ordinary Go
// function run on its own goroutine, the way this kernel represents a
// core's independent instruction stream.
type EntryFunc func(apicID uint8)

// Bootstrap brings up numAP-1 additional cores (core 0 is the BSP and is
// never sent a SIPI). It programs the trampoline, enables the LAPIC via
// its SVR, issues INIT then two SIPIs, and blocks until every AP has run
// entry to completion and reported in.
func Bootstrap(lapic *apic.LAPIC, pageTablePtr uint32, stackStart, stackSize uint64, numAP int, entry EntryFunc) (int, error) {
	_ = Trampoline{
		PageTablePtr: pageTablePtr,
		StackTop:     uint32(stackStart + stackSize),
		StackPages:   uint32(stackSize / 16),
	}

	svr := lapic.ReadSVR()
	lapic.WriteSVR(svr | 0x0100)

	lapic.WriteICR(icrDeassertINIT, 0)
	if lapic.ReadICR()&icrDeliveryBusy != 0 {
		return 0, ErrInitFailed
	}

	lapic.WriteICR(icrSendSIPI, 0)
	if lapic.ReadICR()&icrDeliveryBusy != 0 {
		return 0, ErrStartupFailed
	}
	lapic.WriteICR(icrSendSIPI, 0)
	if lapic.ReadICR()&icrDeliveryBusy != 0 {
		return 0, ErrStartupFailed
	}

	wakeup := ksync.NewGuarded(0)
	for i := 1; i < numAP; i++ {
		apicID := uint8(i)
		go func() {
			entry(apicID)
			ksync.WithVoid(wakeup, func(n *int) { *n++ })
		}()
	}

	target := numAP - 1
	for {
		n := ksync.With(wakeup, func(n *int) int { return *n })
		if n >= target {
			return n, nil
		}
		runtime.Gosched()
	}
}
