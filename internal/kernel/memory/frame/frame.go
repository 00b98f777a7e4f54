// Package frame implements the physical frame bitmap allocator described
// in spec.md §4.1: a single sliding-window scan over a bitmap, no free
// list, no coalescing. It is grounded on
// original_source/kernel/src/allocator/frame.rs's FrameBitmapManager,
// translated bit for bit (including the gap-filling quirk in Scan that
// marks a region wider than any one non-conventional descriptor when two
// descriptors are separated by physical memory the map never describes).
package frame

import (
	"fmt"

	"github.com/sonhs99/redos-go/internal/kernel/ksync"
)

// Size is the frame size in bytes (4 KiB, the native x86-64 page size).
const Size = 4096

// ID identifies a physical frame by index (physical address / Size).
type ID uint64

// ErrNoSpace is returned when Allocate cannot find a long enough run of
// free frames before the scan reaches range_end.
var ErrNoSpace = fmt.Errorf("frame: no space for requested run")

// MemoryType classifies a UEFI memory map descriptor's usability. Only
// ConventionalMemory and the two BootServices types are available for
// allocation; everything else (MMIO, ACPI reclaim/NVS, reserved, loader
// code/data) is treated as permanently used.
type MemoryType int

const (
	TypeConventionalMemory MemoryType = iota
	TypeBootServicesCode
	TypeBootServicesData
	TypeOther
)

func (t MemoryType) available() bool {
	switch t {
	case TypeConventionalMemory, TypeBootServicesCode, TypeBootServicesData:
		return true
	default:
		return false
	}
}

// MemoryDescriptor mirrors a UEFI EFI_MEMORY_DESCRIPTOR entry, reduced to
// the fields the scan needs.
type MemoryDescriptor struct {
	Type          MemoryType
	PhysicalStart uint64
	NumberOfPages uint64 // 4 KiB units
}

// Allocator is the bitmap-backed physical frame allocator. It sits behind
// one Spinlock, as spec.md §5 requires of all kernel-wide shared
// allocator state.
type Allocator struct {
	lock ksync.Spinlock

	bits       []uint64 // bit i set => frame i is used
	totalFrame uint64

	rangeBegin ID
	rangeEnd   ID
}

// New builds an allocator tracking totalFrames frames, all initially free.
func New(totalFrames uint64) *Allocator {
	words := (totalFrames + 63) / 64
	return &Allocator{
		bits:       make([]uint64, words),
		totalFrame: totalFrames,
		rangeBegin: 0,
		rangeEnd:   ID(totalFrames),
	}
}

func (a *Allocator) setBit(f ID, used bool) {
	idx := uint64(f) / 64
	bit := uint64(1) << (uint64(f) % 64)
	if used {
		a.bits[idx] |= bit
	} else {
		a.bits[idx] &^= bit
	}
}

func (a *Allocator) getBit(f ID) bool {
	idx := uint64(f) / 64
	bit := uint64(1) << (uint64(f) % 64)
	return a.bits[idx]&bit != 0
}

// Mark forces n consecutive frames starting at begin to used. Called
// directly for the startup hole below the kernel and indirectly by Scan
// for each non-conventional memory-map descriptor.
func (a *Allocator) Mark(begin ID, n uint64) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.markLocked(begin, n)
}

func (a *Allocator) markLocked(begin ID, n uint64) {
	for f := uint64(begin); f < uint64(begin)+n; f++ {
		a.setBit(ID(f), true)
	}
}

// SetRange fixes [begin, end) as the window Allocate scans.
func (a *Allocator) SetRange(begin, end ID) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.rangeBegin = begin
	a.rangeEnd = end
}

// Range returns the current scan window.
func (a *Allocator) Range() (begin, end ID) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.rangeBegin, a.rangeEnd
}

// Scan walks a UEFI memory map, marking every non-available region used
// and every gap between descriptors used (memory the map never describes
// is assumed non-RAM), then sets the allocatable range to
// [1, avail_end/Size) — frame 0 is never handed out.
func (a *Allocator) Scan(entries []MemoryDescriptor) {
	a.lock.Lock()
	defer a.lock.Unlock()

	var availEnd uint64
	for _, desc := range entries {
		if availEnd < desc.PhysicalStart {
			gapFrames := (desc.PhysicalStart - availEnd) / Size
			a.markLocked(ID(availEnd/Size), gapFrames)
		}
		physicalEnd := desc.PhysicalStart + desc.NumberOfPages*Size
		if desc.Type.available() {
			availEnd = physicalEnd
		} else {
			a.markLocked(ID(desc.PhysicalStart/Size), desc.NumberOfPages)
		}
	}

	a.rangeBegin = 1
	a.rangeEnd = ID(availEnd / Size)
}

// Allocate returns the base ID of n consecutive free frames within the
// scan range, marking them used. It is a single forward sweep: on a used
// bit it restarts the run at the next frame; it never looks backward and
// never coalesces, so repeated small allocations can fragment the range.
func (a *Allocator) Allocate(n uint64) (ID, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	var count uint64
	base := uint64(a.rangeBegin)
	for base+count <= uint64(a.rangeEnd) {
		if count == n {
			frame := ID(base)
			a.markLocked(frame, n)
			return frame, nil
		}
		if base+count == uint64(a.rangeEnd) {
			break
		}
		if a.getBit(ID(base + count)) {
			base += count + 1
			count = 0
		} else {
			count++
		}
	}
	return 0, ErrNoSpace
}

// Free clears n frames starting at begin.
func (a *Allocator) Free(begin ID, n uint64) {
	a.lock.Lock()
	defer a.lock.Unlock()
	for f := uint64(begin); f < uint64(begin)+n; f++ {
		a.setBit(ID(f), false)
	}
}
