//go:build linux && amd64

package slab

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NewMmapHeap backs a Heap with a real anonymous mapping instead of a
// plain Go-GC-owned []byte, so the bump/slab arena lives at a stable
// address the way a freestanding kernel's own physical-memory-backed
// heap would, rather than one the garbage collector is free to move
// bookkeeping around. The release func must be called once the heap is
// no longer needed; it is not finalized automatically.
//
// Grounded on the teacher's internal/asm/amd64/exec.go, which maps its
// JIT code arena the same way (PrepareAssemblyWithArgs's
// unix.Mmap(-1, 0, size, PROT_READ|PROT_WRITE, MAP_PRIVATE|MAP_ANON)).
func NewMmapHeap(size int) (heap *Heap, release func() error, err error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, fmt.Errorf("slab: mmap heap arena: %w", err)
	}
	return New(mem), func() error { return unix.Munmap(mem) }, nil
}
