package xhci

import "fmt"

// MemoryPoolSize mirrors external.rs's MEMORY_POOL_SIZE: the fixed arena
// the controller's command/event/transfer rings and device contexts are
// bump-allocated from.
const MemoryPoolSize = 4096 * 32

// ErrPoolExhausted is returned once Allocate can no longer satisfy a
// request from the remaining pool, mirroring the original's panic on
// pool exhaustion — turned into an error return since this kernel does
// not abort the process on an allocator failure.
var ErrPoolExhausted = fmt.Errorf("xhci: memory pool exhausted")

// Allocator is a bump allocator over a fixed-size byte arena, grounded on
// external.rs's Allocator: every request is rounded up to the requested
// alignment and checked against an optional allocation boundary (no
// allocation may straddle a boundary-aligned region), then the bump
// pointer advances past it. Free is a documented no-op, exactly as the
// original's free() does nothing — xHCI ring/context memory is never
// released for the controller's lifetime.
type Allocator struct {
	pool   []byte
	offset int
}

// NewAllocator builds an allocator over a fresh zeroed arena of
// MemoryPoolSize bytes.
func NewAllocator() *Allocator {
	return &Allocator{pool: make([]byte, MemoryPoolSize)}
}

// Allocate reserves size bytes aligned to align, never letting the
// region cross a boundary-byte boundary (pass 0 for no boundary
// constraint), mirroring the original's align+boundary-aware bump logic.
func (a *Allocator) Allocate(size, align, boundary int) (int, error) {
	if align <= 0 {
		align = 1
	}
	start := alignUp(a.offset, align)
	if boundary > 0 {
		boundaryStart := alignDown(start, boundary)
		if start+size > boundaryStart+boundary {
			start = boundaryStart + boundary
		}
	}
	if start+size > len(a.pool) {
		return 0, ErrPoolExhausted
	}
	a.offset = start + size
	return start, nil
}

// Bytes returns the backing arena, for callers that need to read or
// write the raw bytes at an offset Allocate returned.
func (a *Allocator) Bytes() []byte { return a.pool }

// Free is a documented no-op; see the Allocator doc comment.
func (a *Allocator) Free(offset, size int) {}

func alignUp(v, align int) int {
	return (v + align - 1) / align * align
}

func alignDown(v, align int) int {
	return v / align * align
}
