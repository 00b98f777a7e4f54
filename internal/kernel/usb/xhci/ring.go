package xhci

import "fmt"

// ErrRingFull names the condition of a ring whose single segment has no
// room left before its Link TRB. TransferRing.Push does not return it:
// like push.rs, Push always leaves the last slot for the Link TRB and
// rolls over to slot 0, overwriting whatever was there.
var ErrRingFull = fmt.Errorf("xhci: transfer ring full")

// TransferRing models a single-segment xHCI ring buffer: a flat array of
// TRBs ending in a Link TRB that points back at slot 0 and toggles the
// producer's cycle bit, mirroring ring.rs's TransferRing. The original
// addresses ring memory by raw physical address (ring_base_addr,
// ring_ptr_addr, ring_end_addr); this port keeps the same three
// quantities as slice indices into a backing []TRB instead, since Go
// code never holds a bare physical address.
type TransferRing struct {
	slots    []TRB
	base     int
	ptr      int
	end      int
	cycleBit bool
}

// NewTransferRing allocates a ring of size slots, reserving the last slot
// for the Link TRB exactly as ring.rs's new() does, and seeds it so the
// ring is immediately ready to accept a Push.
func NewTransferRing(size int) *TransferRing {
	r := &TransferRing{
		slots:    make([]TRB, size),
		base:     0,
		end:      size - 1,
		cycleBit: true,
	}
	r.ptr = r.base
	r.writeLink()
	return r
}

func (r *TransferRing) writeLink() {
	r.slots[r.end] = TRB{
		TRBType:  TypeLink,
		CycleBit: r.cycleBit,
		Control:  1 << 1, // toggle_cycle
		Parameter: uint64(r.base),
	}
}

// isEndEventAddress mirrors ring.rs's check for "about to write the Link
// TRB slot": pushing one more TRB would land on the reserved Link slot.
func (r *TransferRing) isEndEventAddress() bool {
	return r.ptr == r.end
}

// rollback mirrors TransferRing::rollback: toggling the ring's cycle bit,
// rewriting the Link TRB to reflect it, and resetting ring_ptr_addr back
// to ring_base_addr.
func (r *TransferRing) rollback() {
	r.cycleBit = !r.cycleBit
	r.writeLink()
	r.ptr = r.base
}

// Push writes trb at the current producer pointer, setting its cycle bit
// to the ring's current cycle, then advances the pointer — rolling over
// via the Link TRB when the next write would hit the reserved slot.
func (r *TransferRing) Push(trb TRB) int {
	trb.CycleBit = r.cycleBit
	slot := r.ptr
	r.slots[slot] = trb
	r.ptr++
	if r.isEndEventAddress() {
		r.rollback()
	}
	return slot
}

// At returns the TRB stored at a given slot, used by the event ring and
// tests to read back what Push wrote.
func (r *TransferRing) At(slot int) TRB { return r.slots[slot] }

// BaseAddr and EndAddr expose the ring's bounds the way ring_base_addr/
// ring_end_addr do, for callers (the event ring) that need to recognize
// "this is the ring's own Link TRB" while walking slots.
func (r *TransferRing) BaseAddr() int { return r.base }
func (r *TransferRing) EndAddr() int  { return r.end }
func (r *TransferRing) Len() int      { return len(r.slots) }
