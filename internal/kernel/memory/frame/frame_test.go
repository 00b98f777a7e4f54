package frame

import "testing"

// TestScanWithHole reproduces spec scenario 1: a memory map with a hole
// (MMIO) between two conventional regions.
func TestScanWithHole(t *testing.T) {
	a := New(0x1000)
	a.Scan([]MemoryDescriptor{
		{Type: TypeConventionalMemory, PhysicalStart: 0x10_0000, NumberOfPages: 0x100},
		{Type: TypeOther, PhysicalStart: 0x20_0000, NumberOfPages: 0x80},
		{Type: TypeConventionalMemory, PhysicalStart: 0x40_0000, NumberOfPages: 0x100},
	})

	for _, f := range []ID{0, 0x50, 0xFF} {
		if !a.getBit(f) {
			t.Fatalf("expected startup-hole frame %#x marked used", f)
		}
	}
	for _, f := range []ID{0x200, 0x250, 0x27F} {
		if !a.getBit(f) {
			t.Fatalf("expected MMIO-hole frame %#x marked used", f)
		}
	}
	if a.getBit(0x100) {
		t.Fatalf("expected frame 0x100 (start of first conventional region) to be free")
	}

	begin, end := a.Range()
	if begin != 1 {
		t.Fatalf("expected range_begin == 1, got %#x", begin)
	}
	if end != 0x500 {
		t.Fatalf("expected range_end == 0x500, got %#x", end)
	}
}

func TestAllocateFreeRoundTrip(t *testing.T) {
	a := New(0x100)
	a.SetRange(1, 0x100)

	before := append([]uint64(nil), a.bits...)

	base, err := a.Allocate(10)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	a.Free(base, 10)

	for i := range before {
		if before[i] != a.bits[i] {
			t.Fatalf("bitmap word %d changed across allocate/free round trip: before=%#x after=%#x", i, before[i], a.bits[i])
		}
	}
}

func TestAllocateSkipsUsedRun(t *testing.T) {
	a := New(0x20)
	a.SetRange(0, 0x20)
	a.Mark(4, 2) // frames [4,6) used

	base, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if base != 0 {
		t.Fatalf("expected first run [0,4) to satisfy the request, got base=%#x", base)
	}

	base2, err := a.Allocate(4)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if base2 != 6 {
		t.Fatalf("expected allocator to skip the used run and land at 6, got %#x", base2)
	}
}

func TestAllocateNoSpace(t *testing.T) {
	a := New(8)
	a.SetRange(0, 4)

	if _, err := a.Allocate(5); err != ErrNoSpace {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
}
