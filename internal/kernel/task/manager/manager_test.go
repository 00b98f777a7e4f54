package manager

import "testing"

func TestAllocateAssignsIncrementingIDs(t *testing.T) {
	m := New(4)

	t1, err := m.Allocate("a", 0x1000, 0x2000, 0x3000, 0x1000, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	t2, err := m.Allocate("b", 0x1000, 0x2000, 0x3000, 0x1000, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if t1.ID == t2.ID {
		t.Fatalf("expected distinct IDs, got %d twice", t1.ID)
	}

	got, ok := m.Get(t1.ID)
	if !ok || got != t1 {
		t.Fatalf("expected Get to return the allocated TCB")
	}
}

func TestPoolExhaustion(t *testing.T) {
	m := New(1)
	if _, err := m.Allocate("a", 0, 0, 0x1000, 0x100, 0); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if _, err := m.Allocate("b", 0, 0, 0x1000, 0x100, 0); err != ErrPoolExhausted {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestFreeRecyclesAndClearsLinks(t *testing.T) {
	m := New(2)
	t1, _ := m.Allocate("a", 0, 0, 0x1000, 0x100, 0)
	t1.Parent = 7

	m.Free(t1)
	if _, ok := m.Get(t1.ID); ok {
		t.Fatalf("expected freed task to be gone from the lookup table")
	}
	if m.InUse() != 0 {
		t.Fatalf("expected InUse == 0 after Free, got %d", m.InUse())
	}

	t2, err := m.Allocate("b", 0, 0, 0x1000, 0x100, 0)
	if err != nil {
		t.Fatalf("Allocate after Free: %v", err)
	}
	if t2.Parent != 0 {
		t.Fatalf("expected recycled TCB's parent link cleared, got %d", t2.Parent)
	}
}
