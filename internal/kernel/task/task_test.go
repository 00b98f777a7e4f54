package task

import "testing"

func TestNewPrimesEntryContext(t *testing.T) {
	tc := New(1, "init", 0xDEAD0000, 0xC0FFEE, 0x2000, 0x1000, Flags(0).WithPriority(10))

	if tc.Context.RIP != 0xDEAD0000 {
		t.Fatalf("expected RIP == entry, got %#x", tc.Context.RIP)
	}
	wantRSP := uint64(0x2000 + 0x1000 - 8)
	if tc.Context.RSP != wantRSP {
		t.Fatalf("expected RSP == stack top - 8, got %#x want %#x", tc.Context.RSP, wantRSP)
	}
	if tc.Context.CS != codeSelector || tc.Context.SS != dataSelector {
		t.Fatalf("expected flat ring-0 selectors, got cs=%#x ss=%#x", tc.Context.CS, tc.Context.SS)
	}
	if tc.Context.RFLAGS&rflagsIF == 0 {
		t.Fatalf("expected interrupts enabled in a new task's rflags")
	}
	if tc.ExitReturnAddress() != 0xC0FFEE {
		t.Fatalf("expected exit return address preserved, got %#x", tc.ExitReturnAddress())
	}
	if tc.Flags.Priority() != 10 {
		t.Fatalf("expected priority 10, got %d", tc.Flags.Priority())
	}
}

func TestFlagsBits(t *testing.T) {
	f := Flags(0).WithPriority(5) | Terminate | Thread
	if f.Priority() != 5 {
		t.Fatalf("expected priority 5, got %d", f.Priority())
	}
	if !f.Terminating() {
		t.Fatalf("expected Terminating true")
	}
	if !f.IsThread() {
		t.Fatalf("expected IsThread true")
	}
	if f.IsSystem() {
		t.Fatalf("expected IsSystem false")
	}
}

// TestContextSwitchFidelity asserts the property spec.md §8 requires:
// switch(A,B) followed by switch(B,A) resumes A exactly where it left off.
func TestContextSwitchFidelity(t *testing.T) {
	a := &Context{RAX: 1, RIP: 0x1000, RSP: 0x2000, CS: codeSelector, SS: dataSelector}
	b := &Context{RAX: 2, RIP: 0x3000, RSP: 0x4000, CS: codeSelector, SS: dataSelector}

	aSnapshot := *a
	var resumedInto *Context

	ContextSwitch(a, b, func(c *Context) { *c = aSnapshot }, func(c *Context) { resumedInto = c })
	if resumedInto != b {
		t.Fatalf("expected first switch to resume into b")
	}

	bSnapshot := *b
	ContextSwitch(b, a, func(c *Context) { *c = bSnapshot }, func(c *Context) { resumedInto = c })
	if resumedInto != a {
		t.Fatalf("expected second switch to resume into a")
	}
	if *a != aSnapshot {
		t.Fatalf("expected a's context unchanged across the round trip: got %+v want %+v", *a, aSnapshot)
	}
}
