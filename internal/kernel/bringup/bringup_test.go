package bringup

import (
	"encoding/binary"
	"testing"

	"github.com/sonhs99/redos-go/internal/kernel/memory/frame"
)

func buildTable(signature string, body []byte) []byte {
	raw := make([]byte, 36+len(body))
	copy(raw[0:4], signature)
	binary.LittleEndian.PutUint32(raw[4:8], uint32(len(raw)))
	raw[8] = 1
	copy(raw[16:24], "TESTTBL1")
	copy(raw[36:], body)

	var sum uint8
	for _, b := range raw {
		sum += b
	}
	raw[9] = uint8(0) - sum
	return raw
}

func buildRSDP(xsdtAddr uint64) []byte {
	raw := make([]byte, 36)
	copy(raw[0:8], "RSD PTR ")
	raw[15] = 2
	binary.LittleEndian.PutUint64(raw[24:32], xsdtAddr)

	var sum1 uint8
	for _, b := range raw[:20] {
		sum1 += b
	}
	raw[8] = uint8(0) - sum1

	var sum2 uint8
	for _, b := range raw[:36] {
		sum2 += b
	}
	raw[32] = uint8(0) - sum2
	return raw
}

func TestBootAssemblesSubsystemsWithoutACPI(t *testing.T) {
	info := BootInfo{
		TotalFrames: 256,
		MemoryMap: []frame.MemoryDescriptor{
			{Type: frame.TypeConventionalMemory, PhysicalStart: 0, NumberOfPages: 256},
		},
		HeapMemory:   make([]byte, 64*1024),
		CPUCount:     1,
		APStackStart: 0x9000,
		APStackSize:  0x1000,
		IdleEntry:    func(apicID uint8) {},
	}
	k, err := Boot(info)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if k.GDT == nil || !k.GDT.Loaded() {
		t.Fatalf("expected GDT loaded")
	}
	if k.Frames == nil || k.Heap == nil {
		t.Fatalf("expected allocators initialized")
	}
	if k.IdleTask == nil {
		t.Fatalf("expected idle task registered")
	}
	if k.APsStarted != 0 {
		t.Fatalf("expected no APs started for CPUCount=1, got %d", k.APsStarted)
	}
	if k.XHCI == nil || k.Events == nil {
		t.Fatalf("expected xHCI manager and event queue installed")
	}
}

func TestBootDiscoversACPITables(t *testing.T) {
	fadtBody := make([]byte, 276-36)
	binary.LittleEndian.PutUint32(fadtBody[76-36:], 0x608)
	fadt := buildTable("FACP", fadtBody)

	var madtBody []byte
	madtBody = binary.LittleEndian.AppendUint32(madtBody, 0xFEE00000)
	madtBody = binary.LittleEndian.AppendUint32(madtBody, 1)
	ioapicEntry := make([]byte, 12)
	ioapicEntry[0], ioapicEntry[1] = 1, 12
	ioapicEntry[2] = 2
	binary.LittleEndian.PutUint32(ioapicEntry[4:8], 0xFEC00000)
	madtBody = append(madtBody, ioapicEntry...)
	madt := buildTable("APIC", madtBody)

	var xsdtBody []byte
	xsdtBody = binary.LittleEndian.AppendUint64(xsdtBody, 0x3000)
	xsdtBody = binary.LittleEndian.AppendUint64(xsdtBody, 0x4000)
	xsdt := buildTable("XSDT", xsdtBody)

	info := BootInfo{
		TotalFrames: 64,
		MemoryMap: []frame.MemoryDescriptor{
			{Type: frame.TypeConventionalMemory, PhysicalStart: 0, NumberOfPages: 64},
		},
		HeapMemory: make([]byte, 16*1024),
		RSDP:       buildRSDP(0x2000),
		ACPITables: map[uint64][]byte{
			0x2000: xsdt,
			0x3000: fadt,
			0x4000: madt,
		},
		CPUCount: 1,
	}
	k, err := Boot(info)
	if err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if k.FADT == nil || k.FADT.PMTimerBlock() != 0x608 {
		t.Fatalf("expected FADT discovered with PM timer block 0x608")
	}
	if k.MADT == nil || k.LAPICBase != 0xFEE00000 {
		t.Fatalf("expected MADT discovered with LAPIC base 0xFEE00000")
	}
	if k.IOAPIC == nil {
		t.Fatalf("expected IOAPIC installed from MADT entry")
	}
}
