package acpi

import (
	"encoding/binary"
	"testing"
)

// buildTable writes a HeaderSize-prefixed table with the given signature
// and body, then patches the checksum byte so the whole table sums to
// zero — mirroring the teacher's own tableWriter.Append/checksum.
func buildTable(signature string, body []byte) []byte {
	raw := make([]byte, HeaderSize+len(body))
	copy(raw[0:4], signature)
	binary.LittleEndian.PutUint32(raw[4:8], uint32(len(raw)))
	raw[8] = 1
	copy(raw[16:24], "TESTTBL1")
	copy(raw[HeaderSize:], body)

	var sum uint8
	for _, b := range raw {
		sum += b
	}
	raw[9] = uint8(0) - sum
	return raw
}

func TestParseHeaderAndChecksum(t *testing.T) {
	raw := buildTable("FACP", make([]byte, 276-HeaderSize))
	h, err := ParseHeader(raw)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if !h.IsValid(raw, "FACP") {
		t.Fatalf("expected valid FACP table")
	}
	if h.IsValid(raw, "APIC") {
		t.Fatalf("expected signature mismatch to be invalid")
	}
	raw[20] ^= 0xFF
	if h.IsValid(raw, "FACP") {
		t.Fatalf("expected corrupted table to fail checksum")
	}
}

func TestRSDPDualChecksum(t *testing.T) {
	raw := make([]byte, 36)
	copy(raw[0:8], "RSD PTR ")
	raw[15] = 2 // revision 2: ACPI 2.0+, extended checksum applies
	binary.LittleEndian.PutUint64(raw[24:32], 0x1000)

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

	r, err := ParseRSDP(raw)
	if err != nil {
		t.Fatalf("ParseRSDP: %v", err)
	}
	if !r.IsValid(raw) {
		t.Fatalf("expected valid dual-checksummed RSDP")
	}
	if r.XSDTAddress != 0x1000 {
		t.Fatalf("expected XSDT address 0x1000, got %#x", r.XSDTAddress)
	}
}

func TestXSDTEntriesAndLookup(t *testing.T) {
	fadt := buildTable("FACP", make([]byte, 276-HeaderSize))
	body := make([]byte, 8)
	binary.LittleEndian.PutUint64(body, 0x2000)
	xsdt := buildTable("XSDT", body)

	x, err := ParseXSDT(xsdt)
	if err != nil {
		t.Fatalf("ParseXSDT: %v", err)
	}
	entries := x.Entries()
	if len(entries) != 1 || entries[0] != 0x2000 {
		t.Fatalf("expected one entry pointing at 0x2000, got %v", entries)
	}

	tables := map[uint64][]byte{0x2000: fadt}
	found, ok := TableLookup(entries, tables, "FACP")
	if !ok {
		t.Fatalf("expected to find FACP table")
	}
	if _, err := ParseFADT(found); err != nil {
		t.Fatalf("ParseFADT: %v", err)
	}
}

func TestFADTFields(t *testing.T) {
	body := make([]byte, 276-HeaderSize)
	binary.LittleEndian.PutUint32(body[fadtPMTimerBlockOffset-HeaderSize:], 0x608)
	binary.LittleEndian.PutUint32(body[fadtFlagsOffset-HeaderSize:], 0x1234)
	raw := buildTable("FACP", body)

	f, err := ParseFADT(raw)
	if err != nil {
		t.Fatalf("ParseFADT: %v", err)
	}
	if f.PMTimerBlock() != 0x608 {
		t.Fatalf("expected PM timer block 0x608, got %#x", f.PMTimerBlock())
	}
	if f.Flags() != 0x1234 {
		t.Fatalf("expected flags 0x1234, got %#x", f.Flags())
	}
}

func TestMADTWalksEntries(t *testing.T) {
	var body []byte
	body = binary.LittleEndian.AppendUint32(body, 0xFEE00000) // LocalAPICAddress
	body = binary.LittleEndian.AppendUint32(body, 1)           // Flags

	localAPIC := []byte{0, 8, 0 /*ProcessorID*/, 0 /*APICID*/, 1, 0, 0, 0}
	body = append(body, localAPIC...)

	ioapic := make([]byte, 12)
	ioapic[0], ioapic[1] = 1, 12
	ioapic[2] = 2 // IOAPICID
	binary.LittleEndian.PutUint32(ioapic[4:8], 0xFEC00000)
	binary.LittleEndian.PutUint32(ioapic[8:12], 0)
	body = append(body, ioapic...)

	raw := buildTable("APIC", body)
	m, err := ParseMADT(raw)
	if err != nil {
		t.Fatalf("ParseMADT: %v", err)
	}
	if m.LocalAPICAddress != 0xFEE00000 {
		t.Fatalf("expected LAPIC address 0xFEE00000, got %#x", m.LocalAPICAddress)
	}
	if len(m.LocalAPICs) != 1 || m.LocalAPICs[0].Flags != 1 {
		t.Fatalf("expected one local APIC entry with flags=1, got %+v", m.LocalAPICs)
	}
	if len(m.IOAPICs) != 1 || m.IOAPICs[0].IOAPICID != 2 || m.IOAPICs[0].Address != 0xFEC00000 {
		t.Fatalf("expected one IOAPIC entry, got %+v", m.IOAPICs)
	}
}
