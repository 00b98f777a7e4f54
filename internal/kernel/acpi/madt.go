package acpi

import (
	"encoding/binary"
	"fmt"
)

// MADT entry type tags, per the ACPI Multiple APIC Description Table
// (not present in original_source/acpi.rs — the original only parses
// FADT for the PM timer; this supplements the distillation's dropped
// LAPIC/IOAPIC discovery the teacher's internal/acpi/install.go builds
// the guest-facing side of, named in SPEC_FULL.md's acpi section).
const (
	madtEntryLocalAPIC Type = 0
	madtEntryIOAPIC    Type = 1
)

// Type is a MADT interrupt-controller-structure entry's Type byte.
type Type uint8

// LocalAPICEntry mirrors a MADT Processor Local APIC structure.
type LocalAPICEntry struct {
	ProcessorID uint8
	APICID      uint8
	Flags       uint32
}

// IOAPICEntry mirrors a MADT I/O APIC structure.
type IOAPICEntry struct {
	IOAPICID                 uint8
	Address                  uint32
	GlobalSystemInterruptBase uint32
}

// MADT mirrors the Multiple APIC Description Table: the LAPIC's
// flat-mode physical base address, plus every Local APIC and I/O APIC
// entry found while walking its variable-length interrupt-controller
// structure list.
type MADT struct {
	Header            Header
	LocalAPICAddress  uint32
	Flags             uint32
	LocalAPICs        []LocalAPICEntry
	IOAPICs           []IOAPICEntry
}

const madtBodyOffset = HeaderSize + 8 // LocalApicAddress(4) + Flags(4)

// ParseMADT validates raw as an "APIC" table and walks its entry list.
func ParseMADT(raw []byte) (*MADT, error) {
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	if !h.IsValid(raw, "APIC") {
		return nil, fmt.Errorf("acpi: MADT is not valid")
	}
	if len(raw) < madtBodyOffset {
		return nil, fmt.Errorf("acpi: MADT too short: %d bytes", len(raw))
	}

	m := &MADT{
		Header:           h,
		LocalAPICAddress: binary.LittleEndian.Uint32(raw[HeaderSize : HeaderSize+4]),
		Flags:            binary.LittleEndian.Uint32(raw[HeaderSize+4 : HeaderSize+8]),
	}

	off := madtBodyOffset
	for off+2 <= int(h.Length) {
		entryType := Type(raw[off])
		entryLen := int(raw[off+1])
		if entryLen < 2 || off+entryLen > int(h.Length) {
			break
		}
		body := raw[off+2 : off+entryLen]
		switch entryType {
		case madtEntryLocalAPIC:
			if len(body) >= 6 {
				m.LocalAPICs = append(m.LocalAPICs, LocalAPICEntry{
					ProcessorID: body[0],
					APICID:      body[1],
					Flags:       binary.LittleEndian.Uint32(body[2:6]),
				})
			}
		case madtEntryIOAPIC:
			if len(body) >= 10 {
				m.IOAPICs = append(m.IOAPICs, IOAPICEntry{
					IOAPICID:                  body[0],
					Address:                   binary.LittleEndian.Uint32(body[2:6]),
					GlobalSystemInterruptBase: binary.LittleEndian.Uint32(body[6:10]),
				})
			}
		}
		off += entryLen
	}
	return m, nil
}
