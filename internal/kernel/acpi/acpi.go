// Package acpi implements ACPI table discovery (spec.md §4, §6): RSDP
// validation, an XSDT walk, and FADT/MADT parsing to recover the PM
// timer's port and the system's LAPIC IDs and IOAPIC base address.
//
// Grounded on original_source/kernel/src/acpi.rs (DescriptionHeader,
// XSDT, XSDTIter, FADT, sum/is_valid, initialize) for the discovery
// logic, and on the teacher's internal/acpi/builder.go (the matching
// table-header layout, OEM fields, and checksum function) for Go byte
// layout idiom — inverted, since the teacher builds these tables for a
// guest to parse and this package parses tables a real firmware built.
// The original reads tables through raw, possibly-unaligned pointers
// into physical memory (#[repr(C, packed)] structs read via
// read_unaligned); this port instead decodes a []byte view of each
// table with encoding/binary, the same approach the teacher's own
// tableWriter uses for the inverse direction.
package acpi

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is sizeof(DescriptionHeader): the common ACPI system
// description table header every table starts with.
const HeaderSize = 36

// Header mirrors DescriptionHeader's fields, decoded from a table's
// first HeaderSize bytes.
type Header struct {
	Signature       [4]byte
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OEMID           [6]byte
	OEMTableID      [8]byte
	OEMRevision     uint32
	CreatorID       uint32
	CreatorRevision uint32
}

// ParseHeader decodes a Header from the front of b, mirroring reading a
// DescriptionHeader out of a raw table pointer.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("acpi: table too short for header: %d bytes", len(b))
	}
	var h Header
	copy(h.Signature[:], b[0:4])
	h.Length = binary.LittleEndian.Uint32(b[4:8])
	h.Revision = b[8]
	h.Checksum = b[9]
	copy(h.OEMID[:], b[10:16])
	copy(h.OEMTableID[:], b[16:24])
	h.OEMRevision = binary.LittleEndian.Uint32(b[24:28])
	h.CreatorID = binary.LittleEndian.Uint32(b[28:32])
	h.CreatorRevision = binary.LittleEndian.Uint32(b[32:36])
	return h, nil
}

// checksum mirrors sum/sum_inner: the wrapping byte sum of a table's raw
// bytes, which must be 0 for a valid ACPI table (the dual checksum
// spec.md §6 names: the table's own checksum byte is chosen so the total
// sum is zero).
func checksum(b []byte) uint8 {
	var sum uint8
	for _, v := range b {
		sum += v
	}
	return sum
}

// IsValid mirrors DescriptionHeader::is_valid: the table's signature
// must match expectSignature and its full-length byte sum must be zero.
func (h Header) IsValid(raw []byte, expectSignature string) bool {
	if string(h.Signature[:]) != expectSignature {
		return false
	}
	if int(h.Length) > len(raw) {
		return false
	}
	return checksum(raw[:h.Length]) == 0
}

// RSDP mirrors bootloader::acpi::RSDP: the root system description
// pointer handed off by firmware/bootloader, carrying the XSDT's
// physical address. Since this port has no physical memory to address,
// XSDTAddress indexes into whatever byte arena the caller's boot
// information exposes the ACPI tables through.
type RSDP struct {
	Signature    [8]byte
	Checksum     uint8
	OEMID        [6]byte
	Revision     uint8
	RSDTAddress  uint32
	Length       uint32
	XSDTAddress  uint64
	ExtendedChecksum uint8
}

// ParseRSDP decodes the 36-byte ACPI 2.0+ RSDP structure.
func ParseRSDP(b []byte) (RSDP, error) {
	if len(b) < 36 {
		return RSDP{}, fmt.Errorf("acpi: RSDP too short: %d bytes", len(b))
	}
	var r RSDP
	copy(r.Signature[:], b[0:8])
	r.Checksum = b[8]
	copy(r.OEMID[:], b[9:15])
	r.Revision = b[15]
	r.RSDTAddress = binary.LittleEndian.Uint32(b[16:20])
	r.Length = binary.LittleEndian.Uint32(b[20:24])
	r.XSDTAddress = binary.LittleEndian.Uint64(b[24:32])
	r.ExtendedChecksum = b[32]
	return r, nil
}

// IsValid mirrors RSDP::is_valid: the ACPI 1.0 checksum over the first
// 20 bytes must be zero, and for revision >= 2 the extended checksum
// over the full 36-byte structure must also be zero — the "dual
// checksum" spec.md §6 names.
func (r RSDP) IsValid(raw []byte) bool {
	if string(r.Signature[:]) != "RSD PTR " {
		return false
	}
	if len(raw) < 20 || checksum(raw[:20]) != 0 {
		return false
	}
	if r.Revision >= 2 {
		if len(raw) < 36 || checksum(raw[:36]) != 0 {
			return false
		}
	}
	return true
}
