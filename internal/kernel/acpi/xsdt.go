package acpi

import (
	"encoding/binary"
	"fmt"
)

// XSDT mirrors XSDT/XSDTIter: the extended system description table,
// whose body (everything past the common header) is a packed array of
// 8-byte pointers to other tables.
type XSDT struct {
	Header Header
	raw    []byte
}

// ParseXSDT validates raw as an "XSDT" table and wraps it for iteration.
func ParseXSDT(raw []byte) (*XSDT, error) {
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	if !h.IsValid(raw, "XSDT") {
		return nil, fmt.Errorf("acpi: XSDT is not valid")
	}
	return &XSDT{Header: h, raw: raw}, nil
}

// Entries mirrors XSDT::entries: every table-pointer slot following the
// header. Since this port has no physical address space to dereference,
// it returns the raw pointer values rather than *DescriptionHeader —
// TableLookup below resolves one against a caller-supplied table map.
func (x *XSDT) Entries() []uint64 {
	n := (int(x.Header.Length) - HeaderSize) / 8
	entries := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		off := HeaderSize + i*8
		entries = append(entries, binary.LittleEndian.Uint64(x.raw[off:off+8]))
	}
	return entries
}

// TableLookup mirrors xsdt.entries().find(|entry| entry.is_valid(sig)):
// given a map from the pointer values Entries returns to the raw bytes
// of the table at that address (however the caller's boot information
// makes that association), find the first table whose header validates
// against signature.
func TableLookup(entries []uint64, tables map[uint64][]byte, signature string) ([]byte, bool) {
	for _, addr := range entries {
		raw, ok := tables[addr]
		if !ok {
			continue
		}
		h, err := ParseHeader(raw)
		if err != nil {
			continue
		}
		if h.IsValid(raw, signature) {
			return raw, true
		}
	}
	return nil, false
}
