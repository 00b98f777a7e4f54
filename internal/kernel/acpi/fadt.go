package acpi

import (
	"encoding/binary"
	"fmt"
)

// FADT field offsets mirror the original's #[repr(C, packed)] FADT: the
// header, then reserved bytes up to PM_TMR_BLK at offset 76, then more
// reserved bytes up to Flags at offset 112.
const (
	fadtPMTimerBlockOffset = 76
	fadtFlagsOffset        = 112
)

// FADT mirrors the original's FADT: a thin view over the raw table bytes
// exposing only the two fields this kernel actually reads — the PM
// timer's I/O port and the fixed feature flags — rather than the full
// ACPI Fixed ACPI Description Table layout, since nothing else here
// consumes the rest of it.
type FADT struct {
	Header Header
	raw    []byte
}

// ParseFADT validates raw as a "FACP" table (FADT's ACPI signature).
func ParseFADT(raw []byte) (*FADT, error) {
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	if !h.IsValid(raw, "FACP") {
		return nil, fmt.Errorf("acpi: FADT is not valid")
	}
	if len(raw) < fadtFlagsOffset+4 {
		return nil, fmt.Errorf("acpi: FADT too short: %d bytes", len(raw))
	}
	return &FADT{Header: h, raw: raw}, nil
}

// PMTimerBlock mirrors reading pm_tmr_blk: the I/O port the ACPI PM
// timer's free-running counter is read from.
func (f *FADT) PMTimerBlock() uint32 {
	return binary.LittleEndian.Uint32(f.raw[fadtPMTimerBlockOffset : fadtPMTimerBlockOffset+4])
}

// Flags mirrors reading the fixed feature flags field.
func (f *FADT) Flags() uint32 {
	return binary.LittleEndian.Uint32(f.raw[fadtFlagsOffset : fadtFlagsOffset+4])
}
