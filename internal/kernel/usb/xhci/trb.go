// Package xhci models the xHCI (USB 3) host-controller stack spec.md §7
// names: TRB command/transfer/event rings, a bump allocator for ring and
// context memory, the doorbell-driven command/event protocol, and the
// four-phase per-device enumeration state machine.
//
// Grounded on original_source/kernel/src/device/xhc/{trb.rs,ring.rs,
// allocator/external.rs,event.rs,phase.rs}. The original lays TRBs out as
// a raw little-endian u128 ("TrbRaw") read back out through a bitfield
// view ("TrbTemplate"); Go has no native 128-bit integer or bitfield
// macro, so TRB is a plain struct with the same named fields, and ring
// storage holds TRB values directly instead of raw 16-byte slots.
package xhci

// Type is a TRB's trb_type field: what kind of command, transfer, or
// event it carries. Named per the xHCI specification, matching the
// constants TrbTemplate::trb_type() decodes against in trb.rs/event.rs.
type Type uint8

const (
	TypeNormal                Type = 1
	TypeSetupStage            Type = 2
	TypeDataStage             Type = 3
	TypeStatusStage           Type = 4
	TypeLink                  Type = 6
	TypeEnableSlotCommand     Type = 9
	TypeAddressDeviceCommand  Type = 11
	TypeConfigureEndpoint     Type = 12
	TypeResetEndpointCommand  Type = 14
	TypeNoOpCommand           Type = 23
	TypeTransferEvent         Type = 32
	TypeCommandCompletion     Type = 33
	TypePortStatusChangeEvent Type = 34
)

// TRB mirrors TrbTemplate: the 4-dword transfer-request block every ring
// slot holds, whether it is a command, a transfer descriptor, or an
// event report.
type TRB struct {
	Parameter       uint64
	Status          uint32
	CycleBit        bool
	EvaluateNextTRB bool
	TRBType         Type
	Control         uint16
}

// AsArray mirrors TrbRaw::as_array, the 4x u32 wire layout a real
// controller would read via DMA. Exposed so tests and the event ring can
// assert on the exact bit packing without needing the controller itself.
func (t TRB) AsArray() [4]uint32 {
	var dw3 uint32
	if t.CycleBit {
		dw3 |= 1
	}
	if t.EvaluateNextTRB {
		dw3 |= 1 << 1
	}
	dw3 |= uint32(t.TRBType&0x3F) << 10
	dw3 |= uint32(t.Control) << 16
	return [4]uint32{
		uint32(t.Parameter),
		uint32(t.Parameter >> 32),
		t.Status,
		dw3,
	}
}

// TRBFromArray is the inverse of AsArray, mirroring TrbRaw::template().
func TRBFromArray(a [4]uint32) TRB {
	return TRB{
		Parameter:       uint64(a[0]) | uint64(a[1])<<32,
		Status:          a[2],
		CycleBit:        a[3]&1 != 0,
		EvaluateNextTRB: a[3]&(1<<1) != 0,
		TRBType:         Type((a[3] >> 10) & 0x3F),
		Control:         uint16(a[3] >> 16),
	}
}
