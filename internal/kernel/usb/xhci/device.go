package xhci

// RingLength mirrors device.rs's RING_LENGTH: the TRB count every
// per-device transfer ring (control pipe and interrupt-in endpoints
// alike) is allocated with.
const RingLength = 32

// DataBuffSize mirrors DATA_BUFF_SIZE: the scratch buffer a device slot
// uses for control-transfer data stages (descriptor reads, etc).
const DataBuffSize = 256

// SlotContext and EndpointContext are reduced device/input-context
// fields, grounded on context.rs's DeviceContext/InputContext — the
// original's full bitfield layout is reduced here to a few named fields
// (the hub fields and average TRB length are dropped), since nothing in
// this kernel parses that layout off real controller memory. phase.go
// writes ContextEntries and each endpoint's type, max packet size,
// interval and error count; the other fields are carried but not set.
type SlotContext struct {
	RouteString  uint32
	Speed        uint8
	ContextEntries uint8
	RootHubPortNumber uint8
}

type EndpointContext struct {
	EndpointType   uint8
	MaxPacketSize  uint16
	Interval       uint8
	ErrorCount     uint8
	TRDequeuePointer uint64
	DequeueCycleState bool
}

// InputContext mirrors InputContext: a control section (which contexts
// the next AddressDevice/ConfigureEndpoint command should evaluate) plus
// a device context to write into the real slot.
type InputContext struct {
	EnableSlotContext bool
	EnableEndpoints   map[int]bool
	Slot              SlotContext
	Endpoints         map[int]EndpointContext
}

func NewInputContext() *InputContext {
	return &InputContext{EnableEndpoints: make(map[int]bool), Endpoints: make(map[int]EndpointContext)}
}

// CopyFromDeviceContext mirrors copy_from_device_context, seeding the
// input context's slot fields from the slot's current device context
// before a ConfigureEndpoint command that must preserve existing state.
func (ic *InputContext) CopyFromDeviceContext(dc *DeviceContext) {
	ic.Slot = dc.Slot
}

// DeviceContext mirrors DeviceContext: what the controller has actually
// committed for a slot, as opposed to InputContext's staged changes.
type DeviceContext struct {
	Slot      SlotContext
	Endpoints map[int]EndpointContext
}

func NewDeviceContext() *DeviceContext {
	return &DeviceContext{Endpoints: make(map[int]EndpointContext)}
}

// DeviceSlot mirrors device.rs's DeviceSlot<D, A>: a controller-assigned
// slot ID, its default control pipe and control-transfer scratch buffer,
// its staged input context and committed device context, plus a handle
// back to the shared doorbell and memory allocator every per-endpoint
// ring is carved from.
type DeviceSlot struct {
	SlotID             uint8
	DefaultControlRing *TransferRing
	InputContext       *InputContext
	DeviceContext      *DeviceContext
	DataBuff           [DataBuffSize]byte
	Doorbell           Doorbell
	Allocator          *Allocator
	InterruptRings     map[int]*TransferRing
}

// NewDeviceSlot mirrors DeviceSlot::new: allocates the default control
// pipe's transfer ring from the shared allocator and seeds empty
// input/device contexts.
func NewDeviceSlot(slotID uint8, doorbell Doorbell, allocator *Allocator) (*DeviceSlot, error) {
	if _, err := allocator.Allocate(RingLength*16, 64, 4096); err != nil {
		return nil, err
	}
	return &DeviceSlot{
		SlotID:             slotID,
		DefaultControlRing: NewTransferRing(RingLength),
		InputContext:       NewInputContext(),
		DeviceContext:      NewDeviceContext(),
		Doorbell:           doorbell,
		Allocator:          allocator,
		InterruptRings:     make(map[int]*TransferRing),
	}, nil
}

// TryAllocTransferRing mirrors try_alloc_transfer_ring: carves a fresh
// per-endpoint ring of ringSize TRBs from the shared allocator, used by
// Phase3 to give every HID interrupt-in endpoint its own ring.
func (s *DeviceSlot) TryAllocTransferRing(ringSize int) (*TransferRing, error) {
	if _, err := s.Allocator.Allocate(ringSize*16, 64, 4096); err != nil {
		return nil, err
	}
	return NewTransferRing(ringSize), nil
}

// CopyDeviceContextToInput mirrors copy_device_context_to_input.
func (s *DeviceSlot) CopyDeviceContextToInput() {
	s.InputContext.CopyFromDeviceContext(s.DeviceContext)
}
