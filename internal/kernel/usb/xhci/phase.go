package xhci

// DriverType classifies an interface descriptor the way driver.rs's
// ClassDriverOperate implementors are selected: only HID boot-protocol
// interfaces are enumerated further, everything else is left alone.
type DriverType int

const (
	DriverUnknown DriverType = iota
	DriverHIDKeyboard
	DriverHIDMouse
)

// InterfaceDescriptor is the reduced subset of the USB interface
// descriptor Phase2 needs: which interface/alternate this is, and which
// class driver (if any) claims it.
type InterfaceDescriptor struct {
	InterfaceNumber uint8
	AlternateSetting uint8
	NumEndpoints    uint8
	DriverType      DriverType
	EndpointAddress uint8 // the interrupt-in endpoint this interface exposes
	MaxPacketSize   uint16
	// Interval is the endpoint descriptor's raw bInterval field (in
	// frames), before the "minus one" adjustment the xHCI endpoint
	// context's Interval field requires.
	Interval uint8
}

// ConfigurationDescriptor is what Phase1's GetDescriptor(Configuration)
// request returns: the USB configuration value to install plus its
// interfaces. The original parses this out of a raw byte buffer via
// DescriptorIterator; this port accepts it pre-decoded, since nothing
// here owns a real USB wire format to decode bytes from.
type ConfigurationDescriptor struct {
	ConfigurationValue uint8
	Interfaces         []InterfaceDescriptor
}

// InitState mirrors phase.rs's InitState(bool): whether a device slot's
// Phase machine has finished its four-phase bring-up.
type InitState struct{ initialized bool }

func InitStateInitialized() InitState    { return InitState{initialized: true} }
func InitStateNotInitialized() InitState { return InitState{initialized: false} }
func (s InitState) IsInitialized() bool  { return s.initialized }

// Phase mirrors phase.rs's Phase<D, A> trait: each phase reacts to a
// transfer-event completion and reports which interfaces it has found so
// far, transitioning the slot's stored Phase on completion.
type Phase interface {
	// OnTransferEventReceived advances the state machine in response to
	// a completed control transfer, returning the next Phase to install
	// (itself, if not yet complete) and the slot's current InitState.
	OnTransferEventReceived(slot *DeviceSlot, ev Event) (Phase, InitState, error)
	InterfaceNums() []uint8
}

// configurationTypeDescriptor mirrors the CONFIGURATION_TYPE=2 constant
// Phase1's GetDescriptor request uses.
const configurationTypeDescriptor = 2

// Phase1 mirrors phase.rs's Phase1: issues a GetDescriptor(Configuration)
// control-in request against the default control pipe and waits for its
// completion.
type Phase1 struct {
	fetch     func(slot *DeviceSlot) (*ConfigurationDescriptor, error)
	setConfig func(slot *DeviceSlot, configValue uint8) error
}

// NewPhase1 builds the initial phase, taking the functions that actually
// issue the GetDescriptor(Configuration) and SetConfiguration requests
// against slot's default control pipe — supplied by the caller since
// this port has no real control-pipe transport to drive.
func NewPhase1(fetch func(slot *DeviceSlot) (*ConfigurationDescriptor, error), setConfig func(slot *DeviceSlot, configValue uint8) error) *Phase1 {
	return &Phase1{fetch: fetch, setConfig: setConfig}
}

func (p *Phase1) OnTransferEventReceived(slot *DeviceSlot, ev Event) (Phase, InitState, error) {
	if ev.Kind != EventTransfer || ev.Target != TargetData {
		return p, InitStateNotInitialized(), nil
	}
	config, err := p.fetch(slot)
	if err != nil {
		return p, InitStateNotInitialized(), err
	}
	return &Phase2{Config: config, setConfig: p.setConfig}, InitStateNotInitialized(), nil
}

func (p *Phase1) InterfaceNums() []uint8 { return nil }

// Phase2 mirrors phase.rs's Phase2: parses the configuration descriptor
// returned by Phase1, keeps only HID interfaces, and issues
// SetConfiguration.
type Phase2 struct {
	Config     *ConfigurationDescriptor
	setConfig  func(slot *DeviceSlot, configValue uint8) error
	interfaces []InterfaceDescriptor
}

func (p *Phase2) OnTransferEventReceived(slot *DeviceSlot, ev Event) (Phase, InitState, error) {
	if p.Config == nil {
		return p, InitStateNotInitialized(), nil
	}
	for _, iface := range p.Config.Interfaces {
		if iface.DriverType != DriverUnknown {
			p.interfaces = append(p.interfaces, iface)
		}
	}
	if p.setConfig != nil {
		if err := p.setConfig(slot, p.Config.ConfigurationValue); err != nil {
			return p, InitStateNotInitialized(), err
		}
	}
	return &Phase3{interfaces: p.interfaces}, InitStateNotInitialized(), nil
}

func (p *Phase2) InterfaceNums() []uint8 {
	nums := make([]uint8, len(p.interfaces))
	for i, iface := range p.interfaces {
		nums[i] = iface.InterfaceNumber
	}
	return nums
}

// Phase3 mirrors phase.rs's Phase3: builds the input context (enable
// slot context plus one context entry per HID interface) and allocates
// each HID interface its own interrupt-in transfer ring.
type Phase3 struct {
	interfaces []InterfaceDescriptor
}

func (p *Phase3) OnTransferEventReceived(slot *DeviceSlot, ev Event) (Phase, InitState, error) {
	slot.InputContext = NewInputContext()
	slot.InputContext.EnableSlotContext = true
	slot.InputContext.Slot.ContextEntries = uint8(len(p.interfaces) + 1)

	for _, iface := range p.interfaces {
		ring, err := slot.TryAllocTransferRing(RingLength)
		if err != nil {
			return p, InitStateNotInitialized(), err
		}
		epIndex := endpointContextIndex(iface.EndpointAddress)
		slot.InterruptRings[epIndex] = ring
		slot.InputContext.EnableEndpoints[epIndex] = true
		slot.InputContext.Endpoints[epIndex] = EndpointContext{
			EndpointType:  endpointTypeInterruptIn,
			MaxPacketSize: iface.MaxPacketSize,
			Interval:      iface.Interval - 1,
			ErrorCount:    endpointDefaultErrorCount,
		}
	}
	return &Phase4{interfaces: p.interfaces}, InitStateInitialized(), nil
}

func (p *Phase3) InterfaceNums() []uint8 {
	nums := make([]uint8, len(p.interfaces))
	for i, iface := range p.interfaces {
		nums[i] = iface.InterfaceNumber
	}
	return nums
}

// endpointTypeInterruptIn mirrors xhci::context::EndpointType::InterruptIn.
const endpointTypeInterruptIn = 7

// endpointDefaultErrorCount mirrors endpoint.rs's write_endpoint_context
// hardcoding set_error_count(3) for every endpoint it configures.
const endpointDefaultErrorCount = 3

// endpointContextIndex mirrors DeviceContextIndex::from_endpoint: an IN
// endpoint address maps to context index 2*n+1, an OUT to 2*n.
func endpointContextIndex(endpointAddress uint8) int {
	number := int(endpointAddress & 0x0F)
	if endpointAddress&0x80 != 0 {
		return 2*number + 1
	}
	return 2 * number
}

// Phase4 mirrors phase.rs's Phase4: the terminal phase, which kicks off
// interrupt-in polling on every allocated ring and never transitions
// again.
type Phase4 struct {
	interfaces []InterfaceDescriptor
	started    bool
}

func (p *Phase4) OnTransferEventReceived(slot *DeviceSlot, ev Event) (Phase, InitState, error) {
	if !p.started {
		for epIndex := range slot.InterruptRings {
			ring := slot.InterruptRings[epIndex]
			ring.Push(TRB{TRBType: TypeNormal})
			slot.Doorbell.Notify(uint8(epIndex), 0)
		}
		p.started = true
	}
	return p, InitStateNotInitialized(), nil
}

func (p *Phase4) InterfaceNums() []uint8 {
	nums := make([]uint8, len(p.interfaces))
	for i, iface := range p.interfaces {
		nums[i] = iface.InterfaceNumber
	}
	return nums
}
