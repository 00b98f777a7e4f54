package xhci

import "testing"

func TestTRBRoundTripsThroughArray(t *testing.T) {
	trb := TRB{Parameter: 0x1122334455667788, Status: 0xAABBCCDD, CycleBit: true, TRBType: TypeEnableSlotCommand, Control: 0x1234}
	got := TRBFromArray(trb.AsArray())
	if got.Parameter != trb.Parameter || got.Status != trb.Status || got.CycleBit != trb.CycleBit || got.TRBType != trb.TRBType || got.Control != trb.Control {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, trb)
	}
}

func TestTransferRingWrapsAtLinkTRB(t *testing.T) {
	r := NewTransferRing(4) // 3 usable slots + Link
	for i := 0; i < 3; i++ {
		r.Push(TRB{TRBType: TypeNormal, Status: uint32(i)})
	}
	// the 3rd push filled the last usable slot and rolled the pointer over
	// the Link TRB back to slot 0
	if r.At(3).TRBType != TypeLink {
		t.Fatalf("expected slot 3 to hold the Link TRB")
	}
	r.Push(TRB{TRBType: TypeNormal, Status: 99})
	if r.At(0).Status != 99 {
		t.Fatalf("expected wraparound push to land back at slot 0, got %+v", r.At(0))
	}
}

func TestAllocatorBumpsAndRespectsBoundary(t *testing.T) {
	a := NewAllocator()
	off1, err := a.Allocate(64, 64, 4096)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	off2, err := a.Allocate(64, 64, 4096)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if off2 <= off1 {
		t.Fatalf("expected bump allocation to advance, got %d then %d", off1, off2)
	}
	if off1%64 != 0 || off2%64 != 0 {
		t.Fatalf("expected alignment to 64, got %d and %d", off1, off2)
	}
}

func TestAllocatorExhaustion(t *testing.T) {
	a := &Allocator{pool: make([]byte, 16)}
	if _, err := a.Allocate(32, 1, 0); err != ErrPoolExhausted {
		t.Fatalf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestEventRingReadsInOrder(t *testing.T) {
	er := NewEventRing(8)
	er.PushEvent(TRB{TRBType: TypeCommandCompletion, Control: 1 << 8, Status: 1 << 24}, 0)
	er.PushEvent(TRB{TRBType: TypeTransferEvent, Control: 2<<8 | 3, Status: 1 << 24}, TypeDataStage)

	first, ok := er.Read()
	if !ok || first.Kind != EventCommandCompletion || first.SlotID != 1 {
		t.Fatalf("expected first event to be command completion for slot 1, got %+v ok=%v", first, ok)
	}
	second, ok := er.Read()
	if !ok || second.Kind != EventTransfer || second.SlotID != 2 || second.Target != TargetData {
		t.Fatalf("expected second event to be a data-stage transfer event for slot 2, got %+v ok=%v", second, ok)
	}
	if _, ok := er.Read(); ok {
		t.Fatalf("expected no third event")
	}
}

func TestCommandRingRingsDoorbellOnEveryPush(t *testing.T) {
	db := &RecordingDoorbell{}
	cr := NewCommandRing(8, db)
	cr.PushNoOp()
	cr.PushEnableSlot()
	cr.PushAddressDevice(1, 0x1000, false)
	if len(db.Rings) != 3 {
		t.Fatalf("expected 3 doorbell rings, got %d", len(db.Rings))
	}
	for _, r := range db.Rings {
		if r.Target != 0 {
			t.Fatalf("expected command-ring doorbell rings to target slot 0, got %+v", r)
		}
	}
}

func TestManagerEnumeratesSlotThroughPhases(t *testing.T) {
	db := &RecordingDoorbell{}
	mgr := NewManager(db, 16)

	mgr.RequestEnableSlot()
	mgr.eventRing.PushEvent(TRB{TRBType: TypeCommandCompletion, Control: 5 << 8, Status: 1 << 24}, 0)

	fetchCalled := false
	newPhase1 := func(slotID uint8) Phase {
		return NewPhase1(func(slot *DeviceSlot) (*ConfigurationDescriptor, error) {
			fetchCalled = true
			return &ConfigurationDescriptor{ConfigurationValue: 1}, nil
		}, func(slot *DeviceSlot, configValue uint8) error { return nil })
	}

	if _, err := mgr.ProcessEvents(newPhase1); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if _, ok := mgr.Slot(5); !ok {
		t.Fatalf("expected slot 5 to be created")
	}

	mgr.eventRing.PushEvent(TRB{TRBType: TypeTransferEvent, Control: 5 << 8, Status: 1 << 24}, TypeDataStage)
	if _, err := mgr.ProcessEvents(newPhase1); err != nil {
		t.Fatalf("ProcessEvents: %v", err)
	}
	if !fetchCalled {
		t.Fatalf("expected Phase1's fetch callback to run on the data-stage event")
	}
}

// TestPhaseStateMachineEnumeratesKeyboardEndpoint drives Phase1 through
// Phase4 against a single HID keyboard interface, matching spec.md §8
// scenario 5: a configuration descriptor carrying one interrupt-in
// endpoint with max_packet_size=8, interval=10 must produce a
// Configure-Endpoint input context whose endpoint context has
// type=InterruptIn, max_packet_size=8, interval=9.
func TestPhaseStateMachineEnumeratesKeyboardEndpoint(t *testing.T) {
	db := &RecordingDoorbell{}
	alloc := NewAllocator()
	slot, err := NewDeviceSlot(1, db, alloc)
	if err != nil {
		t.Fatalf("NewDeviceSlot: %v", err)
	}

	iface := InterfaceDescriptor{
		InterfaceNumber: 0,
		DriverType:      DriverHIDKeyboard,
		EndpointAddress: 0x81, // IN endpoint 1
		MaxPacketSize:   8,
		Interval:        10,
	}

	var configValue uint8
	var phase Phase = NewPhase1(
		func(slot *DeviceSlot) (*ConfigurationDescriptor, error) {
			return &ConfigurationDescriptor{
				ConfigurationValue: 1,
				Interfaces:         []InterfaceDescriptor{iface},
			}, nil
		},
		func(slot *DeviceSlot, cv uint8) error {
			configValue = cv
			return nil
		},
	)

	// Phase1 -> Phase2 on the GetDescriptor(Configuration) data stage.
	phase, state, err := phase.OnTransferEventReceived(slot, Event{Kind: EventTransfer, Target: TargetData})
	if err != nil {
		t.Fatalf("Phase1: %v", err)
	}
	if state.IsInitialized() {
		t.Fatalf("expected not initialized after Phase1")
	}
	if _, ok := phase.(*Phase2); !ok {
		t.Fatalf("expected Phase2, got %T", phase)
	}

	// Phase2 -> Phase3: filters to HID interfaces and issues SetConfiguration.
	phase, state, err = phase.OnTransferEventReceived(slot, Event{})
	if err != nil {
		t.Fatalf("Phase2: %v", err)
	}
	if configValue != 1 {
		t.Fatalf("expected SetConfiguration(1), got %d", configValue)
	}
	p3, ok := phase.(*Phase3)
	if !ok {
		t.Fatalf("expected Phase3, got %T", phase)
	}
	if nums := p3.InterfaceNums(); len(nums) != 1 || nums[0] != 0 {
		t.Fatalf("expected interface 0 carried into Phase3, got %v", nums)
	}

	// Phase3 -> Phase4: builds the input context and allocates the ring.
	phase, state, err = phase.OnTransferEventReceived(slot, Event{})
	if err != nil {
		t.Fatalf("Phase3: %v", err)
	}
	if !state.IsInitialized() {
		t.Fatalf("expected initialized after Phase3")
	}
	if _, ok := phase.(*Phase4); !ok {
		t.Fatalf("expected Phase4, got %T", phase)
	}

	epIndex := endpointContextIndex(0x81)
	ep, ok := slot.InputContext.Endpoints[epIndex]
	if !ok {
		t.Fatalf("expected an endpoint context at index %d", epIndex)
	}
	if ep.EndpointType != endpointTypeInterruptIn {
		t.Fatalf("expected type=InterruptIn, got %d", ep.EndpointType)
	}
	if ep.MaxPacketSize != 8 {
		t.Fatalf("expected max_packet_size=8, got %d", ep.MaxPacketSize)
	}
	if ep.Interval != 9 {
		t.Fatalf("expected interval=9, got %d", ep.Interval)
	}
	if ep.ErrorCount != 3 {
		t.Fatalf("expected error_count=3, got %d", ep.ErrorCount)
	}

	// Phase4 kicks the interrupt-in ring exactly once.
	if _, _, err := phase.OnTransferEventReceived(slot, Event{}); err != nil {
		t.Fatalf("Phase4: %v", err)
	}
	if len(db.Rings) != 1 {
		t.Fatalf("expected exactly one doorbell ring from Phase4, got %d", len(db.Rings))
	}
}

func TestEndpointContextIndexMapsInAddresses(t *testing.T) {
	if got := endpointContextIndex(0x81); got != 3 {
		t.Fatalf("expected IN endpoint 1 to map to index 3, got %d", got)
	}
	if got := endpointContextIndex(0x02); got != 4 {
		t.Fatalf("expected OUT endpoint 2 to map to index 4, got %d", got)
	}
}
