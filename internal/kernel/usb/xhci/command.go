package xhci

// CommandRing mirrors ring.rs's CommandRing<D>: a TransferRing whose
// pushes are each followed by a doorbell ring at slot 0 (the host
// controller's own command-ring doorbell, never a real device slot),
// exactly as push_no_op/push_enable_slot/etc. each end in notify().
type CommandRing struct {
	ring     *TransferRing
	doorbell Doorbell
}

func NewCommandRing(size int, doorbell Doorbell) *CommandRing {
	return &CommandRing{ring: NewTransferRing(size), doorbell: doorbell}
}

func (c *CommandRing) notify() { c.doorbell.Notify(0, 0) }

// PushNoOp mirrors push_no_op: a command used only to exercise the
// command-ring/doorbell/event-ring path without side effects.
func (c *CommandRing) PushNoOp() int {
	slot := c.ring.Push(TRB{TRBType: TypeNoOpCommand})
	c.notify()
	return slot
}

// PushEnableSlot mirrors push_enable_slot: requests the controller
// assign a new device slot ID.
func (c *CommandRing) PushEnableSlot() int {
	slot := c.ring.Push(TRB{TRBType: TypeEnableSlotCommand})
	c.notify()
	return slot
}

// PushAddressDevice mirrors push_address_command: assigns a USB address
// to slotID, pointing at an input context the caller has already built.
func (c *CommandRing) PushAddressDevice(slotID uint8, inputContextPtr uint64, blockSetAddressRequest bool) int {
	control := uint16(slotID) << 8
	if blockSetAddressRequest {
		control |= 1 << 9
	}
	slot := c.ring.Push(TRB{
		TRBType:   TypeAddressDeviceCommand,
		Parameter: inputContextPtr,
		Control:   control,
	})
	c.notify()
	return slot
}

// PushConfigureEndpoint mirrors push_configure_endpoint.
func (c *CommandRing) PushConfigureEndpoint(slotID uint8, inputContextPtr uint64) int {
	slot := c.ring.Push(TRB{
		TRBType:   TypeConfigureEndpoint,
		Parameter: inputContextPtr,
		Control:   uint16(slotID) << 8,
	})
	c.notify()
	return slot
}

// PushResetEndpoint mirrors push_reset_endpoint.
func (c *CommandRing) PushResetEndpoint(slotID, endpointID uint8) int {
	slot := c.ring.Push(TRB{
		TRBType: TypeResetEndpointCommand,
		Control: uint16(slotID)<<8 | uint16(endpointID),
	})
	c.notify()
	return slot
}
