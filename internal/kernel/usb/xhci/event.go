package xhci

// TargetEvent mirrors event.rs's TargetEvent: which stage of a control
// transfer (or a bulk/interrupt Normal transfer) a TransferEvent reports
// completion for. The original decodes this from the trb_type of the
// TRB the event's pointer field refers to; since this port has no shared
// DMA memory to dereference, the originating Type is passed explicitly
// by whatever enqueued the transfer alongside the event it later raises.
type TargetEvent uint8

const (
	TargetNormal TargetEvent = iota
	TargetSetup
	TargetData
	TargetStatus
)

func targetEventFromType(t Type) (TargetEvent, bool) {
	switch t {
	case TypeNormal:
		return TargetNormal, true
	case TypeSetupStage:
		return TargetSetup, true
	case TypeDataStage:
		return TargetData, true
	case TypeStatusStage:
		return TargetStatus, true
	default:
		return 0, false
	}
}

// EventKind and Event mirror event.rs's EventTrb enum: the decoded meaning
// of a completed event-ring slot. Kind selects which field is populated,
// the same tag-plus-fields translation window/event.go uses for the
// original's EventType enum.
type EventKind int

const (
	EventNotSupported EventKind = iota
	EventTransfer
	EventPortStatusChange
	EventCommandCompletion
)

type Event struct {
	Kind           EventKind
	SlotID         uint8
	EndpointID     uint8
	CompletionCode uint8
	Target         TargetEvent
	PortID         uint8
	RawType        Type
}

// decodeEvent mirrors the match on trb.template().trb_type() in
// EventTrb::from. originating supplies the TargetEvent for a
// TransferEvent; it is ignored for every other kind.
func decodeEvent(trb TRB, originating Type) Event {
	switch trb.TRBType {
	case TypeTransferEvent:
		target, _ := targetEventFromType(originating)
		return Event{
			Kind:           EventTransfer,
			SlotID:         uint8(trb.Control >> 8),
			EndpointID:     uint8(trb.Control & 0x1F),
			CompletionCode: uint8(trb.Status >> 24),
			Target:         target,
		}
	case TypeCommandCompletion:
		return Event{
			Kind:           EventCommandCompletion,
			SlotID:         uint8(trb.Control >> 8),
			CompletionCode: uint8(trb.Status >> 24),
		}
	case TypePortStatusChangeEvent:
		return Event{
			Kind:   EventPortStatusChange,
			PortID: uint8(trb.Parameter >> 24),
		}
	default:
		return Event{Kind: EventNotSupported, RawType: trb.TRBType}
	}
}

// EventRing models a consumer-side view of a TransferRing that hardware
// produces into and software drains: HasFront/Read/advance mirror
// ring.rs's EventRing (has_front/read/next_dequeue_pointer), with the
// consumer's own cycle-bit expectation tracked separately from the
// producer's, exactly as the real dequeue-pointer/cycle-bit protocol
// requires.
type EventRing struct {
	ring       *TransferRing
	dequeue    int
	cycleBit   bool
	originating map[int]Type
}

// NewEventRing allocates a ring of size slots and seeds the consumer
// cycle-bit expectation to match a freshly-initialized ring.
func NewEventRing(size int) *EventRing {
	return &EventRing{
		ring:        NewTransferRing(size),
		cycleBit:    true,
		originating: make(map[int]Type),
	}
}

// PushEvent simulates the controller raising an event: a real xHCI
// controller writes this autonomously in response to command/transfer
// completion, which this hosted model represents as a direct write onto
// the ring from whichever component (command/transfer ring) completed.
func (r *EventRing) PushEvent(trb TRB, originating Type) {
	slot := r.ring.Push(trb)
	if originating != 0 {
		r.originating[slot] = originating
	}
}

// HasFront reports whether the slot at the current dequeue pointer
// belongs to the producer (its cycle bit matches what the consumer
// currently expects), mirroring has_front.
func (r *EventRing) HasFront() bool {
	return r.ring.At(r.dequeue).CycleBit == r.cycleBit
}

// Read returns the decoded event at the dequeue pointer and advances it,
// toggling the consumer's cycle-bit expectation on wraparound past the
// ring's Link slot, mirroring read()+next_dequeue_pointer().
func (r *EventRing) Read() (Event, bool) {
	if !r.HasFront() {
		return Event{}, false
	}
	slot := r.dequeue
	trb := r.ring.At(slot)
	originating := r.originating[slot]
	delete(r.originating, slot)

	r.dequeue++
	if r.dequeue == r.ring.EndAddr() {
		r.cycleBit = !r.cycleBit
		r.dequeue = r.ring.BaseAddr()
	}
	return decodeEvent(trb, originating), true
}
