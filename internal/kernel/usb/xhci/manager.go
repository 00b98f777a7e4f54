package xhci

import "fmt"

// ErrUnknownSlot is returned when an event references a slot ID the
// manager never enabled.
var ErrUnknownSlot = fmt.Errorf("xhci: unknown slot ID")

// Manager mirrors manager.rs's device-slot table: it owns the shared
// command ring, event ring, and allocator, assigns slot IDs as
// EnableSlot commands complete, and drives each slot's Phase state
// machine as transfer-completion events arrive on the event ring.
type Manager struct {
	commandRing *CommandRing
	eventRing   *EventRing
	allocator   *Allocator
	doorbell    Doorbell
	slots       map[uint8]*DeviceSlot
	phases      map[uint8]Phase
	pendingSlot bool
}

// NewManager builds a manager with a fresh command ring, event ring, and
// bump allocator, all sharing doorbell.
func NewManager(doorbell Doorbell, ringSize int) *Manager {
	return &Manager{
		commandRing: NewCommandRing(ringSize, doorbell),
		eventRing:   NewEventRing(ringSize),
		allocator:   NewAllocator(),
		doorbell:    doorbell,
		slots:       make(map[uint8]*DeviceSlot),
		phases:      make(map[uint8]Phase),
	}
}

// RequestEnableSlot mirrors manager.rs issuing EnableSlot on port status
// change: pushes the command and remembers that the next
// CommandCompletion event on this ring assigns a new slot.
func (m *Manager) RequestEnableSlot() {
	m.commandRing.PushEnableSlot()
	m.pendingSlot = true
}

// ProcessEvents drains every pending event on the event ring, completing
// EnableSlot requests into new DeviceSlots (seeded with Phase1 via
// newPhase1) and routing transfer events to the owning slot's current
// Phase.
func (m *Manager) ProcessEvents(newPhase1 func(slotID uint8) Phase) ([]uint8, error) {
	var initialized []uint8
	for {
		ev, ok := m.eventRing.Read()
		if !ok {
			return initialized, nil
		}
		switch ev.Kind {
		case EventCommandCompletion:
			if m.pendingSlot {
				slot, err := NewDeviceSlot(ev.SlotID, m.doorbell, m.allocator)
				if err != nil {
					return initialized, err
				}
				m.slots[ev.SlotID] = slot
				m.phases[ev.SlotID] = newPhase1(ev.SlotID)
				m.pendingSlot = false
			}
		case EventTransfer:
			slot, ok := m.slots[ev.SlotID]
			if !ok {
				return initialized, ErrUnknownSlot
			}
			phase, state, err := m.phases[ev.SlotID].OnTransferEventReceived(slot, ev)
			if err != nil {
				return initialized, err
			}
			m.phases[ev.SlotID] = phase
			if state.IsInitialized() {
				initialized = append(initialized, ev.SlotID)
			}
		}
	}
}

// Slot returns the device slot assigned to slotID, if any.
func (m *Manager) Slot(slotID uint8) (*DeviceSlot, bool) {
	s, ok := m.slots[slotID]
	return s, ok
}

// EventRing exposes the shared event ring so a controller's interrupt
// handler can feed it completions (PushEvent) as they occur.
func (m *Manager) EventRing() *EventRing { return m.eventRing }

// CommandRing exposes the shared command ring for issuing further
// commands (ConfigureEndpoint, ResetEndpoint) once a slot is addressed.
func (m *Manager) CommandRing() *CommandRing { return m.commandRing }
