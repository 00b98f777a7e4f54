package hid

import "github.com/sonhs99/redos-go/internal/kernel/window"

// State mirrors MouseState: the accumulated pressed/released button mask
// and x/y/wheel deltas collected from however many boot mouse reports
// arrived since the last read.
type State struct {
	Pressed, Released uint8
	DX, DY, DZ        int16
}

// ButtonPressed reports whether button index is currently held down, mirroring
// MouseState::pressed.
func (s State) ButtonPressed(index uint8) bool { return (s.Pressed>>index)&1 != 0 }

// ButtonReleased mirrors MouseState::released.
func (s State) ButtonReleased(index uint8) bool { return (s.Released>>index)&1 != 0 }

// MaxSkipMouseEvent mirrors MAX_SKIP_MOUSE_EVENT: how many buffered
// reports GetState coalesces into one State before returning.
const MaxSkipMouseEvent = 20

// MouseDriver mirrors USBMouseDriver/Mouse::usb: decodes boot-protocol
// mouse reports (button mask, signed X/Y, optional wheel) and enqueues
// window.MouseEvents, while also exposing GetState for callers that want
// the original's coalesced-delta accumulation instead of discrete
// per-report events.
type MouseDriver struct {
	dataBuff [4]byte
	queue    *window.Queue
	dest     window.Dest
	x, y     int
	pending  []State
}

// NewMouseDriver builds a driver that enqueues window.MouseEvents onto
// queue, addressed to dest, tracking an absolute cursor position seeded
// at (startX, startY).
func NewMouseDriver(queue *window.Queue, dest window.Dest, startX, startY int) *MouseDriver {
	return &MouseDriver{queue: queue, dest: dest, x: startX, y: startY}
}

// DataBuffer exposes the 3-or-4-byte scratch buffer a controller's
// interrupt-in transfer for this endpoint is written into.
func (m *MouseDriver) DataBuffer() []byte { return m.dataBuff[:] }

// OnDataReceived mirrors USBMouseDriver's subscribe callback: decodes
// the pressed-button mask and signed X/Y/wheel deltas out of the report,
// updates the tracked absolute position, records a State for GetState,
// and enqueues a window.MouseEvent per pressed/released button plus one
// Move event if the position changed.
func (m *MouseDriver) OnDataReceived() error {
	pressed := m.dataBuff[0] & 0x07
	dx := int8(m.dataBuff[1])
	dy := int8(m.dataBuff[2])
	var dz int8
	if len(m.dataBuff) > 3 {
		dz = int8(m.dataBuff[3])
	}

	m.pending = append(m.pending, State{Pressed: pressed, Released: ^pressed & 0x07, DX: int16(dx), DY: int16(dy), DZ: int16(dz)})

	if dx != 0 || dy != 0 {
		m.x += int(dx)
		m.y -= int(dy) // USB mice report +Y as "down"; the original negates for screen coordinates in window/draw.rs
		_ = m.queue.Enqueue(window.NewMouseEvent(m.dest, window.MouseEvent{Action: window.MouseMove, X: m.x, Y: m.y}))
	}
	for i := uint8(0); i < 3; i++ {
		if pressed&(1<<i) != 0 {
			_ = m.queue.Enqueue(window.NewMouseEvent(m.dest, window.MouseEvent{Action: window.MousePressed, Button: i, X: m.x, Y: m.y}))
		} else {
			_ = m.queue.Enqueue(window.NewMouseEvent(m.dest, window.MouseEvent{Action: window.MouseReleased, Button: i, X: m.x, Y: m.y}))
		}
	}
	return nil
}

// GetState mirrors get_mouse_state: coalesces up to MaxSkipMouseEvent
// buffered reports into a single accumulated State.
func (m *MouseDriver) GetState() State {
	var state State
	n := len(m.pending)
	if n > MaxSkipMouseEvent {
		n = MaxSkipMouseEvent
	}
	for _, s := range m.pending[:n] {
		state.DX += s.DX
		state.DY += s.DY
		state.DZ += s.DZ
		state.Pressed |= s.Pressed
		state.Released |= s.Released
	}
	m.pending = m.pending[n:]
	return state
}
