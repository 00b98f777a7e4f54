// Package window implements the kernel's window-system event interface
// (spec.md §7): a fixed-capacity event queue carrying mouse, keyboard,
// window-manager and redraw events between input drivers and whatever
// consumes them.
//
// Grounded on original_source/kernel/src/window/event.rs (DestId,
// EventType, MouseEvent, WindowEvent, KeyEvent, UpdateEvent, Event) and
// queue.rs (ArrayQueue<T, N>, the fixed-capacity ring buffer Queue below
// generalizes). Rust's enum-with-payload EventType becomes a Kind tag
// plus one field per variant, since Go has no tagged union; callers
// switch on Kind the way the original's match arms do.
package window

// DestKind names who an Event is addressed to.
type DestKind int

const (
	DestNone DestKind = iota
	DestOne
	DestAll
)

// Dest mirrors DestId: a single window ID, every window, or nobody.
type Dest struct {
	Kind DestKind
	ID   int
}

func DestTo(id int) Dest { return Dest{Kind: DestOne, ID: id} }

var (
	DestToAll  = Dest{Kind: DestAll}
	DestToNone = Dest{Kind: DestNone}
)

// Kind names which payload an Event carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindMouse
	KindWindow
	KindKeyboard
	KindUpdate
)

// MouseAction mirrors MouseEvent's three variants.
type MouseAction int

const (
	MouseMove MouseAction = iota
	MousePressed
	MouseReleased
)

// MouseEvent mirrors EventType::Mouse(MouseEvent, usize, usize) — the two
// usize fields are the cursor's absolute x/y, carried here as named
// fields on MouseEvent instead of a 3-tuple variant.
type MouseEvent struct {
	Action MouseAction
	Button uint8
	X, Y   int
}

// WindowAction mirrors WindowEvent.
type WindowAction int

const (
	WindowSelect WindowAction = iota
	WindowReleased
	WindowMove
	WindowClose
)

// KeyAction mirrors KeyEvent.
type KeyAction int

const (
	KeyPressed KeyAction = iota
	KeyReleased
)

// KeyEvent carries one byte rather than the original's decoded Key enum:
// internal/kernel/usb/hid stores the key's ASCII value (shifted when a
// shift modifier is held), or the raw HID usage ID for a key with no ASCII
// mapping. The event does not record which of the two Usage holds.
type KeyEvent struct {
	Action KeyAction
	Usage  uint8
}

// Rect mirrors window::Area, reduced to the four fields UpdateEvent needs.
type Rect struct {
	X, Y, W, H int
}

// UpdateEvent mirrors UpdateEvent::{Id,Area}; HasArea selects which field
// is meaningful since Go cannot express that as an enum discriminant
// without a tag.
type UpdateEvent struct {
	ID      int
	Area    Rect
	HasArea bool
}

// Event mirrors window/event.rs's Event: a destination plus exactly one of
// the payload kinds, selected by Kind.
type Event struct {
	Dest   Dest
	Kind   Kind
	Mouse  MouseEvent
	Window WindowAction
	Key    KeyEvent
	Update UpdateEvent
}

// NewMouseEvent builds a mouse-targeted event, mirroring Event::new.
func NewMouseEvent(dest Dest, e MouseEvent) Event {
	return Event{Dest: dest, Kind: KindMouse, Mouse: e}
}

// NewKeyEvent builds a keyboard-targeted event.
func NewKeyEvent(dest Dest, e KeyEvent) Event {
	return Event{Dest: dest, Kind: KindKeyboard, Key: e}
}

// NewWindowEvent builds a window-manager event.
func NewWindowEvent(dest Dest, action WindowAction) Event {
	return Event{Dest: dest, Kind: KindWindow, Window: action}
}

// NewUpdateEvent builds a redraw-request event.
func NewUpdateEvent(dest Dest, e UpdateEvent) Event {
	return Event{Dest: dest, Kind: KindUpdate, Update: e}
}
