// Package hid implements the boot-protocol HID class drivers spec.md §7
// names: a keyboard driver decoding 8-byte keyboard reports and a mouse
// driver decoding 3/4-byte mouse reports, each translated into
// internal/kernel/window events.
//
// Grounded on original_source/kernel/src/device/driver/{keyboard/usb.rs,
// mouse/mod.rs}. Both drivers there subscribe a raw closure and push
// decoded state onto a package-level queue; this port instead exposes an
// explicit KeyboardDriver/MouseDriver the caller wires an
// internal/kernel/window.Queue into, since a kernel built as a library
// rather than a monolithic binary has no natural place for package-level
// mutable statics.
package hid

import "github.com/sonhs99/redos-go/internal/kernel/window"

// combineLeftShift/combineRightShift mirror COMBINE_KEY_LSHIFT/
// COMBINE_KEY_RSHIFT: bits of a boot keyboard report's modifier byte.
const (
	combineLeftShift  = 0b0000_0010
	combineRightShift = 0b0010_0000
)

// keyMapEntry mirrors KeyMappingEntry: a HID usage code's unshifted and
// shifted usage translation. The original further maps these into a
// Key::Ascii/Key::Special enum; this port keeps the mapped value as a
// HID-independent "logical usage" byte and leaves ASCII-vs-special
// classification to whatever consumes window.KeyEvent, since
// window.KeyEvent carries a single byte rather than a decoded symbol
// (see window/event.go's KeyEvent doc comment).
type keyMapEntry struct {
	normal, shifted uint8
}

// keyMappingTable mirrors KEY_MAPPING_TABLE: HID usage ID 0x04..0x67
// mapped to their unshifted/shifted ASCII value, 0 standing in for
// Key::Special(KeySpecial::None) (no ASCII translation). Usage IDs with
// no ASCII mapping are left as 0 and are reported to window as their raw
// usage code, matching the original falling back to Key::Special there.
var keyMappingTable = buildKeyMappingTable()

func buildKeyMappingTable() [104]keyMapEntry {
	var t [104]keyMapEntry
	letters := "abcdefghijklmnopqrstuvwxyz"
	for i, c := range letters {
		t[0x04+i] = keyMapEntry{normal: letters[i], shifted: uint8(c - 'a' + 'A')}
	}
	digits := "1234567890"
	shiftedDigits := "!@#$%^&*()"
	for i := range digits {
		t[0x1E+i] = keyMapEntry{normal: digits[i], shifted: shiftedDigits[i]}
	}
	punctuation := []struct {
		usage           uint8
		normal, shifted uint8
	}{
		{0x2C, ' ', ' '}, {0x2D, '-', '_'}, {0x2E, '=', '+'},
		{0x2F, '[', '{'}, {0x30, ']', '}'}, {0x31, '\\', '|'},
		{0x33, ';', ':'}, {0x34, '\'', '"'}, {0x35, '`', '~'},
		{0x36, ',', '<'}, {0x37, '.', '>'}, {0x38, '/', '?'},
	}
	for _, p := range punctuation {
		t[p.usage] = keyMapEntry{normal: p.normal, shifted: p.shifted}
	}
	return t
}

// KeyboardDriver mirrors USBKeyboardDriver: it holds the previous and
// current 8-byte boot keyboard report and diffs them on every new report
// to find newly pressed usage codes, exactly as keycodes() filters
// data_buff[2..] against prev_buff[2..].
type KeyboardDriver struct {
	prevBuff [8]byte
	dataBuff [8]byte
	queue    *window.Queue
	dest     window.Dest
}

// NewKeyboardDriver builds a driver that enqueues window.KeyEvents onto
// queue, addressed to dest.
func NewKeyboardDriver(queue *window.Queue, dest window.Dest) *KeyboardDriver {
	return &KeyboardDriver{queue: queue, dest: dest}
}

// DataBuffer exposes the 8-byte scratch buffer the controller's
// interrupt-in transfer for this endpoint should be written into,
// mirroring data_buffer_addr/data_buffer_len (fixed at 8 bytes).
func (k *KeyboardDriver) DataBuffer() []byte { return k.dataBuff[:] }

// OnDataReceived mirrors on_data_received: diffs the new report against
// the previous one, translates every newly pressed usage code through
// keyMappingTable using the modifier byte's shift bits, and enqueues a
// KeyPressed window event for each.
func (k *KeyboardDriver) OnDataReceived() error {
	shiftPressed := k.dataBuff[0]&(combineLeftShift|combineRightShift) != 0
	for _, usage := range k.dataBuff[2:] {
		if usage == 0 || containsByte(k.prevBuff[2:], usage) {
			continue
		}
		translated := translateUsage(usage, shiftPressed)
		_ = k.queue.Enqueue(window.NewKeyEvent(k.dest, window.KeyEvent{Action: window.KeyPressed, Usage: translated}))
	}
	for _, usage := range k.prevBuff[2:] {
		if usage == 0 || containsByte(k.dataBuff[2:], usage) {
			continue
		}
		translated := translateUsage(usage, shiftPressed)
		_ = k.queue.Enqueue(window.NewKeyEvent(k.dest, window.KeyEvent{Action: window.KeyReleased, Usage: translated}))
	}
	k.prevBuff = k.dataBuff
	return nil
}

// translateUsage mirrors keycode(): a mapped entry's normal or shifted
// byte, or the raw usage code itself if the table has no ASCII mapping
// for it.
func translateUsage(usage uint8, shiftPressed bool) uint8 {
	if int(usage) >= len(keyMappingTable) {
		return usage
	}
	entry := keyMappingTable[usage]
	if entry.normal == 0 {
		return usage
	}
	if shiftPressed {
		return entry.shifted
	}
	return entry.normal
}

func containsByte(haystack []byte, b byte) bool {
	for _, v := range haystack {
		if v == b {
			return true
		}
	}
	return false
}
