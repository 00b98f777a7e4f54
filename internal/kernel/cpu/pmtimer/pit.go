package pmtimer

// PITFrequency is the legacy 8254 PIT's fixed input clock.
const PITFrequency = 1_193_180

// PITCounter identifies one of the PIT's three channels, mirroring
// pit.rs's counter 0/1/2 selection.
type PITCounter uint8

const (
	PITCounter0 PITCounter = 0
	PITCounter1 PITCounter = 1
	PITCounter2 PITCounter = 2
)

// PIT models the legacy programmable interval timer used during early
// bring-up before ACPI tables (and so the PM timer) are available.
// Grounded on timer/pit.rs; the real driver programs the counter over
// I/O ports 0x40-0x43, which this package replaces with direct counter
// state.
type PIT struct {
	counters [3]uint16
	periodic [3]bool
}

// NewPIT returns a PIT with all counters at 0, one-shot mode.
func NewPIT() *PIT { return &PIT{} }

// PITConvertMsToTick mirrors pit.rs's convert_ms_to_tick.
func PITConvertMsToTick(ms uint32) uint16 { return uint16(ms * PITFrequency / 1000) }

// PITConvertUsToTick mirrors pit.rs's convert_us_to_tick.
func PITConvertUsToTick(us uint32) uint16 { return uint16(us * PITFrequency / 1_000_000) }

// InitCounter programs one PIT channel, mirroring init_counter's port
// writes (mode/command byte, then LSB/MSB of the reload count).
func (p *PIT) InitCounter(counter PITCounter, count uint16, periodic bool) {
	p.counters[counter] = count
	p.periodic[counter] = periodic
}

// ReadCounter returns a channel's programmed count, mirroring
// read_counter's two-byte port read recombined into a u16.
func (p *PIT) ReadCounter(counter PITCounter) uint16 {
	return p.counters[counter]
}

// Periodic reports whether a channel was programmed for periodic mode.
func (p *PIT) Periodic(counter PITCounter) bool {
	return p.periodic[counter]
}
