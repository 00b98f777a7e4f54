package intr

import "sync/atomic"

// PataFlag resolves the PATA driver's std::hint::black_box busy-wait flag
// (spec.md §9 Open Question, decided in DESIGN.md): the PATA1/PATA2
// interrupt handlers set it, the block driver's command loop polls it.
// black_box in the original exists only to stop the Rust compiler from
// optimizing away a "pointless-looking" flag write/read pair across a
// busy-wait; an atomic.Bool already has the same can't-optimize-away
// guarantee for free, so no equivalent annotation is needed here.
type PataFlag struct {
	flag atomic.Bool
}

// Set is called from the PATA1/PATA2 interrupt handlers.
func (p *PataFlag) Set(v bool) { p.flag.Store(v) }

// Get is polled by the block driver waiting on command completion.
func (p *PataFlag) Get() bool { return p.flag.Load() }
