// Package serial models the DMG link-cable shifter: SB/SC at a fixed
// 8192 Hz bit rate, requesting the Serial interrupt after 8 bits and
// optionally capturing transmitted bytes for ROM test-suite harnesses that
// stream results over the link port, per spec.md §4.7.
package serial

import "github.com/jeebie-labs/gbcore/cycle"

// Addresses of the two serial registers.
const (
	AddrSB uint16 = 0xFF01
	AddrSC uint16 = 0xFF02
)

// cyclesPerBit is the number of T-cycles to shift one bit at 8192 Hz.
const cyclesPerBit = cycle.TCyclesPerSecond / 8192

// Port models SB/SC. With no peer connected (the only mode this core
// supports, since serial link peer communication is a spec.md non-goal), a
// completed transfer always reads back 0xFF.
type Port struct {
	sb, sc uint8

	active    bool
	remaining int

	// RequestInterrupt is invoked once a transfer completes.
	RequestInterrupt func()

	// Capture, if non-nil, receives the pre-shift value of SB every time a
	// transfer starts; the hook ROM-based test suites (e.g. Blargg's)
	// use to stream textual output over the link port.
	Capture func(b byte)
}

// New returns a Port with no transfer in progress.
func New() *Port {
	return &Port{sb: 0x00, sc: 0x00}
}

// Read returns SB or SC.
func (p *Port) Read(address uint16) uint8 {
	switch address {
	case AddrSB:
		return p.sb
	case AddrSC:
		return p.sc | 0x7E
	default:
		return 0xFF
	}
}

// Write updates SB or SC, starting a transfer when SC's start and
// internal-clock bits are both set.
func (p *Port) Write(address uint16, value uint8) {
	switch address {
	case AddrSB:
		p.sb = value
	case AddrSC:
		p.sc = value
		p.maybeStart()
	}
}

func (p *Port) maybeStart() {
	if p.active {
		return
	}
	const transferStart, internalClock = 1 << 7, 1 << 0
	if p.sc&(transferStart|internalClock) != transferStart|internalClock {
		return
	}

	if p.Capture != nil {
		p.Capture(p.sb)
	}

	p.active = true
	p.remaining = cyclesPerBit * 8
}

// Tick advances the shifter by tCycles T-cycles.
func (p *Port) Tick(tCycles int) {
	if !p.active {
		return
	}
	p.remaining -= tCycles
	if p.remaining > 0 {
		return
	}
	p.complete()
}

func (p *Port) complete() {
	p.sb = 0xFF
	p.sc &^= 1 << 7
	p.active = false
	p.remaining = 0
	if p.RequestInterrupt != nil {
		p.RequestInterrupt()
	}
}

// Reset clears the port to its power-on state.
func (p *Port) Reset() {
	p.sb, p.sc = 0, 0
	p.active = false
	p.remaining = 0
}
