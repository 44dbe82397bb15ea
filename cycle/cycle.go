// Package cycle provides the machine-cycle primitive shared by every
// timing-sensitive component of the core (CPU, timer, PPU, APU).
package cycle

import "time"

// TCyclesPerSecond is the base clock rate of the LR35902: 4.194304 MHz.
const TCyclesPerSecond = 4194304

// TCyclesPerMCycle is the fixed ratio between T-cycles and M-cycles.
const TCyclesPerMCycle = 4

// MCyclesPerSecond is the machine-cycle rate derived from the base clock.
const MCyclesPerSecond = TCyclesPerSecond / TCyclesPerMCycle

// Cycle is an unsigned count of machine cycles (M-cycles). Arithmetic
// saturates at zero on subtraction instead of wrapping, since a negative
// cycle budget has no meaning for the schedulers that consume this type.
type Cycle uint64

// FromTCycles converts a T-cycle count into whole M-cycles, truncating any
// remainder (the core never schedules sub-M-cycle work).
func FromTCycles(t uint64) Cycle {
	return Cycle(t / TCyclesPerMCycle)
}

// ToTCycles converts an M-cycle count into T-cycles.
func (c Cycle) ToTCycles() uint64 {
	return uint64(c) * TCyclesPerMCycle
}

// Duration converts an M-cycle count into a wall-clock duration at the
// native 4.194304 MHz rate.
func (c Cycle) Duration() time.Duration {
	seconds := float64(c.ToTCycles()) / float64(TCyclesPerSecond)
	return time.Duration(seconds * float64(time.Second))
}

// FromDuration converts a wall-clock duration into the number of whole
// M-cycles it represents at the native rate.
func FromDuration(d time.Duration) Cycle {
	tCycles := d.Seconds() * float64(TCyclesPerSecond)
	return FromTCycles(uint64(tCycles))
}

// Add returns c+other.
func (c Cycle) Add(other Cycle) Cycle {
	return c + other
}

// Sub returns c-other, saturating at zero instead of wrapping.
func (c Cycle) Sub(other Cycle) Cycle {
	if other >= c {
		return 0
	}
	return c - other
}
