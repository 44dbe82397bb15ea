// Package joypad models the P1 button matrix register and the interrupt it
// arms on a button press within a selected group. Cross-device effects travel through an
// injected RequestInterrupt callback rather than a concrete MMU reference,
// per spec.md §9's capability-split ownership model.
package joypad

import "github.com/jeebie-labs/gbcore/bit"

// Button identifies one of the eight logical buttons.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// AddrP1 is the joypad register address.
const AddrP1 uint16 = 0xFF00

// Joypad holds the active-low button/d-pad state and the two selection
// bits written through P1.
type Joypad struct {
	buttons uint8 // bits 0-3: A,B,Select,Start; 1=released, 0=pressed
	dpad    uint8 // bits 0-3: Right,Left,Up,Down; 1=released, 0=pressed
	select_ uint8 // bits 4-5 as last written to P1

	// RequestInterrupt is invoked on any 0->1 button transition observed
	// while that button's group is selected for reading.
	RequestInterrupt func()
}

// New returns a Joypad with every button released.
func New() *Joypad {
	return &Joypad{buttons: 0x0F, dpad: 0x0F}
}

// Read returns the full P1 register: bits 6-7 fixed high, bits 4-5 the
// selection as last written, bits 0-3 the inverted matrix for whichever
// group(s) are selected.
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.select_

	selectDpad := !bit.IsSet(4, j.select_)
	selectButtons := !bit.IsSet(5, j.select_)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write updates the two writable selection bits (4-5) of P1.
func (j *Joypad) Write(value uint8) {
	j.select_ = value & 0x30
}

// Press marks a button as pressed, arming the Joypad interrupt if this is
// a 0->1 (released->pressed, i.e. bit goes high->low in the active-low
// encoding) transition.
func (j *Joypad) Press(b Button) {
	before := j.groupFor(b)
	transition := bit.IsSet(bitFor(b), before)
	j.setGroup(b, bit.Reset(bitFor(b), before))
	if transition && j.groupSelected(b) && j.RequestInterrupt != nil {
		j.RequestInterrupt()
	}
}

// groupSelected reports whether b's group (buttons or d-pad) is currently
// selected for reading via the P1 selection bits.
func (j *Joypad) groupSelected(b Button) bool {
	if isDpad(b) {
		return !bit.IsSet(4, j.select_)
	}
	return !bit.IsSet(5, j.select_)
}

// Release marks a button as released.
func (j *Joypad) Release(b Button) {
	before := j.groupFor(b)
	j.setGroup(b, bit.Set(bitFor(b), before))
}

func bitFor(b Button) uint8 {
	switch b {
	case Right, A:
		return 0
	case Left, B:
		return 1
	case Up, Select:
		return 2
	case Down, Start:
		return 3
	}
	return 0
}

func isDpad(b Button) bool {
	return b == Right || b == Left || b == Up || b == Down
}

func (j *Joypad) groupFor(b Button) uint8 {
	if isDpad(b) {
		return j.dpad
	}
	return j.buttons
}

func (j *Joypad) setGroup(b Button, value uint8) {
	if isDpad(b) {
		j.dpad = value
	} else {
		j.buttons = value
	}
}
