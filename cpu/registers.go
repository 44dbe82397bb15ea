// Package cpu implements the Sharp LR35902-compatible instruction engine:
// the register file, the x/y/z/p/q opcode decoder, and the executor that
// applies decoded instructions and drives the interrupt pipeline. The
// register file uses flat helper methods (A, H, L, SP) rather than wrapped
// 16-bit pair types; decode and execute are separate stages driven by the
// x/y/z/p/q bit-field scheme instead of 512 hand-written opcode functions.
package cpu

// Flag identifies one of the four observable bits of F.
type Flag uint8

const (
	FlagZ Flag = 1 << 7
	FlagN Flag = 1 << 6
	FlagH Flag = 1 << 5
	FlagC Flag = 1 << 4
)

// Registers holds the eight 8-bit registers and the two 16-bit registers
// of the Sharp LR35902. F's low nibble always reads zero; callers only
// ever see bits 4..7 through the Flag helpers.
type Registers struct {
	A, B, C, D, E, H, L, F uint8
	SP, PC                 uint16
}

func (r *Registers) bc() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) de() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) hl() uint16 { return uint16(r.H)<<8 | uint16(r.L) }
func (r *Registers) af() uint16 { return uint16(r.A)<<8 | uint16(r.F&0xF0) }

func (r *Registers) setBC(v uint16) { r.B, r.C = uint8(v>>8), uint8(v) }
func (r *Registers) setDE(v uint16) { r.D, r.E = uint8(v>>8), uint8(v) }
func (r *Registers) setHL(v uint16) { r.H, r.L = uint8(v>>8), uint8(v) }
func (r *Registers) setAF(v uint16) { r.A, r.F = uint8(v>>8), uint8(v)&0xF0 }

// hlInc returns the current HL and post-increments it, implementing the
// HL+ addressing mode used by LD (HL+),A / LD A,(HL+).
func (r *Registers) hlInc() uint16 {
	v := r.hl()
	r.setHL(v + 1)
	return v
}

// hlDec returns the current HL and post-decrements it (HL- addressing).
func (r *Registers) hlDec() uint16 {
	v := r.hl()
	r.setHL(v - 1)
	return v
}

func (r *Registers) setFlag(f Flag, on bool) {
	if on {
		r.F |= uint8(f)
	} else {
		r.F &^= uint8(f)
	}
}

func (r *Registers) flag(f Flag) bool {
	return r.F&uint8(f) != 0
}

// Reset sets the register file to the documented post-boot-ROM state.
func (r *Registers) Reset() {
	*r = Registers{A: 0x01, F: uint8(FlagZ), SP: 0xFFFE, PC: 0x0100}
}
