package cpu

// executeCB applies a CB-prefixed opcode (rotate/shift, BIT, RES, SET)
// and returns its cycle cost.
func (c *CPU) executeCB(opcode uint8) int {
	instr := Decode(opcode, true)
	r := r8(instr.Z)

	switch instr.X {
	case 0:
		v := c.rot(rotOp(instr.Y), c.get8(r))
		c.set8(r, v)
	case 1:
		c.bit(instr.Y, c.get8(r))
	case 2:
		c.set8(r, c.get8(r)&^(1<<instr.Y))
	default:
		c.set8(r, c.get8(r)|(1<<instr.Y))
	}

	return int(instr.Cycles)
}

// rot applies one of the eight CB rotate/shift operations, setting Z from
// the result (unlike the unprefixed RLCA/RRCA/RLA/RRA, which force Z=0).
func (c *CPU) rot(op rotOp, v uint8) uint8 {
	var result uint8
	var carry bool

	switch op {
	case rotRLC:
		carry = v>>7 != 0
		result = v<<1 | v>>7
	case rotRRC:
		carry = v&1 != 0
		result = v>>1 | v<<7
	case rotRL:
		carryIn := uint8(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		carry = v>>7 != 0
		result = v<<1 | carryIn
	case rotRR:
		carryIn := uint8(0)
		if c.flag(FlagC) {
			carryIn = 1
		}
		carry = v&1 != 0
		result = v>>1 | carryIn<<7
	case rotSLA:
		carry = v>>7 != 0
		result = v << 1
	case rotSRA:
		carry = v&1 != 0
		result = uint8(int8(v) >> 1)
	case rotSWAP:
		result = v<<4 | v>>4
	default: // rotSRL
		carry = v&1 != 0
		result = v >> 1
	}

	c.setFlag(FlagZ, result == 0)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	if op == rotSWAP {
		c.setFlag(FlagC, false)
	} else {
		c.setFlag(FlagC, carry)
	}
	return result
}

// bit tests bit y of v: Z is clear iff the bit is set; N=0, H=1; C is
// unaffected.
func (c *CPU) bit(y uint8, v uint8) {
	c.setFlag(FlagZ, v&(1<<y) == 0)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, true)
}
