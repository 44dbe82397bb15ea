package cpu

// executeBase applies a decoded non-CB instruction and returns the actual
// cycle cost paid (Cycles or BranchCycles, depending on whether a
// conditional branch was taken).
func (c *CPU) executeBase(i Instruction) int {
	switch i.X {
	case 0:
		return c.executeX0(i)
	case 1:
		return c.executeX1(i)
	case 2:
		c.alu(aluOp(i.Y), c.get8(r8(i.Z)))
		return int(i.Cycles)
	default:
		return c.executeX3(i)
	}
}

func (c *CPU) executeX0(i Instruction) int {
	switch i.Z {
	case 0:
		switch {
		case i.Y == 0: // NOP
			return int(i.Cycles)
		case i.Y == 1: // LD (nn),SP
			addr := c.imm16()
			c.mem.Write(addr, uint8(c.SP))
			c.mem.Write(addr+1, uint8(c.SP>>8))
			return int(i.Cycles)
		case i.Y == 2: // STOP
			c.Mode = ModeStop
			return int(i.Cycles)
		case i.Y == 3: // JR d
			offset := int8(c.imm8())
			c.PC = uint16(int32(c.PC) + int32(offset))
			return int(i.Cycles)
		default: // JR cc,d
			offset := int8(c.imm8())
			if c.checkCond(cond(i.Y - 4)) {
				c.PC = uint16(int32(c.PC) + int32(offset))
				return int(i.BranchCycles)
			}
			return int(i.Cycles)
		}
	case 1:
		if i.Q == 0 { // LD rp[p],nn
			c.setRP(rp(i.P), c.imm16())
		} else { // ADD HL,rp[p]
			c.addHL(c.getRP(rp(i.P)))
		}
		return int(i.Cycles)
	case 2:
		c.execLdIndirect(i.P, i.Q)
		return int(i.Cycles)
	case 3:
		v := c.getRP(rp(i.P))
		if i.Q == 0 {
			v++
		} else {
			v--
		}
		c.setRP(rp(i.P), v)
		return int(i.Cycles)
	case 4:
		c.execInc8(r8(i.Y))
		return int(i.Cycles)
	case 5:
		c.execDec8(r8(i.Y))
		return int(i.Cycles)
	case 6:
		c.set8(r8(i.Y), c.imm8())
		return int(i.Cycles)
	default: // z == 7: RLCA/RRCA/RLA/RRA/DAA/CPL/SCF/CCF
		c.execMiscA(i.Y)
		return int(i.Cycles)
	}
}

func (c *CPU) execLdIndirect(p, q uint8) {
	var addr uint16
	switch p {
	case 0:
		addr = c.bc()
	case 1:
		addr = c.de()
	case 2:
		addr = c.hlInc()
	default:
		addr = c.hlDec()
	}
	if q == 0 {
		c.mem.Write(addr, c.A)
	} else {
		c.A = c.mem.Read(addr)
	}
}

func (c *CPU) execInc8(r r8) {
	v := c.get8(r) + 1
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagH, v&0x0F == 0x00)
	c.setFlag(FlagN, false)
	c.set8(r, v)
}

func (c *CPU) execDec8(r r8) {
	v := c.get8(r) - 1
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagH, v&0x0F == 0x0F)
	c.setFlag(FlagN, true)
	c.set8(r, v)
}

func (c *CPU) execMiscA(y uint8) {
	switch y {
	case 0:
		c.rlca()
	case 1:
		c.rrca()
	case 2:
		c.rla()
	case 3:
		c.rra()
	case 4:
		c.daa()
	case 5:
		c.A = ^c.A
		c.setFlag(FlagN, true)
		c.setFlag(FlagH, true)
	case 6:
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, true)
	case 7:
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, !c.flag(FlagC))
	}
}

func (c *CPU) executeX1(i Instruction) int {
	if i.Y == 6 && i.Z == 6 {
		c.Mode = ModeHalt
		return int(i.Cycles)
	}
	c.set8(r8(i.Y), c.get8(r8(i.Z)))
	return int(i.Cycles)
}

func (c *CPU) executeX3(i Instruction) int {
	switch i.Z {
	case 0:
		switch {
		case i.Y < 4: // RET cc
			if c.checkCond(cond(i.Y)) {
				c.PC = c.popStack()
				return int(i.BranchCycles)
			}
			return int(i.Cycles)
		case i.Y == 4: // LDH (n),A
			c.mem.Write(0xFF00+uint16(c.imm8()), c.A)
		case i.Y == 5: // ADD SP,d
			c.SP = c.addSigned(c.SP, int8(c.imm8()))
		case i.Y == 6: // LDH A,(n)
			c.A = c.mem.Read(0xFF00 + uint16(c.imm8()))
		default: // LD HL,SP+d
			c.setHL(c.addSigned(c.SP, int8(c.imm8())))
		}
		return int(i.Cycles)
	case 1:
		if i.Q == 0 { // POP rp2[p]
			c.setRP2(rp2(i.P), c.popStack())
			return int(i.Cycles)
		}
		switch i.P {
		case 0: // RET
			c.PC = c.popStack()
		case 1: // RETI
			c.PC = c.popStack()
			c.irq.SetIME(true)
		case 2: // JP HL
			c.PC = c.hl()
		default: // LD SP,HL
			c.SP = c.hl()
		}
		return int(i.Cycles)
	case 2:
		switch {
		case i.Y < 4: // JP cc,nn
			addr := c.imm16()
			if c.checkCond(cond(i.Y)) {
				c.PC = addr
				return int(i.BranchCycles)
			}
			return int(i.Cycles)
		case i.Y == 4: // LD (C),A
			c.mem.Write(0xFF00+uint16(c.C), c.A)
		case i.Y == 5: // LD (nn),A
			c.mem.Write(c.imm16(), c.A)
		case i.Y == 6: // LD A,(C)
			c.A = c.mem.Read(0xFF00 + uint16(c.C))
		default: // LD A,(nn)
			c.A = c.mem.Read(c.imm16())
		}
		return int(i.Cycles)
	case 3:
		switch i.Y {
		case 0: // JP nn
			c.PC = c.imm16()
		case 6: // DI
			c.irq.SetIME(false)
			c.imePending = false
		case 7: // EI
			c.imePending = true
		}
		return int(i.Cycles)
	case 4: // CALL cc,nn
		addr := c.imm16()
		if c.checkCond(cond(i.Y)) {
			c.pushStack(c.PC)
			c.PC = addr
			return int(i.BranchCycles)
		}
		return int(i.Cycles)
	case 5:
		if i.Q == 0 { // PUSH rp2[p]
			c.pushStack(c.getRP2(rp2(i.P)))
			return int(i.Cycles)
		}
		addr := c.imm16() // CALL nn
		c.pushStack(c.PC)
		c.PC = addr
		return int(i.Cycles)
	case 6: // alu[y] A,n
		c.alu(aluOp(i.Y), c.imm8())
		return int(i.Cycles)
	default: // RST y*8
		c.pushStack(c.PC)
		c.PC = uint16(i.Y) * 8
		return int(i.Cycles)
	}
}

// alu applies one of the eight ALU group operations against A.
func (c *CPU) alu(op aluOp, value uint8) {
	switch op {
	case aluADD:
		c.addToA(value, false)
	case aluADC:
		c.addToA(value, c.flag(FlagC))
	case aluSUB:
		c.subFromA(value, false, true)
	case aluSBC:
		c.subFromA(value, c.flag(FlagC), true)
	case aluAND:
		c.A &= value
		c.setFlag(FlagZ, c.A == 0)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, true)
		c.setFlag(FlagC, false)
	case aluXOR:
		c.A ^= value
		c.setFlag(FlagZ, c.A == 0)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, false)
	case aluOR:
		c.A |= value
		c.setFlag(FlagZ, c.A == 0)
		c.setFlag(FlagN, false)
		c.setFlag(FlagH, false)
		c.setFlag(FlagC, false)
	default: // aluCP
		c.subFromA(value, false, false)
	}
}

// addToA implements ADD/ADC, storing the result into A.
func (c *CPU) addToA(value uint8, carryIn bool) {
	a := c.A
	var carry uint8
	if carryIn {
		carry = 1
	}
	result := uint16(a) + uint16(value) + uint16(carry)

	c.setFlag(FlagZ, uint8(result) == 0)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, (a&0xF)+(value&0xF)+carry > 0xF)
	c.setFlag(FlagC, result > 0xFF)
	c.A = uint8(result)
}

// subFromA implements SUB/SBC/CP; store controls whether the result is
// written back to A (false for CP, which only sets flags).
func (c *CPU) subFromA(value uint8, carryIn bool, store bool) {
	a := c.A
	var carry uint8
	if carryIn {
		carry = 1
	}
	result := int16(a) - int16(value) - int16(carry)

	c.setFlag(FlagZ, uint8(result) == 0)
	c.setFlag(FlagN, true)
	c.setFlag(FlagH, int16(a&0xF)-int16(value&0xF)-int16(carry) < 0)
	c.setFlag(FlagC, result < 0)
	if store {
		c.A = uint8(result)
	}
}

// addHL implements ADD HL,rr: N=0; H from bit 11 carry; C from bit 15
// carry; Z untouched.
func (c *CPU) addHL(value uint16) {
	hl := c.hl()
	result := uint32(hl) + uint32(value)

	c.setFlag(FlagN, false)
	c.setFlag(FlagH, (hl&0xFFF)+(value&0xFFF) > 0xFFF)
	c.setFlag(FlagC, result > 0xFFFF)
	c.setHL(uint16(result))
}

// addSigned implements the shared arithmetic of ADD SP,e and LD HL,SP+e:
// Z=0, N=0; H/C derived from unsigned-byte addition of SP's low byte and
// the signed displacement.
func (c *CPU) addSigned(base uint16, offset int8) uint16 {
	low := uint8(base)
	off := uint8(offset)
	result := uint16(low) + uint16(off)

	c.setFlag(FlagZ, false)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, (low&0xF)+(off&0xF) > 0xF)
	c.setFlag(FlagC, result > 0xFF)

	return uint16(int32(base) + int32(offset))
}

func (c *CPU) rlca() {
	carry := c.A>>7 != 0
	c.A = c.A<<1 | c.A>>7
	c.setFlag(FlagZ, false)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry)
}

func (c *CPU) rrca() {
	carry := c.A&1 != 0
	c.A = c.A>>1 | c.A<<7
	c.setFlag(FlagZ, false)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry)
}

func (c *CPU) rla() {
	carryIn := uint8(0)
	if c.flag(FlagC) {
		carryIn = 1
	}
	carryOut := c.A>>7 != 0
	c.A = c.A<<1 | carryIn
	c.setFlag(FlagZ, false)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carryOut)
}

func (c *CPU) rra() {
	carryIn := uint8(0)
	if c.flag(FlagC) {
		carryIn = 1
	}
	carryOut := c.A&1 != 0
	c.A = c.A>>1 | carryIn<<7
	c.setFlag(FlagZ, false)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carryOut)
}

// daa post-BCD-corrects A using the prior N/H/C flags.
func (c *CPU) daa() {
	a := c.A
	correction := uint8(0)
	carry := false

	if c.flag(FlagH) || (!c.flag(FlagN) && a&0xF > 0x9) {
		correction |= 0x06
	}
	if c.flag(FlagC) || (!c.flag(FlagN) && a > 0x99) {
		correction |= 0x60
		carry = true
	}

	if c.flag(FlagN) {
		a -= correction
	} else {
		a += correction
	}

	c.A = a
	c.setFlag(FlagZ, a == 0)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry)
}
