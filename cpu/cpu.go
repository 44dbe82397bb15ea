package cpu

import "github.com/jeebie-labs/gbcore/interrupt"

// Mode is the CPU's run state. Normal is the only state in which fetch
// actually reads memory; the others are all handled as safe, cheap
// no-ops by Execute, matching spec.md §7's "subsequent step calls are
// safe no-ops" failure semantics for CRASH and the HALT/STOP wake rules
// of §4.1.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeHalt
	ModeStop
	ModeCrash
)

// Mem is the address-space view the CPU fetches instructions and operands
// through. The MMU implements it; the CPU holds no other reference to
// memory or to any other component, per the ownership-tree design in
// spec.md §9.
type Mem interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// CPU is the Sharp LR35902-compatible instruction engine: register file,
// fetch/decode/execute pipeline, and the HALT/STOP/CRASH run modes.
type CPU struct {
	Registers

	mem Mem
	irq *interrupt.Controller

	Mode Mode

	// imePending implements the documented EI delay: EI schedules IME to
	// take effect only after the instruction following it has executed.
	imePending bool
}

// New returns a CPU wired to mem for instruction fetch/operand access and
// irq for interrupt state, reset to the documented post-boot-ROM state.
func New(mem Mem, irq *interrupt.Controller) *CPU {
	c := &CPU{mem: mem, irq: irq}
	c.Registers.Reset()
	return c
}

// Fetch reads the byte at PC and advances PC, or returns 0x00 without
// touching memory or PC when the CPU isn't in Normal mode. Execute
// interprets that sentinel as "nothing to decode" for Halt/Stop/Crash.
func (c *CPU) Fetch() uint8 {
	if c.Mode != ModeNormal {
		return 0x00
	}
	op := c.mem.Read(c.PC)
	c.PC++
	return op
}

// Execute applies the instruction named by opcode (as fetched by Fetch)
// and returns its machine-cycle cost. In Halt/Stop it instead checks the
// mode's wake condition and returns the 1-cycle cost of doing nothing; in
// Crash it is unconditionally a 1-cycle no-op.
func (c *CPU) Execute(opcode uint8) int {
	switch c.Mode {
	case ModeCrash:
		return 1
	case ModeHalt:
		if c.irq.Enabled() {
			c.Mode = ModeNormal
		}
		return 1
	case ModeStop:
		if c.irq.JoypadPending() {
			c.Mode = ModeNormal
		}
		return 1
	}

	applyEI := c.imePending
	cycles := c.dispatch(opcode)
	if applyEI {
		c.irq.SetIME(true)
		c.imePending = false
	}
	return cycles
}

// HandleInterrupts implements spec.md §4.2's five-step dispatch sequence,
// returning the machine-cycle cost of servicing an interrupt (0 if none
// was dispatched).
func (c *CPU) HandleInterrupts() int {
	if !c.irq.IME() || c.Mode == ModeCrash {
		return 0
	}

	var source interrupt.Source
	if c.Mode == ModeStop {
		if !c.irq.JoypadPending() {
			return 0
		}
		// Only Joypad is considered in STOP mode, per spec.md §4.2; a
		// higher-priority source pending alongside it must not preempt it.
		source = interrupt.Joypad
	} else {
		if !c.irq.Enabled() {
			return 0
		}
		s, ok := c.irq.NextPending()
		if !ok {
			return 0
		}
		source = s
	}

	c.Mode = ModeNormal
	c.irq.SetIME(false)
	c.irq.Clear(source)
	c.pushStack(c.PC)
	c.PC = source.Vector()
	return 5
}

func (c *CPU) dispatch(opcode uint8) int {
	if opcode == 0xCB {
		cbOp := c.Fetch()
		return c.executeCB(cbOp)
	}

	instr := Decode(opcode, false)
	if instr.Illegal {
		c.Mode = ModeCrash
		return 1
	}
	return c.executeBase(instr)
}

func (c *CPU) pushStack(v uint16) {
	c.SP--
	c.mem.Write(c.SP, uint8(v>>8))
	c.SP--
	c.mem.Write(c.SP, uint8(v))
}

func (c *CPU) popStack() uint16 {
	low := c.mem.Read(c.SP)
	c.SP++
	high := c.mem.Read(c.SP)
	c.SP++
	return uint16(high)<<8 | uint16(low)
}

func (c *CPU) imm8() uint8 {
	v := c.mem.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) imm16() uint16 {
	low := c.imm8()
	high := c.imm8()
	return uint16(high)<<8 | uint16(low)
}

// get8 resolves an r[z]-style register-group index, reading through HL
// for index 6 rather than a plain register.
func (c *CPU) get8(i r8) uint8 {
	switch i {
	case r8B:
		return c.B
	case r8C:
		return c.C
	case r8D:
		return c.D
	case r8E:
		return c.E
	case r8H:
		return c.H
	case r8L:
		return c.L
	case r8HLInd:
		return c.mem.Read(c.hl())
	default:
		return c.A
	}
}

func (c *CPU) set8(i r8, v uint8) {
	switch i {
	case r8B:
		c.B = v
	case r8C:
		c.C = v
	case r8D:
		c.D = v
	case r8E:
		c.E = v
	case r8H:
		c.H = v
	case r8L:
		c.L = v
	case r8HLInd:
		c.mem.Write(c.hl(), v)
	default:
		c.A = v
	}
}

func (c *CPU) getRP(p rp) uint16 {
	switch p {
	case rpBC:
		return c.bc()
	case rpDE:
		return c.de()
	case rpHL:
		return c.hl()
	default:
		return c.SP
	}
}

func (c *CPU) setRP(p rp, v uint16) {
	switch p {
	case rpBC:
		c.setBC(v)
	case rpDE:
		c.setDE(v)
	case rpHL:
		c.setHL(v)
	default:
		c.SP = v
	}
}

func (c *CPU) getRP2(p rp2) uint16 {
	switch p {
	case rp2BC:
		return c.bc()
	case rp2DE:
		return c.de()
	case rp2HL:
		return c.hl()
	default:
		return c.af()
	}
}

func (c *CPU) setRP2(p rp2, v uint16) {
	switch p {
	case rp2BC:
		c.setBC(v)
	case rp2DE:
		c.setDE(v)
	case rp2HL:
		c.setHL(v)
	default:
		c.setAF(v)
	}
}

func (c *CPU) checkCond(cc cond) bool {
	switch cc {
	case condNZ:
		return !c.flag(FlagZ)
	case condZ:
		return c.flag(FlagZ)
	case condNC:
		return !c.flag(FlagC)
	default:
		return c.flag(FlagC)
	}
}
