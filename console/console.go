// Package console ties the CPU, MMU, and every I/O device into the single
// top-level object external collaborators drive: power it on with a ROM
// image, call Step in a loop, feed it button state, and pull frames and
// audio off it between steps. Console owns the CPU, MMU, PPU, and APU
// directly, plus the MBC/timer/joypad/serial devices the MMU only routes
// to, following the tree-shaped ownership model spec.md §9 describes.
package console

import (
	"log/slog"
	"sync"

	"github.com/jeebie-labs/gbcore/addr"
	"github.com/jeebie-labs/gbcore/audio"
	"github.com/jeebie-labs/gbcore/cart"
	"github.com/jeebie-labs/gbcore/cpu"
	"github.com/jeebie-labs/gbcore/cycle"
	"github.com/jeebie-labs/gbcore/interrupt"
	"github.com/jeebie-labs/gbcore/joypad"
	"github.com/jeebie-labs/gbcore/memory"
	"github.com/jeebie-labs/gbcore/serial"
	"github.com/jeebie-labs/gbcore/timer"
	"github.com/jeebie-labs/gbcore/video"
)

// Button re-exports the joypad package's button identifiers so callers
// never need to import joypad directly.
type Button = joypad.Button

const (
	Right  = joypad.Right
	Left   = joypad.Left
	Up     = joypad.Up
	Down   = joypad.Down
	A      = joypad.A
	B      = joypad.B
	Select = joypad.Select
	Start  = joypad.Start
)

// Status reports the CPU's externally observable run state, per spec.md
// §7's "CRASH mode ... externally observable via a status query".
type Status uint8

const (
	StatusRunning Status = iota
	StatusHalted
	StatusStopped
	StatusCrashed
)

// Console is the single owner of every piece of emulator state. It is not
// safe for concurrent Step calls; PressButton/ReleaseButton/DrainAudio take
// a mutex at exactly the boundaries spec.md §5 identifies as
// externally-driven hand-offs.
type Console struct {
	mu sync.Mutex

	cpu *cpu.CPU
	mem *memory.MMU
	ppu *video.PPU
	apu *audio.APU
	irq *interrupt.Controller

	mbc    cart.MBC
	tmr    *timer.Timer
	pad    *joypad.Joypad
	ser    *serial.Port
	header *cart.Header
}

// PowerOn parses cartBytes' header, builds the matching MBC, and wires
// every device into a Console reset to the documented post-boot-ROM state.
// It is the only fallible entry point in the core, per spec.md §7.
func PowerOn(cartBytes []byte) (*Console, error) {
	header, err := cart.ParseHeader(cartBytes)
	if err != nil {
		return nil, err
	}

	mbc, err := cart.New(header, cartBytes)
	if err != nil {
		return nil, err
	}

	irq := interrupt.New()
	mem := memory.New(irq)
	ppu := video.New(irq)
	apu := audio.New()
	tmr := timer.New()
	pad := joypad.New()
	ser := serial.New()

	tmr.RequestInterrupt = func() { irq.Request(interrupt.Timer) }
	pad.RequestInterrupt = func() { irq.Request(interrupt.Joypad) }
	ser.RequestInterrupt = func() { irq.Request(interrupt.Serial) }

	mem.SetMBC(mbc)
	mem.SetTimer(tmr)
	mem.SetJoypad(pad)
	mem.SetSerial(ser)
	mem.SetVideo(ppu)
	mem.SetAudio(apu)

	// The boot ROM leaves the audio unit powered on (NR52 = 0xF1); skip
	// straight to that post-boot state rather than the zero-value APU's
	// powered-off reset.
	apu.WriteRegister(addr.NR52, 0x80)

	c := &Console{
		cpu:    cpu.New(mem, irq),
		mem:    mem,
		ppu:    ppu,
		apu:    apu,
		irq:    irq,
		mbc:    mbc,
		tmr:    tmr,
		pad:    pad,
		ser:    ser,
		header: header,
	}

	slog.Debug("powered on", "title", header.Title, "type", header.Type, "romBanks", header.ROMBanks, "ramBanks", header.RAMBanks)

	return c, nil
}

// Step runs whole CPU instructions until at least minCycles T-cycles have
// been consumed, ticking every subsystem by each instruction's actual
// cost, and returns the number of T-cycles actually consumed (which may
// exceed minCycles by the cost of the instruction that crossed the
// threshold).
func (c *Console) Step(minCycles int) int {
	total := 0
	for total < minCycles {
		total += c.stepOne()
	}
	return total
}

// stepOne executes (or services an interrupt in place of) exactly one CPU
// instruction and forwards its T-cycle cost to every ticking subsystem,
// matching spec.md §5's "fetch/execute/handle_interrupts in sequence, then
// forward the executed cycle count to the subsystems".
func (c *Console) stepOne() int {
	mCycles := c.cpu.HandleInterrupts()
	if mCycles == 0 {
		opcode := c.cpu.Fetch()
		mCycles = c.cpu.Execute(opcode)
	}

	tCycles := int(cycle.Cycle(mCycles).ToTCycles())

	c.mem.Tick(tCycles)
	c.tmr.Tick(tCycles)
	c.ppu.Tick(tCycles)
	c.apu.Tick(tCycles)
	c.ser.Tick(tCycles)

	return tCycles
}

// PressButton marks b as held, arming the Joypad interrupt on a 0->1
// matrix transition per spec.md §4.7.
func (c *Console) PressButton(b Button) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pad.Press(b)
}

// ReleaseButton marks b as released.
func (c *Console) ReleaseButton(b Button) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pad.Release(b)
}

// Framebuffer returns the frame last fully rendered by the PPU.
func (c *Console) Framebuffer() *video.FrameBuffer {
	return c.ppu.Framebuffer()
}

// DrainAudio copies up to len(out) float32 samples (interleaved stereo, at
// 1 048 576 Hz) out of the APU's ring buffer into out and returns the
// count written, always a multiple of two so no stereo pair is torn across
// calls.
func (c *Console) DrainAudio(out []float32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apu.Drain(out)
}

// Header returns the parsed cartridge header this Console was powered on
// with.
func (c *Console) Header() *cart.Header {
	return c.header
}

// SaveRAM returns the cartridge's battery-backed external RAM, or nil if
// the cartridge has none. Persisting and restoring it is the caller's
// responsibility; save-state persistence format is a spec.md non-goal.
func (c *Console) SaveRAM() []byte {
	return c.mbc.RAM()
}

// CPUSnapshot is a read-only copy of the CPU's register file and run mode,
// for tests and host-side tooling.
type CPUSnapshot struct {
	A, B, C, D, E, H, L, F uint8
	SP, PC                 uint16
	Mode                   cpu.Mode
}

// CPUSnapshot returns the CPU's current register file and run mode.
func (c *Console) CPUSnapshot() CPUSnapshot {
	return CPUSnapshot{
		A: c.cpu.A, B: c.cpu.B, C: c.cpu.C,
		D: c.cpu.D, E: c.cpu.E, H: c.cpu.H, L: c.cpu.L, F: c.cpu.F,
		SP: c.cpu.SP, PC: c.cpu.PC,
		Mode: c.cpu.Mode,
	}
}

// PPUMode returns the PPU's current scanline stage.
func (c *Console) PPUMode() video.Mode {
	return c.ppu.Mode()
}

// Status reports the CPU's run mode as an external status value, per
// spec.md §7's "status query" requirement for surfacing CRASH.
func (c *Console) Status() Status {
	switch c.cpu.Mode {
	case cpu.ModeHalt:
		return StatusHalted
	case cpu.ModeStop:
		return StatusStopped
	case cpu.ModeCrash:
		return StatusCrashed
	default:
		return StatusRunning
	}
}

// AudioDebug exposes the APU's channel mute/solo/status controls for
// debugging host tooling.
func (c *Console) AudioDebug() audio.Provider {
	return c.apu
}
