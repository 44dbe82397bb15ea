// Package memory implements the flat 16-bit address space described in
// spec.md §3/§4.3: ROM/external-RAM routed to the cartridge's MBC, VRAM
// and OAM routed to the video device (mode-gated there), WRAM with its
// echo mirror, the I/O register bank routed to the owning device, HRAM,
// and OAM DMA. Address decoding dispatches on ordered address ranges and
// routes to the cart/interrupt/timer/joypad/serial/video/audio packages
// rather than holding any device's state directly.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/jeebie-labs/gbcore/interrupt"
)

// MBC is the subset of cart.MBC the MMU needs; kept local to avoid a
// direct package dependency on cart's header-parsing concerns.
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Video is the memory-mapped surface the PPU exposes. VRAM/OAM access is
// gated by the PPU's own mode, per spec.md §4.4; the MMU only decides
// whether DMA currently owns the OAM bus.
type Video interface {
	ReadVRAM(addr uint16) uint8
	WriteVRAM(addr uint16, value uint8)
	ReadOAM(addr uint16) uint8
	WriteOAM(addr uint16, value uint8)
	WriteOAMDMA(addr uint16, value uint8)
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// Audio is the memory-mapped surface the APU exposes.
type Audio interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

// Timer is the memory-mapped surface of the divider/timer.
type Timer interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

// Joypad is the memory-mapped surface of the P1 register.
type Joypad interface {
	Read() uint8
	Write(value uint8)
}

// Serial is the memory-mapped surface of SB/SC.
type Serial interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

const (
	addrP1  uint16 = 0xFF00
	addrSB  uint16 = 0xFF01
	addrSC  uint16 = 0xFF02
	addrDIV uint16 = 0xFF04
	addrTAC uint16 = 0xFF07
	addrIF  uint16 = 0xFF0F
	addrDMA uint16 = 0xFF46
	addrIE  uint16 = 0xFFFF
)

const dmaLength = 160

// MMU routes the CPU's address space across every owning device.
type MMU struct {
	mbc     MBC
	irq     *interrupt.Controller
	timer   Timer
	joypad  Joypad
	serial  Serial
	video   Video
	audio   Audio
	wram    [0x2000]byte
	hram    [0x80]byte

	dmaActive    bool
	dmaSource    uint16
	dmaCopied    int
	dmaTCycleRem int
}

// New returns an MMU with no cartridge and no devices attached; the
// console wires MBC/Video/Audio/Timer/Joypad/Serial/interrupt controller
// immediately after construction.
func New(irq *interrupt.Controller) *MMU {
	return &MMU{irq: irq}
}

func (m *MMU) SetMBC(mbc MBC)       { m.mbc = mbc }
func (m *MMU) SetTimer(t Timer)     { m.timer = t }
func (m *MMU) SetJoypad(j Joypad)   { m.joypad = j }
func (m *MMU) SetSerial(s Serial)   { m.serial = s }
func (m *MMU) SetVideo(v Video)     { m.video = v }
func (m *MMU) SetAudio(a Audio)     { m.audio = a }

// Tick advances OAM DMA by tCycles T-cycles; one byte transfers every 4
// T-cycles (1 M-cycle), matching spec.md §4.3's "160 bytes over 160
// m-cycles".
func (m *MMU) Tick(tCycles int) {
	if !m.dmaActive {
		return
	}
	m.dmaTCycleRem += tCycles
	for m.dmaTCycleRem >= 4 && m.dmaCopied < dmaLength {
		m.dmaTCycleRem -= 4
		i := uint16(m.dmaCopied)
		m.video.WriteOAMDMA(0xFE00+i, m.Read(m.dmaSource+i))
		m.dmaCopied++
	}
	if m.dmaCopied >= dmaLength {
		m.dmaActive = false
	}
}

// Read resolves address into exactly one of the regions documented in
// spec.md §3.
func (m *MMU) Read(address uint16) uint8 {
	switch {
	case address <= 0x7FFF, address >= 0xA000 && address <= 0xBFFF:
		return m.mbc.Read(address)
	case address <= 0x9FFF:
		return m.video.ReadVRAM(address)
	case address <= 0xDFFF:
		return m.wram[address-0xC000]
	case address <= 0xFDFF:
		return m.wram[address-0xE000]
	case address <= 0xFE9F:
		if m.dmaActive {
			return 0xFF
		}
		return m.video.ReadOAM(address)
	case address <= 0xFEFF:
		return 0xFF
	case address <= 0xFF7F:
		return m.readIO(address)
	case address <= 0xFFFE:
		return m.hram[address-0xFF80]
	default:
		return m.irq.IE()
	}
}

// Write dispatches mirror-wise over the same regions Read resolves,
// additionally routing MBC control-port writes in 0x0000-0x7FFF.
func (m *MMU) Write(address uint16, value uint8) {
	switch {
	case address <= 0x7FFF, address >= 0xA000 && address <= 0xBFFF:
		m.mbc.Write(address, value)
	case address <= 0x9FFF:
		m.video.WriteVRAM(address, value)
	case address <= 0xDFFF:
		m.wram[address-0xC000] = value
	case address <= 0xFDFF:
		m.wram[address-0xE000] = value
	case address <= 0xFE9F:
		if !m.dmaActive {
			m.video.WriteOAM(address, value)
		}
	case address <= 0xFEFF:
		// unmapped, writes dropped
	case address <= 0xFF7F:
		m.writeIO(address, value)
	case address <= 0xFFFE:
		m.hram[address-0xFF80] = value
	default:
		m.irq.SetIE(value)
	}
}

func (m *MMU) readIO(address uint16) uint8 {
	switch {
	case address == addrP1:
		return m.joypad.Read()
	case address == addrSB || address == addrSC:
		return m.serial.Read(address)
	case address >= addrDIV && address <= addrTAC:
		return m.timer.Read(address)
	case address == addrIF:
		return m.irq.IF()
	case address >= 0xFF10 && address <= 0xFF3F:
		return m.audio.ReadRegister(address)
	case address == addrDMA:
		return 0xFF
	case address >= 0xFF40 && address <= 0xFF4B:
		return m.video.ReadRegister(address)
	default:
		slog.Warn("read from unmapped I/O register", "addr", fmt.Sprintf("0x%04X", address))
		return 0xFF
	}
}

func (m *MMU) writeIO(address uint16, value uint8) {
	switch {
	case address == addrP1:
		m.joypad.Write(value)
	case address == addrSB || address == addrSC:
		m.serial.Write(address, value)
	case address >= addrDIV && address <= addrTAC:
		m.timer.Write(address, value)
	case address == addrIF:
		m.irq.SetIF(value)
	case address >= 0xFF10 && address <= 0xFF3F:
		m.audio.WriteRegister(address, value)
	case address == addrDMA:
		m.startDMA(value)
	case address >= 0xFF40 && address <= 0xFF4B:
		m.video.WriteRegister(address, value)
	default:
		slog.Warn("write to unmapped I/O register", "addr", fmt.Sprintf("0x%04X", address), "value", fmt.Sprintf("0x%02X", value))
	}
}

func (m *MMU) startDMA(value uint8) {
	m.dmaActive = true
	m.dmaSource = uint16(value) << 8
	m.dmaCopied = 0
	m.dmaTCycleRem = 0
}
