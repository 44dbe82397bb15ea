// Package video implements the DMG PPU: a fixed-cost, four-state
// per-scanline machine (OAM scan, Drawing, HBlank, VBlank) that paints a
// 160x144 framebuffer of 2-bit shades and arms the VBlank/LcdStat
// interrupts, per spec.md §4.4. Mode timing decomposes cleanly into 154
// scanlines of 456 T-cycles each (80/172/204 per mode); VRAM, OAM, and the
// LCD registers are owned directly by the PPU, satisfying memory.Video
// instead of being reached through a shared MMU field.
package video

import (
	"github.com/jeebie-labs/gbcore/addr"
	"github.com/jeebie-labs/gbcore/bit"
	"github.com/jeebie-labs/gbcore/interrupt"
)

// Mode is the PPU's current scanline stage; its value doubles as the
// two low bits of STAT.
type Mode uint8

const (
	ModeHBlank  Mode = 0
	ModeVBlank  Mode = 1
	ModeOAM     Mode = 2
	ModeDrawing Mode = 3
)

const (
	oamCycles      = 80
	drawingCycles  = 172
	hblankCycles   = 204
	scanlineCycles = oamCycles + drawingCycles + hblankCycles

	visibleLines = 144
	totalLines   = 154
)

// LCDC (LCD Control) bit positions.
type lcdcFlag uint8

const (
	lcdDisplayEnable       lcdcFlag = 7
	windowTileMapSelect             = 6
	windowDisplayEnable             = 5
	bgWindowTileDataSelect          = 4
	bgTileMapDisplaySelect          = 3
	spriteSize                      = 2
	spriteDisplayEnable             = 1
	bgDisplay                       = 0
)

// STAT bit positions.
type statFlag uint8

const (
	statLycIrq       statFlag = 6
	statOamIrq                = 5
	statVblankIrq             = 4
	statHblankIrq             = 3
	statLycCondition          = 2
)

// PPU owns VRAM, OAM, and every LCD register; it never reaches back into
// the MMU, raising interrupts directly through the shared controller.
type PPU struct {
	irq *interrupt.Controller

	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat, scy, scx, ly, lyc, bgp, obp0, obp1, wy, wx byte

	mode   Mode
	cycles int

	windowLine    int
	bgIndexBuffer [FramebufferWidth]byte // pre-palette color index, for sprite priority

	framebuffer *FrameBuffer
	oamScanner  *OAM
}

// New returns a PPU powered on in VBlank at LY=144, matching the
// post-boot-ROM state the spec documents for "PPU on".
func New(irq *interrupt.Controller) *PPU {
	p := &PPU{
		irq:         irq,
		framebuffer: NewFrameBuffer(),
		mode:        ModeVBlank,
		ly:          144,
		lcdc:        0x91,
	}
	p.oamScanner = NewOAM(p)
	return p
}

// Framebuffer returns the frame last fully rendered.
func (p *PPU) Framebuffer() *FrameBuffer {
	return p.framebuffer
}

// Mode returns the PPU's current scanline stage.
func (p *PPU) Mode() Mode {
	return p.mode
}

// Read implements OAMBus for the OAM scanner: unrestricted access to LCDC
// and OAM, bypassing the CPU-facing mode gating on ReadOAM.
func (p *PPU) Read(address uint16) byte {
	if address == addr.LCDC {
		return p.lcdc
	}
	return p.oamByte(address)
}

func (p *PPU) vramByte(address uint16) byte { return p.vram[address-0x8000] }
func (p *PPU) oamByte(address uint16) byte  { return p.oam[address-addr.OAMStart] }

// vramReader adapts the PPU's own VRAM for FetchTile, which wants a
// MemoryReader rather than a direct field.
type vramReader struct{ p *PPU }

func (v vramReader) Read(address uint16) byte { return v.p.vramByte(address) }

// Tick advances the mode machine by tCycles T-cycles. A disabled LCD
// freezes the machine entirely, per spec.md §4.4 ("while LCD is
// enabled").
func (p *PPU) Tick(tCycles int) {
	if !bit.IsSet(uint8(lcdDisplayEnable), p.lcdc) {
		return
	}

	p.cycles += tCycles
	for {
		switch p.mode {
		case ModeOAM:
			if p.cycles < oamCycles {
				return
			}
			p.cycles -= oamCycles
			p.enterMode(ModeDrawing)
		case ModeDrawing:
			if p.cycles < drawingCycles {
				return
			}
			p.cycles -= drawingCycles
			p.enterMode(ModeHBlank)
		case ModeHBlank:
			if p.cycles < hblankCycles {
				return
			}
			p.cycles -= hblankCycles
			if p.ly == visibleLines-1 {
				p.setLY(int(p.ly) + 1)
				p.windowLine = 0
				p.enterMode(ModeVBlank)
			} else {
				p.setLY(int(p.ly) + 1)
				p.enterMode(ModeOAM)
			}
		case ModeVBlank:
			if p.cycles < scanlineCycles {
				return
			}
			p.cycles -= scanlineCycles
			if p.ly == totalLines-1 {
				p.setLY(0)
				p.enterMode(ModeOAM)
			} else {
				p.setLY(int(p.ly) + 1)
			}
		}
	}
}

// enterMode transitions into m, updating STAT and arming the VBlank/
// LcdStat interrupts exactly on mode entry.
func (p *PPU) enterMode(m Mode) {
	p.mode = m
	p.stat = p.stat&0xFC | byte(m)

	switch m {
	case ModeOAM:
		if bit.IsSet(uint8(statOamIrq), p.stat) {
			p.requestStat()
		}
	case ModeDrawing:
		p.drawScanline()
	case ModeHBlank:
		if bit.IsSet(uint8(statHblankIrq), p.stat) {
			p.requestStat()
		}
	case ModeVBlank:
		p.irq.Request(interrupt.VBlank)
		if bit.IsSet(uint8(statVblankIrq), p.stat) {
			p.requestStat()
		}
	}
}

func (p *PPU) requestStat() {
	p.irq.Request(interrupt.LCDStat)
}

func (p *PPU) setLY(line int) {
	p.ly = byte(line)
	if p.ly == p.lyc {
		p.stat |= 1 << statLycCondition
		if bit.IsSet(uint8(statLycIrq), p.stat) {
			p.requestStat()
		}
	} else {
		p.stat &^= 1 << statLycCondition
	}
}

func (p *PPU) drawScanline() {
	if !bit.IsSet(uint8(lcdDisplayEnable), p.lcdc) {
		return
	}

	p.drawBackground()
	p.drawWindow()
	p.drawSprites()
}

func (p *PPU) paletteShade(palette, index byte) byte {
	return (palette >> (index * 2)) & 0x03
}

// tilePixel fetches the tile at tileIndex (resolved per the addressing
// mode) and returns the raw 2-bit color index at (x, y) within it.
func (p *PPU) tilePixel(tileIndex byte, signedAddressing bool, x, y int) byte {
	var base uint16
	if signedAddressing {
		base = addr.TileData2 + uint16(int(int8(tileIndex))*16)
	} else {
		base = addr.TileData0 + uint16(int(tileIndex)*16)
	}
	tile := FetchTile(vramReader{p}, base)
	return byte(tile.GetPixel(x, y))
}

func (p *PPU) drawBackground() {
	lineBase := int(p.ly) * FramebufferWidth

	if !bit.IsSet(uint8(bgDisplay), p.lcdc) {
		shade := p.paletteShade(p.bgp, 0)
		for x := 0; x < FramebufferWidth; x++ {
			p.framebuffer.set(lineBase+x, shade)
			p.bgIndexBuffer[x] = 0
		}
		return
	}

	signedAddressing := !bit.IsSet(uint8(bgWindowTileDataSelect), p.lcdc)
	tileMapAddr := addr.TileMap0
	if bit.IsSet(uint8(bgTileMapDisplaySelect), p.lcdc) {
		tileMapAddr = addr.TileMap1
	}

	scrolledY := (int(p.ly) + int(p.scy)) & 0xFF
	tileRow := (scrolledY / 8) * 32
	pixelY := scrolledY % 8

	for x := 0; x < FramebufferWidth; x++ {
		scrolledX := (x + int(p.scx)) & 0xFF
		tileCol := scrolledX / 8
		pixelX := scrolledX % 8

		tileIndex := p.vramByte(tileMapAddr + uint16(tileRow+tileCol))
		index := p.tilePixel(tileIndex, signedAddressing, pixelX, pixelY)

		p.bgIndexBuffer[x] = index
		p.framebuffer.set(lineBase+x, p.paletteShade(p.bgp, index))
	}
}

func (p *PPU) drawWindow() {
	if !bit.IsSet(uint8(windowDisplayEnable), p.lcdc) {
		return
	}
	if int(p.wy) > int(p.ly) {
		return
	}

	wx := int(p.wx) - 7
	signedAddressing := !bit.IsSet(uint8(bgWindowTileDataSelect), p.lcdc)
	tileMapAddr := addr.TileMap0
	if bit.IsSet(uint8(windowTileMapSelect), p.lcdc) {
		tileMapAddr = addr.TileMap1
	}

	tileRow := (p.windowLine / 8) * 32
	pixelY := p.windowLine % 8
	lineBase := int(p.ly) * FramebufferWidth
	drawn := false

	for screenX := 0; screenX < FramebufferWidth; screenX++ {
		if screenX < wx {
			continue
		}
		drawn = true

		windowX := screenX - wx
		tileCol := windowX / 8
		pixelX := windowX % 8

		tileIndex := p.vramByte(tileMapAddr + uint16(tileRow+tileCol))
		index := p.tilePixel(tileIndex, signedAddressing, pixelX, pixelY)

		p.bgIndexBuffer[screenX] = index
		p.framebuffer.set(lineBase+screenX, p.paletteShade(p.bgp, index))
	}

	if drawn {
		p.windowLine++
	}
}

func (p *PPU) drawSprites() {
	if !bit.IsSet(uint8(spriteDisplayEnable), p.lcdc) {
		return
	}

	lineBase := int(p.ly) * FramebufferWidth
	sprites := p.oamScanner.GetSpritesForScanline(int(p.ly))

	for i := range sprites {
		s := &sprites[i]
		if !s.HasPriorityForAnyPixel() {
			continue
		}

		palette := p.obp0
		if s.PaletteOBP1 {
			palette = p.obp1
		}

		rowInSprite := int(p.ly) - int(s.Y)
		if s.FlipY {
			rowInSprite = s.Height - 1 - rowInSprite
		}

		tileIndex := int(s.TileIndex)
		rowOffset := rowInSprite
		if s.Height == 16 {
			tileIndex &= 0xFE
			if rowInSprite >= 8 {
				tileIndex++
				rowOffset -= 8
			}
		}

		tile := FetchTile(vramReader{p}, addr.TileData0+uint16(tileIndex*16))
		row := tile.Rows[rowOffset]

		for px := 0; px < 8; px++ {
			bufferX := int(s.X) + px
			if bufferX < 0 || bufferX >= FramebufferWidth {
				continue
			}
			if !s.HasPriorityForPixel(px) {
				continue
			}

			var index int
			if s.FlipX {
				index = row.GetPixelFlipped(px)
			} else {
				index = row.GetPixel(px)
			}
			if index == 0 {
				continue // transparent
			}

			if s.BehindBG && p.bgIndexBuffer[bufferX] != 0 {
				continue
			}

			p.framebuffer.set(lineBase+bufferX, p.paletteShade(palette, byte(index)))
		}
	}
}

// ReadVRAM and WriteVRAM are gated by Drawing mode per spec.md §4.4.
func (p *PPU) ReadVRAM(address uint16) byte {
	if p.mode == ModeDrawing {
		return 0xFF
	}
	return p.vramByte(address)
}

func (p *PPU) WriteVRAM(address uint16, value byte) {
	if p.mode == ModeDrawing {
		return
	}
	p.vram[address-0x8000] = value
}

// ReadOAM and WriteOAM are gated by OAM-scan and Drawing mode; the OAM
// DMA path bypasses this via WriteOAMDMA.
func (p *PPU) ReadOAM(address uint16) byte {
	if p.mode == ModeOAM || p.mode == ModeDrawing {
		return 0xFF
	}
	return p.oamByte(address)
}

func (p *PPU) WriteOAM(address uint16, value byte) {
	if p.mode == ModeOAM || p.mode == ModeDrawing {
		return
	}
	p.oam[address-addr.OAMStart] = value
}

func (p *PPU) WriteOAMDMA(address uint16, value byte) {
	p.oam[address-addr.OAMStart] = value
}

func (p *PPU) ReadRegister(address uint16) byte {
	switch address {
	case addr.LCDC:
		return p.lcdc
	case addr.STAT:
		return p.stat | 0x80
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp
	case addr.OBP0:
		return p.obp0
	case addr.OBP1:
		return p.obp1
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteRegister(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		p.lcdc = value
	case addr.STAT:
		p.stat = p.stat&0x07 | value&0xF8
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LY:
		// read-only
	case addr.LYC:
		p.lyc = value
	case addr.BGP:
		p.bgp = value
	case addr.OBP0:
		p.obp0 = value
	case addr.OBP1:
		p.obp1 = value
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}
