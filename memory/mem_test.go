package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeebie-labs/gbcore/interrupt"
)

type fakeMBC struct{ ram [0x2000]byte }

func (f *fakeMBC) Read(addr uint16) uint8  { return f.ram[addr%0x2000] }
func (f *fakeMBC) Write(addr uint16, v uint8) { f.ram[addr%0x2000] = v }

type fakeVideo struct {
	vram, oam [0x2000]byte
}

func (v *fakeVideo) ReadVRAM(addr uint16) uint8        { return v.vram[addr-0x8000] }
func (v *fakeVideo) WriteVRAM(addr uint16, val uint8)  { v.vram[addr-0x8000] = val }
func (v *fakeVideo) ReadOAM(addr uint16) uint8         { return v.oam[addr-0xFE00] }
func (v *fakeVideo) WriteOAM(addr uint16, val uint8)   { v.oam[addr-0xFE00] = val }
func (v *fakeVideo) WriteOAMDMA(addr uint16, val uint8) { v.oam[addr-0xFE00] = val }
func (v *fakeVideo) ReadRegister(addr uint16) uint8    { return 0 }
func (v *fakeVideo) WriteRegister(addr uint16, val uint8) {}

type fakeDevice struct{}

func (fakeDevice) Read(addr uint16) uint8         { return 0 }
func (fakeDevice) Write(addr uint16, value uint8) {}
func (fakeDevice) ReadRegister(addr uint16) uint8 { return 0 }
func (fakeDevice) WriteRegister(uint16, uint8)    {}

type fakeJoypad struct{}

func (fakeJoypad) Read() uint8        { return 0xFF }
func (fakeJoypad) Write(value uint8)  {}

func newTestMMU() (*MMU, *fakeVideo) {
	irq := interrupt.New()
	m := New(irq)
	m.SetMBC(&fakeMBC{})
	video := &fakeVideo{}
	m.SetVideo(video)
	m.SetAudio(fakeDevice{})
	m.SetTimer(fakeDevice{})
	m.SetJoypad(fakeJoypad{})
	m.SetSerial(fakeDevice{})
	return m, video
}

func TestEchoMirrorLaw(t *testing.T) {
	// property 4: for all a in 0xE000..0xFDFF, reads/writes equal those
	// at a-0x2000.
	m, _ := newTestMMU()
	for _, a := range []uint16{0xE000, 0xE123, 0xFDFF, 0xF000} {
		m.Write(a-0x2000, 0)
		m.Write(a, 0x5A)
		assert.Equal(t, uint8(0x5A), m.Read(a-0x2000), "addr=0x%04X", a)

		m.Write(a-0x2000, 0xA5)
		assert.Equal(t, uint8(0xA5), m.Read(a), "addr=0x%04X", a)
	}
}

func TestOAMDMAScenarioS5(t *testing.T) {
	m, video := newTestMMU()
	for i := 0; i < 0xA0; i++ {
		m.Write(0xC000+uint16(i), uint8(i))
	}

	m.Write(0xFF46, 0xC0)
	for i := 0; i < 160; i++ {
		m.Tick(4) // one m-cycle per byte
	}

	for i := 0; i < 160; i++ {
		require.Equal(t, uint8(i), video.oam[i], "OAM[%d]", i)
	}
}

func TestOAMReadsAsFFDuringDMA(t *testing.T) {
	m, _ := newTestMMU()
	m.Write(0xFF46, 0x00)
	assert.Equal(t, uint8(0xFF), m.Read(0xFE00))
}

func TestUnmappedIOReadsAsFF(t *testing.T) {
	m, _ := newTestMMU()
	assert.Equal(t, uint8(0xFF), m.Read(0xFF03))
	m.Write(0xFF08, 0x42)
	assert.Equal(t, uint8(0xFF), m.Read(0xFF08))
}
