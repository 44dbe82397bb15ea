package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeebie-labs/gbcore/addr"
	"github.com/jeebie-labs/gbcore/cpu"
	"github.com/jeebie-labs/gbcore/interrupt"
)

// minimalROM returns a 32 KiB RomOnly cartridge image (every header byte
// zero, which parses as "RomOnly, no RAM, no battery, untitled") with
// program copied in starting at 0x0100, the CPU's post-boot-ROM PC.
func minimalROM(program ...byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], program)
	return rom
}

func newTestConsole(t *testing.T, program ...byte) *Console {
	c, err := PowerOn(minimalROM(program...))
	require.NoError(t, err)
	return c
}

func TestPowerOn_RejectsTruncatedROM(t *testing.T) {
	_, err := PowerOn([]byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}

func TestPowerOn_RejectsUnsupportedMBC(t *testing.T) {
	rom := minimalROM()
	rom[0x0147] = 0x05 // MBC2
	_, err := PowerOn(rom)
	assert.Error(t, err)
}

// TestS1_LDImmediate covers scenario S1: LD B,0x42 from the documented
// post-boot-ROM state.
func TestS1_LDImmediate(t *testing.T) {
	c := newTestConsole(t, 0x06, 0x42) // LD B, 0x42

	cycles := c.stepOne()

	snap := c.CPUSnapshot()
	assert.Equal(t, uint8(0x42), snap.B)
	assert.Equal(t, uint16(0x0102), snap.PC)
	assert.Equal(t, 2*4, cycles, "2 M-cycles reported as T-cycles")
}

// TestS2_AddFlagEdges covers scenario S2: ADD A,0x01 against A=0xFF rolls
// over to zero and sets every flag.
func TestS2_AddFlagEdges(t *testing.T) {
	c := newTestConsole(t, 0xC6, 0x01) // ADD A, 0x01
	c.cpu.A = 0xFF

	c.stepOne()

	snap := c.CPUSnapshot()
	assert.Equal(t, uint8(0x00), snap.A)
	assert.NotZero(t, snap.F&uint8(cpu.FlagZ))
	assert.Zero(t, snap.F&uint8(cpu.FlagN))
	assert.NotZero(t, snap.F&uint8(cpu.FlagH))
	assert.NotZero(t, snap.F&uint8(cpu.FlagC))
}

// TestS3_PushPopRoundTrip covers scenario S3: PUSH BC; POP DE round-trips
// the value and leaves SP where it started.
func TestS3_PushPopRoundTrip(t *testing.T) {
	c := newTestConsole(t, 0xC5, 0xD1) // PUSH BC; POP DE
	c.cpu.B, c.cpu.C = 0x12, 0x34
	c.cpu.SP = 0xFFFE

	c.stepOne() // PUSH BC
	c.stepOne() // POP DE

	snap := c.CPUSnapshot()
	assert.Equal(t, uint8(0x12), snap.D)
	assert.Equal(t, uint8(0x34), snap.E)
	assert.Equal(t, uint16(0xFFFE), snap.SP)
}

// TestS4_InterruptDispatch covers scenario S4: a pending, enabled VBlank
// interrupt is dispatched in place of instruction fetch.
func TestS4_InterruptDispatch(t *testing.T) {
	c := newTestConsole(t)
	c.cpu.PC = 0x0200
	c.cpu.SP = 0xFFFE
	c.irq.SetIME(true)
	c.irq.SetIE(0x01)
	c.irq.SetIF(0x01)

	cycles := c.cpu.HandleInterrupts()

	assert.Equal(t, 5, cycles)
	assert.Equal(t, uint16(0x0040), c.cpu.PC)
	assert.False(t, c.irq.IME())
	assert.Zero(t, c.irq.IF()&0x01)
	assert.Equal(t, uint16(0xFFFC), c.cpu.SP)
	assert.Equal(t, uint8(0x00), c.mem.Read(0xFFFC))
	assert.Equal(t, uint8(0x02), c.mem.Read(0xFFFD))
}

// TestS5_OAMDMA covers scenario S5: writing the DMA register copies 160
// bytes from the source page into OAM over 160 M-cycles.
func TestS5_OAMDMA(t *testing.T) {
	c := newTestConsole(t)
	for i := 0; i < 160; i++ {
		c.mem.Write(0xC000+uint16(i), byte(i))
	}

	c.mem.Write(addr.DMA, 0xC0)
	c.mem.Tick(160 * 4) // 160 M-cycles = 640 T-cycles

	for i := 0; i < 160; i++ {
		assert.Equal(t, byte(i), c.ppu.ReadOAM(addr.OAMStart+uint16(i)), "OAM[%d]", i)
	}
}

// TestS6_FrameSequencerCadence covers scenario S6: over one full 8-step
// frame-sequencer cycle, Length events land on steps 0,2,4,6 and the Sweep
// event coincides with Length on steps 2 and 6, matching the documented
// [L,-,LS,-,L,-,LS,E] pattern for the Length/Sweep positions (Envelope's
// effect on step 7 is amplitude-only and is exercised directly against the
// APU's internal state in audio/apu_test.go).
func TestS6_FrameSequencerCadence(t *testing.T) {
	c := newTestConsole(t)

	// pace=1 (every sweep event), direction=add, step=1; DAC on.
	c.apu.WriteRegister(addr.NR10, 0b0_001_0_001)
	c.apu.WriteRegister(addr.NR12, 0xF0)
	// length = 64-62 = 2: a Length event fires on step 0 (2->1) and a
	// second on step 2 (1->0, disabling the channel). The sweep pace/step
	// chosen here never overflows, so the channel's enabled flag isolates
	// the Length cadence alone; Sweep's own per-step write-back is not
	// observable through registers (NR13/NR14's period bits read back as
	// fixed 1s on real hardware) and is covered at the unit level by
	// audio/apu_test.go's TestChannel1_SweepUpdatesFrequency.
	c.apu.WriteRegister(addr.NR11, 0b00_111110)
	c.apu.WriteRegister(addr.NR13, 0x00)
	c.apu.WriteRegister(addr.NR14, 0xC1) // trigger, length enable, period high=1

	const cyclesPerStep = 8192

	ch1, _, _, _ := c.apu.GetChannelStatus()
	require.True(t, ch1)

	c.apu.Tick(cyclesPerStep) // step 0: Length only
	ch1, _, _, _ = c.apu.GetChannelStatus()
	assert.True(t, ch1, "length=2 survives the first Length event")

	c.apu.Tick(cyclesPerStep) // step 1: nothing
	ch1, _, _, _ = c.apu.GetChannelStatus()
	assert.True(t, ch1, "no Length/Sweep event on the odd step")

	c.apu.Tick(cyclesPerStep) // step 2: Length (disables) and Sweep together
	ch1, _, _, _ = c.apu.GetChannelStatus()
	assert.False(t, ch1, "length reaches zero on the second Length event")
}

func TestPressReleaseButtonRequestsInterrupt(t *testing.T) {
	c := newTestConsole(t)
	c.irq.Clear(interrupt.Joypad)

	c.PressButton(A)

	assert.NotZero(t, c.irq.IF()&0x10)
}

func TestDrainAudio_RoundsDownToWholePairs(t *testing.T) {
	c := newTestConsole(t)
	c.apu.Tick(1000)

	out := make([]float32, 7)
	n := c.DrainAudio(out)
	assert.Zero(t, n%2)
}
