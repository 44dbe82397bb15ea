package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankROM(size int) []byte {
	rom := make([]byte, size)
	copy(rom[titleStart:], []byte("TESTROM"))
	rom[cgbFlagAddr] = 0x00
	rom[cartridgeTypeAddr] = 0x01 // MBC1
	rom[romSizeAddr] = 0x00       // 2 banks
	rom[ramSizeAddr] = 0x00       // no RAM
	return rom
}

func TestParseHeaderHappyPath(t *testing.T) {
	rom := blankROM(0x8000)
	h, err := ParseHeader(rom)
	require.NoError(t, err)
	assert.Equal(t, "TESTROM", h.Title)
	assert.Equal(t, TypeMBC1, h.Type)
	assert.Equal(t, 2, h.ROMBanks)
	assert.Equal(t, 0, h.RAMBanks)
	assert.Equal(t, CGBNone, h.CGB)
}

func TestParseHeaderTooSmall(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x100))
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestParseHeaderBadROMSizeCode(t *testing.T) {
	rom := blankROM(0x8000)
	rom[romSizeAddr] = 0xFF
	_, err := ParseHeader(rom)
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestParseHeaderBadCartridgeType(t *testing.T) {
	rom := blankROM(0x8000)
	rom[cartridgeTypeAddr] = 0xFE
	_, err := ParseHeader(rom)
	require.ErrorIs(t, err, ErrInvalidHeader)
}
