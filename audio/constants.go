package audio

// Timing constants
// Reference: https://gbdev.io/pandocs/Audio_details.html
const (
	// cyclesPerStep is the number of T-cycles per frame sequencer tick.
	// The frame sequencer runs at 512 Hz: 4194304 Hz / 512 Hz = 8192 T-cycles.
	cyclesPerStep = 8192

	// SampleRate is the APU's native output rate: one stereo sample per
	// M-cycle (4194304 / 4 = 1048576 Hz). External collaborators resample
	// from this rate themselves; the core never does.
	SampleRate = 1048576

	// ringBufferCapacity holds ~100ms of stereo samples (a whole number of
	// pairs) before the oldest pair is dropped to make room for new ones.
	ringBufferCapacity = 2 * (SampleRate / 10)
)

// Channel constants
const (
	// waveRAMSize is the size of wave pattern RAM in bytes (16 bytes = 32 nibbles)
	waveRAMSize = 16
)
