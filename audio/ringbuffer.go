package audio

// ringBuffer is a fixed-capacity circular buffer of interleaved stereo
// float32 samples. When full, pushing a new stereo pair silently drops
// the oldest pair instead of growing or blocking: the console's audio
// path has no backpressure mechanism, matching spec.md's "audio overflow
// is never surfaced" error policy.
type ringBuffer struct {
	data  [ringBufferCapacity]float32
	head  int // index of oldest sample
	count int // number of valid samples currently stored
}

// pushStereo appends one left/right pair, dropping the oldest pair first
// if the buffer is already full.
func (r *ringBuffer) pushStereo(left, right float32) {
	if r.count+2 > len(r.data) {
		r.head = (r.head + 2) % len(r.data)
		r.count -= 2
	}
	tail := (r.head + r.count) % len(r.data)
	r.data[tail] = left
	r.data[(tail+1)%len(r.data)] = right
	r.count += 2
}

// drain copies up to len(out) samples into out, rounded down to a whole
// number of stereo pairs so a partial pair is never split across calls.
// It returns the number of float32 values written.
func (r *ringBuffer) drain(out []float32) int {
	n := min(len(out), r.count)
	n -= n % 2
	for i := 0; i < n; i++ {
		out[i] = r.data[(r.head+i)%len(r.data)]
	}
	r.head = (r.head + n) % len(r.data)
	r.count -= n
	return n
}
