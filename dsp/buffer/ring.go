package buffer

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by [Ring.Read] when the requested span is not
// fully held by the ring.
var ErrOutOfRange = errors.New("buffer: read outside available range")

// Ring is a fixed-capacity circular store addressed by absolute stream
// position. Start() is the global index of the oldest retained sample and
// End() is one past the newest.
//
// Ring is not safe for concurrent use.
type Ring struct {
	data  []float64
	head  int   // storage index of the sample at start
	count int   // valid samples, <= len(data)
	start int64 // global position of data[head]
}

// NewRing returns a Ring holding up to capacity samples.
func NewRing(capacity int) *Ring {
	r := &Ring{}
	r.Resize(capacity)

	return r
}

// Resize reallocates storage for capacity samples and resets all positions.
// Storage is kept when the capacity is unchanged.
func (r *Ring) Resize(capacity int) {
	r.Reset()

	capacity = max(capacity, 0)
	if capacity == len(r.data) {
		return
	}

	r.data = make([]float64, capacity)
}

// Cap returns the ring capacity in samples.
func (r *Ring) Cap() int {
	return len(r.data)
}

// Available returns the number of samples currently readable.
func (r *Ring) Available() int {
	return r.count
}

// Start returns the global position of the oldest retained sample.
func (r *Ring) Start() int64 {
	return r.start
}

// End returns the global position one past the newest sample.
func (r *Ring) End() int64 {
	return r.start + int64(r.count)
}

// Reset rewinds all positions to zero. Storage is preserved.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
	r.start = 0
}

// ResetAt rewinds the ring so that prefill zero samples are readable starting
// at global position start. prefill is clamped to the capacity.
func (r *Ring) ResetAt(start int64, prefill int) {
	r.Reset()

	prefill = min(max(prefill, 0), len(r.data))
	clear(r.data[:prefill])

	r.start = start
	r.count = prefill
}

// Clear zeroes the backing storage without touching positions.
func (r *Ring) Clear() {
	clear(r.data)
}

// Write appends data at the logical end, evicting the oldest samples once the
// ring is full. When data is longer than the capacity only its last Cap()
// samples are kept, but positions still advance by len(data) so that global
// indices keep matching the stream. Write returns the number of samples
// stored.
func (r *Ring) Write(data []float64) int {
	size := len(r.data)
	n := len(data)

	if size == 0 || n == 0 {
		return 0
	}

	if n >= size {
		end := r.End() + int64(n)
		copy(r.data, data[n-size:])
		r.head = 0
		r.count = size
		r.start = end - int64(size)

		return size
	}

	tail := (r.head + r.count) % size
	first := copy(r.data[tail:], data)
	copy(r.data, data[first:])

	r.count += n
	if r.count > size {
		drop := r.count - size
		r.head = (r.head + drop) % size
		r.start += int64(drop)
		r.count = size
	}

	return n
}

// Read copies len(dst) samples starting at global position pos into dst.
// The ring is not modified. The whole span [pos, pos+len(dst)) must lie
// within [Start(), End()).
func (r *Ring) Read(dst []float64, pos int64) error {
	n := len(dst)
	if pos < r.start || pos+int64(n) > r.End() {
		return fmt.Errorf("%w: want [%d, %d), have [%d, %d)",
			ErrOutOfRange, pos, pos+int64(n), r.start, r.End())
	}

	if n == 0 {
		return nil
	}

	size := len(r.data)
	idx := (r.head + int(pos-r.start)) % size
	first := copy(dst, r.data[idx:])
	copy(dst[first:], r.data[:n-first])

	return nil
}

// Has reports whether n samples starting at pos are readable.
func (r *Ring) Has(pos int64, n int) bool {
	return pos >= r.start && pos+int64(n) <= r.End()
}
