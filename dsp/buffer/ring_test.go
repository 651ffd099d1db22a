package buffer

import (
	"errors"
	"math/rand"
	"testing"
)

func ramp(from, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(from + i)
	}
	return out
}

func TestNewRing(t *testing.T) {
	r := NewRing(16)
	if r.Cap() != 16 {
		t.Fatalf("Cap = %d, want 16", r.Cap())
	}
	if r.Available() != 0 || r.Start() != 0 || r.End() != 0 {
		t.Fatalf("fresh ring: avail=%d start=%d end=%d", r.Available(), r.Start(), r.End())
	}
}

func TestRingWriteReadNoWrap(t *testing.T) {
	r := NewRing(8)
	if n := r.Write(ramp(0, 5)); n != 5 {
		t.Fatalf("Write = %d, want 5", n)
	}

	dst := make([]float64, 3)
	if err := r.Read(dst, 1); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, v := range dst {
		if v != float64(1+i) {
			t.Fatalf("dst[%d] = %v, want %d", i, v, 1+i)
		}
	}
}

func TestRingWrapEvictsOldest(t *testing.T) {
	r := NewRing(8)
	r.Write(ramp(0, 6))
	r.Write(ramp(6, 5))

	if r.Start() != 3 || r.End() != 11 || r.Available() != 8 {
		t.Fatalf("start=%d end=%d avail=%d, want 3/11/8", r.Start(), r.End(), r.Available())
	}

	dst := make([]float64, 8)
	if err := r.Read(dst, 3); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, v := range dst {
		if v != float64(3+i) {
			t.Fatalf("dst[%d] = %v, want %d", i, v, 3+i)
		}
	}

	if err := r.Read(make([]float64, 1), 2); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Read evicted position: err = %v, want ErrOutOfRange", err)
	}
}

func TestRingRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		capacity := 1 + rng.Intn(64)
		r := NewRing(capacity)

		written := 0
		for written < capacity {
			n := 1 + rng.Intn(capacity-written)
			if got := r.Write(ramp(written, n)); got != n {
				t.Fatalf("trial %d: Write = %d, want %d", trial, got, n)
			}
			written += n
		}

		for pos := 0; pos < written; pos++ {
			for n := 0; pos+n <= written; n++ {
				dst := make([]float64, n)
				if err := r.Read(dst, int64(pos)); err != nil {
					t.Fatalf("trial %d: Read(%d, %d): %v", trial, pos, n, err)
				}
				for i, v := range dst {
					if v != float64(pos+i) {
						t.Fatalf("trial %d: dst[%d] = %v, want %d", trial, i, v, pos+i)
					}
				}
			}
		}

		if err := r.Read(make([]float64, 1), int64(written)); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("trial %d: read past end: err = %v", trial, err)
		}
		if err := r.Read(make([]float64, 1), -1); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("trial %d: read before start: err = %v", trial, err)
		}
	}
}

func TestRingStreamingWindows(t *testing.T) {
	r := NewRing(100)
	pos := 0
	for pos < 1000 {
		n := 1 + pos%37
		r.Write(ramp(pos, n))
		pos += n

		start := max(0, pos-100)
		dst := make([]float64, pos-start)
		if err := r.Read(dst, int64(start)); err != nil {
			t.Fatalf("pos %d: %v", pos, err)
		}
		if dst[0] != float64(start) || dst[len(dst)-1] != float64(pos-1) {
			t.Fatalf("pos %d: got [%v..%v]", pos, dst[0], dst[len(dst)-1])
		}
	}
}

func TestRingOverCapacityKeepsTail(t *testing.T) {
	r := NewRing(4)
	r.Write(ramp(0, 2))

	if n := r.Write(ramp(2, 10)); n != 4 {
		t.Fatalf("Write = %d, want 4", n)
	}
	if r.Start() != 8 || r.End() != 12 {
		t.Fatalf("start=%d end=%d, want 8/12", r.Start(), r.End())
	}

	dst := make([]float64, 4)
	if err := r.Read(dst, 8); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i, v := range dst {
		if v != float64(8+i) {
			t.Fatalf("dst[%d] = %v, want %d", i, v, 8+i)
		}
	}
}

func TestRingResetAt(t *testing.T) {
	r := NewRing(16)
	r.Write(ramp(1, 16))

	r.ResetAt(-4, 4)
	if r.Start() != -4 || r.Available() != 4 {
		t.Fatalf("start=%d avail=%d, want -4/4", r.Start(), r.Available())
	}

	r.Write(ramp(100, 3))

	dst := make([]float64, 7)
	if err := r.Read(dst, -4); err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []float64{0, 0, 0, 0, 100, 101, 102}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
	if !r.Has(0, 3) || r.Has(0, 4) {
		t.Fatal("Has reports wrong availability")
	}
}

func TestRingResizeAndReset(t *testing.T) {
	r := NewRing(8)
	r.Write(ramp(0, 8))
	data := r.data

	r.Resize(8)
	if r.Available() != 0 {
		t.Fatalf("Resize same capacity kept %d samples", r.Available())
	}
	if &r.data[0] != &data[0] {
		t.Fatal("Resize with unchanged capacity reallocated storage")
	}

	r.Resize(32)
	if r.Cap() != 32 {
		t.Fatalf("Cap = %d, want 32", r.Cap())
	}

	r.Write(ramp(0, 3))
	r.Reset()
	if r.Available() != 0 || r.Start() != 0 {
		t.Fatal("Reset did not rewind positions")
	}

	r.Clear()
	for i, v := range r.data {
		if v != 0 {
			t.Fatalf("data[%d] = %v after Clear", i, v)
		}
	}
}

func TestRingZeroCapacity(t *testing.T) {
	r := NewRing(0)
	if n := r.Write([]float64{1, 2}); n != 0 {
		t.Fatalf("Write = %d, want 0", n)
	}
	if err := r.Read(nil, 0); err != nil {
		t.Fatalf("empty read: %v", err)
	}
}
