package tracker

// Record is the detection result for one analysis window.
type Record struct {
	// Index counts records since the last reset.
	Index int `json:"index" yaml:"index"`
	// Pitch is the detected frequency in Hz, or 0 when none was found.
	Pitch float64 `json:"pitch" yaml:"pitch"`
	// MidiNote is the nearest MIDI note, or 0 when Pitch is 0.
	MidiNote int `json:"midi_note" yaml:"midi_note"`
	// MidiCents is the offset from MidiNote in cents, within [-50, 50].
	MidiCents int `json:"midi_cents" yaml:"midi_cents"`
}

// HasPitch reports whether a pitch was detected.
func (r Record) HasPitch() bool {
	return r.Pitch > 0
}

// history keeps records in arrival order. With a positive capacity it is a
// circular store that drops the oldest record on overflow.
type history struct {
	recs     []Record
	head     int
	capacity int
}

func (h *history) add(r Record) {
	if h.capacity <= 0 || len(h.recs) < h.capacity {
		h.recs = append(h.recs, r)
		return
	}

	h.recs[h.head] = r
	h.head = (h.head + 1) % h.capacity
}

func (h *history) snapshot() []Record {
	out := make([]Record, 0, len(h.recs))
	out = append(out, h.recs[h.head:]...)

	return append(out, h.recs[:h.head]...)
}

// setCapacity changes the capacity, keeping the newest records.
func (h *history) setCapacity(n int) {
	recs := h.snapshot()
	if n > 0 && len(recs) > n {
		recs = recs[len(recs)-n:]
	}

	if n > 0 {
		h.recs = make([]Record, len(recs), n)
		copy(h.recs, recs)
	} else {
		h.recs = recs
	}

	h.head = 0
	h.capacity = n
}

func (h *history) reset() {
	h.recs = h.recs[:0]
	h.head = 0
}

func (h *history) len() int {
	return len(h.recs)
}
