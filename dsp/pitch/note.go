package pitch

import "math"

const (
	// ReferencePitch is the frequency of ReferenceNote (A1).
	ReferencePitch = 55.0
	// ReferenceNote is the MIDI note number of ReferencePitch.
	ReferenceNote = 33

	minNotePitch = 20.0
)

// PitchToMidiNote returns the fractional MIDI note of pitch in Hz, or 0
// below 20 Hz.
func PitchToMidiNote(pitch float64) float64 {
	if pitch < minNotePitch {
		return 0
	}

	return 12*math.Log2(pitch/ReferencePitch) + ReferenceNote
}

// PitchToNote returns the nearest MIDI note of pitch and the distance from
// the exact pitch to that note in cents, truncated toward zero. cents is
// positive when the pitch lies below the note. ok is false below 20 Hz.
func PitchToNote(pitch float64) (note, cents int, ok bool) {
	if pitch < minNotePitch {
		return 0, 0, false
	}

	exact := PitchToMidiNote(pitch)
	note = int(exact + 0.5)
	cents = int((float64(note) - exact) * 100)

	return note, cents, true
}

// MidiNoteToPitch returns the frequency in Hz of a fractional MIDI note,
// or 0 below ReferenceNote.
func MidiNoteToPitch(note float64) float64 {
	if note < ReferenceNote {
		return 0
	}

	return ReferencePitch * math.Exp2((note-ReferenceNote)/12)
}
