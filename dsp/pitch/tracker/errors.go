package tracker

import "errors"

var (
	// ErrEmptyBuffer is returned by ProcessBuffer for an empty sample slice.
	ErrEmptyBuffer = errors.New("tracker: empty sample buffer")
	// ErrUnconfigured is returned when processing before a sample rate is set.
	ErrUnconfigured = errors.New("tracker: sample rate not set")
	// ErrInvalidSampleRate is returned for sample rates the band filters or
	// the frequency search cannot support.
	ErrInvalidSampleRate = errors.New("tracker: invalid sample rate")
)
