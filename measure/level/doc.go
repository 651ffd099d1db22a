// Package level measures block RMS level and decides whether a block holds
// sound above a calibrated noise floor.
//
// A Meter reports RMS, dB relative to a reference amplitude and sample peak
// per processed block. A Calibrator observes the level of the ambient noise
// for a fixed span and derives the noise floor as the loudest block RMS seen
// times a fudge factor.
package level
