// Package spectrum computes windowed magnitude spectra of audio frames and
// derives harmonic amplitudes and a spectral peak estimate from them.
//
// The pitch tracker is a time-domain detector; this package complements it
// with the frequency-domain view used for timbre displays and for tones above
// the tracker's range.
package spectrum
