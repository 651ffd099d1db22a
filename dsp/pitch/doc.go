// Package pitch estimates the fundamental frequency of band-filtered audio
// windows and converts frequencies to MIDI notes.
//
// [Search] compares each window against copies of itself delayed by
// candidate periods taken from a logarithmic frequency grid (96 steps per
// octave). A strided coarse pass finds promising periods, a hill climb with
// a peakiness test picks one, and a fine pass with Hermite interpolation
// refines it to a fraction of a grid step.
//
// The search is driven with two windows: one low-pass filtered for the low
// part of the range and one for the high part. See the tracker subpackage
// for the streaming front end.
package pitch
