// Package tracker turns a continuous stream of audio samples into pitch
// records at a fixed rate.
//
// A [Tracker] splits the input into a low band (45-280 Hz) and a high band
// (45-1500 Hz), keeps about one second of each band in a ring buffer, and
// analyses two overlapping windows per record with a [pitch.Search]. A pitch
// is reported only when both windows agree. Records are delivered
// synchronously to the registered listeners and optionally kept in a
// bounded history.
//
// The number and content of records depend only on the samples, not on how
// the stream is split across ProcessBuffer calls.
package tracker
