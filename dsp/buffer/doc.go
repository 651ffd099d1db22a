// Package buffer provides the position-addressed circular sample store used
// to keep filtered history for streaming analysis.
//
// A [Ring] retains the most recent Cap() samples of an unbounded stream and
// addresses them by their absolute (global) sample index, so callers can
// re-read overlapping historical windows without recomputing them.
package buffer
