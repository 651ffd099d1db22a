// Package iir designs and runs classic recursive (IIR) filters.
//
// A [Filter] places the poles and zeros of a Butterworth or Chebyshev
// low-pass prototype through the bilinear transform, maps them to low-pass,
// high-pass or band-pass, and multiplies the resulting first- and
// second-order sections into one numerator/denominator pair. The
// coefficients are normalized so that the peak passband gain is 0 dB.
//
// Processing runs the direct-form recursion over a fixed 32-slot history
// ring, so filters of any supported order (1..16) run without allocation.
//
// Changing any design parameter re-designs the filter immediately. A filter
// whose parameters are not [Filter.Valid] keeps its previous coefficients
// (or none); processing with such a filter is a caller error.
package iir
