// Package interp provides the fractional-delay interpolation kernels used by
// the periodicity search.
//
//   - [Linear2]:  2-point linear interpolation (coarse search)
//   - [Hermite4]: 4-point, 3rd-order Hermite in x-form (fine search)
package interp
