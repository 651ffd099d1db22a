// Package core holds small numeric and slice helpers shared by the pitch
// detection packages, plus the common processor configuration used by the
// signal generators and meters.
package core
