// package interp provides helpers for interpolating control values.
package interp

import (
	"golang.org/x/exp/constraints"
)

// L does linear interpolation:
//
//	   L(a, b, c) = (1-c)*a + c*b
//		= a + c*(b-a)
//
// c is expected to be between 0 and 1. With floats the top form lands exactly
// on b when c is 1, which the glide relies on.
func L[T constraints.Float](a, b, c T) T {
	return (1-c)*a + c*b
}

// Steps returns the value of a glide from a to b after step of n equal steps.
// Steps past the end hold b.
func Steps[T constraints.Float](a, b T, step, n int) T {
	if n <= 0 || step >= n {
		return b
	}
	if step <= 0 {
		return a
	}
	return L(a, b, T(step)/T(n))
}
