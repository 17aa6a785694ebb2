// SPDX-License-Identifier: MIT
/*
Package bitint provides bit manipulation helpers for FFT and buffer
sizing. All operations are O(1), allocation-free, and safe to call from
real-time code.
*/
package bitint

import "math/bits"

// IsPowerOfTwo reports whether n is a positive power of 2.
// The expression (n & (n-1)) == 0 works because powers of 2 have exactly
// one bit set, and subtracting 1 sets every lower bit.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the next power of 2 >= size. Powers of 2 are
// returned unchanged; zero and negative inputs yield 1.
//
// The size-1 subtraction is what preserves exact powers of 2: for 8,
// bits.Len64(7) = 3 and 1<<3 = 8, whereas bits.Len64(8) = 4 would
// incorrectly double the input.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return int(1 << bits.Len64(uint64(size-1)))
}

// Log2 returns log2(n) for a power-of-two n. The result is undefined
// for inputs that are not powers of two; validate with IsPowerOfTwo
// first.
func Log2(n int) int {
	return bits.Len64(uint64(n)) - 1
}

// Reverse returns i with its low width bits reversed. This is the index
// permutation a decimation-in-time FFT needs before its butterfly
// stages can run in natural order.
func Reverse(i, width int) int {
	return int(bits.Reverse64(uint64(i)) >> (64 - width))
}
