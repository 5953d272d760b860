/*
Package bitint provides the bit manipulation helpers used to size and
index the radix-2 transform. Everything here is allocation free and
constant time, so it is safe to call from the per-frame hot path.

Usage:

	// Reject a transform size before any buffers are built
	if !bitint.IsPowerOfTwo(fftSize) {
		suggestion := bitint.NextPowerOfTwo(fftSize)
	}

	// Position of index i after the bit-reversal permutation
	j := bitint.ReverseBits(i, bitint.Log2(fftSize))

----------------------------------------------------------------------

What this code does:

	NextPowerOfTwo returns the next power of 2 greater than or
	equal to size. The subtraction (size-1) keeps exact powers of
	2 unchanged:

	- For input 8: size-1 = 7 (0111), bits.Len(7) = 3, 1 << 3 = 8
	- For input 9: size-1 = 8 (1000), bits.Len(8) = 4, 1 << 4 = 16

	ReverseBits mirrors the low `width` bits of i. For a transform of
	size N = 2^width, element i of the input lands at ReverseBits(i)
	before the butterfly passes start.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size, and 1 for
// size <= 0. Config validation uses it to suggest a transform size.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of 2 has a
// single bit set, so clearing the lowest set bit leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns the exponent of a power of two. For other positive values it
// returns the floor of the base-2 logarithm, and 0 for n <= 0.
func Log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// ReverseBits reverses the low width bits of i. Bits above width are dropped.
func ReverseBits(i, width int) int {
	if width <= 0 {
		return 0
	}
	return int(bits.Reverse(uint(i)) >> (bits.UintSize - width))
}
