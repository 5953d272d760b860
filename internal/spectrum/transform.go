// SPDX-License-Identifier: MIT
/*
Package spectrum turns windows of 16-bit PCM into perceptually scaled
frequency bins:

	window []int16 --Engine--> magnitudes [N/2]float32 --Binner--> bins [B]float32

The transform is an in-place radix-2 decimation-in-time FFT in single
precision. All buffers are allocated once by the constructors and reused on
every call, so the per-frame path performs no allocations. Slices returned
by Transform and Analyze are owned by the receiver and are overwritten by the
next call.

Nothing here is safe for concurrent use; one frame loop owns one Analyzer.
*/
package spectrum

import (
	"fmt"
	"math"

	"neonviz/pkg/bitint"
)

// sampleScale maps int16 PCM to [-1, 1).
const sampleScale = 1.0 / 32768.0

// Engine is a fixed-size FFT with its own scratch buffers.
type Engine struct {
	size      int
	twiddle   *TwiddleTable
	real      []float32
	imag      []float32
	magnitude []float32
}

// NewEngine creates a transform engine for size points. The size must be a
// power of two of at least 2.
func NewEngine(size int) (*Engine, error) {
	if size < 2 || !bitint.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("fft size must be a power of 2 >= 2, got %d", size)
	}

	twiddle := NewTwiddleTable(size)
	twiddle.Initialize()

	return &Engine{
		size:      size,
		twiddle:   twiddle,
		real:      make([]float32, size),
		imag:      make([]float32, size),
		magnitude: make([]float32, size/2),
	}, nil
}

// Size returns the number of points N.
func (e *Engine) Size() int {
	return e.size
}

// Transform computes the magnitude spectrum of window and returns its lower
// N/2 bins. Samples beyond N are ignored; a shorter window is zero padded.
func (e *Engine) Transform(window []int16) []float32 {
	e.twiddle.Initialize()

	// --- 1. Normalize ---
	n := min(len(window), e.size)
	for i := range n {
		e.real[i] = float32(window[i]) * sampleScale
		e.imag[i] = 0
	}
	for i := n; i < e.size; i++ {
		e.real[i] = 0
		e.imag[i] = 0
	}

	// --- 2. Reorder ---
	BitReverse(e.real, e.imag)

	// --- 3. Butterflies ---
	for length := 2; length <= e.size; length <<= 1 {
		half := length >> 1
		step := e.size / length
		for i := 0; i < e.size; i += length {
			for j := range half {
				u := i + j
				v := u + half
				wr, wi := e.twiddle.At(j * step)

				vr := e.real[v]*wr - e.imag[v]*wi
				vi := e.real[v]*wi + e.imag[v]*wr

				e.real[v] = e.real[u] - vr
				e.imag[v] = e.imag[u] - vi
				e.real[u] += vr
				e.imag[u] += vi
			}
		}
	}

	// --- 4. Magnitudes ---
	// The upper half mirrors the lower half for real input.
	for k := range e.magnitude {
		re, im := e.real[k], e.imag[k]
		e.magnitude[k] = float32(math.Sqrt(float64(re*re + im*im)))
	}

	return e.magnitude
}

// BitReverse applies the bit-reversal permutation to a pair of parallel
// arrays whose length is a power of two. Each pair (i, j) is swapped exactly
// once, so applying it twice restores the original order.
func BitReverse(real, imag []float32) {
	n := len(real)
	j := 0
	for i := 1; i < n; i++ {
		bit := n >> 1
		for j&bit != 0 {
			j ^= bit
			bit >>= 1
		}
		j ^= bit

		if i < j {
			real[i], real[j] = real[j], real[i]
			imag[i], imag[j] = imag[j], imag[i]
		}
	}
}
