// SPDX-License-Identifier: MIT
package spectrum

import "math"

// TwiddleTable holds the precomputed rotations for one transform size:
// cos(-2πi/N) and sin(-2πi/N) for i in [0, N).
type TwiddleTable struct {
	size        int
	cos         []float32
	sin         []float32
	initialized bool
}

// NewTwiddleTable allocates a table for size points. Initialize must run
// before the table is read.
func NewTwiddleTable(size int) *TwiddleTable {
	return &TwiddleTable{
		size: size,
		cos:  make([]float32, size),
		sin:  make([]float32, size),
	}
}

// Initialize fills the table. Calls after the first are no-ops.
func (t *TwiddleTable) Initialize() {
	if t.initialized {
		return
	}
	for i := range t.size {
		angle := -2 * math.Pi * float64(i) / float64(t.size)
		t.cos[i] = float32(math.Cos(angle))
		t.sin[i] = float32(math.Sin(angle))
	}
	t.initialized = true
}

// Size returns the transform size the table was built for.
func (t *TwiddleTable) Size() int {
	return t.size
}

// At returns the rotation for index i.
func (t *TwiddleTable) At(i int) (cos, sin float32) {
	return t.cos[i], t.sin[i]
}
