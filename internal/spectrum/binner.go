// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"math"
)

// Binner collapses a magnitude spectrum into a fixed number of equally wide,
// log-compressed bins. Magnitudes past count*groupSize are not used.
type Binner struct {
	inputSize int
	count     int
	groupSize int
}

// NewBinner prepares binning of inputSize magnitudes into count bins.
// count must be in [1, inputSize].
func NewBinner(inputSize, count int) (*Binner, error) {
	if count < 1 || count > inputSize {
		return nil, fmt.Errorf("bin count must be in [1, %d], got %d", inputSize, count)
	}
	return &Binner{
		inputSize: inputSize,
		count:     count,
		groupSize: inputSize / count,
	}, nil
}

// Count returns the number of bins produced.
func (b *Binner) Count() int {
	return b.count
}

// GroupSize returns how many magnitudes are averaged into each bin.
func (b *Binner) GroupSize() int {
	return b.groupSize
}

// ToBins writes ln(1 + 10*mean) of each magnitude group into bins, which must
// hold Count values.
func (b *Binner) ToBins(magnitudes, bins []float32) {
	for i := range b.count {
		start := i * b.groupSize
		var sum float32
		for _, m := range magnitudes[start : start+b.groupSize] {
			sum += m
		}
		mean := sum / float32(b.groupSize)
		bins[i] = float32(math.Log(1 + float64(mean)*10))
	}
}
