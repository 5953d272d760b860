// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"

	"neonviz/internal/log"
)

// Analyzer owns one Engine, one Binner and the bin buffer between them.
type Analyzer struct {
	engine     *Engine
	binner     *Binner
	sampleRate float64
	magnitudes []float32 // Last spectrum, aliases the engine buffer.
	bins       []float32
}

// NewAnalyzer builds the window-to-bins pipeline for a fftSize point transform
// producing binCount bins. sampleRate is only used to label bins in Hz.
func NewAnalyzer(fftSize, binCount int, sampleRate float64) (*Analyzer, error) {
	engine, err := NewEngine(fftSize)
	if err != nil {
		return nil, err
	}
	binner, err := NewBinner(fftSize/2, binCount)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	log.Infof("Spectrum: initializing analyzer (FFT: %d, Bins: %d x %d, SampleRate: %.0f Hz)",
		fftSize, binCount, binner.GroupSize(), sampleRate)

	return &Analyzer{
		engine:     engine,
		binner:     binner,
		sampleRate: sampleRate,
		bins:       make([]float32, binCount),
	}, nil
}

// Analyze transforms window and returns the frequency bins. The returned
// slice is reused by the next call.
func (a *Analyzer) Analyze(window []int16) []float32 {
	a.AnalyzeInto(window, a.bins)
	return a.bins
}

// AnalyzeInto transforms window and writes the bins into dst.
func (a *Analyzer) AnalyzeInto(window []int16, dst []float32) {
	a.magnitudes = a.engine.Transform(window)
	a.binner.ToBins(a.magnitudes, dst)
}

// Magnitudes returns the spectrum computed by the last Analyze call, or nil.
func (a *Analyzer) Magnitudes() []float32 {
	return a.magnitudes
}

// FFTSize returns the transform size N.
func (a *Analyzer) FFTSize() int {
	return a.engine.Size()
}

// BinCount returns the number of bins B.
func (a *Analyzer) BinCount() int {
	return a.binner.Count()
}

// BinFrequency returns the center frequency (Hz) of bin i, or 0 when i is out
// of range.
func (a *Analyzer) BinFrequency(i int) float64 {
	if i < 0 || i >= a.binner.Count() {
		return 0
	}
	resolution := a.sampleRate / float64(a.engine.Size())
	center := float64(i*a.binner.GroupSize()) + float64(a.binner.GroupSize()-1)/2
	return center * resolution
}
