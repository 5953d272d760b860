// SPDX-License-Identifier: MIT
package spectrum

import (
	"math"
	"math/cmplx"
	"testing"

	"neonviz/pkg/bitint"
	"neonviz/pkg/utils"

	dspfft "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	testFFTSize    = 512
	testBins       = 64
	testSampleRate = 44100
)

func TestTwiddleTableValues(t *testing.T) {
	table := NewTwiddleTable(8)
	table.Initialize()

	tests := []struct {
		i        int
		cos, sin float64
	}{
		{0, 1, 0},
		{2, 0, -1}, // -π/2
		{4, -1, 0}, // -π
		{6, 0, 1},  // -3π/2
		{1, math.Sqrt2 / 2, -math.Sqrt2 / 2},
	}

	for _, tt := range tests {
		c, s := table.At(tt.i)
		if math.Abs(float64(c)-tt.cos) > 1e-6 || math.Abs(float64(s)-tt.sin) > 1e-6 {
			t.Errorf("At(%d) = (%g, %g), want (%g, %g)", tt.i, c, s, tt.cos, tt.sin)
		}
	}
}

func TestTwiddleTableInitializeIsIdempotent(t *testing.T) {
	table := NewTwiddleTable(16)
	table.Initialize()

	// A second call must not recompute.
	table.cos[3] = 42
	table.Initialize()

	if c, _ := table.At(3); c != 42 {
		t.Errorf("second Initialize() recomputed the table")
	}
	if table.Size() != 16 {
		t.Errorf("Size() = %d, want 16", table.Size())
	}
}

func TestNewEngineRejectsBadSizes(t *testing.T) {
	for _, size := range []int{-8, 0, 1, 3, 500} {
		if _, err := NewEngine(size); err == nil {
			t.Errorf("NewEngine(%d) expected error", size)
		}
	}
}

func TestTransformZeroInput(t *testing.T) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	mags := engine.Transform(make([]int16, testFFTSize))
	if len(mags) != testFFTSize/2 {
		t.Fatalf("len(magnitudes) = %d, want %d", len(mags), testFFTSize/2)
	}
	for k, m := range mags {
		if m != 0 {
			t.Fatalf("magnitude[%d] = %g, want 0", k, m)
		}
	}
}

func TestTransformAlignedTonePeaks(t *testing.T) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	for _, bin := range []int{1, 10, 40, 100, 255} {
		mags := engine.Transform(utils.GenerateBinTone(testFFTSize, bin))

		if peak := utils.FindPeakBin(mags, 0, len(mags)-1); peak != bin {
			t.Errorf("tone at bin %d peaked at %d", bin, peak)
			continue
		}

		// A unit sine concentrates N/2 in its bin.
		want := float32(testFFTSize / 2)
		if math.Abs(float64(mags[bin]-want)) > float64(want)*0.01 {
			t.Errorf("bin %d magnitude = %g, want about %g", bin, mags[bin], want)
		}
		if rest := utils.MaxExcept(mags, bin); rest > want*1e-3 {
			t.Errorf("tone at bin %d leaked %g into other bins", bin, rest)
		}
	}
}

func TestTransformShortWindowIsZeroPadded(t *testing.T) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	full := make([]int16, testFFTSize)
	copy(full, utils.GenerateComplexWave(100, testSampleRate))
	want := append([]float32(nil), engine.Transform(full)...)

	got := engine.Transform(utils.GenerateComplexWave(100, testSampleRate))
	for k := range want {
		if got[k] != want[k] {
			t.Fatalf("magnitude[%d] = %g, want %g", k, got[k], want[k])
		}
	}
}

func TestTransformIgnoresStaleScratch(t *testing.T) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	engine.Transform(utils.GenerateBinTone(testFFTSize, 7))
	mags := engine.Transform(make([]int16, testFFTSize))
	for k, m := range mags {
		if m != 0 {
			t.Fatalf("magnitude[%d] = %g after silent window, want 0", k, m)
		}
	}
}

func TestTransformMatchesGonum(t *testing.T) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}

	window := utils.GenerateComplexWave(testFFTSize, testSampleRate)
	input := make([]float64, testFFTSize)
	for i, s := range window {
		input[i] = float64(s) / 32768
	}

	reference := fourier.NewFFT(testFFTSize).Coefficients(nil, input)
	got := engine.Transform(window)

	for k := range got {
		want := cmplx.Abs(reference[k])
		if math.Abs(float64(got[k])-want) > 1e-2 {
			t.Errorf("magnitude[%d] = %g, gonum = %g", k, got[k], want)
		}
	}
}

func TestTransformMatchesGoDSP(t *testing.T) {
	const size = 256
	engine, err := NewEngine(size)
	if err != nil {
		t.Fatal(err)
	}

	window := utils.GenerateSineWave(size, testSampleRate, 3000)
	input := make([]float64, size)
	for i, s := range window {
		input[i] = float64(s) / 32768
	}

	reference := dspfft.FFTReal(input)
	got := engine.Transform(window)

	for k := range got {
		want := cmplx.Abs(reference[k])
		if math.Abs(float64(got[k])-want) > 1e-2 {
			t.Errorf("magnitude[%d] = %g, go-dsp = %g", k, got[k], want)
		}
	}
}

func TestBitReverseRoundTrip(t *testing.T) {
	real := make([]float32, testFFTSize)
	imag := make([]float32, testFFTSize)
	for i := range real {
		real[i] = float32(i)
		imag[i] = float32(-i)
	}

	BitReverse(real, imag)
	BitReverse(real, imag)

	for i := range real {
		if real[i] != float32(i) || imag[i] != float32(-i) {
			t.Fatalf("index %d = (%g, %g) after two passes", i, real[i], imag[i])
		}
	}
}

func TestBitReversePositions(t *testing.T) {
	real := make([]float32, testFFTSize)
	imag := make([]float32, testFFTSize)
	for i := range real {
		real[i] = float32(i)
	}

	BitReverse(real, imag)

	width := bitint.Log2(testFFTSize)
	for i := range real {
		if want := float32(bitint.ReverseBits(i, width)); real[i] != want {
			t.Fatalf("position %d holds %g, want %g", i, real[i], want)
		}
	}
}

func TestTransformZeroAllocs(t *testing.T) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		t.Fatal(err)
	}
	window := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	engine.Transform(window)
	allocs := testing.AllocsPerRun(100, func() {
		engine.Transform(window)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Transform hot path, got %.1f", allocs)
	}
}

func BenchmarkTransform(b *testing.B) {
	engine, err := NewEngine(testFFTSize)
	if err != nil {
		b.Fatal(err)
	}
	window := utils.GenerateComplexWave(testFFTSize, testSampleRate)

	b.ReportAllocs()
	for b.Loop() {
		engine.Transform(window)
	}
}
