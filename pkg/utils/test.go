// Package utils holds signal generators and inspection helpers shared by the
// spectrum, playback and visualizer tests.
package utils

import "math"

// GenerateComplexWave returns 440Hz plus two harmonics as 16-bit PCM.
func GenerateComplexWave(size int, sampleRate float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2 // 440Hz fundamental + harmonics
		buffer[i] = int16(signal * math.MaxInt16 * 0.9)
	}
	return buffer
}

// GenerateSineWave returns a sine at frequency Hz scaled to 90% of full scale.
func GenerateSineWave(size int, sampleRate, frequency float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = int16(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16 * 0.9)
	}
	return buffer
}

// GenerateBinTone returns a full-scale sine that completes exactly bin cycles
// over size samples, so its energy lands in a single transform bin.
func GenerateBinTone(size, bin int) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		phase := 2 * math.Pi * float64(bin) * float64(i) / float64(size)
		buffer[i] = int16(math.Round(math.Sin(phase) * math.MaxInt16))
	}
	return buffer
}

// FindPeakBin returns the index of the largest value in magnitudes[startBin:endBin+1].
func FindPeakBin(magnitudes []float32, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}

	return peakBin
}

// MaxExcept returns the largest value in values ignoring index skip.
func MaxExcept(values []float32, skip int) float32 {
	var m float32
	for i, v := range values {
		if i != skip && v > m {
			m = v
		}
	}
	return m
}
