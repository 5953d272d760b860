// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"sync/atomic"
)

func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// SetGateThreshold adjusts the silence gate threshold.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	e.gateThreshold = int32(threshold * float64(math.MaxInt16))
}

// GetGateThreshold returns the current silence gate threshold as a float64.
// The value is in the range of 0.0-1.0 where 0=always open, 1=always closed.
func (e *Engine) GetGateThreshold() float64 {
	return float64(e.gateThreshold) / float64(math.MaxInt16)
}

// GateOpen reports whether a buffer has passed the gate since the last reset.
func (e *Engine) GateOpen() bool {
	return atomic.LoadInt32(&e.gateOpen) == 1
}

// ResetGate closes the gate again; the next loud buffer reopens it.
func (e *Engine) ResetGate() {
	atomic.StoreInt32(&e.gateOpen, 0)
}

// passGate reports whether buffer should be kept. Leading silence is dropped
// until the first buffer whose peak exceeds the threshold; from then on the
// gate stays open so pauses inside the take are preserved.
func (e *Engine) passGate(buffer []int16) bool {
	if !e.gateEnabled || atomic.LoadInt32(&e.gateOpen) == 1 {
		return true
	}
	if peakAmplitude(buffer) > e.gateThreshold {
		atomic.StoreInt32(&e.gateOpen, 1)
		return true
	}
	return false
}

// peakAmplitude returns max |sample| without branches in the loop.
func peakAmplitude(buffer []int16) int32 {
	var maxAmplitude int32
	for _, s := range buffer {
		sample := int32(s)
		mask := sample >> 31
		amplitude := (sample ^ mask) - mask
		diff := amplitude - maxAmplitude
		maxAmplitude += (diff & (diff >> 31)) ^ diff
	}
	return maxAmplitude
}
