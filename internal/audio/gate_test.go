// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"
)

func TestGateEnableHotPath(t *testing.T) {
	engine := &Engine{
		gateEnabled:   false,
		gateThreshold: lowThreshold,
	}

	if engine.gateEnabled {
		t.Error("Gate should be disabled initially")
	}

	engine.EnableGate()
	if !engine.gateEnabled {
		t.Error("Gate should be enabled after EnableGate()")
	}

	engine.DisableGate()
	if engine.gateEnabled {
		t.Error("Gate should be disabled after DisableGate()")
	}

	engine.EnableGate()
	engine.EnableGate() // Multiple calls should be idempotent
	if !engine.gateEnabled {
		t.Error("Gate should remain enabled after multiple EnableGate()")
	}
}

func TestGateThresholdBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.1, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.5, 0.5},  // Middle
		{1.0, 1.0},  // Maximum
		{1.5, 1.0},  // Above max
	}

	engine := &Engine{gateEnabled: true}

	for _, tt := range tests {
		t.Run(formatFloat(tt.input), func(t *testing.T) {
			engine.SetGateThreshold(tt.input)
			got := engine.GetGateThreshold()

			if absFloat(got-tt.expected) > 0.001 {
				t.Errorf("Gate threshold conversion: got %.3f, want %.3f", got, tt.expected)
			}
		})
	}
}

func TestGateThresholdPrecision(t *testing.T) {
	engine := &Engine{}

	for _, ratio := range []float64{0.0, 0.01, 0.25, 0.5, 0.999, 1.0} {
		t.Run(formatFloat(ratio), func(t *testing.T) {
			engine.SetGateThreshold(ratio)

			// One int16 step is about 3e-5.
			if got := engine.GetGateThreshold(); absFloat(got-ratio) > 1.0/math.MaxInt16 {
				t.Errorf("Threshold conversion error: got %.6f, want %.6f", got, ratio)
			}
			if want := int32(ratio * math.MaxInt16); engine.gateThreshold != want {
				t.Errorf("int32 threshold = %d, want %d", engine.gateThreshold, want)
			}
		})
	}
}

func TestGateDetection(t *testing.T) {
	tests := []struct {
		desc          string
		buffer        []int16
		gateEnabled   bool
		threshold     float64
		shouldTrigger bool
	}{
		{"Gate disabled/Quiet signal", quietBuffer, false, 0.1, true},
		{"Gate disabled/Loud signal", loudBuffer, false, 0.1, true},
		{"Gate enabled/Quiet signal/Low threshold", quietBuffer, true, 0.0001, true},
		{"Gate enabled/Quiet signal/Mid threshold", quietBuffer, true, 0.1, false},
		{"Gate enabled/Loud signal/Mid threshold", loudBuffer, true, 0.1, true},
		{"Gate enabled/Loud signal/High threshold", loudBuffer, true, 0.999, false},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			engine := &Engine{gateEnabled: tt.gateEnabled}
			engine.SetGateThreshold(tt.threshold)

			if got := engine.passGate(tt.buffer); got != tt.shouldTrigger {
				t.Errorf("passGate() = %v, want %v (peak=%d, threshold=%d)",
					got, tt.shouldTrigger, peakAmplitude(tt.buffer), engine.gateThreshold)
			}
		})
	}
}

func TestGateLatchesOpen(t *testing.T) {
	engine := &Engine{gateEnabled: true}
	engine.SetGateThreshold(0.1)

	if engine.passGate(quietBuffer) || engine.GateOpen() {
		t.Fatal("leading silence should be held back")
	}
	if !engine.passGate(loudBuffer) {
		t.Fatal("loud buffer should pass")
	}
	if !engine.passGate(quietBuffer) {
		t.Error("quiet buffer after the first loud one should pass")
	}

	engine.ResetGate()
	if engine.passGate(quietBuffer) {
		t.Error("ResetGate() should hold silence again")
	}
}

func BenchmarkGateThresholdConversion(b *testing.B) {
	engine := &Engine{}
	values := []float64{0.0, 0.25, 0.5, 0.75, 1.0}

	for _, v := range values {
		b.Run(formatFloat(v), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				engine.SetGateThreshold(v)
				_ = engine.GetGateThreshold()
			}
		})
	}
}

func BenchmarkGateProcessing(b *testing.B) {
	benchmarks := []struct {
		name      string
		buffer    []int16
		threshold int32
		enabled   bool
	}{
		{"Gate disabled/Normal", testBuffer, lowThreshold, false},
		{"Gate enabled/Quiet signal/Low threshold", quietBuffer, lowThreshold, true},
		{"Gate enabled/Loud signal/High threshold", loudBuffer, highThreshold, true},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				engine := Engine{gateEnabled: bm.enabled, gateThreshold: bm.threshold}
				_ = engine.passGate(bm.buffer)
			}
		})
	}
}
