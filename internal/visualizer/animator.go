// SPDX-License-Identifier: MIT
package visualizer

import (
	"math"

	"neonviz/internal/config"
)

// BarState is the spring state of one visual bar.
type BarState struct {
	Height   float32
	Velocity float32
}

// Animator drives bar heights toward their bins with a damped spring:
//
//	target = bin * max * boost * (1 + osc*sin(frame*0.02 + i*0.1))
//	v += (target - h) * response
//	v *= damping
//	h += v
//	h = clamp(h, min, max)
//
// The clamp leaves velocity untouched, so a bar can keep pushing against
// either bound.
type Animator struct {
	MinHeight      float32
	MaxHeight      float32
	ResponseSpeed  float32
	Damping        float32
	AmplitudeBoost float32
	Oscillation    float32
}

// NewAnimator copies the spring constants from the bar configuration.
func NewAnimator(cfg config.BarsConfig) *Animator {
	return &Animator{
		MinHeight:      cfg.MinHeight,
		MaxHeight:      cfg.MaxHeight,
		ResponseSpeed:  cfg.ResponseSpeed,
		Damping:        cfg.Damping,
		AmplitudeBoost: cfg.AmplitudeBoost,
		Oscillation:    cfg.Oscillation,
	}
}

// Reset puts every bar at rest on the floor.
func (a *Animator) Reset(bars []BarState) {
	for i := range bars {
		bars[i] = BarState{Height: a.MinHeight}
	}
}

// Target returns the height bar i is pulled toward on the given frame.
func (a *Animator) Target(i int, bin float32, frame uint32) float32 {
	wobble := float32(math.Sin(float64(frame)*0.02+float64(i)*0.1)) * a.Oscillation
	return bin * a.MaxHeight * a.AmplitudeBoost * (1 + wobble)
}

// Update advances each bar that has a driving bin by one frame. Bars past
// len(bins) are left as they are.
func (a *Animator) Update(bars []BarState, bins []float32, frame uint32) {
	n := min(len(bars), len(bins))
	for i := range n {
		b := &bars[i]
		target := a.Target(i, bins[i], frame)

		b.Velocity += (target - b.Height) * a.ResponseSpeed
		b.Velocity *= a.Damping
		b.Height += b.Velocity

		b.Height = max(a.MinHeight, min(b.Height, a.MaxHeight))
	}
}
