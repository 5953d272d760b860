// SPDX-License-Identifier: MIT
package playback

import "math"

// Synth produces a moving, spectrum-like pattern of bins for when no track is
// playing. Three overlapping waves sweep the bins at different speeds:
//
//	bass   = sin(t*0.5 + f*2)  * 0.4 + 0.4
//	mid    = sin(t*0.8 + f*8)  * 0.3 + 0.3
//	treble = cos(t*1.2 + f*15) * 0.2 + 0.2
//
// where f = i/len(bins) and t advances by Step on every Fill.
type Synth struct {
	Step float32 // Demo time advance per call.
	Gain float32 // Output scale.

	tick uint32
}

// NewSynth creates a generator with the given time step and gain.
func NewSynth(step, gain float32) *Synth {
	return &Synth{Step: step, Gain: gain}
}

// Fill advances demo time by one step and writes the pattern into bins. Every
// value lies in [0, 1.8*Gain].
func (s *Synth) Fill(bins []float32) {
	s.tick++
	t := float64(s.tick) * float64(s.Step)

	n := float64(len(bins))
	for i := range bins {
		f := float64(i) / n
		bass := math.Sin(t*0.5+f*2)*0.4 + 0.4
		mid := math.Sin(t*0.8+f*8)*0.3 + 0.3
		treble := math.Cos(t*1.2+f*15)*0.2 + 0.2
		bins[i] = float32(bass+mid+treble) * s.Gain
	}
}

// Ticks returns how many times Fill has run.
func (s *Synth) Ticks() uint32 {
	return s.tick
}
