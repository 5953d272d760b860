// SPDX-License-Identifier: MIT
package playback

import "time"

// Track is a decoded mono 16-bit PCM buffer. The cursor borrows Samples and
// never writes to them.
type Track struct {
	Name       string
	Samples    []int16
	SampleRate int
}

// Len returns the number of samples.
func (t *Track) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Samples)
}

// Duration returns the playing time of the buffer at its sample rate.
func (t *Track) Duration() time.Duration {
	if t == nil || t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(t.Samples)) * time.Second / time.Duration(t.SampleRate)
}
