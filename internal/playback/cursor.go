// SPDX-License-Identifier: MIT
/*
Package playback walks a looping track one window at a time and falls back to
a synthetic pattern when nothing is playing.

Per frame the owner asks the cursor for the next window:

	if cursor.Advance(window) {
		analyzer.AnalyzeInto(window, bins)
	} else {
		cursor.Synthesize(bins)
	}

Advance copies windowSize samples from the current position, zero padding past
the end of the track, then moves the position forward by hopSize and wraps to
the start once it passes the end. The track loops until stopped.
*/
package playback

import (
	"fmt"

	"neonviz/internal/log"
)

// Cursor is the playback state for one track. It is not safe for concurrent
// use; the frame loop owns it.
type Cursor struct {
	windowSize int
	hopSize    int

	track    *Track
	position int
	playing  bool

	synth *Synth
}

// NewCursor creates a cursor that hands out windowSize samples and advances
// hopSize samples per frame. synth feeds Synthesize and may be nil, in which
// case a default pattern (step 0.1, gain 1) is used.
func NewCursor(windowSize, hopSize int, synth *Synth) (*Cursor, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size must be positive, got %d", windowSize)
	}
	if hopSize < 1 {
		return nil, fmt.Errorf("hop size must be positive, got %d", hopSize)
	}
	if synth == nil {
		synth = NewSynth(0.1, 1)
	}
	return &Cursor{
		windowSize: windowSize,
		hopSize:    hopSize,
		synth:      synth,
	}, nil
}

// Load replaces the current track. Playback stops and the position resets.
func (c *Cursor) Load(t *Track) {
	c.track = t
	c.position = 0
	c.playing = false
	if t != nil {
		log.Debugf("Playback: loaded %q (%d samples, %d Hz)", t.Name, t.Len(), t.SampleRate)
	}
}

// Unload drops the track and resets the playback state.
func (c *Cursor) Unload() {
	if c.track == nil {
		return
	}
	log.Debugf("Playback: unloaded %q", c.track.Name)
	c.track = nil
	c.position = 0
	c.playing = false
}

// Play starts the track from the beginning. Without a track it does nothing.
func (c *Cursor) Play() {
	if c.track == nil {
		log.Debug("Playback: play ignored, no track loaded")
		return
	}
	c.position = 0
	c.playing = true
	log.Debugf("Playback: playing %q", c.track.Name)
}

// Stop pauses playback. The position is kept until the next Play.
func (c *Cursor) Stop() {
	if c.playing {
		log.Debugf("Playback: stopped at %d/%d", c.position, c.track.Len())
	}
	c.playing = false
}

// Playing reports the playing flag.
func (c *Cursor) Playing() bool {
	return c.playing
}

// Active reports whether Advance will read from the track.
func (c *Cursor) Active() bool {
	return c.playing && c.track.Len() > 0
}

// Track returns the loaded track or nil.
func (c *Cursor) Track() *Track {
	return c.track
}

// Position returns the index of the next window's first sample.
func (c *Cursor) Position() int {
	return c.position
}

// Length returns the loaded track's sample count, 0 without a track.
func (c *Cursor) Length() int {
	return c.track.Len()
}

// WindowSize returns the number of samples Advance writes.
func (c *Cursor) WindowSize() int {
	return c.windowSize
}

// HopSize returns the per-frame advance.
func (c *Cursor) HopSize() int {
	return c.hopSize
}

// Progress returns position/length in [0, 1), or 0 without a track.
func (c *Cursor) Progress() float32 {
	n := c.track.Len()
	if n == 0 {
		return 0
	}
	return float32(c.position) / float32(n)
}

// Advance writes the next window into dst and moves the cursor forward by one
// hop. dst must hold WindowSize samples; entries past the end of the track are
// zeroed. It returns false, leaving dst untouched, when the cursor is not
// Active.
func (c *Cursor) Advance(dst []int16) bool {
	if !c.Active() {
		return false
	}

	window := dst[:c.windowSize]
	n := copy(window, c.track.Samples[c.position:])
	clear(window[n:])

	c.position += c.hopSize
	if c.position >= len(c.track.Samples) {
		c.position = 0
	}
	return true
}

// Synthesize fills bins from the fallback pattern and advances its clock.
func (c *Cursor) Synthesize(bins []float32) {
	c.synth.Fill(bins)
}
