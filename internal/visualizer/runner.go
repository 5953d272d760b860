// SPDX-License-Identifier: MIT
package visualizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"neonviz/internal/log"
	"neonviz/internal/playback"
)

// Sink receives every frame produced by a Runner. The frame is only valid
// for the duration of the call; sinks that keep it or hand it to another
// goroutine must Clone it first.
type Sink interface {
	Send(frame *Frame) error
}

// Runner owns a Pipeline and its State and steps them at a fixed rate. The
// lock serializes ticks against snapshot reads and playback control from
// other goroutines.
type Runner struct {
	pipeline *Pipeline
	interval time.Duration

	mu       sync.RWMutex
	state    *State
	snapshot Frame
	ticks    uint64
	sinks    []Sink
}

// NewRunner creates a runner ticking fps times per second.
func NewRunner(p *Pipeline, fps int) (*Runner, error) {
	if fps < 1 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}
	state, err := p.NewState()
	if err != nil {
		return nil, err
	}
	return &Runner{
		pipeline: p,
		interval: time.Second / time.Duration(fps),
		state:    state,
	}, nil
}

// AddSink registers a frame consumer. Sinks are called in order after each
// tick, outside the lock.
func (r *Runner) AddSink(s Sink) {
	r.mu.Lock()
	r.sinks = append(r.sinks, s)
	r.mu.Unlock()
}

// Interval returns the time between ticks.
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Pipeline returns the underlying pipeline.
func (r *Runner) Pipeline() *Pipeline {
	return r.pipeline
}

// Load swaps the track; autoplay starts it immediately.
func (r *Runner) Load(t *playback.Track, autoplay bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Cursor.Load(t)
	if autoplay {
		r.state.Cursor.Play()
	}
}

// TogglePlayback stops a playing track or restarts a stopped one.
func (r *Runner) TogglePlayback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Cursor.Playing() {
		r.state.Cursor.Stop()
	} else {
		r.state.Cursor.Play()
	}
}

// Restart plays the track from the beginning.
func (r *Runner) Restart() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Cursor.Play()
}

// Step runs one tick, publishes the frame to the snapshot and to every sink,
// and returns the frame. The returned frame is valid until the next Step.
func (r *Runner) Step() *Frame {
	r.mu.Lock()
	frame := r.pipeline.Tick(r.state)
	r.snapshot.CopyFrom(frame)
	r.ticks++
	sinks := r.sinks
	r.mu.Unlock()

	for _, s := range sinks {
		if err := s.Send(frame); err != nil {
			log.Debugf("Visualizer: sink %T failed on frame %d: %v", s, frame.Number, err)
		}
	}
	return frame
}

// Snapshot returns a copy of the most recent frame, or nil before the first
// tick.
func (r *Runner) Snapshot() *Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ticks == 0 {
		return nil
	}
	return r.snapshot.Clone()
}

// Ticks returns how many frames have been produced.
func (r *Runner) Ticks() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ticks
}

// Run steps the pipeline on a ticker until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Infof("Visualizer: frame loop started (Interval: %s)", r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Infof("Visualizer: frame loop stopped after %d frames", r.Ticks())
			return ctx.Err()
		case <-ticker.C:
			r.Step()
		}
	}
}
