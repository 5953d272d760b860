// SPDX-License-Identifier: MIT
package visualizer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu      sync.Mutex
	numbers []uint32
	fail    bool
}

func (s *recordingSink) Send(f *Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numbers = append(s.numbers, f.Number)
	if s.fail {
		return errors.New("sink failed")
	}
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.numbers)
}

func newTestRunner(t *testing.T, fps int) *Runner {
	t.Helper()
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRunner(p, fps)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestNewRunnerRejectsZeroFPS(t *testing.T) {
	p, err := NewPipeline(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewRunner(p, 0); err == nil {
		t.Error("expected error for fps 0")
	}
}

func TestRunnerStepPublishes(t *testing.T) {
	r := newTestRunner(t, 60)
	good, bad := &recordingSink{}, &recordingSink{fail: true}
	r.AddSink(bad)
	r.AddSink(good)

	if r.Snapshot() != nil {
		t.Fatal("Snapshot() before the first tick should be nil")
	}

	for range 3 {
		r.Step()
	}

	if good.count() != 3 || bad.count() != 3 {
		t.Fatalf("sinks saw %d and %d frames, want 3 each", good.count(), bad.count())
	}
	snap := r.Snapshot()
	if snap == nil || snap.Number != 2 {
		t.Fatalf("Snapshot() = %+v, want frame 2", snap)
	}
	if r.Ticks() != 3 {
		t.Errorf("Ticks() = %d, want 3", r.Ticks())
	}
	if r.Interval() != time.Second/60 {
		t.Errorf("Interval() = %s", r.Interval())
	}
}

func TestRunnerPlaybackControl(t *testing.T) {
	r := newTestRunner(t, 60)
	r.Load(toneTrack(40, 8), false)

	if f := r.Step(); f.Playing {
		t.Fatal("track should not play without autoplay")
	}

	r.TogglePlayback()
	if f := r.Step(); !f.Playing || f.Position != 1024 {
		t.Fatalf("after toggle: playing=%v position=%d", f.Playing, f.Position)
	}

	r.Restart()
	if f := r.Step(); f.Position != 1024 {
		t.Errorf("after restart: position=%d, want 1024", f.Position)
	}

	r.TogglePlayback()
	if f := r.Step(); f.Playing {
		t.Error("second toggle should stop playback")
	}
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	r := newTestRunner(t, 500)
	sink := &recordingSink{}
	r.AddSink(sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for sink.count() < 5 {
		select {
		case <-deadline:
			t.Fatal("runner produced fewer than 5 frames in 2s")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Readers can snapshot concurrently with ticks.
	if r.Snapshot() == nil {
		t.Error("Snapshot() nil while running")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
