// SPDX-License-Identifier: MIT
package visualizer

import (
	"errors"
	"math"
	"testing"

	"neonviz/internal/config"
	"neonviz/internal/playback"
	"neonviz/pkg/utils"
)

func testConfig(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func newTestPipeline(t testing.TB, cfg *config.Config) (*Pipeline, *State) {
	t.Helper()
	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	s, err := p.NewState()
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	return p, s
}

// toneTrack repeats a tone aligned to magnitude index bin of a 512 point
// window, so every hop reads the same spectrum.
func toneTrack(bin, windows int) *playback.Track {
	tone := utils.GenerateBinTone(512, bin)
	samples := make([]int16, 0, len(tone)*windows)
	for range windows {
		samples = append(samples, tone...)
	}
	return &playback.Track{Name: "tone", Samples: samples, SampleRate: 44100}
}

func TestNewPipelineRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spectrum.Bins = cfg.Spectrum.FFTSize/2 + 1

	if _, err := NewPipeline(cfg); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("NewPipeline() error = %v, want ErrInvalid", err)
	}
}

func TestNewStateStartsAtRest(t *testing.T) {
	cfg := testConfig(t)
	_, s := newTestPipeline(t, cfg)

	if s.Frame != 0 || s.Cursor.Playing() {
		t.Fatalf("state = frame %d playing %v, want 0 and false", s.Frame, s.Cursor.Playing())
	}
	if len(s.Bars) != cfg.Bars.Count || len(s.Bins) != cfg.Spectrum.Bins {
		t.Fatalf("len(Bars) = %d len(Bins) = %d", len(s.Bars), len(s.Bins))
	}
	for i, b := range s.Bars {
		if b.Height != cfg.Bars.MinHeight {
			t.Fatalf("bar %d starts at %g, want %g", i, b.Height, cfg.Bars.MinHeight)
		}
	}
}

func TestTickSyntheticPath(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)

	prev := make([]float32, cfg.Spectrum.Bins)
	for n := range uint32(200) {
		f := p.Tick(s)

		if f.Number != n || s.Frame != n+1 {
			t.Fatalf("tick %d: frame number %d, state frame %d", n, f.Number, s.Frame)
		}
		if f.Playing || f.Subtitle != SyntheticSubtitle || f.Progress != 0 {
			t.Fatalf("tick %d: playing=%v subtitle=%q progress=%g", n, f.Playing, f.Subtitle, f.Progress)
		}

		var sum float32
		for i, v := range f.Bins {
			if math.IsNaN(float64(v)) || v < 0 {
				t.Fatalf("tick %d: bin %d = %g", n, i, v)
			}
			sum += v
		}
		if sum == 0 {
			t.Fatalf("tick %d: all bins zero", n)
		}
		if n > 0 {
			var diff float32
			for i := range f.Bins {
				diff += float32(math.Abs(float64(f.Bins[i] - prev[i])))
			}
			if diff == 0 {
				t.Fatalf("tick %d: bins did not change", n)
			}
		}
		copy(prev, f.Bins)

		for i, b := range f.Bars {
			if b.Height < cfg.Bars.MinHeight || b.Height > cfg.Bars.MaxHeight {
				t.Fatalf("tick %d: bar %d height %g out of range", n, i, b.Height)
			}
		}
	}
}

func TestTickFrameLayout(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)
	f := p.Tick(s)

	// 320 px over 64 bars is 5 px per bar.
	if f.Bars[0].X != 2.5 || f.Bars[63].X != 317.5 {
		t.Errorf("bar centers = %g and %g, want 2.5 and 317.5", f.Bars[0].X, f.Bars[63].X)
	}
	for i, b := range f.Bars {
		if math.Abs(float64(b.Ratio-b.Height/cfg.Bars.MaxHeight)) > 1e-6 {
			t.Fatalf("bar %d ratio %g, height %g", i, b.Ratio, b.Height)
		}
	}

	var sum float32
	for _, v := range f.Bins {
		sum += v
	}
	if want := sum / float32(len(f.Bins)); math.Abs(float64(f.Average-want)) > 1e-5 {
		t.Errorf("Average = %g, want %g", f.Average, want)
	}

	palette := p.Palette()
	wantCenter := palette.Cool
	if f.Average > 0.5 {
		wantCenter = palette.HighPrimary
	}
	if f.CenterColor != wantCenter {
		t.Errorf("CenterColor = %s for average %g, want %s", f.CenterColor, f.Average, wantCenter)
	}
	if f.Title != cfg.Display.Title || f.Effects != (Effects{true, true, true, true}) {
		t.Errorf("title %q effects %+v", f.Title, f.Effects)
	}
}

func TestTickTrackPathToneLandsInBin(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)
	s.Cursor.Load(toneTrack(40, 8))
	s.Cursor.Play()

	for range 4 {
		f := p.Tick(s)
		if !f.Playing || f.Subtitle != "tone" {
			t.Fatalf("playing=%v subtitle=%q, want the track", f.Playing, f.Subtitle)
		}
		if peak, _ := f.PeakBin(); peak != 10 {
			t.Fatalf("peak bin = %d, want 10", peak)
		}
	}

	// 4 hops of 1024 over 4096 samples wrap back to the start.
	if s.Cursor.Position() != 0 {
		t.Errorf("Position() = %d, want 0 after a full loop", s.Cursor.Position())
	}

	f := p.Tick(s)
	if f.Progress != 0.25 || f.Position != 1024 || f.Length != 4096 {
		t.Errorf("progress %g position %d length %d", f.Progress, f.Position, f.Length)
	}
}

func TestTickDrivesBarsTowardLoudBin(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)
	s.Cursor.Load(toneTrack(40, 8))
	s.Cursor.Play()

	var f *Frame
	for range 120 {
		f = p.Tick(s)
	}
	if f.Bars[10].Height != cfg.Bars.MaxHeight {
		t.Errorf("bar 10 height = %g, want pinned at %g", f.Bars[10].Height, cfg.Bars.MaxHeight)
	}
	if f.Bars[30].Height != cfg.Bars.MinHeight {
		t.Errorf("bar 30 height = %g, want resting at %g", f.Bars[30].Height, cfg.Bars.MinHeight)
	}
}

func TestTickExtraBarsStayIdle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Bars.Count = 80
	p, s := newTestPipeline(t, cfg)

	for range 50 {
		p.Tick(s)
	}
	for i := cfg.Spectrum.Bins; i < cfg.Bars.Count; i++ {
		if s.Bars[i] != (BarState{Height: cfg.Bars.MinHeight}) {
			t.Fatalf("bar %d = %+v, want idle", i, s.Bars[i])
		}
	}
}

func TestTickStoppedTrackFallsBackToSynthetic(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)
	s.Cursor.Load(toneTrack(40, 8))

	f := p.Tick(s)
	if f.Playing || f.Subtitle != SyntheticSubtitle {
		t.Errorf("stopped track: playing=%v subtitle=%q", f.Playing, f.Subtitle)
	}
}

func TestFrameCloneIsIndependent(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)

	c := p.Tick(s).Clone()
	before := c.Bins[0]
	p.Tick(s)

	if c.Bins[0] != before {
		t.Error("Clone() shares bins with the pipeline frame")
	}
	var nilFrame *Frame
	if nilFrame.Clone() != nil {
		t.Error("nil Clone() should be nil")
	}
}

func TestTickZeroAllocs(t *testing.T) {
	cfg := testConfig(t)
	p, s := newTestPipeline(t, cfg)
	s.Cursor.Load(toneTrack(40, 8))
	s.Cursor.Play()
	p.Tick(s)

	allocs := testing.AllocsPerRun(100, func() {
		p.Tick(s)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations per tick, got %.1f", allocs)
	}
}

func BenchmarkTick(b *testing.B) {
	cfg := testConfig(b)
	p, s := newTestPipeline(b, cfg)
	s.Cursor.Load(toneTrack(40, 64))
	s.Cursor.Play()

	b.ReportAllocs()
	for b.Loop() {
		p.Tick(s)
	}
}
