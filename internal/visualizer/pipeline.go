// SPDX-License-Identifier: MIT
/*
Package visualizer runs one frame of the spectrum display:

	Cursor --window--> Analyzer --bins--> Animator --heights--> ColorMapper --> Frame

Pipeline holds the immutable parts (analyzer, spring constants, palette) and
the reusable buffers. State holds what persists between ticks. Tick performs
one full pass and returns a Frame for the renderers. Runner wraps a Pipeline
and a State in a frame loop and hands frames to sinks.
*/
package visualizer

import (
	"fmt"

	"neonviz/internal/config"
	"neonviz/internal/log"
	"neonviz/internal/playback"
	"neonviz/internal/spectrum"
)

// SyntheticSubtitle is shown when no track is playing.
const SyntheticSubtitle = "Synthetic"

// Pipeline turns State into Frames. It is not safe for concurrent use.
type Pipeline struct {
	cfg      *config.Config
	analyzer *spectrum.Analyzer
	animator *Animator
	mapper   *ColorMapper
	barWidth float32
	window   []int16
	frame    Frame
}

// NewPipeline builds a pipeline from a validated configuration.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	analyzer, err := spectrum.NewAnalyzer(cfg.Spectrum.FFTSize, cfg.Spectrum.Bins, float64(cfg.Spectrum.SampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	palette, err := NewPalette(cfg.Colors)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		analyzer: analyzer,
		animator: NewAnimator(cfg.Bars),
		mapper:   NewColorMapper(palette, cfg.Colors.LowThreshold, cfg.Colors.HighThreshold, cfg.Bars.Count),
		barWidth: float32(cfg.Display.Width / cfg.Bars.Count),
		window:   make([]int16, cfg.Spectrum.FFTSize),
	}
	p.frame = Frame{
		Width:     cfg.Display.Width,
		Height:    cfg.Display.Height,
		MaxHeight: cfg.Bars.MaxHeight,
		Bars:      make([]Bar, cfg.Bars.Count),
		Bins:      make([]float32, cfg.Spectrum.Bins),
		Title:     cfg.Display.Title,
		Effects: Effects{
			Glow:       cfg.Effects.Glow,
			FlowLines:  cfg.Effects.FlowLines,
			CenterLine: cfg.Effects.CenterLine,
			Title:      cfg.Effects.Title,
		},
	}

	log.Infof("Visualizer: pipeline ready (Bars: %d, Bins: %d, Max height: %.0f, Bar width: %.0f)",
		cfg.Bars.Count, cfg.Spectrum.Bins, cfg.Bars.MaxHeight, p.barWidth)
	return p, nil
}

// NewState creates the per-run state: bars resting at the minimum height and
// an empty cursor driven by the configured synthetic pattern.
func (p *Pipeline) NewState() (*State, error) {
	cursor, err := playback.NewCursor(
		p.cfg.Spectrum.FFTSize,
		p.cfg.Spectrum.HopSize,
		playback.NewSynth(p.cfg.Synth.Step, p.cfg.Synth.Gain),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cursor: %w", err)
	}

	s := &State{
		Cursor: cursor,
		Bars:   make([]BarState, p.cfg.Bars.Count),
		Bins:   make([]float32, p.cfg.Spectrum.Bins),
	}
	p.animator.Reset(s.Bars)
	return s, nil
}

// Palette returns the parsed colors.
func (p *Pipeline) Palette() Palette {
	return p.mapper.Palette()
}

// Analyzer exposes the spectrum stage, mainly for its bin frequencies.
func (p *Pipeline) Analyzer() *spectrum.Analyzer {
	return p.analyzer
}

// Tick runs one frame: it reads the next window (or the synthetic pattern),
// updates the bar springs, colors the bars and advances the frame counter.
// The returned Frame is owned by the pipeline and rewritten by the next Tick.
func (p *Pipeline) Tick(s *State) *Frame {
	// --- 1. Bins ---
	if s.Cursor.Advance(p.window) {
		p.analyzer.AnalyzeInto(p.window, s.Bins)
	} else {
		s.Cursor.Synthesize(s.Bins)
	}

	// --- 2. Springs ---
	p.animator.Update(s.Bars, s.Bins, s.Frame)

	// --- 3. Frame ---
	f := &p.frame
	f.Number = s.Frame
	maxHeight := p.animator.MaxHeight
	for i := range f.Bars {
		h := s.Bars[i].Height
		ratio := h / maxHeight
		f.Bars[i] = Bar{
			X:      float32(i)*p.barWidth + p.barWidth/2,
			Height: h,
			Ratio:  ratio,
			Color:  p.mapper.Color(i, ratio, s.Bins, s.Frame),
		}
	}

	copy(f.Bins, s.Bins)
	var sum float32
	for _, v := range s.Bins {
		sum += v
	}
	f.Average = sum / float32(len(s.Bins))

	palette := p.mapper.Palette()
	f.CenterColor = palette.Cool
	if f.Average > 0.5 {
		f.CenterColor = palette.HighPrimary
	}

	f.Progress = s.Cursor.Progress()
	f.Position = s.Cursor.Position()
	f.Length = s.Cursor.Length()
	f.Playing = s.Cursor.Active()
	f.Subtitle = SyntheticSubtitle
	if f.Playing {
		f.Subtitle = s.Cursor.Track().Name
	}

	s.Frame++
	return f
}
