// SPDX-License-Identifier: MIT
package visualizer

import "slices"

// Bar is one renderable bar. X is the bar's center on the display and Height
// its full length, drawn symmetrically about the center line.
type Bar struct {
	X      float32 `json:"x"`
	Height float32 `json:"height"`
	Ratio  float32 `json:"ratio"` // Height / max height.
	Color  Color   `json:"color"`
}

// Effects are the renderer toggles.
type Effects struct {
	Glow       bool `json:"glow"`
	FlowLines  bool `json:"flow_lines"`
	CenterLine bool `json:"center_line"`
	Title      bool `json:"title"`
}

// Frame is everything a renderer needs to draw one tick.
type Frame struct {
	Number      uint32    `json:"frame"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	MaxHeight   float32   `json:"max_height"`
	Bars        []Bar     `json:"bars"`
	Bins        []float32 `json:"bins"`
	Average     float32   `json:"average"` // Mean of Bins.
	CenterColor Color     `json:"center_color"`
	Progress    float32   `json:"progress"` // Track position in [0, 1).
	Position    int       `json:"position"`
	Length      int       `json:"length"`
	Playing     bool      `json:"playing"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Effects     Effects   `json:"effects"`
}

// Clone returns a deep copy that stays valid after the next tick.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	c := *f
	c.Bars = slices.Clone(f.Bars)
	c.Bins = slices.Clone(f.Bins)
	return &c
}

// CopyFrom overwrites f with src, reusing f's slices when they are large
// enough.
func (f *Frame) CopyFrom(src *Frame) {
	bars, bins := f.Bars, f.Bins
	*f = *src
	f.Bars = append(bars[:0], src.Bars...)
	f.Bins = append(bins[:0], src.Bins...)
}

// PeakBin returns the index and value of the strongest bin, or (-1, 0) when
// there are no bins.
func (f *Frame) PeakBin() (int, float32) {
	if len(f.Bins) == 0 {
		return -1, 0
	}
	idx := 0
	for i, v := range f.Bins {
		if v > f.Bins[idx] {
			idx = i
		}
	}
	return idx, f.Bins[idx]
}
