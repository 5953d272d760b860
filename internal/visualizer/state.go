// SPDX-License-Identifier: MIT
package visualizer

import "neonviz/internal/playback"

// State is everything that persists between ticks. Tick is its only writer.
type State struct {
	Frame  uint32 // Wraps on overflow; it only feeds periodic phases.
	Cursor *playback.Cursor
	Bars   []BarState
	Bins   []float32
}
