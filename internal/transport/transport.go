// SPDX-License-Identifier: MIT
package transport

import "neonviz/internal/visualizer"

// Transport delivers frames to a remote or auxiliary renderer. Send is called
// from the frame loop once per tick and must not block it; implementations
// that hand the frame to another goroutine clone it first.
type Transport interface {
	visualizer.Sink
	Close() error
}

// FrameSource provides the most recent frame for publishers that run on their
// own clock. *visualizer.Runner satisfies it.
type FrameSource interface {
	Snapshot() *visualizer.Frame
}

var _ FrameSource = (*visualizer.Runner)(nil)
