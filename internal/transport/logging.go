// SPDX-License-Identifier: MIT
package transport

import (
	"neonviz/internal/log"
	"neonviz/internal/visualizer"
)

// LoggingTransport writes a one-line frame summary to the debug log every
// interval frames. It backs headless runs so the frame loop is observable.
type LoggingTransport struct {
	interval uint32
}

// NewLoggingTransport creates a LoggingTransport that logs every interval-th
// frame. An interval below 1 logs every frame.
func NewLoggingTransport(interval int) *LoggingTransport {
	if interval < 1 {
		interval = 1
	}
	log.Infof("Transport: using LoggingTransport (every %d frames)", interval)
	return &LoggingTransport{interval: uint32(interval)}
}

// Send logs the frame when it falls on the interval.
func (lt *LoggingTransport) Send(frame *visualizer.Frame) error {
	if frame.Number%lt.interval != 0 || !log.Enabled(log.LevelDebug) {
		return nil
	}
	peak, peakValue := frame.PeakBin()
	log.Debugf("Frame %d | %s | Pos: %d/%d | Avg: %.3f | Peak bin: %d (%.3f)",
		frame.Number, frame.Subtitle, frame.Position, frame.Length, frame.Average, peak, peakValue)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	log.Debug("Transport: LoggingTransport closed")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
