// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"neonviz/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RecordingPath returns file when set, otherwise a time-stamped name inside
// dir.
func RecordingPath(dir, file string, now time.Time) string {
	if file != "" {
		return file
	}
	return filepath.Join(dir, "neonviz-"+now.Format("20060102-150405")+".wav")
}

// StartRecording creates filename and starts writing 16-bit mono WAV data.
// The silence gate is reset so leading silence is skipped again.
func (e *Engine) StartRecording(filename string) error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	e.outputFile = file

	e.wavEncoder = wav.NewEncoder(file, int(e.sampleRate), 16, 1, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(e.sampleRate),
		},
		Data:           make([]int, e.framesPerBuffer),
		SourceBitDepth: 16,
	}

	e.ResetGate()
	atomic.StoreInt64(&e.framesWritten, 0)
	atomic.StoreInt32(&e.isRecording, 1)

	log.Infof("Audio: recording to %s", filename)
	return nil
}

// StopRecording finalizes the WAV header and closes the file.
func (e *Engine) StopRecording() error {
	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
	}

	log.Infof("Audio: recording stopped (%d frames)", e.FramesWritten())
	return nil
}

// FramesWritten returns the number of frames recorded since StartRecording.
func (e *Engine) FramesWritten() int64 {
	return atomic.LoadInt64(&e.framesWritten)
}

// Close stops any recording and the input stream.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}

	if err := e.StopInputStream(); err != nil {
		return err
	}

	return nil
}

// Record captures into filename until ctx is done or, when duration is
// positive, until duration has elapsed.
func (e *Engine) Record(ctx context.Context, filename string, duration time.Duration) error {
	if err := e.StartRecording(filename); err != nil {
		return err
	}
	if err := e.StartInputStream(); err != nil {
		_ = e.StopRecording()
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	<-ctx.Done()

	if err := e.StopInputStream(); err != nil {
		_ = e.StopRecording()
		return fmt.Errorf("failed to stop input stream: %w", err)
	}
	return e.StopRecording()
}
