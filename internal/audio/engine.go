// SPDX-License-Identifier: MIT
/*
Package audio is the visualizer's sample source. It loads WAV files into
playback tracks and captures the input device into new ones:
- WAV decoding to 16-bit mono with go-audio/wav
- Capture through PortAudio straight into int16 buffers
- A silence gate that holds recording until the first loud buffer
- WAV recording with atomic state management

Thread Safety:
- Uses atomic operations for recording and gate state
- Pre-allocates buffers to avoid GC in hot path
- Locks OS thread during audio processing
*/
package audio

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"neonviz/internal/config"
	"neonviz/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// Engine captures mono 16-bit audio from one input device.
type Engine struct {
	// Capture configuration.
	sampleRate      float64
	framesPerBuffer int

	// Audio input handling.
	inputBuffer  []int16
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Silence gate, see gate.go.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-32767)
	gateOpen      int32 // Atomic, latches once a buffer passes the threshold

	// Recording state and buffers.
	isRecording   int32 // Atomic flag for thread-safe state
	framesWritten int64 // Atomic count of recorded frames
	outputFile    *os.File
	wavEncoder    *wav.Encoder
	sampleBuf     *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine opens the configured input device. PortAudio must be initialized.
func NewEngine(cfg *config.Config) (*Engine, error) {
	rec := cfg.Recording
	inputDevice, err := InputDevice(rec.Device)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		sampleRate:      rec.SampleRate,
		framesPerBuffer: rec.FramesPerBuffer,
		inputBuffer:     make([]int16, rec.FramesPerBuffer),
		inputDevice:     inputDevice,
		inputLatency:    inputDevice.DefaultLowInputLatency,
		gateEnabled:     rec.SilenceThreshold > 0,
	}
	engine.SetGateThreshold(rec.SilenceThreshold)

	log.Infof("Audio: using input %q (%.0f Hz, %d frames/buffer, gate %.3f)",
		inputDevice.Name, rec.SampleRate, rec.FramesPerBuffer, rec.SilenceThreshold)
	return engine, nil
}

// StartInputStream opens and starts a mono input stream.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: e.framesPerBuffer,
		SampleRate:      e.sampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return err
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		return err
	}

	return nil
}

// StopInputStream stops and closes the stream if one is running.
func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
	}

	return nil
}

// processInputStream is the core audio processing callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations in the hot path
func (e *Engine) processInputStream(in []int16) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := copy(e.inputBuffer, in)
	buffer := e.inputBuffer[:n]

	if !e.passGate(buffer) {
		return
	}

	// Write to WAV file if recording
	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		data := e.sampleBuf.Data[:n]
		for i, sample := range buffer {
			data[i] = int(sample)
		}
		e.sampleBuf.Data = data

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			log.Errorf("Audio: error writing to WAV file: %v", err)
			return
		}
		atomic.AddInt64(&e.framesWritten, int64(n))
	}
}
