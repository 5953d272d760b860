// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"neonviz/internal/log"
	"neonviz/internal/playback"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrUnsupportedFormat is returned for files that are not PCM WAV at a
	// bit depth of 8, 16, 24 or 32.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrEmptyTrack is returned when a file decodes to no samples.
	ErrEmptyTrack = errors.New("track has no samples")
)

const wavFormatPCM = 1

// LoadWAV decodes a PCM WAV file into a mono 16-bit track. Channels are
// averaged and other bit depths are rescaled to 16 bits.
func LoadWAV(path string) (*playback.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrUnsupportedFormat, path)
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: %s uses WAV format %d, only PCM is supported",
			ErrUnsupportedFormat, path, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	track, err := trackFromBuffer(name, buf, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Infof("Audio: loaded %s (%d samples, %d Hz, %d-bit, %d ch, %s)",
		path, track.Len(), track.SampleRate, dec.BitDepth, dec.NumChans, track.Duration())
	return track, nil
}

// trackFromBuffer downmixes and rescales a decoded buffer.
func trackFromBuffer(name string, buf *audio.IntBuffer, bitDepth int) (*playback.Track, error) {
	if buf == nil || buf.Format == nil {
		return nil, ErrEmptyTrack
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}

	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, ErrEmptyTrack
	}

	samples := make([]int16, frames)
	for i := range samples {
		var sum int64
		for _, v := range buf.Data[i*channels : (i+1)*channels] {
			sum += int64(v)
		}
		samples[i] = to16(sum/int64(channels), bitDepth)
	}

	return &playback.Track{
		Name:       name,
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// to16 rescales a sample of the given depth. 8-bit WAV data is unsigned.
func to16(v int64, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	}
	return int16(v)
}
