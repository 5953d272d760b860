// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Bars.MaxHeight != DefaultScreenHeight-HeightMargin {
		t.Errorf("max height = %g, want %d", cfg.Bars.MaxHeight, DefaultScreenHeight-HeightMargin)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
spectrum:
  fft_size: 1024
  bins: 32
bars:
  count: 80
  damping: 0.9
display:
  height: 480
effects:
  glow: false
colors:
  cool: "#102030"
transport:
  udp_send_interval: 50ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Spectrum.FFTSize != 1024 || cfg.Spectrum.Bins != 32 {
		t.Errorf("spectrum = %+v, want fft_size 1024 bins 32", cfg.Spectrum)
	}
	if cfg.Spectrum.HopSize != DefaultHopSize {
		t.Errorf("hop_size = %d, want default %d", cfg.Spectrum.HopSize, DefaultHopSize)
	}
	if cfg.Bars.Count != 80 || cfg.Bars.Damping != 0.9 {
		t.Errorf("bars = %+v, want count 80 damping 0.9", cfg.Bars)
	}
	if cfg.Bars.MaxHeight != 440 {
		t.Errorf("max height = %g, want derived 440", cfg.Bars.MaxHeight)
	}
	if cfg.Effects.Glow || !cfg.Effects.FlowLines {
		t.Errorf("effects = %+v, want glow off and flow lines on", cfg.Effects)
	}
	if cfg.Colors.Cool != "#102030" || cfg.Colors.HighPrimary != ColorPink {
		t.Errorf("colors = %+v", cfg.Colors)
	}
	if cfg.Transport.UDPSendInterval != 50*time.Millisecond {
		t.Errorf("udp interval = %s, want 50ms", cfg.Transport.UDPSendInterval)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	path := writeTempConfig(t, "spectrum:\n  fft_size: 500\n")
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "nearest: 512") {
		t.Errorf("error should suggest 512, got %v", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_DEBUG", "true")
	t.Setenv("ENV_TRACK", "/tmp/song.wav")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.2:7000")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "20ms")
	t.Setenv("ENV_WS_ENABLED", "not-a-bool")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Debug {
		t.Error("debug should be overridden to true")
	}
	if cfg.Track.Path != "/tmp/song.wav" {
		t.Errorf("track path = %q", cfg.Track.Path)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.2:7000" {
		t.Errorf("udp = %+v", cfg.Transport)
	}
	if cfg.Transport.UDPSendInterval != 20*time.Millisecond {
		t.Errorf("udp interval = %s, want 20ms", cfg.Transport.UDPSendInterval)
	}
	if cfg.Transport.WebSocketEnabled {
		t.Error("unparsable bool must leave websocket disabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"FFT size not power of two", func(c *Config) { c.Spectrum.FFTSize = 300 }, "fft_size"},
		{"FFT size too small", func(c *Config) { c.Spectrum.FFTSize = 1; c.Spectrum.Bins = 1 }, "fft_size"},
		{"Bins exceed half spectrum", func(c *Config) { c.Spectrum.Bins = DefaultFFTSize/2 + 1 }, "spectrum.bins"},
		{"Bins equal half spectrum", func(c *Config) { c.Spectrum.Bins = DefaultFFTSize / 2 }, ""},
		{"Zero bins", func(c *Config) { c.Spectrum.Bins = 0 }, "spectrum.bins"},
		{"Zero hop", func(c *Config) { c.Spectrum.HopSize = 0 }, "hop_size"},
		{"Sample rate too low", func(c *Config) { c.Spectrum.SampleRate = 100 }, "sample_rate"},
		{"No bars", func(c *Config) { c.Bars.Count = 0 }, "bars.count"},
		{"Bars beyond bins", func(c *Config) { c.Bars.Count = 200 }, ""},
		{"Min above max", func(c *Config) { c.Bars.MinHeight = 300 }, "min_height"},
		{"Zero response", func(c *Config) { c.Bars.ResponseSpeed = 0 }, "response_speed"},
		{"Damping of one", func(c *Config) { c.Bars.Damping = 1 }, "damping"},
		{"Thresholds inverted", func(c *Config) { c.Colors.LowThreshold = 0.8 }, "low_threshold"},
		{"Bad color", func(c *Config) { c.Colors.HighPrimary = "pink" }, "high_primary"},
		{"Zero fps", func(c *Config) { c.Display.FPS = 0 }, "fps"},
		{"Zero synth step", func(c *Config) { c.Synth.Step = 0 }, "synth.step"},
		{"Silence threshold", func(c *Config) { c.Recording.SilenceThreshold = 2 }, "silence_threshold"},
		{"UDP without address", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = ""
		}, "udp_target_address"},
		{"Websocket without address", func(c *Config) {
			c.Transport.WebSocketEnabled = true
			c.Transport.WebSocketAddress = ""
		}, "websocket_address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Finalize()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Finalize() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Finalize() error = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Finalize() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
