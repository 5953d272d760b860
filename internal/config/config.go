// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"neonviz/internal/log"
	"neonviz/pkg/bitint"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Core configuration constants that define the defaults for the visualizer.
// They mirror the fixed build of the original hardware target: a 320x240
// screen, 64 bars and a 512 point transform advanced 1024 samples per frame.
const (
	// Spectrum
	DefaultFFTSize    = 512   // Transform size N (power of 2)
	DefaultBins       = 64    // Frequency bins B (B <= N/2)
	DefaultHopSize    = 1024  // Samples the cursor advances per frame
	DefaultSampleRate = 44100 // Expected track sample rate (Hz)

	// Display
	DefaultScreenWidth  = 320
	DefaultScreenHeight = 240
	DefaultFPS          = 60
	DefaultTitle        = "NEON SPECTRUM"
	HeightMargin        = 40 // Max bar height is the screen height minus this

	// Bars
	DefaultBarCount       = 64
	DefaultMinHeight      = 5
	DefaultResponseSpeed  = 0.1
	DefaultDamping        = 0.85
	DefaultAmplitudeBoost = 2.0
	DefaultOscillation    = 0.1

	// Colors
	DefaultLowThreshold  = 0.3
	DefaultHighThreshold = 0.7
	ColorTeal            = "#00FFFF"
	ColorPurple          = "#8400FF"
	ColorPink            = "#FF00FF"
	ColorBlack           = "#000000"
	ColorWhite           = "#FFFFFF"

	// Synthetic fallback
	DefaultSynthStep = 0.1
	DefaultSynthGain = 1.0

	// Recording and transport
	MinDeviceID             = -1 // -1 represents system default device
	DefaultFramesPerBuffer  = 512
	DefaultSilenceThreshold = 0.01
	DefaultRecordingDir     = "./recordings"
	DefaultWebSocketAddress = ":8080"
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond
	MinSampleRate           = 8000
	MaxSampleRate           = 192000
	MaxFFTSize              = 1 << 16
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`     // Enable debug logging.
	LogLevel  string          `yaml:"log_level"` // Logging level (e.g., "debug", "info", "warn", "error").
	Spectrum  SpectrumConfig  `yaml:"spectrum"`
	Bars      BarsConfig      `yaml:"bars"`
	Colors    ColorsConfig    `yaml:"colors"`
	Effects   EffectsConfig   `yaml:"effects"`
	Display   DisplayConfig   `yaml:"display"`
	Synth     SynthConfig     `yaml:"synth"`
	Track     TrackConfig     `yaml:"track"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`

	// Set from the command line only.
	Command  string `yaml:"-"` // One-off command ("list", "record") instead of the visualizer.
	Headless bool   `yaml:"-"` // Run the frame loop without the terminal renderer.
	Pick     bool   `yaml:"-"` // Choose the record device interactively.
}

// SpectrumConfig sizes the transform and the binning stage.
type SpectrumConfig struct {
	FFTSize    int `yaml:"fft_size"`    // Transform size N, power of 2.
	Bins       int `yaml:"bins"`        // Number of frequency bins B, at most N/2.
	HopSize    int `yaml:"hop_size"`    // Samples advanced per frame.
	SampleRate int `yaml:"sample_rate"` // Expected sample rate of loaded tracks.
}

// BarsConfig tunes the damped spring that animates each bar.
type BarsConfig struct {
	Count          int     `yaml:"count"`           // Visual bars, may exceed spectrum.bins.
	MinHeight      float32 `yaml:"min_height"`      // Lower clamp.
	MaxHeight      float32 `yaml:"max_height"`      // Upper clamp, 0 derives it from display.height.
	ResponseSpeed  float32 `yaml:"response_speed"`  // Spring stiffness per frame.
	Damping        float32 `yaml:"damping"`         // Velocity retained per frame (0-1).
	AmplitudeBoost float32 `yaml:"amplitude_boost"` // Bin to height gain.
	Oscillation    float32 `yaml:"oscillation"`     // Depth of the per-bar idle wobble.
}

// ColorsConfig holds intensity thresholds and the palette as hex strings.
type ColorsConfig struct {
	LowThreshold  float32 `yaml:"low_threshold"`
	HighThreshold float32 `yaml:"high_threshold"`
	Cool          string  `yaml:"cool"`           // Below the low threshold.
	MidPrimary    string  `yaml:"mid_primary"`    // Mid tier, cycle is high.
	MidSecondary  string  `yaml:"mid_secondary"`  // Mid tier, cycle is low.
	HighPrimary   string  `yaml:"high_primary"`   // High tier, cycle is high.
	HighSecondary string  `yaml:"high_secondary"` // High tier, cycle is low.
	Background    string  `yaml:"background"`
	Text          string  `yaml:"text"`
}

// EffectsConfig toggles renderer effects at runtime.
type EffectsConfig struct {
	Glow       bool `yaml:"glow"`
	FlowLines  bool `yaml:"flow_lines"`
	CenterLine bool `yaml:"center_line"`
	Title      bool `yaml:"title"`
}

// DisplayConfig describes the target surface and frame rate.
type DisplayConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	FPS       int    `yaml:"fps"`
	Title     string `yaml:"title"`
	ShowStats bool   `yaml:"show_stats"`
}

// SynthConfig controls the fallback waveform used when nothing is playing.
type SynthConfig struct {
	Step float32 `yaml:"step"` // Demo time advance per frame.
	Gain float32 `yaml:"gain"` // Scale applied to the synthetic bins.
}

// TrackConfig selects the WAV file to visualize.
type TrackConfig struct {
	Path     string `yaml:"path"`     // Empty runs the synthetic pattern only.
	Autoplay bool   `yaml:"autoplay"` // Start playing as soon as the track loads.
}

// RecordingConfig holds settings for the record command.
type RecordingConfig struct {
	Device           int           `yaml:"device"`            // PortAudio input device (-1 for default).
	SampleRate       float64       `yaml:"sample_rate"`       // Capture rate in Hz.
	FramesPerBuffer  int           `yaml:"frames_per_buffer"` // Frames per callback.
	SilenceThreshold float64       `yaml:"silence_threshold"` // Peak (0-1) that opens the gate.
	OutputDir        string        `yaml:"output_dir"`        // Directory for generated file names.
	OutputFile       string        `yaml:"output_file"`       // Explicit output path, overrides output_dir.
	Duration         time.Duration `yaml:"duration"`          // 0 records until interrupted.
}

// TransportConfig holds settings related to sending frames to remote renderers.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddress string        `yaml:"websocket_address"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// NewConfig creates a new Config instance with default values.
// This is the base configuration before a file, the environment or command
// line flags are applied.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Spectrum: SpectrumConfig{
			FFTSize:    DefaultFFTSize,
			Bins:       DefaultBins,
			HopSize:    DefaultHopSize,
			SampleRate: DefaultSampleRate,
		},
		Bars: BarsConfig{
			Count:          DefaultBarCount,
			MinHeight:      DefaultMinHeight,
			MaxHeight:      0, // Derived from display.height.
			ResponseSpeed:  DefaultResponseSpeed,
			Damping:        DefaultDamping,
			AmplitudeBoost: DefaultAmplitudeBoost,
			Oscillation:    DefaultOscillation,
		},
		Colors: ColorsConfig{
			LowThreshold:  DefaultLowThreshold,
			HighThreshold: DefaultHighThreshold,
			Cool:          ColorTeal,
			MidPrimary:    ColorPurple,
			MidSecondary:  ColorTeal,
			HighPrimary:   ColorPink,
			HighSecondary: ColorPurple,
			Background:    ColorBlack,
			Text:          ColorWhite,
		},
		Effects: EffectsConfig{
			Glow:       true,
			FlowLines:  true,
			CenterLine: true,
			Title:      true,
		},
		Display: DisplayConfig{
			Width:  DefaultScreenWidth,
			Height: DefaultScreenHeight,
			FPS:    DefaultFPS,
			Title:  DefaultTitle,
		},
		Synth: SynthConfig{
			Step: DefaultSynthStep,
			Gain: DefaultSynthGain,
		},
		Track: TrackConfig{
			Autoplay: true,
		},
		Recording: RecordingConfig{
			Device:           MinDeviceID,
			SampleRate:       DefaultSampleRate,
			FramesPerBuffer:  DefaultFramesPerBuffer,
			SilenceThreshold: DefaultSilenceThreshold,
			OutputDir:        DefaultRecordingDir,
		},
		Transport: TransportConfig{
			WebSocketAddress: DefaultWebSocketAddress,
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}

// LoadConfig loads configuration from a YAML file specified by path. If path is
// empty, it searches the default location ("config.yaml"). If no file is found
// the built-in defaults are used. Environment overrides are applied after the
// file, then derived values are filled in and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debugf("Config: loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize fills derived values and validates. Callers that mutate a loaded
// config (command line overrides) run it again before use.
func (c *Config) Finalize() error {
	if c.Bars.MaxHeight == 0 {
		c.Bars.MaxHeight = float32(c.Display.Height - HeightMargin)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate rejects shapes the frame pipeline cannot run with. Every check here
// happens once, before the first frame, so the hot path carries no guards.
func (c *Config) Validate() error {
	s := c.Spectrum
	if !bitint.IsPowerOfTwo(s.FFTSize) || s.FFTSize < 2 || s.FFTSize > MaxFFTSize {
		return fmt.Errorf("%w: spectrum.fft_size %d must be a power of 2 in [2, %d] (nearest: %d)",
			ErrInvalid, s.FFTSize, MaxFFTSize, bitint.NextPowerOfTwo(s.FFTSize))
	}
	if s.Bins < 1 || s.Bins > s.FFTSize/2 {
		return fmt.Errorf("%w: spectrum.bins %d must be in [1, fft_size/2 = %d]", ErrInvalid, s.Bins, s.FFTSize/2)
	}
	if s.HopSize < 1 {
		return fmt.Errorf("%w: spectrum.hop_size must be positive, got %d", ErrInvalid, s.HopSize)
	}
	if s.SampleRate < MinSampleRate || s.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: spectrum.sample_rate %d outside [%d, %d]", ErrInvalid, s.SampleRate, MinSampleRate, MaxSampleRate)
	}

	b := c.Bars
	if b.Count < 1 {
		return fmt.Errorf("%w: bars.count must be positive, got %d", ErrInvalid, b.Count)
	}
	if b.MinHeight < 0 || b.MinHeight >= b.MaxHeight {
		return fmt.Errorf("%w: bars need 0 <= min_height < max_height, got %g and %g", ErrInvalid, b.MinHeight, b.MaxHeight)
	}
	if b.ResponseSpeed <= 0 {
		return fmt.Errorf("%w: bars.response_speed must be positive, got %g", ErrInvalid, b.ResponseSpeed)
	}
	if b.Damping < 0 || b.Damping >= 1 {
		return fmt.Errorf("%w: bars.damping must be in [0, 1), got %g", ErrInvalid, b.Damping)
	}

	col := c.Colors
	if col.LowThreshold < 0 || col.LowThreshold > col.HighThreshold {
		return fmt.Errorf("%w: colors need 0 <= low_threshold <= high_threshold, got %g and %g",
			ErrInvalid, col.LowThreshold, col.HighThreshold)
	}
	for name, hex := range map[string]string{
		"cool":           col.Cool,
		"mid_primary":    col.MidPrimary,
		"mid_secondary":  col.MidSecondary,
		"high_primary":   col.HighPrimary,
		"high_secondary": col.HighSecondary,
		"background":     col.Background,
		"text":           col.Text,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: colors.%s %q is not a #RRGGBB color", ErrInvalid, name, hex)
		}
	}

	d := c.Display
	if d.Width < 1 || d.Height < 1 {
		return fmt.Errorf("%w: display size must be positive, got %dx%d", ErrInvalid, d.Width, d.Height)
	}
	if d.FPS < 1 {
		return fmt.Errorf("%w: display.fps must be positive, got %d", ErrInvalid, d.FPS)
	}

	if c.Synth.Step <= 0 {
		return fmt.Errorf("%w: synth.step must be positive, got %g", ErrInvalid, c.Synth.Step)
	}

	r := c.Recording
	if r.Device < MinDeviceID {
		return fmt.Errorf("%w: recording.device %d is below %d", ErrInvalid, r.Device, MinDeviceID)
	}
	if r.SilenceThreshold < 0 || r.SilenceThreshold > 1 {
		return fmt.Errorf("%w: recording.silence_threshold must be in [0, 1], got %g", ErrInvalid, r.SilenceThreshold)
	}

	t := c.Transport
	if t.UDPEnabled {
		if t.UDPTargetAddress == "" {
			return fmt.Errorf("%w: transport.udp_target_address must be set when UDP is enabled", ErrInvalid)
		}
		if t.UDPSendInterval <= 0 {
			return fmt.Errorf("%w: transport.udp_send_interval must be positive when UDP is enabled", ErrInvalid)
		}
	}
	if t.WebSocketEnabled && t.WebSocketAddress == "" {
		return fmt.Errorf("%w: transport.websocket_address must be set when websocket is enabled", ErrInvalid)
	}

	return nil
}

// applyEnvOverrides applies ENV_* variables on top of the file values.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Debug = bVal
			log.Infof("Config: overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		log.Infof("Config: overriding log_level from env: %s", val)
	}
	// ENV_TRACK
	if val, ok := os.LookupEnv("ENV_TRACK"); ok {
		c.Track.Path = val
		log.Infof("Config: overriding track.path from env: %s", val)
	}

	// ENV_WS_{...} and ENV_UDP_{...} are specific to the transport layer.

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = bVal
			log.Infof("Config: overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		c.Transport.WebSocketAddress = val
		log.Infof("Config: overriding transport.websocket_address from env: %s", val)
	}
	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = bVal
			log.Infof("Config: overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		log.Infof("Config: overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			log.Infof("Config: overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}

// ApplyLogLevel pushes the configured level into the logger. Debug wins over
// log_level.
func (c *Config) ApplyLogLevel() {
	if c.Debug {
		log.SetLevel(log.LevelDebug)
		return
	}
	level, ok := log.ParseLevel(c.LogLevel)
	if !ok {
		log.Warnf("Config: unknown log_level %q, using %s", c.LogLevel, level)
	}
	log.SetLevel(level)
}
