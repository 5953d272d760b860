// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neonviz/cmd"
	"neonviz/internal/audio"
	"neonviz/internal/config"
	"neonviz/internal/log"
	"neonviz/internal/playback"
	"neonviz/internal/transport"
	"neonviz/internal/transport/udp"
	"neonviz/internal/tui"
	"neonviz/internal/visualizer"
	"neonviz/pkg/build"

	tea "github.com/charmbracelet/bubbletea"
)

// Headless runs log a frame summary this often.
const headlessLogEvery = 60

// main is the entry point for the visualizer.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load the configuration
//   - Execute one-off commands (list, record) if requested
//   - Load the track and build the frame pipeline
//
// 2. Concurrent Phase (Hot Path):
//   - Start the transports that feed remote renderers
//   - Run the frame loop from the terminal renderer or a ticker
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals
//   - Close transports
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		log.Debugf("Build: %v", err)
	}

	// Parse command line arguments and build configuration
	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatal(err)
	}
	if cfg == nil {
		return
	}
	cfg.ApplyLogLevel()
	log.Infof("Build: %s", build.GetBuildInfo())

	// Handle one-off commands that don't run the visualizer
	if cfg.Command != "" {
		if err := executeCommand(cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	track, err := loadTrack(cfg)
	if err != nil {
		return err
	}

	pipeline, err := visualizer.NewPipeline(cfg)
	if err != nil {
		return err
	}
	runner, err := visualizer.NewRunner(pipeline, cfg.Display.FPS)
	if err != nil {
		return err
	}
	if track != nil {
		runner.Load(track, cfg.Track.Autoplay)
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	closers, err := startTransports(cfg, runner)
	defer func() {
		// ==================== SHUTDOWN PHASE (Cold Path) ====================
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warnf("Shutdown: %v", err)
			}
		}
	}()
	if err != nil {
		return err
	}

	if cfg.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}

	// The terminal belongs to the renderer, so logs go to a file.
	logFile, err := tea.LogToFile("neonviz.log", "")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	return tui.RunVisualizer(runner, cfg)
}

// loadTrack reads the configured WAV file. No path means synthetic only.
func loadTrack(cfg *config.Config) (*playback.Track, error) {
	if cfg.Track.Path == "" {
		log.Info("Playback: no track configured, running the synthetic pattern")
		return nil, nil
	}

	track, err := audio.LoadWAV(cfg.Track.Path)
	if err != nil {
		return nil, err
	}
	if track.SampleRate != cfg.Spectrum.SampleRate {
		log.Warnf("Playback: %q is %d Hz, bins are labelled for %d Hz",
			track.Name, track.SampleRate, cfg.Spectrum.SampleRate)
	}
	log.Infof("Playback: loaded %q (%d samples, %s)", track.Name, track.Len(), track.Duration())
	return track, nil
}

// startTransports registers every configured frame sink with the runner. The
// returned closers are valid even when an error is returned.
func startTransports(cfg *config.Config, runner *visualizer.Runner) ([]interface{ Close() error }, error) {
	var closers []interface{ Close() error }

	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		runner.AddSink(ws)
		closers = append(closers, ws)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return closers, err
		}
		closers = append(closers, sender)

		publisher, err := udp.NewPublisher(cfg.Transport.UDPSendInterval, sender, runner)
		if err != nil {
			return closers, err
		}
		publisher.Start()
		closers = append(closers, publisher)
	}

	if cfg.Headless {
		lt := transport.NewLoggingTransport(headlessLogEvery)
		runner.AddSink(lt)
		closers = append(closers, lt)
	}
	return closers, nil
}

// executeCommand handles one-off commands that need PortAudio but not the
// frame pipeline.
func executeCommand(cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	switch cfg.Command {
	case "list":
		devices, err := audio.HostDevices()
		if err != nil {
			return err
		}
		audio.WriteDevices(os.Stdout, devices)
		return nil

	case "record":
		return record(cfg)
	}
	return fmt.Errorf("unknown command %q", cfg.Command)
}

func record(cfg *config.Config) error {
	if cfg.Pick {
		sel, err := tui.PickDevice()
		if err != nil {
			return err
		}
		cfg.Recording.Device = sel.Device.ID
		cfg.Recording.SampleRate = sel.SampleRate
	}

	engine, err := audio.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	r := cfg.Recording
	path := audio.RecordingPath(r.OutputDir, r.OutputFile, time.Now())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Recording to %s, press Ctrl+C to stop.\n", path)
	if err := engine.Record(ctx, path, r.Duration); err != nil {
		return err
	}
	fmt.Printf("Recording saved to: %s (%d frames). Visualize it with --track %s\n",
		path, engine.FramesWritten(), path)
	return nil
}
