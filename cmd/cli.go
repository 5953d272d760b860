// SPDX-License-Identifier: MIT
package cmd

import (
	"io"
	"os"
	"time"

	"neonviz/internal/config"
	"neonviz/pkg/build"

	"github.com/spf13/cobra"
)

// Flag values that are applied on top of the loaded configuration. Only flags
// the user actually set override the file.
type cliOptions struct {
	configPath string
	verbose    bool
	logLevel   string

	track    string
	fps      int
	bars     int
	headless bool
	stats    bool
	wsAddr   string
	udpAddr  string

	device          int
	sampleRate      float64
	framesPerBuffer int
	threshold       float64
	output          string
	duration        time.Duration
	pick            bool
}

// ParseArgs parses the command line, loads the configuration file it names
// and returns the merged configuration. It returns a nil configuration when
// only help or version output was requested.
func ParseArgs() (*config.Config, error) {
	return parseArgs(os.Args[1:], os.Stdout)
}

func parseArgs(args []string, out io.Writer) (*config.Config, error) {
	var (
		opts = &cliOptions{}
		ran  *cobra.Command
	)
	rootCmd := newRootCmd(opts, &ran)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if ran == nil {
		return nil, nil
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if ran != rootCmd {
		cfg.Command = ran.Name()
	}
	opts.apply(ran, cfg)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCmd(opts *cliOptions, ran **cobra.Command) *cobra.Command {
	buildInfo := build.GetBuildInfo()
	capture := func(cmd *cobra.Command, args []string) error {
		*ran = cmd
		return nil
	}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: capture,
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// Global Configuration
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to the YAML configuration file (default: ./config.yaml when present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Logging level: debug, info, warn, error")

	// Visualizer Configuration
	rootCmd.Flags().StringVarP(&opts.track, "track", "t", "",
		"WAV file to visualize. Without one the synthetic pattern runs.")
	rootCmd.Flags().IntVar(&opts.fps, "fps", config.DefaultFPS,
		"Frames per second")
	rootCmd.Flags().IntVar(&opts.bars, "bars", config.DefaultBarCount,
		"Number of visual bars")
	rootCmd.Flags().BoolVar(&opts.headless, "headless", false,
		"Run the frame loop without the terminal renderer")
	rootCmd.Flags().BoolVar(&opts.stats, "stats", false,
		"Show the frame statistics line")
	rootCmd.Flags().StringVar(&opts.wsAddr, "websocket", "",
		"Serve JSON frames over WebSocket on this address, e.g. :8080")
	rootCmd.Flags().StringVar(&opts.udpAddr, "udp", "",
		"Send binary frame packets to this host:port")

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE:  capture,
	}
	rootCmd.AddCommand(listCmd)

	// Record command
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record an input device to a WAV file for later visualization",
		Args:  cobra.NoArgs,
		RunE:  capture,
	}
	recordCmd.Flags().IntVarP(&opts.device, "device", "d", config.MinDeviceID,
		"Input device ID. Use 'list' command to see available devices.")
	recordCmd.Flags().Float64VarP(&opts.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	recordCmd.Flags().IntVarP(&opts.framesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	recordCmd.Flags().Float64Var(&opts.threshold, "threshold", config.DefaultSilenceThreshold,
		"Peak level (0-1) that opens the silence gate")
	recordCmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Output file name. Default is neonviz-YYYYMMDD-HHMMSS.wav in the recording directory")
	recordCmd.Flags().DurationVar(&opts.duration, "duration", 0,
		"Stop after this long (0 records until interrupted)")
	recordCmd.Flags().BoolVarP(&opts.pick, "pick", "p", false,
		"Choose the device and sample rate interactively")
	rootCmd.AddCommand(recordCmd)

	return rootCmd
}

// apply copies every flag the user set on cmd into cfg.
func (o *cliOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed

	if o.verbose {
		cfg.Debug = true
	}
	if set("log-level") {
		cfg.LogLevel = o.logLevel
	}

	// Visualizer
	if set("track") {
		cfg.Track.Path = o.track
	}
	if set("fps") {
		cfg.Display.FPS = o.fps
	}
	if set("bars") {
		cfg.Bars.Count = o.bars
	}
	if set("stats") {
		cfg.Display.ShowStats = o.stats
	}
	if set("websocket") {
		cfg.Transport.WebSocketEnabled = o.wsAddr != ""
		cfg.Transport.WebSocketAddress = o.wsAddr
	}
	if set("udp") {
		cfg.Transport.UDPEnabled = o.udpAddr != ""
		cfg.Transport.UDPTargetAddress = o.udpAddr
	}
	cfg.Headless = o.headless

	// Recording
	if set("device") {
		cfg.Recording.Device = o.device
	}
	if set("sample-rate") {
		cfg.Recording.SampleRate = o.sampleRate
	}
	if set("frames-per-buffer") {
		cfg.Recording.FramesPerBuffer = o.framesPerBuffer
	}
	if set("threshold") {
		cfg.Recording.SilenceThreshold = o.threshold
	}
	if set("output") {
		cfg.Recording.OutputFile = o.output
	}
	if set("duration") {
		cfg.Recording.Duration = o.duration
	}
	cfg.Pick = o.pick
}
