package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/rovsim/internal/config"
	"github.com/san-kum/rovsim/internal/logging"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	pilot      string
	logLevel   string
	logFormat  string
	addr       string
	httpAddr   string
	realTime   bool
)

var presetInfo = map[string]string{
	"idle":     "hover with thrusters off",
	"surge":    "straight run ahead",
	"dive":     "depth hold at 10 m",
	"spin":     "yaw burst then coast",
	"patrol":   "depth and heading hold while cruising",
	"freespin": "torque-free tumble in still water",
	"unstable": "speed past the drag model's range, every commit refused",
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "rovsim",
		Short:        "underwater vehicle dynamics simulator",
		SilenceUsage: true,
		RunE:         runMenu,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live visualization",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run in real time and accept thruster commands",
		RunE:  runServe,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "command listen address")
	serveCmd.Flags().StringVar(&httpAddr, "http", "127.0.0.1:7401", "telemetry websocket address (empty disables)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", p, presetInfo[p])
			}
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, listCmd, plotCmd, exportCmd, compareCmd, presetsCmd)
	addToolCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&pilot, "pilot", "none", "pilot (none, manual, schedule, autopilot)")
	cmd.Flags().BoolVar(&realTime, "realtime", false, "pace ticks against the wall clock")
}

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("pilot") {
		cfg.Pilot = pilot
	}
	if flags.Changed("realtime") {
		cfg.RealTime = realTime
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if root := cmd.Root().PersistentFlags(); root.Changed("log-level") || cfg.Log.Level == "" {
		cfg.Log.Level = logLevel
	}
	if root := cmd.Root().PersistentFlags(); root.Changed("log-format") || cfg.Log.Format == "" {
		cfg.Log.Format = logFormat
	}
	if root := cmd.Root().PersistentFlags(); root.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Warn().Err(err).Msg("logger options")
	}
	return log
}

func presetName() string {
	if preset != "" {
		return preset
	}
	if configFile != "" {
		return "custom"
	}
	return "default"
}
