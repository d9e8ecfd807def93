package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/rovsim/internal/analysis"
	"github.com/san-kum/rovsim/internal/automation"
	"github.com/san-kum/rovsim/internal/config"
	"github.com/san-kum/rovsim/internal/export"
	"github.com/san-kum/rovsim/internal/metrics"
	"github.com/san-kum/rovsim/internal/optim"
	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/storage"
)

var (
	svgPath   string
	tuneAxis  string
	kpValues  []float64
	kdValues  []float64
	dtMin     float64
	dtMax     float64
	dtCount   int
	driftTol  float64
	trials    int
	mcSeed    uint64
	jitterVel float64
	jitterRot float64
	parallel  int
)

func addToolCommands(root *cobra.Command) {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "dominant oscillation per channel",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "write plan view and depth profile as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&svgPath, "out", "o", "track", "output path prefix")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search autopilot gains",
		RunE:  tuneGains,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneAxis, "axis", "depth", "axis to tune (depth, heading)")
	tuneCmd.Flags().Float64SliceVar(&kpValues, "kp", []float64{0.2, 0.5, 0.8, 1.2}, "candidate kp values")
	tuneCmd.Flags().Float64SliceVar(&kdValues, "kd", []float64{0.5, 1.0, 1.5, 2.5}, "candidate kd values")
	tuneCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario and store each step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "find the largest timestep that stays accurate",
		RunE:  sweepTimestep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&dtMin, "min", 0.001, "smallest dt")
	sweepCmd.Flags().Float64Var(&dtMax, "max", 0.5, "largest dt")
	sweepCmd.Flags().IntVar(&dtCount, "n", 10, "number of steps")
	sweepCmd.Flags().Float64Var(&driftTol, "tol", 0.01, "allowed final position drift from the finest step (m)")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "perturb the initial state and count stable trials",
		RunE:  runMonteCarlo,
	}
	addSimFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	mcCmd.Flags().Uint64Var(&mcSeed, "seed", 0, "random seed (0 = time)")
	mcCmd.Flags().Float64Var(&jitterVel, "jitter-vel", 0.5, "linear velocity noise (m/s)")
	mcCmd.Flags().Float64Var(&jitterRot, "jitter-rot", 10, "attitude noise (degrees)")
	mcCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")

	root.AddCommand(analyzeCmd, svgCmd, tuneCmd, scenarioCmd, sweepCmd, mcCmd)
}

var analyzeChannels = []struct {
	name  string
	value func(sim.Sample) float64
}{
	{"depth", sim.Sample.Depth},
	{"heading", sim.Sample.Heading},
	{"pitch", func(s sim.Sample) float64 { return s.Euler[0] }},
	{"roll", func(s sim.Sample) float64 { return s.Euler[2] }},
	{"yaw_rate", func(s sim.Sample) float64 { return s.AngularVelocity.Y() }},
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tFREQ (Hz)\tPERIOD (s)\tAMPLITUDE")
	data := make([]float64, len(samples))
	for _, ch := range analyzeChannels {
		for i, s := range samples {
			data[i] = ch.value(s)
		}
		peak, err := analysis.DominantFrequency(data, meta.Dt)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.3f\t%.4f\n", ch.name, peak.Frequency, peak.Period(), peak.Amplitude)
	}
	return w.Flush()
}

func svgRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	files := map[string]string{
		svgPath + "_plan.svg":  export.TrajectoryToSVG(export.PlanView(samples), 600, 600, "#00ff88"),
		svgPath + "_depth.svg": export.TrajectoryToSVG(export.DepthProfile(samples), 800, 300, "#00a8cc"),
	}
	for path, body := range files {
		if body == "" {
			return fmt.Errorf("run %s has too few samples to draw", args[0])
		}
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}
	return nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base.Pilot = "autopilot"

	var metricName string
	switch tuneAxis {
	case "depth":
		metricName = "depth_error"
	case "heading":
		metricName = "heading_error"
	default:
		return fmt.Errorf("unknown axis: %s (available: depth, heading)", tuneAxis)
	}

	build := func(p map[string]float64) (*sim.Simulator, error) {
		cfg := *base
		axis := &cfg.Autopilot.Depth
		m := sim.Metric(metrics.NewDepthError(axis.Target))
		if tuneAxis == "heading" {
			axis = &cfg.Autopilot.Heading
			m = metrics.NewHeadingError(axis.Target)
		}
		axis.Enabled = true
		axis.Kp = p["kp"]
		axis.Kd = p["kd"]
		s, err := cfg.Build(zerolog.Nop())
		if err != nil {
			return nil, err
		}
		s.AddMetric(m)
		return s, nil
	}

	g := optim.NewGridSearch([]string{"kp", "kd"}, [][]float64{kpValues, kdValues}, parallel)
	simCfg := base.SimConfig()
	simCfg.RealTime = false
	best, all, err := g.Search(context.Background(), simCfg, build, metricName)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KP\tKD\t%s\tSKIPPED\n", strings.ToUpper(metricName))
	for _, o := range all {
		fmt.Fprintf(w, "%.3f\t%.3f\t%.4f\t%d\n", o.Params["kp"], o.Params["kd"], o.Value, o.Skipped)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nbest: kp=%.3f kd=%.3f %s=%.4f\n", best.Params["kp"], best.Params["kd"], metricName, best.Value)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Log.Level, cfg.Log.Format = logLevel, logFormat
	log := newLogger(cfg)

	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(context.Background(), sc, log)
	for i, r := range results {
		name := r.Step.Name
		if name == "" {
			name = fmt.Sprintf("%s_step%d", sc.Name, i+1)
		}
		info := storage.RunInfo{
			Preset:     name,
			Integrator: r.Config.Integrator,
			Pilot:      r.Config.Pilot,
			Dt:         r.Config.Dt,
			Duration:   r.Config.Duration,
		}
		runID, serr := st.Save(info, r.Result)
		if serr != nil {
			return serr
		}
		fmt.Printf("step %d: %s (%d steps, %d skipped)\n", i+1, runID, r.Result.StepsTaken, r.Result.Skipped)
	}
	return err
}

func sweepTimestep(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !(dtMin > 0) || dtMax < dtMin {
		return fmt.Errorf("invalid dt range [%g, %g]", dtMin, dtMax)
	}

	out, err := automation.RunSweep(context.Background(), automation.TimestepSweep{
		Base:  base,
		Steps: automation.LogSpace(dtMin, dtMax, dtCount),
		Limit: parallel,
	})
	if err != nil {
		return err
	}

	fmt.Printf("timestep sweep for %s with %s\n\n", presetName(), base.Integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTABLE\tSKIPPED\tDRIFT\tPEAK SPEED\tFINAL DEPTH")
	largest := 0.0
	for _, r := range out {
		fmt.Fprintf(w, "%.5f\t%v\t%d\t%.5f\t%.4f\t%.4f\n", r.Dt, r.Stable(), r.Skipped, r.Drift, r.MaxSpeed, r.Final.Depth())
		if r.Within(driftTol) && r.Dt > largest {
			largest = r.Dt
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if largest > 0 {
		fmt.Printf("\nlargest dt within %g m: %g\n", driftTol, largest)
	} else {
		fmt.Println("\nno dt in range meets the tolerance")
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(base)

	results, err := automation.RunMonteCarlo(context.Background(), automation.MonteCarloConfig{
		Base:            base,
		Trials:          trials,
		Seed:            mcSeed,
		LinearVelocity:  jitterVel,
		AngularVelocity: jitterVel / 2,
		Attitude:        jitterRot,
		SpeedLimit:      50,
		Limit:           parallel,
	}, log)
	if err != nil {
		return err
	}

	stableCount, unstableCount := automation.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stableCount, unstableCount)
	return nil
}
