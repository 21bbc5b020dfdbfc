package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/odefit/internal/automation"
	"github.com/san-kum/odefit/internal/config"
	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/fit"
	"github.com/san-kum/odefit/internal/integrators"
	"github.com/san-kum/odefit/internal/logging"
	"github.com/san-kum/odefit/internal/models"
	"github.com/san-kum/odefit/internal/obs"
	"github.com/san-kum/odefit/internal/sim"
	"github.com/san-kum/odefit/internal/store"
	"github.com/san-kum/odefit/internal/viz"
)

var (
	configFile string
	preset     string
	obsFile    string
	outFile    string
	plotFile   string
	dataDir    string
	schedule   []float64
	initState  []float64
	guess      []float64
	trueParams []float64
	integName  string
	optimizer  string
	maxIters   int
	stepSize   float64
	points     int
	span       float64
	noise      float64
	seed       int64
	dt         float64
	verbose    bool
	saveRun    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "odefit",
		Short: "ODE parameter estimation via progressive-horizon fitting",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odefit", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	synthCmd := &cobra.Command{
		Use:   "synth [model]",
		Short: "generate noisy synthetic observations",
		Args:  cobra.ExactArgs(1),
		RunE:  runSynth,
	}
	synthCmd.Flags().Float64SliceVar(&trueParams, "params", nil, "ground-truth parameters")
	synthCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state")
	synthCmd.Flags().IntVar(&points, "points", 100, "number of samples")
	synthCmd.Flags().Float64Var(&span, "span", 30.0, "observation span")
	synthCmd.Flags().Float64Var(&noise, "noise", 0.01, "noise standard deviation")
	synthCmd.Flags().Int64Var(&seed, "seed", 42, "noise seed")
	synthCmd.Flags().Float64Var(&dt, "dt", 0.01, "integration timestep")
	synthCmd.Flags().StringVar(&integName, "integrator", "rk4", "integrator")
	synthCmd.Flags().StringVar(&outFile, "out", "observations.csv", "output CSV")

	estimateCmd := &cobra.Command{
		Use:   "estimate [model]",
		Short: "estimate model parameters from observations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEstimate,
	}
	estimateCmd.Flags().StringVar(&configFile, "config", "", "yaml run configuration")
	estimateCmd.Flags().StringVar(&preset, "preset", "", "named preset")
	estimateCmd.Flags().StringVar(&obsFile, "obs", "", "observations CSV (synthesized if empty)")
	estimateCmd.Flags().Float64SliceVar(&schedule, "schedule", nil, "horizon schedule")
	estimateCmd.Flags().Float64SliceVar(&guess, "guess", nil, "initial parameter guess")
	estimateCmd.Flags().Float64SliceVar(&initState, "init", nil, "initial state")
	estimateCmd.Flags().Float64SliceVar(&trueParams, "params", nil, "ground-truth parameters for synthesis")
	estimateCmd.Flags().IntVar(&maxIters, "iters", 100, "max iterations per stage")
	estimateCmd.Flags().Float64Var(&stepSize, "step", 0.1, "gradient step size")
	estimateCmd.Flags().StringVar(&optimizer, "optimizer", "sgd", "update rule (sgd|adam)")
	estimateCmd.Flags().StringVar(&integName, "integrator", "rk4", "integrator")
	estimateCmd.Flags().IntVar(&points, "points", 100, "synthetic sample count")
	estimateCmd.Flags().Float64Var(&span, "span", 30.0, "synthetic observation span")
	estimateCmd.Flags().Float64Var(&noise, "noise", 0.01, "synthetic noise stddev")
	estimateCmd.Flags().Int64Var(&seed, "seed", 42, "noise seed")
	estimateCmd.Flags().Float64Var(&dt, "dt", 0.01, "integration timestep")
	estimateCmd.Flags().StringVar(&plotFile, "plot", "", "write fit-vs-observations PNG")
	estimateCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run under --data")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "estimate with a live progress view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "yaml run configuration")
	liveCmd.Flags().StringVar(&preset, "preset", "", "named preset")
	liveCmd.Flags().StringVar(&obsFile, "obs", "", "observations CSV (synthesized if empty)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list estimation presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list saved estimation runs",
		RunE:  listRuns,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted batch of estimations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	rootCmd.AddCommand(synthCmd, estimateCmd, liveCmd, presetsCmd, runsCmd, batchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers config sources: preset, then config file, then the
// defaults, with any explicitly set flags on top.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if len(args) > 0 && preset != "" {
		p := config.GetPreset(args[0], preset)
		if p == nil {
			return nil, fmt.Errorf("no preset %q for model %q", preset, args[0])
		}
		cfg = p
	} else if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Model = args[0]
	}

	override := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	override("schedule", func() { cfg.Schedule = schedule })
	override("guess", func() { cfg.InitialGuess = guess })
	override("init", func() { cfg.InitState = initState })
	override("params", func() { cfg.TrueParams = trueParams })
	override("iters", func() { cfg.MaxIterations = maxIters })
	override("step", func() { cfg.StepSize = stepSize })
	override("optimizer", func() { cfg.Optimizer = optimizer })
	override("integrator", func() { cfg.Integrator = integName })
	override("points", func() { cfg.Points = points })
	override("span", func() { cfg.Span = span })
	override("noise", func() { cfg.Noise = noise })
	override("seed", func() { cfg.Seed = seed })
	override("dt", func() { cfg.Dt = dt })

	return cfg, cfg.Validate()
}

func simOptions(cfg *config.Config) (sim.Options, error) {
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return sim.Options{}, err
	}
	opts := sim.DefaultOptions()
	opts.Integrator = integ
	opts.Dt = cfg.Dt
	opts.Adaptive = cfg.Integrator == "rk45"
	return opts, nil
}

// loadObservations reads the CSV when given, otherwise synthesizes data
// from the configured ground truth.
func loadObservations(ctx context.Context, cfg *config.Config, m dynamo.Model, opts sim.Options) (*obs.Set, error) {
	if obsFile != "" {
		return store.ReadObservations(obsFile)
	}
	if len(cfg.TrueParams) == 0 {
		return nil, fmt.Errorf("either --obs or ground-truth parameters are required")
	}
	return obs.Synthesize(ctx, m, cfg.TrueParams, cfg.InitState,
		obs.SynthConfig{Points: cfg.Points, Span: cfg.Span, Noise: cfg.Noise, Seed: cfg.Seed}, opts)
}

func runSynth(cmd *cobra.Command, args []string) error {
	m, err := models.New(args[0])
	if err != nil {
		return err
	}
	if len(trueParams) != m.NumParams() {
		return fmt.Errorf("model %s wants %d parameters, got %d", args[0], m.NumParams(), len(trueParams))
	}
	if len(initState) != m.StateDim() {
		return fmt.Errorf("model %s wants state dim %d, got %d", args[0], m.StateDim(), len(initState))
	}

	integ, err := integrators.New(integName)
	if err != nil {
		return err
	}
	opts := sim.DefaultOptions()
	opts.Integrator = integ
	opts.Dt = dt

	data, err := obs.Synthesize(cmd.Context(), m, trueParams, initState,
		obs.SynthConfig{Points: points, Span: span, Noise: noise, Seed: seed}, opts)
	if err != nil {
		return err
	}

	if err := store.WriteObservations(outFile, data); err != nil {
		return err
	}
	fmt.Printf("wrote %d observations over [%.4g, %.4g] to %s\n", data.Len(), data.MinTime(), data.MaxTime(), outFile)
	return nil
}

func runEstimate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	m, err := models.New(cfg.Model)
	if err != nil {
		return err
	}
	opts, err := simOptions(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	data, err := loadObservations(ctx, cfg, m, opts)
	if err != nil {
		return err
	}

	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	driver, err := fit.NewDriver(m, data, cfg.InitState, cfg.FitConfig(), opts)
	if err != nil {
		return err
	}
	driver.SetLogger(log)

	var stageLosses []float64
	driver.OnStage = func(r fit.FitResult) {
		stageLosses = append(stageLosses, r.Loss)
	}

	result, err := driver.Estimate(ctx, cfg.InitialGuess, cfg.Schedule)
	if err != nil {
		return fmt.Errorf("estimation %s: %w", driver.Phase(), err)
	}

	printResult(cfg, result)
	if chart := viz.LossChart(stageLosses); chart != "" {
		fmt.Println()
		fmt.Println(chart)
	}

	_, fitted, evalErr := driver.Evaluator().Evaluate(ctx, result.Params, result.Horizon)
	if evalErr != nil {
		fmt.Fprintf(os.Stderr, "warning: could not replay fitted trajectory (charts and fit.csv skipped): %v\n", evalErr)
	} else {
		for dim := 0; dim < data.Dim(); dim++ {
			fmt.Println()
			fmt.Println(viz.TrajectoryChart(data, fitted, dim))
		}
		if plotFile != "" {
			if err := viz.SavePlot(plotFile, cfg.Model, data, fitted); err != nil {
				return err
			}
			fmt.Printf("\nplot written to %s\n", plotFile)
		}
	}

	if saveRun {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Model, cfg.Seed, cfg.Schedule, data, fitted, result)
		if err != nil {
			return err
		}
		fmt.Printf("run saved as %s\n", runID)
	}

	return nil
}

func printResult(cfg *config.Config, result fit.FitResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s\n", cfg.Model)
	fmt.Fprintf(w, "stages\t%d\n", result.Stage+1)
	fmt.Fprintf(w, "final horizon\t%.4g\n", result.Horizon)
	fmt.Fprintf(w, "final loss\t%.6g\n", result.Loss)
	for i, p := range result.Params {
		if len(cfg.TrueParams) == len(result.Params) {
			fmt.Fprintf(w, "p[%d]\t%.6g\t(true %.6g)\n", i, p, cfg.TrueParams[i])
		} else {
			fmt.Fprintf(w, "p[%d]\t%.6g\n", i, p)
		}
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	m, err := models.New(cfg.Model)
	if err != nil {
		return err
	}
	opts, err := simOptions(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	data, err := loadObservations(ctx, cfg, m, opts)
	if err != nil {
		return err
	}

	driver, err := fit.NewDriver(m, data, cfg.InitState, cfg.FitConfig(), opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewLive(cfg.Model, cfg.Schedule))
	driver.OnStage = func(r fit.FitResult) {
		p.Send(viz.StageMsg{Result: r})
	}

	go func() {
		result, err := driver.Estimate(ctx, cfg.InitialGuess, cfg.Schedule)
		p.Send(viz.DoneMsg{Result: result, Err: err})
	}()

	_, err = p.Run()
	cancel()
	return err
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if len(scenario.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log, err := logging.New(verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	results, runErr := automation.RunScenario(ctx, scenario, log)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, r := range results {
		fmt.Fprintf(w, "step %d\t%s\tloss %.6g\tparams %.5g\n", i+1, r.Model, r.Result.Loss, []float64(r.Result.Params))
	}
	w.Flush()

	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := models.List()
	if len(args) > 0 {
		names = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, model := range names {
		for _, name := range config.ListPresets(model) {
			p := config.GetPreset(model, name)
			fmt.Fprintf(w, "%s\t%s\tschedule %v\ttruth %v\n", model, name, p.Schedule, p.TrueParams)
		}
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, runID := range runs {
		meta, err := st.LoadMetadata(runID)
		if err != nil {
			fmt.Fprintf(w, "%s\t(unreadable: %v)\n", runID, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\tloss %.6g\tparams %.5g\n", meta.ID, meta.Model, meta.Loss, meta.Parameters)
	}
	return w.Flush()
}
