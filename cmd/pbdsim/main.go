package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/pbdsim/internal/analysis"
	"github.com/san-kum/pbdsim/internal/automation"
	"github.com/san-kum/pbdsim/internal/config"
	"github.com/san-kum/pbdsim/internal/experiment"
	"github.com/san-kum/pbdsim/internal/export"
	"github.com/san-kum/pbdsim/internal/metrics"
	"github.com/san-kum/pbdsim/internal/optim"
	"github.com/san-kum/pbdsim/internal/sim"
	"github.com/san-kum/pbdsim/internal/storage"
	"github.com/san-kum/pbdsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	frames     int
	iterations int
	particles  int
	delta      float64
	seed       int64
	verbose    bool
	// plot / analyze / phase
	particle int
	axis     string
	// sweep
	sweepParams []string
	metricName  string
	// ensemble
	runs     int
	parallel int
	// svg
	frameIndex int
	outFile    string
	trace      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pbdsim",
		Short: "position based dynamics lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".pbdsim", "data directory")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and store sampled frames",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	sceneFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot one particle coordinate over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	seriesFlags(plotCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one particle coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	seriesFlags(analyzeCmd)

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of one particle coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	seriesFlags(phaseCmd)

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "watch a scene in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	sceneFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "time a scene across iteration counts",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	sceneFlags(benchCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "grid search config parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	sceneFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "link_residual", "metric to minimise")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [scene]",
		Short: "run seeded copies of a scene concurrently",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	sceneFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of members")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "max members at once (0 = unlimited)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored frame or trace as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	seriesFlags(svgCmd)
	svgCmd.Flags().IntVar(&frameIndex, "frame", -1, "sampled frame index (negative counts from the end)")
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().BoolVar(&trace, "trace", false, "draw the particle coordinate trace instead of a frame")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenarioFile,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, svgCmd, presetsCmd, liveCmd, benchCmd, sweepCmd, ensembleCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func sceneFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	f.IntVar(&iterations, "iterations", config.DefaultIterations, "relaxation iterations per frame")
	f.IntVar(&particles, "particles", 0, "particle count (0 = scene default)")
	f.Float64Var(&delta, "delta", config.DefaultDelta, "frame time step")
	f.Int64Var(&seed, "seed", 1, "random seed")
}

func seriesFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&particle, "particle", 0, "particle index")
	cmd.Flags().StringVar(&axis, "axis", "y", "coordinate: x, y or z")
}

// resolveConfig layers a preset or config file under explicitly set flags.
// The scene argument wins over the scene named in a config file.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	scene := config.DefaultScene
	if len(args) > 0 {
		scene = args[0]
	}

	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(scene, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scene))
		}
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Scene = scene
		}
	default:
		cfg = config.DefaultConfig()
		cfg.Scene = scene
		cfg.Frames = frames
		cfg.Iterations = iterations
		cfg.Delta = delta
		cfg.Seed = seed
		cfg.Particles = particles
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("delta") {
		cfg.Delta = delta
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("running %s (%d frames)...\n", cfg.Scene, cfg.Frames)
	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	slog.Debug("run finished", "result", result)
	if runErr != nil {
		slog.Warn("run interrupted", "err", runErr, "frames", result.FramesRun)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", result.Elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (%d sampled)\n", result.FramesRun, len(result.Frames))
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tFRAMES\tPARTICLES\tITER\tDELTA")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%d\t%d\t%.3f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.FramesRun,
			run.Frames,
			run.Particles,
			run.Iterations,
			run.Delta,
		)
	}
	return w.Flush()
}

func loadSeries(runID string) (*storage.RunMetadata, []float64, []float64, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if particle < 0 || particle >= meta.Particles {
		return nil, nil, nil, fmt.Errorf("particle %d out of range [0, %d)", particle, meta.Particles)
	}
	times, values, err := st.Series(runID, particle, axis)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(values) == 0 {
		return nil, nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, times, values, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, _, values, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(values))

	graph := asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("particle %d %s vs time", particle, axis)),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, times, values, err := loadSeries(args[0])
	if err != nil {
		return err
	}
	if len(values) < 4 {
		return fmt.Errorf("need at least 4 samples, got %d", len(values))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	ps := analysis.PowerSpectrum(values)
	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (particle %d %s)", particle, axis)),
	)
	fmt.Println(graph)
	fmt.Println()

	dt := times[1] - times[0]
	freq := analysis.DominantFrequency(values, dt)
	fmt.Printf("dominant frequency: %.4f per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f\n", 1.0/freq)
	}

	mean := stat.Mean(values, nil)
	fmt.Printf("mean crossings: %d\n", len(analysis.Crossings(times, values, mean)))
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, times, values, err := loadSeries(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("phase portrait: %s (particle %d %s)\n\n", meta.ID, particle, axis)
	fmt.Println(analysis.NewPhasePortrait(times, values).ASCII(80, 24))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var doc string
	if trace {
		_, times, values, err := loadSeries(runID)
		if err != nil {
			return err
		}
		doc = export.SeriesSVG(times, values, 800, 400, "#00ffff")
	} else {
		frames, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		idx := frameIndex
		if idx < 0 {
			idx += len(frames)
		}
		if idx < 0 || idx >= len(frames) {
			return fmt.Errorf("frame %d out of range, run has %d sampled frames", frameIndex, len(frames))
		}

		// links come from rebuilding the scene the run started with
		var links []metrics.Link
		if cfg, err := st.LoadConfig(runID); err != nil {
			slog.Debug("no run config, drawing particles only", "run", runID, "err", err)
		} else if scene, err := experiment.Build(cfg, experiment.NewRegistry()); err != nil {
			slog.Debug("rebuilding scene failed", "run", runID, "err", err)
		} else {
			links = scene.Links
		}

		cam := viz.NewCamera()
		cam.Fit(frames[idx].Positions)
		doc = export.FrameSVG(frames[idx].Positions, links, cam, 800, 800)
	}

	if outFile == "" {
		fmt.Println(doc)
		return nil
	}
	if err := os.WriteFile(outFile, []byte(doc), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runScenarioFile(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	results, runErr := automation.RunScenario(ctx, sc, experiment.NewRegistry(), storage.New(dataDir))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Println()
	fmt.Fprintln(w, "STEP\tFRAMES\tTIME\tRUN")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", r.Step, r.Result.FramesRun, r.Result.Elapsed.Round(time.Millisecond), id)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenes := config.ListScenes()
	if len(args) > 0 {
		scenes = args
	}
	for _, scene := range scenes {
		presets := config.ListPresets(scene)
		if len(presets) == 0 {
			fmt.Printf("no presets for scene: %s\n", scene)
			continue
		}
		fmt.Printf("presets for %s:\n", scene)
		for _, p := range presets {
			cfg := config.GetPreset(scene, p)
			fmt.Printf("  %-8s iterations=%d frames=%d\n", p, cfg.Iterations, cfg.Frames)
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	if len(args) == 0 && preset == "" && configFile == "" {
		return viz.RunInteractive(reg)
	}
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(cfg, reg)
}

func benchScene(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("benchmarking %s (%d frames)\n\n", base.Scene, base.Frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITER\tPARTICLES\tTIME\tFRAMES/SEC\tRESIDUAL")

	for _, n := range []int{1, 2, 4, 8, 16} {
		cfg := base.Clone()
		cfg.Iterations = n
		// bench only needs the final metrics
		cfg.SampleEvery = 0

		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		residual := "-"
		if v, ok := result.Metrics["link_residual"]; ok {
			residual = fmt.Sprintf("%.5f", v)
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%s\n",
			n, exp.Scene().System.Count(), elapsed.Round(time.Microsecond),
			float64(result.FramesRun)/elapsed.Seconds(), residual)
	}
	return w.Flush()
}

// parseParam parses "name=v1,v2,...".
func parseParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid param %q, want name=v1,v2,...", s)
	}
	var values []float64
	for _, part := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid value in %q: %w", s, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		sweepParams = []string{"iterations=1,2,4,8"}
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, values, err := parseParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	reg := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		exp := experiment.New(optim.Apply(base, params))
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp, nil
	}

	ctx, cancel := interruptContext()
	defer cancel()

	best, value, trials, err := optim.NewGridSearch(names, ranges).Search(ctx, build, metricName)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(names, "\t")+"\t"+strings.ToUpper(metricName))
	for _, t := range trials {
		cols := make([]string, 0, len(names)+1)
		for _, name := range names {
			cols = append(cols, strconv.FormatFloat(t.Params[name], 'g', -1, 64))
		}
		if t.Err != nil {
			cols = append(cols, "error: "+t.Err.Error())
		} else {
			cols = append(cols, fmt.Sprintf("%.6f", t.Value))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s: %.6f\n", metricName, value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", runs)
	}

	ens := sim.NewEnsemble(experiment.EnsembleBuilder(cfg, experiment.NewRegistry()), runs, cfg.Seed)
	ens.SetLimit(parallel)

	ctx, cancel := interruptContext()
	defer cancel()

	start := time.Now()
	results, err := ens.Run(ctx, experiment.New(cfg).SimConfig())
	if err != nil {
		return err
	}
	fmt.Printf("%d members of %s in %v\n\n", runs, cfg.Scene, time.Since(start).Round(time.Millisecond))

	samples := make(map[string][]float64)
	for _, res := range results {
		for name, v := range res.Metrics {
			samples[name] = append(samples[name], v)
		}
	}
	names := make([]string, 0, len(samples))
	for name := range samples {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD\tMIN\tMAX")
	for _, name := range names {
		xs := samples[name]
		mean, std := stat.MeanStdDev(xs, nil)
		lo, hi := xs[0], xs[0]
		for _, x := range xs {
			lo, hi = min(lo, x), max(hi, x)
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\t%.6f\n", name, mean, std, lo, hi)
	}
	return w.Flush()
}
