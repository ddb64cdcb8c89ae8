package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"os/signal"
	"slices"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/export"
	"github.com/san-kum/navsim/internal/optim"
	"github.com/san-kum/navsim/internal/sim"
	"github.com/san-kum/navsim/internal/store"
	"github.com/san-kum/navsim/internal/viz"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	exp := experiment.New(cfg, nil, logger)
	fmt.Printf("running %s scenario...\n", cfg.Name)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, exp.Plant(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.Reached() {
		fmt.Printf("goal reached at %.2fs\n", result.ArrivalTime)
	} else {
		fmt.Println("goal not reached")
	}
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(m)) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}

	// logs would tear the alternate screen
	m, err := viz.NewModel(experiment.New(cfg, nil, nil))
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	preset, names := args[:1], args[1:]
	if len(names) == 0 {
		names = experiment.NewRegistry().ListIntegrators()
	}

	exps := make([]*experiment.Experiment, len(names))
	sims := make([]*sim.Simulator, len(names))
	for i, name := range names {
		cfg, err := loadScenario(cmd, preset)
		if err != nil {
			return err
		}
		cfg.Integrator = name
		exps[i] = experiment.New(cfg, nil, logger.With("integrator", name))
		if err := exps[i].Setup(); err != nil {
			return err
		}
		sims[i] = exps[i].Simulator()
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := sim.RunAll(ctx, sims, 0)
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators on %s (%v)\n\n", preset[0], time.Since(start))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tREACHED\tARRIVAL\tPATH\tTRACK_ERR\tEFFORT")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%v\t%.2fs\t%.3f\t%.4f\t%.4f\n",
			names[i],
			res.Reached(),
			res.ArrivalTime,
			res.Metrics["path_length"],
			res.Metrics["tracking_error"],
			res.Metrics["control_effort"],
		)
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	grid, _ := cmd.Flags().GetStringArray("grid")
	metric, _ := cmd.Flags().GetString("metric")
	workers, _ := cmd.Flags().GetInt("workers")

	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	gs := optim.NewGridSearch(names, ranges).WithWorkers(workers)
	fmt.Printf("tuning %v on %s over %d candidates...\n", names, cfg.Name, len(gs.Candidates()))

	best, score, err := gs.Search(ctx, optim.GainBuilder(cfg, nil, logger.Named("tune")), metric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6f\n", metric, score)
	for _, name := range slices.Sorted(maps.Keys(best)) {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tMODEL\tINTEG\tSTEPS\tREACHED\tARRIVAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%v\t%.2fs\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Model,
			run.Integrator,
			run.Steps,
			run.Reached,
			run.ArrivalTime,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(tr.Times) < 2 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(tr.Times))

	series := []struct {
		caption string
		value   func(i int) float64
	}{
		{"x [m]", func(i int) float64 { return tr.Poses[i].X }},
		{"y [m]", func(i int) float64 { return tr.Poses[i].Y }},
		{"theta [rad]", func(i int) float64 { return tr.Poses[i].Theta }},
		{"v [m/s]", func(i int) float64 { return tr.Commands[i].V }},
		{"omega [rad/s]", func(i int) float64 { return tr.Commands[i].Omega }},
		{"mode (0 idle, 1 align, 2 track, 3 park)", func(i int) float64 { return float64(tr.Modes[i]) }},
	}
	for _, s := range series {
		data := make([]float64, len(tr.Times))
		for i := range data {
			data[i] = s.value(i)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return store.New(dataDir).Export(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = runID + ".svg"
	}

	st := store.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	paths, err := st.LoadPaths(runID)
	if err != nil {
		return err
	}

	scene := export.NewScene(cfg).WithTrajectory(tr.Poses).WithPaths(paths.Planned, paths.Smoothed)
	scene.Title = runID
	if err := scene.SaveSVG(out, export.DefaultSize); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGOALS\tOBSTACLES\tMAP_CHANGES\tDURATION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.0fs\n", name, len(p.Goals), len(p.Map.Obstacles), len(p.MapChanges), p.Sim.Duration)
	}
	return w.Flush()
}
