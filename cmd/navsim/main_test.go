package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/store"
)

func scenarioCmd(t *testing.T, flags ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addScenarioFlags(cmd)
	if err := cmd.ParseFlags(flags); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestLoadScenarioDefaults(t *testing.T) {
	cfg, err := loadScenario(scenarioCmd(t), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "default" || cfg.Model != config.DefaultModel {
		t.Errorf("unexpected scenario %s/%s", cfg.Name, cfg.Model)
	}
}

func TestLoadScenarioFlagsOverridePreset(t *testing.T) {
	cmd := scenarioCmd(t, "--integrator", "euler", "--time", "30", "--goal-y", "1.5")

	cfg, err := loadScenario(cmd, []string{"detour"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "detour" || len(cfg.Map.Obstacles) != 1 {
		t.Errorf("preset not applied: %+v", cfg)
	}
	if cfg.Integrator != "euler" || cfg.Sim.Duration != 30 {
		t.Errorf("flags not applied: %s %g", cfg.Integrator, cfg.Sim.Duration)
	}
	if len(cfg.Goals) != 1 || cfg.Goals[0].Pose.X != 4 || cfg.Goals[0].Pose.Y != 1.5 {
		t.Errorf("goal override should keep unset fields: %+v", cfg.Goals)
	}
	if cfg.Sim.Dt != 0.1 {
		t.Errorf("unchanged flags must not override, dt=%g", cfg.Sim.Dt)
	}
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte("name: fromfile\nmodel: turtlebot\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadScenario(scenarioCmd(t, "--config", path), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "fromfile" || cfg.Model != "turtlebot" {
		t.Errorf("unexpected scenario %s/%s", cfg.Name, cfg.Model)
	}

	if _, err := loadScenario(scenarioCmd(t, "--config", path), []string{"straight"}); err == nil {
		t.Error("expected error for preset and config together")
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	if _, err := loadScenario(scenarioCmd(t), []string{"nope"}); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := loadScenario(scenarioCmd(t, "--dt", "-1"), nil); err == nil {
		t.Error("expected validation error")
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid([]string{"kpx=1,2,4", " kdy = 0.5"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(names) != 2 || names[0] != "kpx" || names[1] != "kdy" {
		t.Errorf("unexpected names %v", names)
	}
	if len(ranges[0]) != 3 || ranges[0][2] != 4 || ranges[1][0] != 0.5 {
		t.Errorf("unexpected ranges %v", ranges)
	}

	for _, bad := range []string{"kpx", "=1", "kpx=", "kpx=1,x"} {
		if _, _, err := parseGrid([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestRunThenExport(t *testing.T) {
	dir := t.TempDir()

	root := newRootCmd()
	root.SetArgs([]string{"run", "straight", "--data", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}

	runs, err := store.New(dir).List()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one stored run, got %v, %v", runs, err)
	}
	if !runs[0].Reached {
		t.Error("straight scenario should reach its goal")
	}

	out := filepath.Join(dir, "run.svg")
	root = newRootCmd()
	root.SetArgs([]string{"export-svg", runs[0].ID, "-o", out, "--data", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("export-svg: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Errorf("expected svg output, got %v", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "live", "compare", "tune", "list", "plot", "export-json", "export-svg", "presets"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("command %s not registered", name)
		}
	}
}
