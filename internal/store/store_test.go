package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/models"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Times: []float64{0, 0.1, 0.2},
		States: []sim.State{
			{0, 0, 0},
			{0.02, 0, 0.01},
			{0.04, 0.001, 0.02},
		},
		Controls: []sim.Control{
			{0.2, 0.1},
			{0.2, 0.1},
		},
		Modes:       []nav.Mode{nav.ModeIdle, nav.ModeTrack, nav.ModeTrack},
		Metrics:     map[string]float64{"path_length": 0.04},
		NavResults:  []bool{true},
		ArrivalTime: 0.2,
		Planned:     []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}},
		Smoothed:    []r2.Point{{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 1, Y: 0}},
		StepsTaken:  2,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.GetPreset("blocked")
	runID, err := st.Save(cfg, models.NewUnicycle(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scenario != "blocked" || meta.Model != config.DefaultModel {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if !meta.Reached || meta.ArrivalTime != 0.2 || meta.Steps != 2 {
		t.Errorf("unexpected outcome %+v", meta)
	}
	if meta.Metrics["path_length"] != 0.04 {
		t.Errorf("expected path_length 0.04, got %f", meta.Metrics["path_length"])
	}

	loaded, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if loaded.Name != "blocked" || len(loaded.MapChanges) != 1 {
		t.Errorf("config not preserved: %+v", loaded)
	}

	paths, err := st.LoadPaths(runID)
	if err != nil {
		t.Fatalf("load paths failed: %v", err)
	}
	if len(paths.Planned) != 2 || len(paths.Smoothed) != 3 {
		t.Errorf("unexpected paths %+v", paths)
	}
}

func TestStoreTrace(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.DefaultConfig(), models.NewUnicycle(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	tr, err := st.LoadTrace(runID)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if len(tr.Times) != 3 || len(tr.Poses) != 3 || len(tr.Commands) != 3 || len(tr.Modes) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tr.Times))
	}
	if tr.Poses[2].X != 0.04 || tr.Poses[2].Theta != 0.02 {
		t.Errorf("unexpected pose %v", tr.Poses[2])
	}
	if tr.Commands[0].V != 0.2 || tr.Commands[2].V != 0 {
		t.Errorf("unexpected commands %v", tr.Commands)
	}
	if tr.Modes[0] != nav.ModeIdle || tr.Modes[1] != nav.ModeTrack {
		t.Errorf("unexpected modes %v", tr.Modes)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); errors.Cause(err) != ErrRunNotFound {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTrace("nope"); errors.Cause(err) != ErrRunNotFound {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadConfig("nope"); errors.Cause(err) != ErrRunNotFound {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreBadTrace(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := os.MkdirAll(filepath.Join(dir, "broken"), 0755); err != nil {
		t.Fatal(err)
	}
	data := "time,x,y,theta,v,omega,mode\n0,0,0,0,0,0,FLYING\n"
	if err := os.WriteFile(filepath.Join(dir, "broken", statesFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := st.LoadTrace("broken"); errors.Cause(err) != ErrBadTrace {
		t.Errorf("expected ErrBadTrace, got %v", err)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(config.GetPreset("straight"), models.NewUnicycle(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(config.GetPreset("detour"), models.NewUnicycle(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected runs in save order, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runID, err := st.Save(config.DefaultConfig(), models.NewUnicycle(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, statesFile, configFile, pathsFile} {
		if _, err := os.Stat(filepath.Join(dir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, config.GetPreset("straight"), models.NewUnicycle(), testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data struct {
		Scenario string   `json:"scenario"`
		Steps    int      `json:"steps"`
		Reached  bool     `json:"reached"`
		Modes    []string `json:"modes"`
		Poses    []struct {
			X float64 `json:"x"`
		} `json:"poses"`
		Goals []struct {
			X float64 `json:"x"`
		} `json:"goals"`
	}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Scenario != "straight" || data.Steps != 3 || !data.Reached {
		t.Errorf("unexpected export %+v", data)
	}
	if len(data.Modes) != 3 || data.Modes[1] != "TRACK" {
		t.Errorf("modes should be names, got %v", data.Modes)
	}
	if len(data.Poses) != 3 || data.Poses[1].X != 0.02 {
		t.Errorf("unexpected poses %+v", data.Poses)
	}
	if len(data.Goals) != 1 || data.Goals[0].X != 4 {
		t.Errorf("unexpected goals %+v", data.Goals)
	}
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSONFile(path, config.DefaultConfig(), models.NewUnicycle(), testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty file, got %v", err)
	}
}

func TestStoreExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(config.GetPreset("detour"), models.NewUnicycle(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.Export(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Scenario != "detour" || data.Steps != 3 || len(data.Smoothed) != 3 {
		t.Errorf("unexpected export %+v", data)
	}
	if len(data.Modes) != 3 || data.Modes[2] != nav.ModeTrack {
		t.Errorf("unexpected modes %v", data.Modes)
	}

	if err := st.Export(&buf, "missing"); errors.Cause(err) != ErrRunNotFound {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}
