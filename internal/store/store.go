package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	configFile   = "config.yaml"
	pathsFile    = "paths.json"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrBadTrace    = errors.New("malformed trace")
)

var traceHeader = []string{"time", "x", "y", "theta", "v", "omega", "mode"}

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Goals       int                `json:"goals"`
	Reached     bool               `json:"reached"`
	ArrivalTime float64            `json:"arrival_time"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Trace is the recorded motion of a run.
type Trace struct {
	Times    []float64
	Poses    []robot.Pose
	Commands []robot.Command
	Modes    []nav.Mode
}

// Paths are the last planned and smoothed paths of a run.
type Paths struct {
	Planned  []r2.Point `json:"planned"`
	Smoothed []r2.Point `json:"smoothed"`
}

// Save writes the scenario, metadata, trace and paths of a run and returns its ID.
func (s *Store) Save(cfg *config.Config, plant sim.Plant, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    cfg.Name,
		Model:       cfg.Model,
		Integrator:  cfg.Integrator,
		Timestamp:   time.Now(),
		Dt:          cfg.Sim.Dt,
		Duration:    cfg.Sim.Duration,
		Steps:       result.StepsTaken,
		Goals:       len(cfg.Goals),
		Reached:     result.Reached(),
		ArrivalTime: result.ArrivalTime,
		Metrics:     result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", errors.Wrap(err, "writing metadata")
	}
	if err := writeJSON(filepath.Join(runDir, pathsFile), Paths{Planned: result.Planned, Smoothed: result.Smoothed}); err != nil {
		return "", errors.Wrap(err, "writing paths")
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", errors.Wrap(err, "writing config")
	}
	if err := writeTrace(filepath.Join(runDir, statesFile), NewTrace(plant, result)); err != nil {
		return "", errors.Wrap(err, "writing states")
	}
	return runID, nil
}

// NewTrace converts a result into poses and commands. The final sample has no command
// and repeats a stop.
func NewTrace(plant sim.Plant, result *sim.Result) *Trace {
	tr := &Trace{
		Times:    result.Times,
		Poses:    result.Poses(plant),
		Commands: make([]robot.Command, len(result.States)),
		Modes:    result.Modes,
	}
	for i, u := range result.Controls {
		if i < len(tr.Commands) && len(u) >= 2 {
			tr.Commands[i] = robot.Command{V: u[0], Omega: u[1]}
		}
	}
	return tr
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(ErrRunNotFound, path)
		}
		return err
	}
	return json.Unmarshal(data, v)
}

func writeTrace(path string, tr *Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(traceHeader); err != nil {
		return err
	}
	for i, t := range tr.Times {
		p, c := tr.Poses[i], tr.Commands[i]
		mode := nav.ModeIdle
		if i < len(tr.Modes) {
			mode = tr.Modes[i]
		}
		row := []string{
			formatFloat(t),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Theta),
			formatFloat(c.V),
			formatFloat(c.Omega),
			mode.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns the stored runs, oldest first. Directories without readable metadata are
// skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var meta RunMetadata
		if err := readJSON(filepath.Join(s.baseDir, entry.Name(), metadataFile), &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig returns the scenario a run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	path := filepath.Join(s.baseDir, runID, configFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrap(ErrRunNotFound, runID)
	}
	return config.Load(path)
}

func (s *Store) LoadPaths(runID string) (*Paths, error) {
	var p Paths
	if err := readJSON(filepath.Join(s.baseDir, runID, pathsFile), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) LoadTrace(runID string) (*Trace, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(traceHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(ErrBadTrace, err.Error())
	}

	tr := &Trace{}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		var v [6]float64
		for j := range v {
			if v[j], err = strconv.ParseFloat(rec[j], 64); err != nil {
				return nil, errors.Wrapf(ErrBadTrace, "row %d: %v", i, err)
			}
		}
		mode, err := nav.ParseMode(rec[6])
		if err != nil {
			return nil, errors.Wrapf(ErrBadTrace, "row %d: %v", i, err)
		}
		tr.Times = append(tr.Times, v[0])
		tr.Poses = append(tr.Poses, robot.Pose{X: v[1], Y: v[2], Theta: v[3]})
		tr.Commands = append(tr.Commands, robot.Command{V: v[4], Omega: v[5]})
		tr.Modes = append(tr.Modes, mode)
	}
	return tr, nil
}
