package store

import (
	"encoding/json"
	"io"
	"os"

	"github.com/golang/geo/r2"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/robot"
	"github.com/san-kum/navsim/internal/sim"
)

type ExportData struct {
	Scenario    string             `json:"scenario"`
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Reached     bool               `json:"reached"`
	ArrivalTime float64            `json:"arrival_time"`
	Goals       []robot.Pose       `json:"goals"`
	Times       []float64          `json:"times"`
	Poses       []robot.Pose       `json:"poses"`
	Commands    []robot.Command    `json:"commands"`
	Modes       []nav.Mode         `json:"modes"`
	Planned     []r2.Point         `json:"planned"`
	Smoothed    []r2.Point         `json:"smoothed"`
	Metrics     map[string]float64 `json:"metrics"`
}

func goalPoses(cfg *config.Config) []robot.Pose {
	goals := make([]robot.Pose, len(cfg.Goals))
	for i, g := range cfg.Goals {
		goals[i] = g.Pose
	}
	return goals
}

func NewExportData(cfg *config.Config, plant sim.Plant, result *sim.Result) ExportData {
	tr := NewTrace(plant, result)
	return ExportData{
		Scenario:    cfg.Name,
		Model:       cfg.Model,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Sim.Dt,
		Duration:    cfg.Sim.Duration,
		Steps:       len(result.Times),
		Reached:     result.Reached(),
		ArrivalTime: result.ArrivalTime,
		Goals:       goalPoses(cfg),
		Times:       tr.Times,
		Poses:       tr.Poses,
		Commands:    tr.Commands,
		Modes:       tr.Modes,
		Planned:     result.Planned,
		Smoothed:    result.Smoothed,
		Metrics:     result.Metrics,
	}
}

// ExportJSON writes the run as indented JSON to w.
func ExportJSON(w io.Writer, cfg *config.Config, plant sim.Plant, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(cfg, plant, result))
}

func ExportJSONFile(path string, cfg *config.Config, plant sim.Plant, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, cfg, plant, result)
}

// Export writes a stored run as indented JSON to w.
func (s *Store) Export(w io.Writer, runID string) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) exportData(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	tr, err := s.LoadTrace(runID)
	if err != nil {
		return nil, err
	}
	paths, err := s.LoadPaths(runID)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		Scenario:    meta.Scenario,
		Model:       meta.Model,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Steps:       len(tr.Times),
		Reached:     meta.Reached,
		ArrivalTime: meta.ArrivalTime,
		Goals:       goalPoses(cfg),
		Times:       tr.Times,
		Poses:       tr.Poses,
		Commands:    tr.Commands,
		Modes:       tr.Modes,
		Planned:     paths.Planned,
		Smoothed:    paths.Smoothed,
		Metrics:     meta.Metrics,
	}, nil
}
