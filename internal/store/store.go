package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/fit"
	"github.com/san-kum/odefit/internal/obs"
)

// Store persists estimation runs: one directory per run holding
// metadata.json, observations.csv, and fit.csv.
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
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       int64     `json:"seed"`
	Schedule   []float64 `json:"schedule"`
	Parameters []float64 `json:"parameters"`
	Loss       float64   `json:"loss"`
	Horizon    float64   `json:"horizon"`
	Iterations int       `json:"iterations"`
}

// Save writes one estimation run and returns its run ID.
func (s *Store) Save(model string, seed int64, schedule []float64, observations *obs.Set, fitted *dynamo.Trajectory, result fit.FitResult) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      model,
		Timestamp:  time.Now(),
		Seed:       seed,
		Schedule:   schedule,
		Parameters: result.Params,
		Loss:       result.Loss,
		Horizon:    result.Horizon,
		Iterations: result.Iterations,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := WriteObservations(filepath.Join(runDir, "observations.csv"), observations); err != nil {
		return "", err
	}
	if fitted != nil {
		if err := writeTrajectory(filepath.Join(runDir, "fit.csv"), fitted); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns the run IDs present in the store, newest last.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []string
	for _, e := range entries {
		if e.IsDir() {
			runs = append(runs, e.Name())
		}
	}
	return runs, nil
}

// LoadMetadata reads a run's metadata by ID.
func (s *Store) LoadMetadata(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadObservations reads a run's observation set back from CSV.
func (s *Store) LoadObservations(runID string) (*obs.Set, error) {
	return ReadObservations(filepath.Join(s.baseDir, runID, "observations.csv"))
}

// WriteObservations writes an observation set as (time, state...) CSV.
func WriteObservations(path string, data *obs.Set) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := make([]string, 1+data.Dim())
	header[0] = "time"
	for j := 0; j < data.Dim(); j++ {
		header[j+1] = fmt.Sprintf("x%d", j)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < data.Len(); i++ {
		t, state := data.At(i)
		row := make([]string, 1+len(state))
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, v := range state {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeTrajectory(path string, traj *dynamo.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := make([]string, 1+traj.Dim())
	header[0] = "time"
	for j := 0; j < traj.Dim(); j++ {
		header[j+1] = fmt.Sprintf("x%d", j)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < traj.Len(); i++ {
		row := make([]string, 1+len(traj.States[i]))
		row[0] = strconv.FormatFloat(traj.Times[i], 'g', -1, 64)
		for j, v := range traj.States[i] {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// ReadObservations parses a (time, state...) CSV into an observation set.
func ReadObservations(path string) (*obs.Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("store: %s has no data rows", path)
	}

	var times []float64
	var states []dynamo.State
	for _, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("store: malformed row %v", row)
		}
		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, err
		}
		state := make(dynamo.State, len(row)-1)
		for j, cell := range row[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, err
			}
			state[j] = v
		}
		times = append(times, t)
		states = append(states, state)
	}

	return obs.New(times, states)
}
