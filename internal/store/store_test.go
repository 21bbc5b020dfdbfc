package store

import (
	"testing"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/fit"
	"github.com/san-kum/odefit/internal/obs"
)

func sampleData(t *testing.T) *obs.Set {
	t.Helper()
	data, err := obs.New(
		[]float64{0, 0.5, 1.0},
		[]dynamo.State{{1, 0}, {0.8, -0.4}, {0.5, -0.6}},
	)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSaveAndLoadRun(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	data := sampleData(t)
	traj := &dynamo.Trajectory{
		Times:  []float64{0, 0.5, 1.0},
		States: []dynamo.State{{1, 0}, {0.79, -0.41}, {0.52, -0.58}},
	}
	result := fit.FitResult{
		Params:     dynamo.Params{1.0, 2.0},
		Loss:       0.003,
		Horizon:    1.0,
		Stage:      2,
		Iterations: 88,
	}

	runID, err := s.Save("oscillator", 42, []float64{0.5, 1.0}, data, traj, result)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	meta, err := s.LoadMetadata(runID)
	if err != nil {
		t.Fatalf("LoadMetadata: %v", err)
	}
	if meta.Model != "oscillator" || meta.Loss != 0.003 {
		t.Errorf("metadata round-trip mismatch: %+v", meta)
	}
	if len(meta.Parameters) != 2 || meta.Parameters[1] != 2.0 {
		t.Errorf("parameters not preserved: %v", meta.Parameters)
	}

	loaded, err := s.LoadObservations(runID)
	if err != nil {
		t.Fatalf("LoadObservations: %v", err)
	}
	if loaded.Len() != data.Len() || loaded.Dim() != data.Dim() {
		t.Errorf("observations round-trip mismatch: %d/%d", loaded.Len(), loaded.Dim())
	}
	_, first := loaded.At(0)
	if first[0] != 1 {
		t.Errorf("observation value corrupted: %f", first[0])
	}

	runs, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0] != runID {
		t.Errorf("List = %v, want [%s]", runs, runID)
	}
}

func TestSaveWithoutFittedTrajectory(t *testing.T) {
	s := New(t.TempDir())
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}

	result := fit.FitResult{Params: dynamo.Params{1.0, 2.0}, Loss: 0.01, Horizon: 1.0}

	runID, err := s.Save("oscillator", 7, []float64{1.0}, sampleData(t), nil, result)
	if err != nil {
		t.Fatalf("Save without fit: %v", err)
	}

	if _, err := s.LoadMetadata(runID); err != nil {
		t.Errorf("LoadMetadata: %v", err)
	}
	if _, err := s.LoadObservations(runID); err != nil {
		t.Errorf("LoadObservations: %v", err)
	}
}

func TestListEmptyStore(t *testing.T) {
	s := New(t.TempDir() + "/missing")

	runs, err := s.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if runs != nil {
		t.Errorf("expected nil, got %v", runs)
	}
}
