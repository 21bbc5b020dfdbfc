package fit

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/models"
	"github.com/san-kum/odefit/internal/obs"
	"github.com/san-kum/odefit/internal/sim"
)

func newDriver(t *testing.T, data *obs.Set, cfg Config) *Driver {
	t.Helper()
	d, err := NewDriver(models.NewDampedOscillator(), data, initState, cfg, sim.DefaultOptions())
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d
}

func TestScheduleValidation(t *testing.T) {
	d := newDriver(t, cleanObservations(t, 50, 10), Config{})

	cases := []struct {
		name     string
		schedule []float64
	}{
		{"empty", nil},
		{"non-increasing", []float64{2, 2, 5}},
		{"decreasing", []float64{5, 2}},
		{"beyond observations", []float64{5, 20}},
	}

	for _, tc := range cases {
		_, err := d.Estimate(context.Background(), dynamo.Params{1, 1}, tc.schedule)
		if !errors.Is(err, ErrInvalidSchedule) {
			t.Errorf("%s: expected ErrInvalidSchedule, got %v", tc.name, err)
		}
		if d.Phase() != PhaseFailed {
			t.Errorf("%s: expected PhaseFailed, got %s", tc.name, d.Phase())
		}
	}
}

func TestScheduleBeforeFirstObservation(t *testing.T) {
	// Observations starting at t=1: a horizon of 0.5 covers nothing.
	times := []float64{1, 2, 3}
	states := []dynamo.State{{1, 0}, {0.5, -0.3}, {0.2, -0.1}}
	data, err := obs.New(times, states)
	if err != nil {
		t.Fatal(err)
	}

	d := newDriver(t, data, Config{})
	_, err = d.Estimate(context.Background(), dynamo.Params{1, 1}, []float64{0.5, 3})
	if !errors.Is(err, obs.ErrEmptyRestriction) {
		t.Errorf("expected ErrEmptyRestriction, got %v", err)
	}
}

func TestDriverPhases(t *testing.T) {
	d := newDriver(t, cleanObservations(t, 50, 10), Config{MaxIterations: 5})

	if d.Phase() != PhasePending {
		t.Errorf("fresh driver should be pending, got %s", d.Phase())
	}

	_, err := d.Estimate(context.Background(), dynamo.Params{1.5, 2.5}, []float64{5, 10})
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if d.Phase() != PhaseConverged {
		t.Errorf("expected PhaseConverged, got %s", d.Phase())
	}
}

func TestDriverFailsOnBrokenModel(t *testing.T) {
	data := cleanObservations(t, 30, 10)
	d, err := NewDriver(&brokenModel{}, data, initState, Config{MaxIterations: 3}, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Estimate(context.Background(), dynamo.Params{1, 1}, []float64{5, 10})

	var stageErr *StageFitError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected *StageFitError, got %v", err)
	}
	if stageErr.Stage != 0 {
		t.Errorf("failure should name stage 0, got %d", stageErr.Stage)
	}
	if d.Phase() != PhaseFailed {
		t.Errorf("expected PhaseFailed, got %s", d.Phase())
	}
}

func TestDegenerateSingleHorizon(t *testing.T) {
	data := cleanObservations(t, 50, 10)
	d := newDriver(t, data, Config{MaxIterations: 20})

	result, err := d.Estimate(context.Background(), dynamo.Params{1.2, 2.2}, []float64{data.MaxTime()})
	if err != nil {
		t.Fatalf("one-shot schedule must be accepted: %v", err)
	}
	if result.Stage != 0 {
		t.Errorf("expected single stage, got stage %d", result.Stage)
	}
	if d.Phase() != PhaseConverged {
		t.Errorf("expected PhaseConverged, got %s", d.Phase())
	}
}

func TestWarmStartChaining(t *testing.T) {
	d := newDriver(t, cleanObservations(t, 60, 12), Config{MaxIterations: 30, StepSize: 0.01, Optimizer: "adam"})

	var stages []FitResult
	d.OnStage = func(r FitResult) { stages = append(stages, r) }

	_, err := d.Estimate(context.Background(), dynamo.Params{2, 3}, []float64{3, 6, 12})
	if err != nil {
		t.Fatal(err)
	}

	if len(stages) != 3 {
		t.Fatalf("expected 3 stage reports, got %d", len(stages))
	}
	for i, r := range stages {
		if r.Stage != i {
			t.Errorf("stage report %d has index %d", i, r.Stage)
		}
	}
	if stages[0].Horizon != 3 || stages[2].Horizon != 12 {
		t.Errorf("horizons not forwarded in order: %v", []float64{stages[0].Horizon, stages[1].Horizon, stages[2].Horizon})
	}
}

func TestCancellationKeepsPartialResult(t *testing.T) {
	d := newDriver(t, cleanObservations(t, 60, 12), Config{MaxIterations: 20})

	ctx, cancel := context.WithCancel(context.Background())
	d.OnStage = func(FitResult) { cancel() }

	result, err := d.Estimate(ctx, dynamo.Params{1.5, 2.5}, []float64{3, 6, 12})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The first stage completed before cancellation; its result survives.
	if result.Params == nil {
		t.Fatal("partial result discarded on cancellation")
	}
	if result.Horizon != 3 {
		t.Errorf("partial result should be stage 0 (horizon 3), got horizon %f", result.Horizon)
	}
}

func TestEstimateRecoversTrueParameters(t *testing.T) {
	if testing.Short() {
		t.Skip("full estimation run")
	}

	data, err := obs.Synthesize(context.Background(), models.NewDampedOscillator(), truthParams, initState,
		obs.SynthConfig{Points: 100, Span: 30, Noise: 0.002, Seed: 11}, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	cfg := Config{MaxIterations: 600, StepSize: 0.05, Optimizer: "adam"}
	result, err := Estimate(context.Background(), models.NewDampedOscillator(), data, initState,
		dynamo.Params{5.0, 5.0}, []float64{10, 20, 30}, cfg, sim.DefaultOptions())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}

	for i, want := range truthParams {
		if got := result.Params[i]; math.Abs(got-want) > 0.05 {
			t.Errorf("param %d = %.4f, want %.4f within 0.05", i, got, want)
		}
	}
	if result.Horizon != 30 {
		t.Errorf("final result horizon = %f, want full span 30", result.Horizon)
	}
}

func TestCurriculumNoWorseThanOneShot(t *testing.T) {
	if testing.Short() {
		t.Skip("full estimation run")
	}

	data := cleanObservations(t, 100, 30)
	guess := dynamo.Params{5.0, 5.0}
	cfg := Config{MaxIterations: 400, StepSize: 0.05, Optimizer: "adam"}

	curriculum, err := Estimate(context.Background(), models.NewDampedOscillator(), data, initState,
		guess, []float64{10, 20, 30}, cfg, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	oneShot, err := Estimate(context.Background(), models.NewDampedOscillator(), data, initState,
		guess, []float64{30}, cfg, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	// The curriculum attacks the same full-horizon problem with a warm
	// start from easier windows; it must not end up in a worse minimum.
	if curriculum.Loss > oneShot.Loss*1.05+1e-9 {
		t.Errorf("curriculum loss %g worse than one-shot loss %g", curriculum.Loss, oneShot.Loss)
	}
}
