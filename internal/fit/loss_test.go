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

var (
	truthParams = dynamo.Params{1.0, 2.0}
	initState   = dynamo.State{1.0, 0.0}
)

// brokenModel fails every simulation with NaN derivatives.
type brokenModel struct{}

func (b *brokenModel) Derive(p dynamo.Params, x dynamo.State, t float64) dynamo.State {
	return dynamo.State{math.NaN(), math.NaN()}
}

func (b *brokenModel) StateDim() int  { return 2 }
func (b *brokenModel) NumParams() int { return 2 }

func cleanObservations(t *testing.T, points int, span float64) *obs.Set {
	t.Helper()
	data, err := obs.Synthesize(context.Background(), models.NewDampedOscillator(), truthParams, initState,
		obs.SynthConfig{Points: points, Span: span, Seed: 3}, sim.DefaultOptions())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	return data
}

func newEvaluator(t *testing.T, data *obs.Set) *LossEvaluator {
	t.Helper()
	ev, err := NewLossEvaluator(models.NewDampedOscillator(), data, initState, sim.DefaultOptions())
	if err != nil {
		t.Fatalf("NewLossEvaluator: %v", err)
	}
	return ev
}

func TestLossZeroAtTruth(t *testing.T) {
	data := cleanObservations(t, 50, 10)
	ev := newEvaluator(t, data)

	loss, traj, err := ev.Evaluate(context.Background(), truthParams, 10)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Observations were generated by the same model and integrator with no
	// noise, so the discrepancy is exactly zero.
	if loss != 0 {
		t.Errorf("expected zero loss at true parameters, got %g", loss)
	}
	if traj.Len() != data.Len() {
		t.Errorf("trajectory has %d samples, observations %d", traj.Len(), data.Len())
	}
}

func TestLossDeterministic(t *testing.T) {
	ev := newEvaluator(t, cleanObservations(t, 50, 10))
	p := dynamo.Params{3.0, 4.0}

	a, _, err := ev.Evaluate(context.Background(), p, 10)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := ev.Evaluate(context.Background(), p, 10)
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Errorf("loss not deterministic: %g vs %g", a, b)
	}
}

func TestLossNonNegativeAndSensitive(t *testing.T) {
	ev := newEvaluator(t, cleanObservations(t, 50, 10))

	wrong, _, err := ev.Evaluate(context.Background(), dynamo.Params{5.0, 5.0}, 10)
	if err != nil {
		t.Fatal(err)
	}

	if wrong < 0 {
		t.Errorf("loss must be non-negative, got %g", wrong)
	}
	if wrong == 0 {
		t.Error("wrong parameters should not score zero loss")
	}
}

func TestLossHorizonRestricts(t *testing.T) {
	ev := newEvaluator(t, cleanObservations(t, 50, 10))
	p := dynamo.Params{5.0, 5.0}

	short, _, err := ev.Evaluate(context.Background(), p, 2)
	if err != nil {
		t.Fatal(err)
	}
	full, _, err := ev.Evaluate(context.Background(), p, 10)
	if err != nil {
		t.Fatal(err)
	}

	// Sum of squares over a superset of the sample times can only grow.
	if full < short {
		t.Errorf("loss over full horizon (%g) below short horizon (%g)", full, short)
	}
}

func TestLossSimulationErrorPropagates(t *testing.T) {
	data := cleanObservations(t, 20, 10)
	ev, err := NewLossEvaluator(&brokenModel{}, data, initState, sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = ev.Evaluate(context.Background(), dynamo.Params{1, 1}, 10)

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected *dynamo.SimulationError, got %v", err)
	}
}

func TestLossEmptyRestriction(t *testing.T) {
	ev := newEvaluator(t, cleanObservations(t, 20, 10))

	_, _, err := ev.Evaluate(context.Background(), truthParams, -5)
	if !errors.Is(err, obs.ErrEmptyRestriction) {
		t.Errorf("expected ErrEmptyRestriction, got %v", err)
	}
}

func TestGradientPointsDownhill(t *testing.T) {
	ev := newEvaluator(t, cleanObservations(t, 50, 10))

	// Stiffness above truth: the partial derivative w.r.t. stiffness
	// should be positive (increasing it further increases the loss).
	grad, err := gradient(context.Background(), ev, dynamo.Params{1.0, 3.0}, 10, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if grad[1] <= 0 {
		t.Errorf("expected positive stiffness gradient above truth, got %g", grad[1])
	}

	for i, g := range grad {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			t.Errorf("grad[%d] = %v, want finite", i, g)
		}
	}
}
