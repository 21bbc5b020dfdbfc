package fit

import (
	"context"
	"fmt"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/obs"
	"github.com/san-kum/odefit/internal/sim"
)

// LossEvaluator scores a parameter vector against the observations up to a
// horizon: it simulates the model at exactly the restricted observation
// times and sums squared elementwise differences.
type LossEvaluator struct {
	model   dynamo.Model
	data    *obs.Set
	x0      dynamo.State
	simOpts sim.Options
}

func NewLossEvaluator(m dynamo.Model, data *obs.Set, x0 dynamo.State, opts sim.Options) (*LossEvaluator, error) {
	if data.Dim() != m.StateDim() {
		return nil, fmt.Errorf("fit: observation dim %d, model state dim %d: %w", data.Dim(), m.StateDim(), dynamo.ErrDimensionMismatch)
	}
	if len(x0) != m.StateDim() {
		return nil, fmt.Errorf("fit: initial state dim %d, model state dim %d: %w", len(x0), m.StateDim(), dynamo.ErrDimensionMismatch)
	}
	return &LossEvaluator{model: m, data: data, x0: x0.Clone(), simOpts: opts}, nil
}

// Evaluate returns the sum-of-squares loss over observations with time
// <= horizon, plus the simulated trajectory for diagnostics. Integration
// failures propagate as *dynamo.SimulationError rather than being scored
// as infinite loss, so callers can tell bad parameters from a broken
// integration.
func (e *LossEvaluator) Evaluate(ctx context.Context, p dynamo.Params, horizon float64) (float64, *dynamo.Trajectory, error) {
	window, err := e.data.Restrict(horizon)
	if err != nil {
		return 0, nil, err
	}

	traj, err := sim.Simulate(ctx, e.model, p, e.x0, window.Times(), e.simOpts)
	if err != nil {
		return 0, nil, err
	}

	loss := 0.0
	for i := 0; i < window.Len(); i++ {
		_, observed := window.At(i)
		simulated := traj.States[i]
		for j := range observed {
			d := simulated[j] - observed[j]
			loss += d * d
		}
	}

	return loss, traj, nil
}

// Observations returns the full observation set the evaluator scores
// against.
func (e *LossEvaluator) Observations() *obs.Set { return e.data }
