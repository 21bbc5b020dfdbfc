package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/integrators"
)

// divergenceLimit is the state norm beyond which integration is treated as
// numerically diverged even when all components are still finite.
const divergenceLimit = 1e12

type Options struct {
	Integrator dynamo.Integrator
	Dt         float64
	Adaptive   bool
	Tolerance  float64
	MinDt      float64
}

func DefaultOptions() Options {
	return Options{
		Integrator: integrators.NewRK4(),
		Dt:         0.01,
		Tolerance:  1e-6,
		MinDt:      1e-8,
	}
}

func (o Options) withDefaults() Options {
	if o.Integrator == nil {
		o.Integrator = integrators.NewRK4()
	}
	if o.Dt <= 0 {
		o.Dt = 0.01
	}
	if o.Tolerance <= 0 {
		o.Tolerance = 1e-6
	}
	if o.MinDt <= 0 {
		o.MinDt = 1e-8
	}
	return o
}

// Simulate integrates model m under parameters p from initial state x0 at
// times[0], returning the state at each requested sample time. Sample times
// must be strictly increasing. NaN/Inf states and norm blow-ups abort the
// run with a *dynamo.SimulationError.
func Simulate(ctx context.Context, m dynamo.Model, p dynamo.Params, x0 dynamo.State, times []float64, opts Options) (*dynamo.Trajectory, error) {
	opts = opts.withDefaults()

	if len(p) != m.NumParams() {
		return nil, fmt.Errorf("sim: %d parameters for model wanting %d: %w", len(p), m.NumParams(), dynamo.ErrDimensionMismatch)
	}
	if len(x0) != m.StateDim() {
		return nil, fmt.Errorf("sim: initial state dim %d for model wanting %d: %w", len(x0), m.StateDim(), dynamo.ErrDimensionMismatch)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("sim: no sample times requested")
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("sim: sample times must be strictly increasing at index %d", i)
		}
	}
	if !p.IsValid() {
		return nil, &dynamo.SimulationError{Time: times[0], State: x0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}

	traj := &dynamo.Trajectory{
		Times:  make([]float64, 0, len(times)),
		States: make([]dynamo.State, 0, len(times)),
	}

	x := x0.Clone()
	t := times[0]
	step := 0
	h := opts.Dt

	traj.Times = append(traj.Times, t)
	traj.States = append(traj.States, x.Clone())

	for _, target := range times[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for t < target {
			dt := h
			if t+dt > target {
				dt = target - t
			}
			if dt < opts.MinDt {
				// Remaining gap below resolvable step; snap to target.
				t = target
				break
			}

			newX, taken, next, err := advance(m, p, x, t, dt, opts)
			if err != nil {
				return nil, &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: err}
			}
			x = newX
			t += taken
			step++
			// Carry the suggested step forward, clamped to [MinDt, Dt].
			h = math.Min(math.Max(next, opts.MinDt), opts.Dt)

			if !x.IsValid() {
				return nil, &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
			}
			if x.Norm() > divergenceLimit {
				return nil, &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: dynamo.ErrUnstable}
			}
		}

		traj.Times = append(traj.Times, target)
		traj.States = append(traj.States, x.Clone())
	}

	return traj, nil
}

// advance takes one accepted step from (x, t) and reports the step actually
// taken plus the suggested size for the next one. Rejected adaptive steps
// are retried at the integrator's reduced suggestion until accepted or the
// step falls below MinDt.
func advance(m dynamo.Model, p dynamo.Params, x dynamo.State, t, dt float64, opts Options) (dynamo.State, float64, float64, error) {
	if opts.Adaptive {
		if ai, ok := opts.Integrator.(dynamo.AdaptiveIntegrator); ok {
			for {
				newX, suggested, err := ai.StepAdaptive(m, p, x, t, dt, opts.Tolerance)
				if errors.Is(err, dynamo.ErrStepRejected) {
					if suggested < opts.MinDt {
						return nil, 0, 0, dynamo.ErrStepTooSmall
					}
					dt = suggested
					continue
				}
				if err != nil {
					return nil, 0, 0, err
				}
				return newX, dt, suggested, nil
			}
		}
	}
	return opts.Integrator.Step(m, p, x, t, dt), dt, dt, nil
}
