package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Params []float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	copy(c, p)
	return c
}

func (p Params) IsValid() bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Model is a parametric ODE system dx/dt = f(p, x, t). Implementations
// must be pure: the same (p, x, t) always yields the same derivative.
type Model interface {
	Derive(p Params, x State, t float64) State
	StateDim() int
	NumParams() int
}

type Integrator interface {
	Step(m Model, p Params, x State, t float64, dt float64) State
}

// AdaptiveIntegrator estimates the local error of each step and suggests
// the next step size. A step over tolerance returns ErrStepRejected
// together with a reduced suggestion to retry at.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(m Model, p Params, x State, t, dt, tol float64) (State, float64, error)
}

// Trajectory holds a simulated state sequence sampled at Times.
// len(States) == len(Times); States[i] is the state at Times[i].
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Dim returns the state dimension, or 0 for an empty trajectory.
func (tr *Trajectory) Dim() int {
	if len(tr.States) == 0 {
		return 0
	}
	return len(tr.States[0])
}

// Component extracts one state dimension as a flat series.
func (tr *Trajectory) Component(dim int) []float64 {
	out := make([]float64, len(tr.States))
	for i, s := range tr.States {
		out[i] = s[dim]
	}
	return out
}
