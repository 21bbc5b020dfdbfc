package models

import "github.com/san-kum/odefit/internal/dynamo"

// DampedOscillator is x'' = -k x - c x' with unknown parameters
// p = [c, k] (damping, stiffness). State is [position, velocity].
type DampedOscillator struct{}

func NewDampedOscillator() *DampedOscillator {
	return &DampedOscillator{}
}

func (o *DampedOscillator) StateDim() int  { return 2 }
func (o *DampedOscillator) NumParams() int { return 2 }

func (o *DampedOscillator) Derive(p dynamo.Params, x dynamo.State, t float64) dynamo.State {
	pos := x[0]
	vel := x[1]
	return dynamo.State{vel, -p[1]*pos - p[0]*vel}
}
