package models

import "github.com/san-kum/odefit/internal/dynamo"

// VanDerPol is x'' = mu (1 - x^2) x' - x with unknown parameter p = [mu].
// Strongly nonlinear limit cycle; stiff for large mu.
type VanDerPol struct{}

func NewVanDerPol() *VanDerPol {
	return &VanDerPol{}
}

func (v *VanDerPol) StateDim() int  { return 2 }
func (v *VanDerPol) NumParams() int { return 1 }

func (v *VanDerPol) Derive(p dynamo.Params, x dynamo.State, t float64) dynamo.State {
	pos := x[0]
	vel := x[1]
	return dynamo.State{vel, p[0]*(1-pos*pos)*vel - pos}
}
