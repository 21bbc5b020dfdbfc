package integrators

import "github.com/san-kum/odefit/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(m dynamo.Model, p dynamo.Params, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := m.Derive(p, x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
