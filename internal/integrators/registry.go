package integrators

import (
	"fmt"

	"github.com/san-kum/odefit/internal/dynamo"
)

// New returns an integrator by name: "euler", "rk4", or "rk45".
func New(name string) (dynamo.Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4", "":
		return NewRK4(), nil
	case "rk45":
		return NewRK45(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q", name)
	}
}
