package models

import (
	"math"
	"testing"

	"github.com/san-kum/odefit/internal/dynamo"
)

func TestLotkaVolterraFixedPoint(t *testing.T) {
	l := NewLotkaVolterra()
	p := dynamo.Params{1.0, 0.5, 1.0, 0.5}

	// Non-trivial fixed point at (gamma/delta, alpha/beta).
	x := dynamo.State{p[2] / p[3], p[0] / p[1]}
	dx := l.Derive(p, x, 0)

	if math.Abs(dx[0]) > 1e-10 || math.Abs(dx[1]) > 1e-10 {
		t.Errorf("expected fixed point, got derivative [%f, %f]", dx[0], dx[1])
	}
}

func TestLotkaVolterraPredatorDecay(t *testing.T) {
	l := NewLotkaVolterra()
	p := dynamo.Params{1.0, 0.5, 1.0, 0.5}

	// No prey: predators die off exponentially.
	dx := l.Derive(p, dynamo.State{0, 2.0}, 0)

	if dx[1] >= 0 {
		t.Errorf("predator population should shrink without prey, got %f", dx[1])
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range List() {
		m, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if m.StateDim() <= 0 || m.NumParams() <= 0 {
			t.Errorf("%s: degenerate dimensions", name)
		}
	}

	if _, err := New("lorenz96"); err == nil {
		t.Error("expected error for unregistered model")
	}
}
