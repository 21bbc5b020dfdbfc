package dynamo

import (
	"math"
	"testing"
)

func TestStateIsValid(t *testing.T) {
	if !(State{1, 2, 3}).IsValid() {
		t.Error("finite state should be valid")
	}
	if (State{1, math.NaN()}).IsValid() {
		t.Error("NaN state should be invalid")
	}
	if (State{math.Inf(1), 0}).IsValid() {
		t.Error("Inf state should be invalid")
	}
}

func TestParamsClone(t *testing.T) {
	p := Params{1.0, 2.0}
	c := p.Clone()
	c[0] = 99

	if p[0] != 1.0 {
		t.Errorf("clone aliases original: p[0] = %f", p[0])
	}
}

func TestTrajectoryComponent(t *testing.T) {
	tr := &Trajectory{
		Times:  []float64{0, 1, 2},
		States: []State{{1, 10}, {2, 20}, {3, 30}},
	}

	if tr.Len() != 3 {
		t.Fatalf("expected len 3, got %d", tr.Len())
	}
	if tr.Dim() != 2 {
		t.Fatalf("expected dim 2, got %d", tr.Dim())
	}

	second := tr.Component(1)
	for i, want := range []float64{10, 20, 30} {
		if second[i] != want {
			t.Errorf("component[%d] = %f, want %f", i, second[i], want)
		}
	}
}
