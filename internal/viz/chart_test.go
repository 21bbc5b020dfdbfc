package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/obs"
)

func TestLossChart(t *testing.T) {
	if LossChart(nil) != "" {
		t.Error("expected empty chart for no stages")
	}
	if LossChart([]float64{3.0}) != "" {
		t.Error("expected empty chart for a single stage")
	}

	chart := LossChart([]float64{9.0, 2.5, 0.4})
	if chart == "" {
		t.Fatal("expected a rendered chart for three stages")
	}
	if !strings.Contains(chart, "best loss per stage") {
		t.Errorf("chart missing caption:\n%s", chart)
	}
}

func TestTrajectoryChart(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	states := []dynamo.State{{1, 0}, {0.5, -0.8}, {-0.4, -0.9}, {-0.9, 0.1}}

	data, err := obs.New(times, states)
	if err != nil {
		t.Fatal(err)
	}
	fitted := &dynamo.Trajectory{Times: times, States: states}

	chart := TrajectoryChart(data, fitted, 0)
	if !strings.Contains(chart, "observed") || !strings.Contains(chart, "fitted") {
		t.Errorf("chart missing legends:\n%s", chart)
	}
}
