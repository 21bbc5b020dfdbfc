package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/obs"
)

// TrajectoryChart renders one state dimension of the observations against
// the fitted trajectory as an ASCII line chart.
func TrajectoryChart(data *obs.Set, fitted *dynamo.Trajectory, dim int) string {
	series := [][]float64{data.Component(dim), fitted.Component(dim)}
	return asciigraph.PlotMany(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends("observed", "fitted"),
		asciigraph.Caption(fmt.Sprintf("state x%d: observed vs fitted", dim)),
	)
}

// LossChart renders per-stage best losses.
func LossChart(losses []float64) string {
	if len(losses) < 2 {
		return ""
	}
	return asciigraph.Plot(losses,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Caption("best loss per stage"),
	)
}
