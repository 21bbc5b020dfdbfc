package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/odefit/internal/dynamo"
	"github.com/san-kum/odefit/internal/obs"
)

// SavePlot writes a PNG comparing observations (points) with the fitted
// trajectory (lines), one line/scatter pair per state dimension.
func SavePlot(path, title string, data *obs.Set, fitted *dynamo.Trajectory) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "state"
	p.Legend.Top = true

	colors := []color.RGBA{
		{R: 215, G: 58, B: 74, A: 255},
		{R: 42, G: 120, B: 200, A: 255},
		{R: 40, G: 160, B: 90, A: 255},
		{R: 180, G: 120, B: 30, A: 255},
	}

	for dim := 0; dim < data.Dim(); dim++ {
		c := colors[dim%len(colors)]

		obsPts := make(plotter.XYs, data.Len())
		for i := 0; i < data.Len(); i++ {
			t, s := data.At(i)
			obsPts[i] = plotter.XY{X: t, Y: s[dim]}
		}
		scatter, err := plotter.NewScatter(obsPts)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("x%d observed", dim), scatter)

		fitPts := make(plotter.XYs, fitted.Len())
		for i := 0; i < fitted.Len(); i++ {
			fitPts[i] = plotter.XY{X: fitted.Times[i], Y: fitted.States[i][dim]}
		}
		line, err := plotter.NewLine(fitPts)
		if err != nil {
			return err
		}
		line.Color = c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("x%d fitted", dim), line)
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
