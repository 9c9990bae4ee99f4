// Package plot renders the descriptive figures of the survey analysis
// as PNG files: age histogram, categorical count bars, boxplots split
// by outcome, the correlation heat map, and the logit-linearity
// scatter. Rendering consumes the diagnostic outputs; nothing here
// computes statistics.
package plot

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/meridian-health/lungsurvey/internal/diagnostic"
)

const (
	defaultWidth  = 6 * vg.Inch
	defaultHeight = 4 * vg.Inch
)

// Histogram renders an equal-width histogram of vals.
func Histogram(vals []float64, bins int, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return eris.Wrap(err, "plot: build histogram")
	}
	p.Add(h)

	return eris.Wrapf(p.Save(defaultWidth, defaultHeight, path), "plot: save %s", path)
}

// CountBar renders a bar chart of per-label counts.
func CountBar(labels []string, counts []float64, title, path string) error {
	if len(labels) != len(counts) {
		return eris.Errorf("plot: %d labels for %d counts", len(labels), len(counts))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "count"

	bars, err := plotter.NewBarChart(plotter.Values(counts), vg.Points(30))
	if err != nil {
		return eris.Wrap(err, "plot: build bar chart")
	}
	p.Add(bars)
	p.NominalX(labels...)

	return eris.Wrapf(p.Save(defaultWidth, defaultHeight, path), "plot: save %s", path)
}

// BoxByOutcome renders side-by-side boxplots of a predictor split by
// the binary outcome.
func BoxByOutcome(name string, neg, pos []float64, path string) error {
	p := plot.New()
	p.Title.Text = name + " by outcome"
	p.Y.Label.Text = name

	b0, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(neg))
	if err != nil {
		return eris.Wrap(err, "plot: build boxplot")
	}
	b1, err := plotter.NewBoxPlot(vg.Points(40), 1, plotter.Values(pos))
	if err != nil {
		return eris.Wrap(err, "plot: build boxplot")
	}
	p.Add(b0, b1)
	p.NominalX("NO", "YES")

	return eris.Wrapf(p.Save(defaultWidth, defaultHeight, path), "plot: save %s", path)
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (int, int) {
	n, _ := g.m.Dims()
	return n, n
}
func (g corrGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// CorrHeatmap renders the correlation matrix as a heat map. Axis ticks
// are the column indices; the caller's legend maps indices to names.
func CorrHeatmap(corr *mat.SymDense, title, path string) error {
	p := plot.New()
	p.Title.Text = title

	hm := plotter.NewHeatMap(corrGrid{m: corr}, palette.Heat(12, 1))
	hm.Min = -1
	hm.Max = 1
	p.Add(hm)

	return eris.Wrapf(p.Save(defaultWidth, defaultHeight, path), "plot: save %s", path)
}

// LogitScatter renders the binned empirical log-odds against the bin
// mean of the predictor, with a connecting line. Bins with an undefined
// logit are excluded from the figure; the caller reports them.
func LogitScatter(bins []diagnostic.Bin, predictor, path string) error {
	var xys plotter.XYs
	for _, b := range bins {
		if !b.LogitDefined {
			continue
		}
		xys = append(xys, plotter.XY{X: b.MeanX, Y: b.Logit})
	}
	if len(xys) == 0 {
		return eris.New("plot: no bins with a defined logit")
	}

	p := plot.New()
	p.Title.Text = "empirical log-odds vs " + predictor
	p.X.Label.Text = "mean " + predictor
	p.Y.Label.Text = "logit"

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return eris.Wrap(err, "plot: build scatter")
	}
	p.Add(line, points)

	return eris.Wrapf(p.Save(defaultWidth, defaultHeight, path), "plot: save %s", path)
}
