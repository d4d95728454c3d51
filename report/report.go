// Package report renders the evaluation results: a plain-text console
// summary of the averaged metrics and two diagnostic PNG charts. It is a
// pure sink over computed results.
package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pkgraph/crossval"
	"github.com/YuminosukeSato/pkgraph/pkg/errors"
)

// WriteSummary prints the averaged cross-validation metrics as plain text.
func WriteSummary(w io.Writer, r *crossval.Report) error {
	if _, err := fmt.Fprintf(w, "Cross-validation results over %d folds:\n", len(r.Folds)); err != nil {
		return err
	}
	for _, line := range []struct {
		name  string
		value float64
	}{
		{"mse", r.Mean.MSE},
		{"rmse", r.Mean.RMSE},
		{"mae", r.Mean.MAE},
		{"r2", r.Mean.R2},
	} {
		if _, err := fmt.Fprintf(w, "  %-4s  %.6f\n", line.name, line.value); err != nil {
			return err
		}
	}
	return nil
}

// PlotLossCurves writes a line chart of the final fold's per-epoch training
// and validation losses.
func PlotLossCurves(r *crossval.Report, path string) error {
	if len(r.TrainLoss) == 0 {
		return errors.NewValueError("PlotLossCurves", "no loss curves recorded")
	}

	p := plot.New()
	p.Title.Text = "Encoder loss (final fold)"
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "MSE"

	trainLine, err := plotter.NewLine(lossXYs(r.TrainLoss))
	if err != nil {
		return errors.Wrap(err, "report: failed to build training loss line")
	}
	trainLine.Color = color.RGBA{B: 200, A: 255}
	p.Add(trainLine)
	p.Legend.Add("train", trainLine)

	if hasFinite(r.ValLoss) {
		valLine, err := plotter.NewLine(lossXYs(r.ValLoss))
		if err != nil {
			return errors.Wrap(err, "report: failed to build validation loss line")
		}
		valLine.Color = color.RGBA{R: 200, A: 255}
		p.Add(valLine)
		p.Legend.Add("validation", valLine)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: failed to save %s", filepath.Base(path))
	}
	return nil
}

// PlotMetricsBar writes a bar chart of the averaged fold metrics.
func PlotMetricsBar(r *crossval.Report, path string) error {
	if len(r.Folds) == 0 {
		return errors.NewValueError("PlotMetricsBar", "no fold metrics recorded")
	}

	p := plot.New()
	p.Title.Text = "Averaged cross-validation metrics"
	p.Y.Label.Text = "value"

	values := plotter.Values{r.Mean.MSE, r.Mean.RMSE, r.Mean.MAE, r.Mean.R2}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return errors.Wrap(err, "report: failed to build bar chart")
	}
	bars.Color = color.RGBA{B: 180, A: 255}
	p.Add(bars)
	p.NominalX("mse", "rmse", "mae", "r2")

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "report: failed to save %s", filepath.Base(path))
	}
	return nil
}

func lossXYs(losses []float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(losses))
	for i, v := range losses {
		if math.IsNaN(v) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i + 1), Y: v})
	}
	return xys
}

func hasFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
