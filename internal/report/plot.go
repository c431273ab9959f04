// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	chartTitle  = "Query Performance vs. Number of Records"
	chartXLabel = "Number of Records"
	chartYLabel = "Time (ms)"
)

// NewChart builds the comparison chart: one line with markers per
// (variant, query), elapsed time on a log scale. Non-positive values cannot
// be placed on the log axis and are skipped.
func NewChart(rows []Row) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = chartTitle
	p.X.Label.Text = chartXLabel
	p.Y.Label.Text = chartYLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	plotted := 0
	for i, s := range GroupSeries(rows) {
		xys := make(plotter.XYs, 0, len(s.Points))
		for _, pt := range s.Points {
			if pt.ElapsedMS > 0 {
				xys = append(xys, plotter.XY{X: float64(pt.RecordCount), Y: pt.ElapsedMS})
			}
		}
		if len(xys) == 0 {
			continue
		}
		slices.SortFunc(xys, func(a, b plotter.XY) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			default:
				return 0
			}
		})

		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label(), err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)

		p.Add(line, points)
		p.Legend.Add(s.Label(), line, points)
		plotted++
	}

	if plotted > 0 {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{}
		if p.Y.Min == p.Y.Max {
			p.Y.Min /= 10
			p.Y.Max *= 10
		}
	}
	return p, nil
}

// WritePNG renders the chart as a 10x6 inch PNG.
func WritePNG(w io.Writer, rows []Row) error {
	p, err := NewChart(rows)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
