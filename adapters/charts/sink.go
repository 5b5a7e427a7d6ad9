package charts

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/domain/profile"
	"github.com/infinityseifer/eda-auto/ports"
)

const (
	chartWidth  = 7 * vg.Inch
	chartHeight = 4 * vg.Inch
	histBins    = 30
)

// PlotSink renders profile charts as PNG files using gonum/plot
type PlotSink struct{}

// NewPlotSink creates a chart sink
func NewPlotSink() *PlotSink {
	return &PlotSink{}
}

var _ ports.ChartSink = (*PlotSink)(nil)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// safeName makes a column name usable as a filename component while
// keeping it deterministic
func safeName(col string) string {
	return unsafeChars.ReplaceAllString(strings.TrimSpace(col), "_")
}

// Histogram renders the distribution of a numeric column
func (s *PlotSink) Histogram(dir string, col *frame.NumericColumn) (string, error) {
	values := col.Present()
	if len(values) == 0 {
		return "", fmt.Errorf("%w: column %s has no values", core.ErrInsufficientData, col.Name())
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", col.Name())
	p.X.Label.Text = col.Name()
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(plotter.Values(values), histBins)
	if err != nil {
		return "", fmt.Errorf("histogram for %s: %w", col.Name(), err)
	}
	p.Add(h)

	out := filepath.Join(dir, fmt.Sprintf("hist_%s.png", safeName(col.Name())))
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("save histogram for %s: %w", col.Name(), err)
	}
	return out, nil
}

// BarTopK renders a categorical frequency table as a bar chart
func (s *PlotSink) BarTopK(dir string, column string, top []profile.ValueCount) (string, error) {
	if len(top) == 0 {
		return "", fmt.Errorf("%w: column %s has no categories", core.ErrInsufficientData, column)
	}

	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, vc := range top {
		values[i] = float64(vc.Count)
		labels[i] = vc.Value
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d %s", len(top), column)
	p.Y.Label.Text = "Count"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return "", fmt.Errorf("bar chart for %s: %w", column, err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	out := filepath.Join(dir, fmt.Sprintf("bar_%s.png", safeName(column)))
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("save bar chart for %s: %w", column, err)
	}
	return out, nil
}

// missGrid adapts a frame's missing mask to plotter.GridXYZ
type missGrid struct {
	cols []frame.Column
	rows int
}

func (g missGrid) Dims() (int, int) { return len(g.cols), g.rows }
func (g missGrid) X(c int) float64  { return float64(c) }
func (g missGrid) Y(r int) float64  { return float64(r) }

func (g missGrid) Z(c, r int) float64 {
	if g.cols[c].IsMissing(r) {
		return 1
	}
	return 0
}

// MissingnessMap renders the row/column missing mask
func (s *PlotSink) MissingnessMap(dir string, f *frame.Frame) (string, error) {
	p := plot.New()
	p.Title.Text = "Missingness by row/column"
	p.X.Label.Text = "Columns"
	p.Y.Label.Text = "Rows (sample)"

	grid := missGrid{cols: f.Columns(), rows: f.Rows()}
	p.Add(plotter.NewHeatMap(grid, palette.Heat(12, 1)))

	out := filepath.Join(dir, "missingness.png")
	if err := p.Save(chartWidth, chartHeight, out); err != nil {
		return "", fmt.Errorf("save missingness map: %w", err)
	}
	return out, nil
}

// corrGrid adapts an absolute-correlation matrix to plotter.GridXYZ.
// Undefined correlations render as zero.
type corrGrid struct {
	m [][]float64
}

func (g corrGrid) Dims() (int, int) { return len(g.m), len(g.m) }
func (g corrGrid) X(c int) float64  { return float64(c) }
func (g corrGrid) Y(r int) float64  { return float64(r) }

func (g corrGrid) Z(c, r int) float64 {
	v := g.m[r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// CorrelationHeatmap renders the pairwise |r| matrix
func (s *PlotSink) CorrelationHeatmap(dir string, names []string, corr [][]float64) (string, error) {
	if len(names) < 2 {
		return "", fmt.Errorf("%w: need at least 2 numeric columns", core.ErrInsufficientData)
	}

	p := plot.New()
	p.Title.Text = "Correlation heatmap"

	p.Add(plotter.NewHeatMap(corrGrid{m: corr}, palette.Heat(12, 1)))
	p.NominalX(names...)
	p.NominalY(names...)

	out := filepath.Join(dir, "correlation.png")
	if err := p.Save(7*vg.Inch, 6*vg.Inch, out); err != nil {
		return "", fmt.Errorf("save correlation heatmap: %w", err)
	}
	return out, nil
}
