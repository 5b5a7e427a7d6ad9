package stats

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/domain/profile"
	"github.com/infinityseifer/eda-auto/internal/logging"
	"github.com/infinityseifer/eda-auto/ports"
)

// Config holds the profiler guardrails
type Config struct {
	MaxColumns         int
	CorrTopK           int
	MaxMissingRanked   int
	MaxNumericSummary  int
	MaxHistograms      int
	MaxCategoricalBars int
	CategoryTopK       int
}

// DefaultConfig returns the standard profiler settings
func DefaultConfig() Config {
	return Config{
		MaxColumns:         100,
		CorrTopK:           20,
		MaxMissingRanked:   20,
		MaxNumericSummary:  50,
		MaxHistograms:      4,
		MaxCategoricalBars: 4,
		CategoryTopK:       10,
	}
}

// Profiler computes statistical profiles and emits chart artifacts
// through the configured sink
type Profiler struct {
	config   Config
	sink     ports.ChartSink
	imageDir string
	log      *logging.Logger
}

// NewProfiler creates a profiler writing chart images under
// imageDir/<dataset_id>/
func NewProfiler(config Config, sink ports.ChartSink, imageDir string) *Profiler {
	return &Profiler{
		config:   config,
		sink:     sink,
		imageDir: imageDir,
		log:      logging.Default,
	}
}

var _ ports.Profiler = (*Profiler)(nil)

// Profile computes the statistical profile of the frame. All stats
// are deterministic functions of the frame contents; chart emission
// is the only side effect and is per-chart best-effort.
func (p *Profiler) Profile(ctx context.Context, f *frame.Frame, datasetID core.DatasetID) (*profile.Profile, error) {
	if f.Rows() == 0 {
		return nil, core.ErrEmptyFrame
	}

	prof := &profile.Profile{
		DatasetID: datasetID.String(),
		Rows:      f.Rows(),
		Cols:      f.Cols(),
		Charts:    map[string]string{},
	}

	cols := f.Columns()
	capped := cols
	if len(capped) > p.config.MaxColumns {
		capped = capped[:p.config.MaxColumns]
	}
	prof.Types = make(map[string]string, len(capped))
	for _, c := range capped {
		prof.Columns = append(prof.Columns, c.Name())
		prof.Types[c.Name()] = string(c.Type())
	}

	prof.MissingByCol = p.missingRanking(cols)

	numeric := f.NumericColumns()
	present := make([][]float64, len(numeric))
	for i, nc := range numeric {
		present[i] = nc.Present()
	}

	prof.NumericSummary = p.numericSummaries(numeric, present)

	corrMatrix := pairwiseAbsCorrelation(numeric)
	prof.TopCorrelations = p.rankCorrelations(numeric, corrMatrix)

	prof.Categories = p.categoryTables(f.TextColumns())

	p.emitCharts(f, prof, numeric, corrMatrix, datasetID)

	p.log.Info("profiled dataset %s: %d rows, %d cols, %d numeric, %d charts",
		datasetID, prof.Rows, prof.Cols, len(numeric), len(prof.Charts))
	return prof, nil
}

// missingRanking counts missing cells per column, sorted descending
// with ties broken by original column order, truncated to the cap.
// Columns with no missing cells are omitted.
func (p *Profiler) missingRanking(cols []frame.Column) []profile.MissingCount {
	var out []profile.MissingCount
	for _, c := range cols {
		if n := c.MissingCount(); n > 0 {
			out = append(out, profile.MissingCount{Column: c.Name(), Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > p.config.MaxMissingRanked {
		out = out[:p.config.MaxMissingRanked]
	}
	return out
}

// numericSummaries computes the distribution summary per numeric
// column. Empty result when the frame has no numeric columns.
func (p *Profiler) numericSummaries(numeric []*frame.NumericColumn, present [][]float64) []profile.NumericSummary {
	var out []profile.NumericSummary
	for i, nc := range numeric {
		if len(out) >= p.config.MaxNumericSummary {
			break
		}
		data := present[i]
		if len(data) == 0 {
			continue
		}
		mean, _ := stats.Mean(data)
		std, _ := stats.StandardDeviationSample(data)
		min, _ := stats.Min(data)
		max, _ := stats.Max(data)
		median, _ := stats.Median(data)
		q25, _ := stats.Percentile(data, 25)
		q75, _ := stats.Percentile(data, 75)

		skew := 0.0
		kurt := 0.0
		if len(data) > 2 && std > 0 {
			skew = stat.Skew(data, nil)
			kurt = stat.ExKurtosis(data, nil)
		}

		out = append(out, profile.NumericSummary{
			Column:   nc.Name(),
			Count:    len(data),
			Mean:     mean,
			StdDev:   std,
			Min:      min,
			Q25:      q25,
			Median:   median,
			Q75:      q75,
			Max:      max,
			Skewness: skew,
			Kurtosis: kurt,
		})
	}
	return out
}

// pairwiseAbsCorrelation computes the full |r| matrix over the
// numeric columns once; the ranking and the heatmap both read it.
// Rows where either value is missing are excluded pairwise.
func pairwiseAbsCorrelation(numeric []*frame.NumericColumn) [][]float64 {
	n := len(numeric)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearsonAbs(numeric[i], numeric[j])
			m[i][j] = r
			m[j][i] = r
		}
	}
	return m
}

func pearsonAbs(a, b *frame.NumericColumn) float64 {
	var xs, ys []float64
	for i := range a.Values {
		if a.IsMissing(i) || b.IsMissing(i) {
			continue
		}
		xs = append(xs, a.Values[i])
		ys = append(ys, b.Values[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return math.Abs(stat.Correlation(xs, ys, nil))
}

// rankCorrelations scans the lower triangle row-major, sorts by
// magnitude descending with stable ties, truncates to top K and
// rounds to 3 decimal places. Requires at least 2 numeric columns.
func (p *Profiler) rankCorrelations(numeric []*frame.NumericColumn, m [][]float64) []profile.Correlation {
	if len(numeric) < 2 {
		return nil
	}
	var pairs []profile.Correlation
	for i := 1; i < len(numeric); i++ {
		for j := 0; j < i; j++ {
			r := m[i][j]
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, profile.Correlation{
				ColX: numeric[i].Name(),
				ColY: numeric[j].Name(),
				AbsR: r,
			})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].AbsR > pairs[b].AbsR
	})
	if len(pairs) > p.config.CorrTopK {
		pairs = pairs[:p.config.CorrTopK]
	}
	for i := range pairs {
		pairs[i].AbsR = math.Round(pairs[i].AbsR*1000) / 1000
	}
	return pairs
}

// missingSentinel replaces missing cells before categorical counting
const missingSentinel = "<NA>"

// categoryTables computes top value counts for up to the configured
// number of text columns, in column order. Ties are broken by first
// encountered value order.
func (p *Profiler) categoryTables(textCols []*frame.TextColumn) []profile.CategoryTable {
	var out []profile.CategoryTable
	for _, tc := range textCols {
		if len(out) >= p.config.MaxCategoricalBars {
			break
		}
		out = append(out, profile.CategoryTable{
			Column: tc.Name(),
			Top:    topValues(tc, p.config.CategoryTopK),
		})
	}
	return out
}

func topValues(tc *frame.TextColumn, k int) []profile.ValueCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, v := range tc.Values {
		if tc.IsMissing(i) {
			v = missingSentinel
		}
		if _, ok := counts[v]; !ok {
			firstSeen[v] = len(order)
			order = append(order, v)
		}
		counts[v]++
	}
	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})
	if len(order) > k {
		order = order[:k]
	}
	out := make([]profile.ValueCount, len(order))
	for i, v := range order {
		out[i] = profile.ValueCount{Value: v, Count: counts[v]}
	}
	return out
}

// emitCharts writes the chart artifacts. Each chart is independently
// best-effort: a failure is logged and the chart is left out of the
// profile's chart map, never propagated.
func (p *Profiler) emitCharts(f *frame.Frame, prof *profile.Profile, numeric []*frame.NumericColumn, corr [][]float64, datasetID core.DatasetID) {
	dir := filepath.Join(p.imageDir, datasetID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.log.Warn("chart dir creation failed for %s: %v", datasetID, err)
		return
	}

	if f.MissingCells() > 0 {
		p.attempt(prof, "Missingness", func() (string, error) {
			return p.sink.MissingnessMap(dir, f)
		})
	}

	if len(numeric) >= 2 {
		names := make([]string, len(numeric))
		for i, nc := range numeric {
			names[i] = nc.Name()
		}
		p.attempt(prof, "Correlation heatmap", func() (string, error) {
			return p.sink.CorrelationHeatmap(dir, names, corr)
		})
	}

	hists := numeric
	if len(hists) > p.config.MaxHistograms {
		hists = hists[:p.config.MaxHistograms]
	}
	for _, nc := range hists {
		col := nc
		p.attempt(prof, fmt.Sprintf("Distribution - %s", col.Name()), func() (string, error) {
			return p.sink.Histogram(dir, col)
		})
	}

	for _, table := range prof.Categories {
		tbl := table
		p.attempt(prof, fmt.Sprintf("Top categories - %s", tbl.Column), func() (string, error) {
			return p.sink.BarTopK(dir, tbl.Column, tbl.Top)
		})
	}
}

func (p *Profiler) attempt(prof *profile.Profile, title string, emit func() (string, error)) {
	path, err := emit()
	if err != nil {
		p.log.Warn("chart %q skipped: %v", title, err)
		return
	}
	prof.Charts[title] = path
	prof.ChartOrder = append(prof.ChartOrder, title)
}
