package ports

import (
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/domain/profile"
)

// ChartSink renders chart images into a per-dataset directory.
// Filenames are deterministic functions of column name and chart
// kind, so repeated runs overwrite rather than accumulate. Callers
// treat chart failures as best-effort and must not let a single
// failed chart abort profiling.
type ChartSink interface {
	Histogram(dir string, col *frame.NumericColumn) (string, error)
	BarTopK(dir string, column string, top []profile.ValueCount) (string, error)
	MissingnessMap(dir string, f *frame.Frame) (string, error)
	CorrelationHeatmap(dir string, names []string, corr [][]float64) (string, error)
}
