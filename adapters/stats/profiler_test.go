package stats

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/domain/profile"
)

// fakeSink records chart requests without touching the plot library
type fakeSink struct {
	calls []string
	fail  bool
}

func (s *fakeSink) Histogram(dir string, col *frame.NumericColumn) (string, error) {
	s.calls = append(s.calls, "hist:"+col.Name())
	if s.fail {
		return "", errors.New("render exploded")
	}
	return filepath.Join(dir, "hist_"+col.Name()+".png"), nil
}

func (s *fakeSink) BarTopK(dir, column string, top []profile.ValueCount) (string, error) {
	s.calls = append(s.calls, "bar:"+column)
	if s.fail {
		return "", errors.New("render exploded")
	}
	return filepath.Join(dir, "bar_"+column+".png"), nil
}

func (s *fakeSink) MissingnessMap(dir string, f *frame.Frame) (string, error) {
	s.calls = append(s.calls, "missing")
	if s.fail {
		return "", errors.New("render exploded")
	}
	return filepath.Join(dir, "missingness.png"), nil
}

func (s *fakeSink) CorrelationHeatmap(dir string, names []string, corr [][]float64) (string, error) {
	s.calls = append(s.calls, "corr")
	if s.fail {
		return "", errors.New("render exploded")
	}
	return filepath.Join(dir, "correlation.png"), nil
}

func numCol(name string, values []float64) *frame.NumericColumn {
	return &frame.NumericColumn{ColName: name, Values: values, Missing: make([]bool, len(values))}
}

func testProfiler(t *testing.T, sink *fakeSink) *Profiler {
	t.Helper()
	return NewProfiler(DefaultConfig(), sink, t.TempDir())
}

func TestProfile_EmptyFrame(t *testing.T) {
	f, _ := frame.New(nil)
	_, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if !errors.Is(err, core.ErrEmptyFrame) {
		t.Fatalf("err = %v, want ErrEmptyFrame", err)
	}
}

func TestProfile_Deterministic(t *testing.T) {
	cols := []frame.Column{
		numCol("a", []float64{1, 2, 3, 4, 5, 6}),
		numCol("b", []float64{2, 4, 6, 8, 10, 13}),
		&frame.TextColumn{
			ColName: "cat",
			Values:  []string{"x", "y", "x", "z", "x", "y"},
			Missing: make([]bool, 6),
		},
	}
	f, err := frame.New(cols)
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	p := testProfiler(t, &fakeSink{})
	first, err := p.Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	second, err := p.Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("profiling the same frame twice produced different profiles")
	}
	if first.Rows != 6 || first.Cols != 3 {
		t.Errorf("shape = %dx%d, want 6x3", first.Rows, first.Cols)
	}
	if len(first.NumericSummary) != 2 {
		t.Errorf("numeric summaries = %d, want 2", len(first.NumericSummary))
	}
}

func TestProfile_CorrelationRanking(t *testing.T) {
	// b tracks a tightly with small noise, c is a flipped copy of a with
	// heavy noise; the a~b pair must rank first.
	n := 40
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		x := float64(i)
		a[i] = x
		b[i] = 2*x + float64(i%3)
		c[i] = -x + 15*float64((i*7)%11)
	}
	f, err := frame.New([]frame.Column{numCol("a", a), numCol("b", b), numCol("c", c)})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	prof, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if len(prof.TopCorrelations) != 3 {
		t.Fatalf("pairs = %d, want 3", len(prof.TopCorrelations))
	}
	top := prof.TopCorrelations[0]
	if top.ColX != "b" || top.ColY != "a" {
		t.Errorf("strongest pair = %s~%s, want b~a", top.ColX, top.ColY)
	}
	for _, pair := range prof.TopCorrelations {
		if pair.AbsR < 0 || pair.AbsR > 1 {
			t.Errorf("|r| out of range: %v", pair.AbsR)
		}
	}
	for i := 1; i < len(prof.TopCorrelations); i++ {
		if prof.TopCorrelations[i].AbsR > prof.TopCorrelations[i-1].AbsR {
			t.Errorf("ranking not descending at %d", i)
		}
	}
}

func TestRankCorrelations_TiesKeepScanOrder(t *testing.T) {
	numeric := []*frame.NumericColumn{
		numCol("a", []float64{1}),
		numCol("b", []float64{1}),
		numCol("c", []float64{1}),
	}
	m := [][]float64{
		{1, 0.9, 0.5},
		{0.9, 1, 0.5},
		{0.5, 0.5, 1},
	}

	p := NewProfiler(DefaultConfig(), &fakeSink{}, t.TempDir())
	got := p.rankCorrelations(numeric, m)

	want := []profile.Correlation{
		{ColX: "b", ColY: "a", AbsR: 0.9},
		{ColX: "c", ColY: "a", AbsR: 0.5},
		{ColX: "c", ColY: "b", AbsR: 0.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ranking = %+v, want %+v", got, want)
	}
}

func TestProfile_MissingRankingCapped(t *testing.T) {
	// 30 columns with distinct missing counts; only the top 20 survive
	var cols []frame.Column
	rows := 40
	for c := 0; c < 30; c++ {
		missing := make([]bool, rows)
		for i := 0; i < c+1; i++ {
			missing[i] = true
		}
		cols = append(cols, &frame.TextColumn{
			ColName: fmt.Sprintf("col%02d", c),
			Values:  make([]string, rows),
			Missing: missing,
		})
	}
	f, err := frame.New(cols)
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	prof, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	if len(prof.MissingByCol) != 20 {
		t.Fatalf("ranked columns = %d, want 20", len(prof.MissingByCol))
	}
	if prof.MissingByCol[0].Column != "col29" || prof.MissingByCol[0].Count != 30 {
		t.Errorf("top entry = %+v, want col29 with 30", prof.MissingByCol[0])
	}
	for i := 1; i < len(prof.MissingByCol); i++ {
		if prof.MissingByCol[i].Count > prof.MissingByCol[i-1].Count {
			t.Errorf("missing ranking not descending at %d", i)
		}
	}
}

func TestProfile_NoNumericColumns(t *testing.T) {
	f, err := frame.New([]frame.Column{
		&frame.TextColumn{ColName: "t", Values: []string{"a", "b"}, Missing: make([]bool, 2)},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	prof, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(prof.NumericSummary) != 0 {
		t.Errorf("numeric summaries = %d, want 0", len(prof.NumericSummary))
	}
	if len(prof.TopCorrelations) != 0 {
		t.Errorf("correlations = %d, want 0", len(prof.TopCorrelations))
	}
}

func TestProfile_CategoryTiesByFirstSeen(t *testing.T) {
	f, err := frame.New([]frame.Column{
		&frame.TextColumn{
			ColName: "c",
			Values:  []string{"beta", "alpha", "beta", "alpha", "gamma"},
			Missing: []bool{false, false, false, false, true},
		},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	prof, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if len(prof.Categories) != 1 {
		t.Fatalf("categories = %d, want 1", len(prof.Categories))
	}
	got := prof.Categories[0].Top
	want := []profile.ValueCount{
		{Value: "beta", Count: 2},
		{Value: "alpha", Count: 2},
		{Value: "<NA>", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("top values = %+v, want %+v", got, want)
	}
}

func TestProfile_ChartFailuresAreSwallowed(t *testing.T) {
	f, err := frame.New([]frame.Column{
		numCol("a", []float64{1, 2, 3, 4}),
		numCol("b", []float64{4, 3, 2, 1}),
		&frame.TextColumn{
			ColName: "c",
			Values:  []string{"x", "", "x", "y"},
			Missing: []bool{false, true, false, false},
		},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	sink := &fakeSink{fail: true}
	prof, err := testProfiler(t, sink).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile should not fail on chart errors: %v", err)
	}
	if len(prof.Charts) != 0 {
		t.Errorf("failed charts leaked into the profile: %v", prof.Charts)
	}
	if len(prof.ChartOrder) != 0 {
		t.Errorf("failed charts leaked into the order: %v", prof.ChartOrder)
	}
	if len(sink.calls) == 0 {
		t.Error("sink was never invoked")
	}
	// the stats themselves must be intact
	if len(prof.NumericSummary) != 2 {
		t.Errorf("numeric summaries = %d, want 2", len(prof.NumericSummary))
	}
}

func TestProfile_ChartTitles(t *testing.T) {
	f, err := frame.New([]frame.Column{
		numCol("a", []float64{1, 2, 3, 4}),
		numCol("b", []float64{4, 3, 2, 1}),
		&frame.TextColumn{
			ColName: "c",
			Values:  []string{"x", "", "x", "y"},
			Missing: []bool{false, true, false, false},
		},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	prof, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	for _, title := range []string{
		"Missingness",
		"Correlation heatmap",
		"Distribution - a",
		"Distribution - b",
		"Top categories - c",
	} {
		if _, ok := prof.Charts[title]; !ok {
			t.Errorf("chart %q missing from profile", title)
		}
	}
	if len(prof.Charts) != 5 {
		t.Errorf("chart count = %d, want 5", len(prof.Charts))
	}
}

// Charts come out in emission order: missingness, correlation, then
// per-column charts in column order. A column named z ahead of a
// column named a must stay ahead.
func TestProfile_ChartOrderFollowsColumns(t *testing.T) {
	f, err := frame.New([]frame.Column{
		numCol("z", []float64{1, 2, 3, 4}),
		numCol("a", []float64{4, 3, 2, 1}),
		&frame.TextColumn{
			ColName: "c",
			Values:  []string{"x", "", "x", "y"},
			Missing: []bool{false, true, false, false},
		},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}

	prof, err := testProfiler(t, &fakeSink{}).Profile(context.Background(), f, core.DatasetID("d1"))
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}

	want := []string{
		"Missingness",
		"Correlation heatmap",
		"Distribution - z",
		"Distribution - a",
		"Top categories - c",
	}
	if !reflect.DeepEqual(prof.ChartOrder, want) {
		t.Errorf("ChartOrder = %v, want %v", prof.ChartOrder, want)
	}
	for _, title := range prof.ChartOrder {
		if _, ok := prof.Charts[title]; !ok {
			t.Errorf("ordered title %q has no chart entry", title)
		}
	}
}
