package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/infinityseifer/eda-auto/adapters/charts"
	appstats "github.com/infinityseifer/eda-auto/adapters/stats"
	"github.com/infinityseifer/eda-auto/adapters/tabular"
	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/frame"
	"github.com/infinityseifer/eda-auto/domain/narrative"
	"github.com/infinityseifer/eda-auto/domain/pipeline"
	"github.com/infinityseifer/eda-auto/domain/profile"
)

type stubLoader struct {
	frame *frame.Frame
	err   error
}

func (s *stubLoader) Load(path string, rowCap int) (*frame.Frame, error) {
	return s.frame, s.err
}

type stubCoercer struct{}

func (stubCoercer) Coerce(f *frame.Frame) {}

type stubProfiler struct {
	prof  *profile.Profile
	err   error
	panic bool
}

func (s *stubProfiler) Profile(ctx context.Context, f *frame.Frame, id core.DatasetID) (*profile.Profile, error) {
	if s.panic {
		panic("profiler blew up")
	}
	return s.prof, s.err
}

type stubRenderer struct {
	name     string
	err      error
	got      narrative.Narrative
	gotOrder []string
}

func (s *stubRenderer) Render(n narrative.Narrative, charts map[string]string, order []string, id core.DatasetID, theme, accent string) (string, error) {
	s.got = n
	s.gotOrder = order
	return s.name, s.err
}

func okFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New([]frame.Column{
		&frame.NumericColumn{ColName: "v", Values: []float64{1, 2, 3}, Missing: make([]bool, 3)},
	})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return f
}

func okProfile() *profile.Profile {
	return &profile.Profile{Rows: 3, Cols: 1, Charts: map[string]string{}}
}

func testOrchestrator(t *testing.T, loader *stubLoader, prof *stubProfiler, rend *stubRenderer) *Orchestrator {
	t.Helper()
	cfg := OrchestratorConfig{
		StorageDir: t.TempDir(),
		SampleCap:  1000,
		Narrative:  narrative.DefaultConfig(),
	}
	return NewOrchestrator(cfg, loader, stubCoercer{}, prof, rend)
}

func TestRun_Success(t *testing.T) {
	o := testOrchestrator(t,
		&stubLoader{frame: okFrame(t)},
		&stubProfiler{prof: okProfile()},
		&stubRenderer{name: "report_d1_light.html"},
	)

	result := o.Run(context.Background(), "/tmp/d1.csv", core.DatasetID("d1"), "light", "")

	if !result.Succeeded() {
		t.Fatalf("run failed: %+v", result.Error)
	}
	if result.DeckPath != "report_d1_light.html" {
		t.Errorf("deck path = %q", result.DeckPath)
	}
	wantSteps := []string{
		pipeline.StepPrepareOutput,
		pipeline.StepProfile,
		pipeline.StepNarrative,
		pipeline.StepRender,
	}
	if len(result.Logs) != len(wantSteps) {
		t.Fatalf("log entries = %d, want %d", len(result.Logs), len(wantSteps))
	}
	for i, step := range result.Logs {
		if step.Name != wantSteps[i] {
			t.Errorf("step %d = %s, want %s", i, step.Name, wantSteps[i])
		}
		if step.Status != pipeline.StatusOK {
			t.Errorf("step %s status = %s, want ok", step.Name, step.Status)
		}
		if step.EndedAt == nil {
			t.Errorf("step %s left open", step.Name)
		}
	}
}

func TestRun_FailureStopsPipeline(t *testing.T) {
	o := testOrchestrator(t,
		&stubLoader{err: errors.New("file unreadable")},
		&stubProfiler{prof: okProfile()},
		&stubRenderer{name: "deck.html"},
	)

	result := o.Run(context.Background(), "/tmp/d1.csv", core.DatasetID("d1"), "light", "")

	if result.Succeeded() {
		t.Fatal("run should have failed")
	}
	// failure at stage N leaves exactly N entries; later stages never appear
	if len(result.Logs) != 2 {
		t.Fatalf("log entries = %d, want 2", len(result.Logs))
	}
	if result.Logs[0].Status != pipeline.StatusOK {
		t.Errorf("prepare step = %s, want ok", result.Logs[0].Status)
	}
	if result.Logs[1].Name != pipeline.StepProfile || result.Logs[1].Status != pipeline.StatusError {
		t.Errorf("failed step = %s/%s, want %s/error", result.Logs[1].Name, result.Logs[1].Status, pipeline.StepProfile)
	}
	if result.DeckPath != "" {
		t.Errorf("deck path set on failure: %q", result.DeckPath)
	}
	if result.Error == nil || !strings.Contains(result.Error.Message, "file unreadable") {
		t.Errorf("error = %+v", result.Error)
	}
	// the stage wraps the loader failure with profiling context
	if result.Error != nil && !strings.Contains(result.Error.Message, "dataset load failed") {
		t.Errorf("error message = %q, want profiling wrap", result.Error.Message)
	}
}

func TestRun_RenderFailure(t *testing.T) {
	o := testOrchestrator(t,
		&stubLoader{frame: okFrame(t)},
		&stubProfiler{prof: okProfile()},
		&stubRenderer{err: errors.New("disk full")},
	)

	result := o.Run(context.Background(), "/tmp/d1.csv", core.DatasetID("d1"), "light", "")

	if result.Succeeded() {
		t.Fatal("run should have failed")
	}
	if len(result.Logs) != 4 {
		t.Fatalf("log entries = %d, want 4", len(result.Logs))
	}
	for _, step := range result.Logs[:3] {
		if step.Status != pipeline.StatusOK {
			t.Errorf("step %s = %s, want ok", step.Name, step.Status)
		}
	}
	last := result.Logs[3]
	if last.Name != pipeline.StepRender || last.Status != pipeline.StatusError {
		t.Errorf("last step = %s/%s, want %s/error", last.Name, last.Status, pipeline.StepRender)
	}
	if result.DeckPath != "" {
		t.Errorf("deck path set on render failure: %q", result.DeckPath)
	}
}

func TestRun_PanicBecomesStructuredError(t *testing.T) {
	o := testOrchestrator(t,
		&stubLoader{frame: okFrame(t)},
		&stubProfiler{panic: true},
		&stubRenderer{name: "deck.html"},
	)

	result := o.Run(context.Background(), "/tmp/d1.csv", core.DatasetID("d1"), "light", "")

	if result.Error == nil {
		t.Fatal("panic should surface as a structured error")
	}
	if !strings.Contains(result.Error.Message, "profiler blew up") {
		t.Errorf("error message = %q", result.Error.Message)
	}
	if result.Error.Trace == "" {
		t.Error("panic should capture a trace")
	}
	if len(result.Error.Trace) > DefaultTraceCap {
		t.Errorf("trace length = %d, want at most %d", len(result.Error.Trace), DefaultTraceCap)
	}
}

func TestRun_TraceCap(t *testing.T) {
	cfg := OrchestratorConfig{
		StorageDir: t.TempDir(),
		SampleCap:  10,
		TraceCap:   100,
		Narrative:  narrative.DefaultConfig(),
	}
	o := NewOrchestrator(cfg, &stubLoader{frame: okFrame(t)}, stubCoercer{}, &stubProfiler{panic: true}, &stubRenderer{})

	result := o.Run(context.Background(), "/tmp/d1.csv", core.DatasetID("d1"), "light", "")

	if result.Error == nil {
		t.Fatal("expected failure")
	}
	if len(result.Error.Trace) != 100 {
		t.Errorf("trace length = %d, want truncation to 100", len(result.Error.Trace))
	}
}

// End-to-end run against the real loader, coercer, profiler and
// renderer, with only the deck renderer stubbed by filename.
func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")

	var b strings.Builder
	b.WriteString("units,price,discount,region,channel\n")
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "%d,%.2f,%.2f,%s,%s\n",
			i%50+1,
			10.0+float64(i%37)*0.5,
			float64(i%5)*0.05,
			[]string{"north", "south", "east", "west"}[i%4],
			[]string{"web", "store"}[i%2],
		)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	storage := t.TempDir()
	profiler := appstats.NewProfiler(appstats.DefaultConfig(), charts.NewPlotSink(), filepath.Join(storage, "images"))
	cfg := OrchestratorConfig{
		StorageDir: storage,
		SampleCap:  50000,
		Narrative:  narrative.DefaultConfig(),
	}
	renderer := &stubRenderer{name: "report_d1_light.html"}
	o := NewOrchestrator(cfg,
		tabular.NewFrameReader(),
		tabular.NewTemporalCoercer(tabular.DefaultCoercionConfig()),
		profiler,
		renderer,
	)

	result := o.Run(context.Background(), path, core.DatasetID("d1"), "light", "")

	if !result.Succeeded() {
		t.Fatalf("end-to-end run failed: %+v", result.Error)
	}
	if len(result.Logs) != 4 {
		t.Fatalf("log entries = %d, want 4", len(result.Logs))
	}
	for _, step := range result.Logs {
		if step.Status != pipeline.StatusOK {
			t.Errorf("step %s = %s, want ok", step.Name, step.Status)
		}
	}
	if !strings.Contains(result.Logs[1].Detail, "rows=1000 cols=5") {
		t.Errorf("profile detail = %q", result.Logs[1].Detail)
	}
	if !strings.Contains(renderer.got.ExecutiveSummary, "1,000 rows and 5 columns") {
		t.Errorf("executive summary = %q", renderer.got.ExecutiveSummary)
	}
	// chart order flows from the profiler through to the renderer,
	// leading with the correlation heatmap and column histograms
	if len(renderer.gotOrder) == 0 {
		t.Fatal("renderer received no chart order")
	}
	if renderer.gotOrder[0] != "Correlation heatmap" {
		t.Errorf("first chart = %q, want correlation heatmap", renderer.gotOrder[0])
	}
}

func TestJobManager_Lifecycle(t *testing.T) {
	o := testOrchestrator(t,
		&stubLoader{frame: okFrame(t)},
		&stubProfiler{prof: okProfile()},
		&stubRenderer{name: "deck.html"},
	)
	m := NewJobManager(o, 2)

	id := m.Enqueue("/tmp/d1.csv", core.DatasetID("d1"), "light", "")
	if id == "" {
		t.Fatal("empty job id")
	}

	deadline := time.After(5 * time.Second)
	for {
		job, ok := m.Get(id)
		if !ok {
			t.Fatal("job vanished")
		}
		if job.Status == pipeline.JobFinished {
			if job.Result == nil || !job.Result.Succeeded() {
				t.Fatalf("job finished without a deck: %+v", job.Result)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never finished, status=%s", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestJobManager_UnknownJob(t *testing.T) {
	o := testOrchestrator(t,
		&stubLoader{frame: okFrame(t)},
		&stubProfiler{prof: okProfile()},
		&stubRenderer{name: "deck.html"},
	)
	m := NewJobManager(o, 1)

	if _, ok := m.Get(core.JobID("nope")); ok {
		t.Error("unknown job should not resolve")
	}
}
