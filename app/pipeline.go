package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/narrative"
	"github.com/infinityseifer/eda-auto/domain/pipeline"
	"github.com/infinityseifer/eda-auto/domain/profile"
	apperrors "github.com/infinityseifer/eda-auto/internal/errors"
	"github.com/infinityseifer/eda-auto/internal/logging"
	"github.com/infinityseifer/eda-auto/ports"
)

// DefaultTraceCap bounds failure diagnostics so step logs stay small
const DefaultTraceCap = 3000

// OrchestratorConfig holds the per-run settings the orchestrator
// needs. Passed in at construction, never read from ambient state, so
// concurrent runs stay isolated.
type OrchestratorConfig struct {
	StorageDir string
	SampleCap  int
	// TraceCap bounds the captured stack trace (last N characters)
	TraceCap  int
	Narrative narrative.Config
}

// Orchestrator sequences the pipeline stages in fixed order and
// converts any stage failure into a structured result without losing
// prior step logs
type Orchestrator struct {
	config   OrchestratorConfig
	loader   ports.FrameLoader
	coercer  ports.FrameCoercer
	profiler ports.Profiler
	renderer ports.DeckRenderer
	log      *logging.Logger
}

// NewOrchestrator wires the pipeline stages together
func NewOrchestrator(config OrchestratorConfig, loader ports.FrameLoader, coercer ports.FrameCoercer, profiler ports.Profiler, renderer ports.DeckRenderer) *Orchestrator {
	if config.TraceCap <= 0 {
		config.TraceCap = DefaultTraceCap
	}
	return &Orchestrator{
		config:   config,
		loader:   loader,
		coercer:  coercer,
		profiler: profiler,
		renderer: renderer,
		log:      logging.Default,
	}
}

type stageFunc func() (detail string, err error)

// Run executes the full pipeline for one dataset. It never surfaces
// an unhandled failure: every stage error (or panic) is caught, the
// running step is closed as "error", later stages never run and never
// appear in the log, and the result keeps all prior step entries.
// Exactly one of DeckPath or Error is set on the returned result.
func (o *Orchestrator) Run(ctx context.Context, datasetPath string, datasetID core.DatasetID, theme, accentColor string) *pipeline.Result {
	result := &pipeline.Result{}
	reportsDir := filepath.Join(o.config.StorageDir, "reports")

	var (
		prof  *profile.Profile
		story narrative.Narrative
	)

	stages := []struct {
		name string
		fn   stageFunc
	}{
		{pipeline.StepPrepareOutput, func() (string, error) {
			if err := os.MkdirAll(reportsDir, 0o755); err != nil {
				return "", err
			}
			return fmt.Sprintf("reports_dir=%s", reportsDir), nil
		}},
		{pipeline.StepProfile, func() (string, error) {
			f, err := o.loader.Load(datasetPath, o.config.SampleCap)
			if err != nil {
				return "", apperrors.ProfilingError("dataset load failed", err)
			}
			o.coercer.Coerce(f)
			if prof, err = o.profiler.Profile(ctx, f, datasetID); err != nil {
				return "", apperrors.ProfilingError("profiling failed", err)
			}
			return fmt.Sprintf("rows=%d cols=%d", prof.Rows, prof.Cols), nil
		}},
		{pipeline.StepNarrative, func() (string, error) {
			story = narrative.Synthesize(prof, o.config.Narrative)
			return "narrative-ready", nil
		}},
		{pipeline.StepRender, func() (string, error) {
			name, err := o.renderer.Render(story, prof.Charts, prof.ChartOrder, datasetID, theme, accentColor)
			if err != nil {
				return "", err
			}
			result.DeckPath = name
			return fmt.Sprintf("deck=%s", name), nil
		}},
	}

	for _, stage := range stages {
		result.Logs = append(result.Logs, pipeline.StepLog{
			Name:      stage.name,
			Status:    pipeline.StatusRunning,
			StartedAt: time.Now(),
		})
		step := &result.Logs[len(result.Logs)-1]

		detail, trace, err := o.execute(stage.fn)
		if err != nil {
			step.Finish(pipeline.StatusError, err.Error())
			result.DeckPath = ""
			result.Error = &pipeline.RunError{
				Message: err.Error(),
				Trace:   trace,
			}
			o.log.Error("pipeline step %s failed for dataset %s: %v", stage.name, datasetID, err)
			return result
		}
		step.Finish(pipeline.StatusOK, detail)
		o.log.Debug("pipeline step %s ok (%s)", stage.name, detail)
	}

	return result
}

// execute runs one stage, converting panics into errors. The trace is
// captured at the failure boundary and truncated to the configured
// cap; it is diagnostic text only, never parsed by callers.
func (o *Orchestrator) execute(fn stageFunc) (detail, trace string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panic: %v", r)
			trace = o.truncate(string(debug.Stack()))
		}
	}()
	detail, err = fn()
	if err != nil {
		trace = o.truncate(string(debug.Stack()))
	}
	return detail, trace, err
}

func (o *Orchestrator) truncate(s string) string {
	if len(s) > o.config.TraceCap {
		return s[len(s)-o.config.TraceCap:]
	}
	return s
}
