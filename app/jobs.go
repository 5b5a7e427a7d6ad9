package app

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/pipeline"
	"github.com/infinityseifer/eda-auto/internal/logging"
)

// JobManager wraps the synchronous pipeline in an asynchronous,
// bounded runner. Each run is its own goroutine with its own frame
// and profile; the only thing jobs share is the status map. The
// semaphore keeps concurrent runs from stacking unbounded file I/O.
type JobManager struct {
	orchestrator *Orchestrator
	sem          *semaphore.Weighted

	mu   sync.RWMutex
	jobs map[core.JobID]*pipeline.Job

	log *logging.Logger
}

// NewJobManager creates a manager allowing at most maxConcurrent
// simultaneous pipeline runs
func NewJobManager(orchestrator *Orchestrator, maxConcurrent int64) *JobManager {
	return &JobManager{
		orchestrator: orchestrator,
		sem:          semaphore.NewWeighted(maxConcurrent),
		jobs:         make(map[core.JobID]*pipeline.Job),
		log:          logging.Default,
	}
}

// Enqueue schedules a pipeline run and returns its job ID
// immediately. The eventual pipeline result is exposed through Get.
func (m *JobManager) Enqueue(datasetPath string, datasetID core.DatasetID, theme, accentColor string) core.JobID {
	id := core.JobID(core.NewID())
	job := &pipeline.Job{
		ID:        id.String(),
		DatasetID: datasetID.String(),
		Status:    pipeline.JobQueued,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	go m.run(id, datasetPath, datasetID, theme, accentColor)
	return id
}

func (m *JobManager) run(id core.JobID, datasetPath string, datasetID core.DatasetID, theme, accentColor string) {
	ctx := context.Background()
	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.log.Error("job %s: semaphore acquire failed: %v", id, err)
		return
	}
	defer m.sem.Release(1)

	m.setStatus(id, pipeline.JobRunning, nil)
	result := m.orchestrator.Run(ctx, datasetPath, datasetID, theme, accentColor)
	m.setStatus(id, pipeline.JobFinished, result)

	if result.Error != nil {
		m.log.Warn("job %s finished with error: %s", id, result.Error.Message)
	} else {
		m.log.Info("job %s finished: deck=%s", id, result.DeckPath)
	}
}

func (m *JobManager) setStatus(id core.JobID, status pipeline.JobStatus, result *pipeline.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		job.Status = status
		if result != nil {
			job.Result = result
		}
	}
}

// Get returns a copy of the job's current state
func (m *JobManager) Get(id core.JobID) (*pipeline.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}
