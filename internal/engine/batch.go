package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/models"
)

// MaxBatchSize caps how many problems one batch job may carry.
const MaxBatchSize = 100

// BatchManager creates and tracks bulk structuring jobs. Each job's
// background worker is the sole writer of its record; pollers get
// copied snapshots.
type BatchManager struct {
	mu      sync.RWMutex
	jobs    map[string]*models.BatchJob
	service *Service
	stats   *Stats
	log     *zap.SugaredLogger
}

func NewBatchManager(service *Service, stats *Stats, log *zap.SugaredLogger) *BatchManager {
	return &BatchManager{
		jobs:    make(map[string]*models.BatchJob),
		service: service,
		stats:   stats,
		log:     log,
	}
}

// Create registers a batch job and starts its worker. The call returns
// immediately with the initial record; progress is observed by polling.
func (m *BatchManager) Create(items []models.BatchItem) (*models.BatchJob, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("problems array is required")
	}
	if len(items) > MaxBatchSize {
		return nil, fmt.Errorf("maximum %d problems per batch", MaxBatchSize)
	}

	job := &models.BatchJob{
		ID:            uuid.NewString(),
		Status:        models.BatchPending,
		TotalProblems: len(items),
		StartedAt:     time.Now().UTC(),
		Results:       []models.BatchResult{},
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.log.Infow("batch job created", "jobId", job.ID, "totalProblems", job.TotalProblems)
	go m.run(job.ID, items)

	return m.snapshot(job.ID)
}

// run processes items sequentially. Item failures land in that item's
// result entry; the job itself always reaches "completed".
func (m *BatchManager) run(jobID string, items []models.BatchItem) {
	ctx := context.Background()

	m.update(jobID, func(job *models.BatchJob) {
		job.Status = models.BatchProcessing
	})

	for _, item := range items {
		problem, err := m.service.StructureProblem(ctx, item.Content, item.Source)

		var result models.BatchResult
		if err != nil {
			m.log.Warnw("batch item failed", "jobId", jobID, "error", err)
			result = models.BatchResult{
				ProblemID: IDOf(item.Content),
				Status:    models.ResultError,
				Error:     err.Error(),
			}
		} else {
			result = models.BatchResult{
				ProblemID: problem.ID,
				Status:    models.ResultSuccess,
				Problem:   problem,
			}
		}

		m.update(jobID, func(job *models.BatchJob) {
			job.Results = append(job.Results, result)
			job.ProcessedProblems++
		})
	}

	now := time.Now().UTC()
	m.update(jobID, func(job *models.BatchJob) {
		job.Status = models.BatchCompleted
		job.CompletedAt = &now
	})
	m.stats.BatchJobCompleted()
	m.log.Infow("batch job completed", "jobId", jobID)
}

func (m *BatchManager) update(jobID string, fn func(job *models.BatchJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		fn(job)
	}
}

// Get returns a consistent snapshot of the job record.
func (m *BatchManager) Get(jobID string) (*models.BatchJob, error) {
	return m.snapshot(jobID)
}

func (m *BatchManager) snapshot(jobID string) (*models.BatchJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("batch job %s: %w", jobID, ErrNotFound)
	}

	copied := *job
	copied.Results = make([]models.BatchResult, len(job.Results))
	copy(copied.Results, job.Results)
	return &copied, nil
}
