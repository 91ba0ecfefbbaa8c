package engine

import (
	"sync"
	"time"

	"github.com/mathbeast/backend/internal/models"
)

// Stats tracks process-wide pipeline counters. Counters are touched
// from request handlers and background workers alike, so every access
// holds the mutex.
type Stats struct {
	mu                  sync.Mutex
	problemsProcessed   int
	solutionsGenerated  int
	hintsGenerated      int
	cacheHits           int
	cacheMisses         int
	batchJobsCompleted  int
	totalProcessingTime time.Duration
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) CacheHit() {
	s.mu.Lock()
	s.cacheHits++
	s.mu.Unlock()
}

func (s *Stats) CacheMiss() {
	s.mu.Lock()
	s.cacheMisses++
	s.mu.Unlock()
}

func (s *Stats) ProblemProcessed(elapsed time.Duration) {
	s.mu.Lock()
	s.problemsProcessed++
	s.totalProcessingTime += elapsed
	s.mu.Unlock()
}

func (s *Stats) SolutionGenerated() {
	s.mu.Lock()
	s.solutionsGenerated++
	s.mu.Unlock()
}

func (s *Stats) HintGenerated() {
	s.mu.Lock()
	s.hintsGenerated++
	s.mu.Unlock()
}

func (s *Stats) BatchJobCompleted() {
	s.mu.Lock()
	s.batchJobsCompleted++
	s.mu.Unlock()
}

// Snapshot returns a copy with the running average in milliseconds.
func (s *Stats) Snapshot() models.EngineStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	avg := 0.0
	if s.problemsProcessed > 0 {
		avg = float64(s.totalProcessingTime.Milliseconds()) / float64(s.problemsProcessed)
	}

	return models.EngineStats{
		ProblemsProcessed:     s.problemsProcessed,
		SolutionsGenerated:    s.solutionsGenerated,
		HintsGenerated:        s.hintsGenerated,
		CacheHits:             s.cacheHits,
		CacheMisses:           s.cacheMisses,
		BatchJobsCompleted:    s.batchJobsCompleted,
		AverageProcessingTime: avg,
	}
}
