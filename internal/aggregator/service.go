package aggregator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/engine"
	"github.com/mathbeast/backend/internal/models"
)

var ErrSourceNotFound = errors.New("source not found")

// Service pulls problems from the registered corpora and runs them
// through the structuring pipeline. Sources are simulated: each sync
// serves a fixed sample set instead of a live fetch.
type Service struct {
	mu      sync.RWMutex
	sources []models.DataSource
	engine  *engine.Service
	log     *zap.SugaredLogger
}

type sampleProblem struct {
	content string
	source  string
}

func NewService(engineSvc *engine.Service, log *zap.SugaredLogger) *Service {
	return &Service{
		sources: defaultSources(),
		engine:  engineSvc,
		log:     log,
	}
}

func defaultSources() []models.DataSource {
	now := time.Now()
	return []models.DataSource{
		{ID: "khan_academy", Name: "Khan Academy", URL: "https://www.khanacademy.org", Type: models.AccessAPI, Status: models.SourceActive, ProblemCount: 15420, LastSync: now.Add(-30 * time.Minute), Enabled: true},
		{ID: "aops", Name: "Art of Problem Solving", URL: "https://artofproblemsolving.com", Type: models.AccessScrape, Status: models.SourceActive, ProblemCount: 8750, LastSync: now.Add(-45 * time.Minute), Enabled: true},
		{ID: "mit_ocw", Name: "MIT OpenCourseWare", URL: "https://ocw.mit.edu", Type: models.AccessScrape, Status: models.SourceActive, ProblemCount: 4200, LastSync: now.Add(-2 * time.Hour), Enabled: true},
		{ID: "project_euler", Name: "Project Euler", URL: "https://projecteuler.net", Type: models.AccessScrape, Status: models.SourceActive, ProblemCount: 850, LastSync: now.Add(-time.Hour), Enabled: true},
		{ID: "brilliant", Name: "Brilliant.org", URL: "https://brilliant.org", Type: models.AccessScrape, Status: models.SourceActive, ProblemCount: 6300, LastSync: now.Add(-90 * time.Minute), Enabled: true},
		{ID: "arxiv", Name: "arXiv Math", URL: "https://arxiv.org/list/math/recent", Type: models.AccessFeed, Status: models.SourceActive, ProblemCount: 2100, LastSync: now.Add(-4 * time.Hour), Enabled: true},
		{ID: "stackexchange", Name: "Math Stack Exchange", URL: "https://math.stackexchange.com", Type: models.AccessAPI, Status: models.SourceActive, ProblemCount: 12800, LastSync: now.Add(-15 * time.Minute), Enabled: true},
		{ID: "openstax", Name: "OpenStax", URL: "https://openstax.org", Type: models.AccessScrape, Status: models.SourceActive, ProblemCount: 3500, LastSync: now.Add(-3 * time.Hour), Enabled: true},
	}
}

var sampleProblems = []sampleProblem{
	{"Solve the quadratic equation: x² - 5x + 6 = 0", "khan_academy"},
	{"Find the derivative of f(x) = 3x³ - 2x² + 5x - 7", "mit_ocw"},
	{"A triangle has sides of length 5, 12, and 13. Find the area of the triangle.", "brilliant"},
	{"If you roll two fair six-sided dice, what is the probability that the sum is 7?", "aops"},
	{"Find the sum of the first 100 positive integers using Gauss's method.", "project_euler"},
	{"Evaluate the integral: ∫(2x + 3)dx from 0 to 5", "mit_ocw"},
	{"Prove that √2 is irrational using proof by contradiction.", "arxiv"},
	{"How many ways can you arrange the letters in the word 'MATHEMATICS'?", "stackexchange"},
}

// ── Sync ──────────────────────────────────────────────

// AggregateFromSource structures every sample problem belonging to the
// source and folds the batch into the source's running counters. An
// unknown source reports status "error" rather than failing the call.
func (s *Service) AggregateFromSource(ctx context.Context, sourceID string) models.SourceSyncResult {
	s.mu.RLock()
	known := s.indexOfLocked(sourceID) >= 0
	s.mu.RUnlock()
	if !known {
		return models.SourceSyncResult{Count: 0, Problems: []models.Problem{}, Status: "error"}
	}

	processed := []models.Problem{}
	for _, raw := range sampleProblems {
		if raw.source != sourceID {
			continue
		}
		problem, err := s.engine.StructureProblem(ctx, raw.content, raw.source)
		if err != nil {
			s.log.Errorw("failed to process problem", "source", sourceID, "error", err)
			continue
		}
		processed = append(processed, *problem)
	}

	s.mu.Lock()
	if i := s.indexOfLocked(sourceID); i >= 0 {
		s.sources[i].LastSync = time.Now()
		s.sources[i].ProblemCount += len(processed)
	}
	s.mu.Unlock()

	return models.SourceSyncResult{Count: len(processed), Problems: processed, Status: "success"}
}

// AggregateAll syncs every enabled source. A failing source is
// recorded in the result map and never aborts the run.
func (s *Service) AggregateAll(ctx context.Context) models.AggregateAllResponse {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		if src.Enabled {
			ids = append(ids, src.ID)
		}
	}
	s.mu.RUnlock()

	results := make(map[string]models.SourceRunResult, len(ids))
	for _, id := range ids {
		res := s.AggregateFromSource(ctx, id)
		results[id] = models.SourceRunResult{Count: res.Count, Status: res.Status}
	}

	return models.AggregateAllResponse{
		Status:    "completed",
		Results:   results,
		Stats:     s.Stats(),
		Timestamp: time.Now().UTC(),
	}
}

// ── Registry ──────────────────────────────────────────

func (s *Service) Sources() []models.DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DataSource, len(s.sources))
	copy(out, s.sources)
	return out
}

// ToggleSource flips only the enabled flag. Disabled sources keep
// their counters and remain visible in the registry.
func (s *Service) ToggleSource(sourceID string, enabled bool) (*models.DataSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(sourceID)
	if i < 0 {
		return nil, ErrSourceNotFound
	}
	s.sources[i].Enabled = enabled
	src := s.sources[i]
	return &src, nil
}

func (s *Service) indexOfLocked(sourceID string) int {
	for i := range s.sources {
		if s.sources[i].ID == sourceID {
			return i
		}
	}
	return -1
}

// ── Stats & Search ────────────────────────────────────

// Stats aggregates counters across the registry and the structured
// problem store. Topic and difficulty histograms fall back to display
// figures until the store has real entries.
func (s *Service) Stats() models.AggregationStats {
	bySource := map[string]int{}
	lastUpdate := map[string]time.Time{}
	total := 0

	s.mu.RLock()
	for _, src := range s.sources {
		bySource[src.Name] = src.ProblemCount
		lastUpdate[src.ID] = src.LastSync
		total += src.ProblemCount
	}
	s.mu.RUnlock()

	byTopic := map[string]int{}
	byDifficulty := map[string]int{}
	for _, p := range s.engine.AllProblems() {
		byTopic[string(p.Topic)]++
		byDifficulty[string(p.Difficulty)]++
	}

	if len(byTopic) == 0 {
		byTopic = map[string]int{
			"algebra":       12500,
			"calculus":      8200,
			"geometry":      6800,
			"statistics":    5400,
			"number_theory": 3200,
		}
	}
	if len(byDifficulty) == 0 {
		byDifficulty = map[string]int{
			"beginner":     15000,
			"intermediate": 22000,
			"advanced":     12000,
			"expert":       4920,
		}
	}

	return models.AggregationStats{
		TotalProblems: total,
		BySource:      bySource,
		ByTopic:       byTopic,
		ByDifficulty:  byDifficulty,
		LastUpdate:    lastUpdate,
	}
}

// Search filters the structured store; all filters AND together and
// Total reports the match count before pagination.
func (s *Service) Search(filters models.SearchFilters) ([]models.Problem, int) {
	results := s.engine.AllProblems()

	if filters.Topic != "" {
		results = filterProblems(results, func(p models.Problem) bool { return p.Topic == filters.Topic })
	}
	if filters.Difficulty != "" {
		results = filterProblems(results, func(p models.Problem) bool { return p.Difficulty == filters.Difficulty })
	}
	if filters.Source != "" {
		results = filterProblems(results, func(p models.Problem) bool { return p.Source == filters.Source })
	}
	if filters.Query != "" {
		query := strings.ToLower(filters.Query)
		results = filterProblems(results, func(p models.Problem) bool {
			if strings.Contains(strings.ToLower(p.RawContent), query) {
				return true
			}
			for _, t := range p.Tags {
				if strings.Contains(strings.ToLower(t), query) {
					return true
				}
			}
			return false
		})
	}

	total := len(results)

	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	if offset >= total {
		return []models.Problem{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return results[offset:end], total
}

func filterProblems(problems []models.Problem, keep func(models.Problem) bool) []models.Problem {
	out := problems[:0:0]
	for _, p := range problems {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
