package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/generator"
	"github.com/mathbeast/backend/internal/models"
)

// Service runs the problem-processing pipeline: classification,
// structuring, solution and hint generation, all backed by the
// in-memory store and the text-generation gateway.
type Service struct {
	store *Store
	gen   *generator.Generator
	stats *Stats
	log   *zap.SugaredLogger
}

func NewService(store *Store, gen *generator.Generator, stats *Stats, log *zap.SugaredLogger) *Service {
	return &Service{store: store, gen: gen, stats: stats, log: log}
}

func (s *Service) ModelName() string {
	return s.gen.ModelName()
}

func (s *Service) Stats() models.EngineStats {
	return s.stats.Snapshot()
}

func (s *Service) TotalProblems() int {
	return s.store.ProblemCount()
}

// Classify turns raw problem text into a structured classification.
// Gateway errors propagate; a response with no usable JSON is recovered
// locally with the keyword heuristic and never surfaced as an error.
func (s *Service) Classify(ctx context.Context, rawContent, source string) (*models.Classification, error) {
	c, err := s.gen.ClassifyProblem(ctx, rawContent, source)
	if err != nil {
		if errors.Is(err, generator.ErrNoJSON) {
			s.log.Warnw("classification response unparsable, using heuristic fallback", "source", source)
			return HeuristicClassification(rawContent), nil
		}
		return nil, err
	}
	return c, nil
}

// StructureProblem builds the canonical problem record for raw text.
// Re-submitting identical text is a cache hit and returns the existing
// record unchanged, even if the source differs.
func (s *Service) StructureProblem(ctx context.Context, rawContent, source string) (*models.Problem, error) {
	start := time.Now()
	id := IDOf(rawContent)

	if p, err := s.store.GetProblem(id); err == nil {
		s.stats.CacheHit()
		return p, nil
	}

	s.stats.CacheMiss()

	classification, err := s.Classify(ctx, rawContent, source)
	if err != nil {
		return nil, fmt.Errorf("structure problem: %w", err)
	}

	now := time.Now().UTC()
	problem := &models.Problem{
		ID:                 id,
		RawContent:         rawContent,
		Source:             source,
		Difficulty:         classification.DifficultyLevel,
		Topic:              classification.MainTopic,
		Subtopics:          classification.Subtopics,
		Tags:               classification.Tags,
		EstimatedTime:      classification.EstimatedSolveTime,
		RequiresCalculator: classification.RequiresCalculator,
		RequiresDrawing:    classification.RequiresDrawing,
		StructuredFormat:   classification,
		Metadata: map[string]interface{}{
			"source":             source,
			"processedAt":        now,
			"modelUsed":          s.gen.ModelName(),
			"competitionLevel":   classification.CompetitionLevel,
			"keyConcepts":        classification.KeyConcepts,
			"prerequisiteTopics": classification.PrerequisiteTopics,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	canonical, inserted := s.store.PutProblem(problem)
	if inserted {
		s.stats.ProblemProcessed(time.Since(start))
	}
	return canonical, nil
}

func (s *Service) GetProblem(id string) (*models.Problem, error) {
	return s.store.GetProblem(id)
}

func (s *Service) AllProblems() []models.Problem {
	return s.store.AllProblems()
}

// GenerateSolution returns a cached or freshly generated solution. The
// cache key is (problemId, reasoningLevel, includeAlternatives); no
// heuristic fallback exists on this path, so gateway and parse errors
// propagate.
func (s *Service) GenerateSolution(ctx context.Context, problem *models.Problem, level models.ReasoningLevel, includeAlternatives bool) (*models.Solution, error) {
	key := SolutionKey(problem.ID, level, includeAlternatives)

	if cached, ok := s.store.GetSolution(key); ok {
		s.stats.CacheHit()
		return cached, nil
	}

	s.stats.CacheMiss()

	payload, err := s.gen.GenerateSolution(ctx, problem, level, includeAlternatives)
	if err != nil {
		return nil, err
	}

	s.stats.SolutionGenerated()

	now := time.Now().UTC()
	solution := &models.Solution{
		ID:                 IDOf(fmt.Sprintf("%s:%d", problem.ID, now.UnixNano())),
		ProblemID:          problem.ID,
		Steps:              payload.Steps,
		FinalAnswer:        payload.FinalAnswer,
		Explanation:        payload.Explanation,
		AlternativeMethods: payload.AlternativeMethods,
		CommonMistakes:     payload.CommonMistakes,
		Verification:       payload.Verification,
		ChainOfThought:     payload.ChainOfThought,
		ConfidenceScore:    ConfidenceScore(payload),
		GeneratedBy:        fmt.Sprintf("%s (%s reasoning)", s.gen.ModelName(), level),
		GeneratedAt:        now,
	}

	s.store.PutSolution(key, solution)
	return solution, nil
}

// ResolveProblem looks up a problem for solution generation, structuring
// one on the fly when the id is unknown but raw content was supplied.
func (s *Service) ResolveProblem(ctx context.Context, problemID, rawContent string) (*models.Problem, error) {
	problem, err := s.store.GetProblem(problemID)
	if err == nil {
		return problem, nil
	}
	if rawContent == "" {
		return nil, err
	}
	return s.StructureProblem(ctx, rawContent, "api")
}

// GenerateHint produces one progressive hint and appends it to the
// problem's hint log. The problem must already exist.
func (s *Service) GenerateHint(ctx context.Context, req models.HintRequest) (*models.Hint, error) {
	s.stats.HintGenerated()

	problem, err := s.store.GetProblem(req.ProblemID)
	if err != nil {
		return nil, err
	}

	content, err := s.gen.GenerateHint(ctx, problem, req.CurrentStep, req.UserAnswer, req.HintLevel)
	if err != nil {
		return nil, err
	}

	hint := models.Hint{
		ID:        IDOf(fmt.Sprintf("hint:%s:%d:%d:%d", req.ProblemID, req.CurrentStep, req.HintLevel, time.Now().UnixNano())),
		ProblemID: req.ProblemID,
		StepNum:   req.CurrentStep,
		HintLevel: req.HintLevel,
		Content:   strings.TrimSpace(content),
		IsReveal:  req.HintLevel == 3,
	}

	s.store.AppendHint(hint)
	return &hint, nil
}

func (s *Service) HintsForProblem(problemID string) []models.Hint {
	return s.store.HintsForProblem(problemID)
}

// StreamSolution pipes generated solution text to fn chunk by chunk.
func (s *Service) StreamSolution(ctx context.Context, problemContent string, level models.ReasoningLevel, fn func(chunk string) error) error {
	return s.gen.StreamSolution(ctx, problemContent, level, fn)
}
