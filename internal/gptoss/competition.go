package gptoss

import (
	"context"
	"fmt"
	"time"

	"github.com/mathbeast/backend/internal/models"
)

// normalizeProblem fills the optional fields a client may omit so the
// prompt builder always sees a complete problem.
func normalizeProblem(p *models.CompetitionProblem) models.CompetitionProblem {
	out := *p
	if out.ID == "" {
		out.ID = fmt.Sprintf("comp_%d", time.Now().UnixMilli())
	}
	if out.Competition == "" {
		out.Competition = "other"
	}
	if out.Year == 0 {
		out.Year = time.Now().Year()
	}
	if out.ProblemNumber == 0 {
		out.ProblemNumber = 1
	}
	if out.Difficulty == 0 {
		out.Difficulty = 5
	}
	if out.Topics == nil {
		out.Topics = []string{}
	}
	if out.Techniques == nil {
		out.Techniques = []string{}
	}
	return out
}

// SolveCompetition runs a competition problem through the gateway and
// parses the harmony-format answer. Every call feeds the inference
// counters, successful or not.
func (s *Service) SolveCompetition(ctx context.Context, problem *models.CompetitionProblem, level models.ReasoningLevel) (*models.CompetitionResponse, error) {
	if level == "" {
		level = models.ReasoningHigh
	}

	full := normalizeProblem(problem)

	s.mu.Lock()
	s.inference.RequestsTotal++
	s.mu.Unlock()

	start := time.Now()
	solution, tokens, err := s.gen.SolveCompetition(ctx, &full, level)
	if err != nil {
		return nil, fmt.Errorf("solve competition problem: %w", err)
	}
	s.recordInference(time.Since(start), tokens)

	return &models.CompetitionResponse{
		Problem:  full,
		Solution: *solution,
		Metadata: map[string]interface{}{
			"modelUsed":      "GPT-OSS-120B",
			"reasoningLevel": level,
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// StreamCompetition relays raw model text chunk by chunk.
func (s *Service) StreamCompetition(ctx context.Context, problem *models.CompetitionProblem, fn func(chunk string) error) error {
	full := normalizeProblem(problem)

	s.mu.Lock()
	s.inference.RequestsTotal++
	s.mu.Unlock()

	start := time.Now()
	tokens := 0
	err := s.gen.StreamCompetition(ctx, &full, func(chunk string) error {
		tokens += len(chunk)
		return fn(chunk)
	})
	if err != nil {
		return fmt.Errorf("stream competition solution: %w", err)
	}
	s.recordInference(time.Since(start), tokens)
	return nil
}
