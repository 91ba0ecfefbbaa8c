package generator

import (
	"context"
	"fmt"

	"github.com/mathbeast/backend/internal/models"
)

// Per-task sampling temperatures. Classification and competition work
// run cold for accuracy; hints get a little variety.
const (
	tempClassification = 0.1
	tempSolution       = 0.2
	tempHint           = 0.3
	tempCompetition    = 0.1
)

// Generator wraps a TextClient and adds the math-specific prompt and
// parse steps for each pipeline stage.
type Generator struct {
	llm   TextClient
	model string
}

func NewGenerator(cfg Config) (*Generator, error) {
	llm, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if cfg.Provider == "mock" || cfg.Provider == "" {
		model = "mock"
	}

	return &Generator{llm: llm, model: model}, nil
}

// NewGeneratorWithClient is for tests and custom wiring.
func NewGeneratorWithClient(llm TextClient, model string) *Generator {
	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// ClassifyProblem asks the gateway to classify raw problem text.
// Gateway failures surface as errors; an unusable response surfaces as
// an error wrapping ErrNoJSON so callers can fall back.
func (g *Generator) ClassifyProblem(ctx context.Context, rawContent, source string) (*models.Classification, error) {
	prompt := BuildClassificationPrompt(rawContent, source)

	resp, err := g.llm.Generate(ctx, "", prompt, tempClassification)
	if err != nil {
		return nil, fmt.Errorf("classify problem: %w", err)
	}

	return ParseClassification(resp.Content)
}

func (g *Generator) GenerateSolution(ctx context.Context, problem *models.Problem, level models.ReasoningLevel, includeAlternatives bool) (*SolutionPayload, error) {
	systemPrompt := BuildSolutionSystemPrompt(problem, level, includeAlternatives)

	resp, err := g.llm.Generate(ctx, systemPrompt, problem.RawContent, tempSolution)
	if err != nil {
		return nil, fmt.Errorf("generate solution: %w", err)
	}

	payload, err := ParseSolution(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse solution response: %w", err)
	}

	return payload, nil
}

// GenerateHint returns plain hint text; no JSON parsing on this path.
func (g *Generator) GenerateHint(ctx context.Context, problem *models.Problem, currentStep int, userAnswer string, hintLevel int) (string, error) {
	prompt := BuildHintPrompt(problem, currentStep, userAnswer, hintLevel)

	resp, err := g.llm.Generate(ctx, "", prompt, tempHint)
	if err != nil {
		return "", fmt.Errorf("generate hint: %w", err)
	}

	return resp.Content, nil
}

func (g *Generator) StreamSolution(ctx context.Context, problemContent string, level models.ReasoningLevel, fn func(chunk string) error) error {
	systemPrompt := BuildStreamSystemPrompt(level)
	return g.llm.Stream(ctx, systemPrompt, problemContent, tempSolution, fn)
}

func (g *Generator) SolveCompetition(ctx context.Context, problem *models.CompetitionProblem, level models.ReasoningLevel) (*models.HarmonySolution, int, error) {
	systemPrompt := BuildCompetitionSystemPrompt(problem, level)

	resp, err := g.llm.Generate(ctx, systemPrompt, problem.Content, tempCompetition)
	if err != nil {
		return nil, 0, fmt.Errorf("solve competition problem: %w", err)
	}

	solution := ParseHarmony(resp.Content)
	return &solution, resp.OutputTokens, nil
}

func (g *Generator) StreamCompetition(ctx context.Context, problem *models.CompetitionProblem, fn func(chunk string) error) error {
	systemPrompt := BuildCompetitionStreamSystemPrompt()
	return g.llm.Stream(ctx, systemPrompt, problem.Content, tempCompetition, fn)
}
