package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/generator"
	"github.com/mathbeast/backend/internal/models"
)

// stubClient scripts gateway responses per call.
type stubClient struct {
	generate func(systemPrompt, userPrompt string) (string, error)
	calls    int
}

func (c *stubClient) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (*generator.Response, error) {
	c.calls++
	content, err := c.generate(systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}
	return &generator.Response{Content: content, OutputTokens: len(content)}, nil
}

func (c *stubClient) Stream(ctx context.Context, systemPrompt, userPrompt string, temperature float64, fn func(chunk string) error) error {
	content, err := c.generate(systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	for _, chunk := range strings.SplitAfter(content, " ") {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

const classificationBody = `{
	"mainTopic": "algebra",
	"subtopics": ["linear_equations"],
	"difficultyLevel": "beginner",
	"estimatedSolveTime": 3,
	"tags": ["equation"],
	"requiresCalculator": false,
	"requiresDrawing": false,
	"problemType": "free_response",
	"keyConcepts": ["isolating variables"],
	"prerequisiteTopics": ["arithmetic"],
	"competitionLevel": "none"
}`

const solutionBody = `{
	"steps": [{"stepNumber": 1, "description": "Subtract 1", "explanation": "Isolate x", "equation": "x = 1"}],
	"finalAnswer": "x = 1",
	"explanation": "Subtracting 1 from both sides isolates x.",
	"commonMistakes": ["sign errors"],
	"verification": {"method": "substitution", "result": "1 + 1 = 2 holds"}
}`

func okClassificationClient() *stubClient {
	return &stubClient{generate: func(systemPrompt, userPrompt string) (string, error) {
		if strings.Contains(systemPrompt, "finalAnswer") {
			return solutionBody, nil
		}
		if strings.Contains(userPrompt, "mainTopic") {
			return classificationBody, nil
		}
		return "Try isolating the variable on one side.", nil
	}}
}

func newTestService(t *testing.T, client *stubClient) *Service {
	t.Helper()
	gen := generator.NewGeneratorWithClient(client, "test-model")
	return NewService(NewStore(), gen, NewStats(), zap.NewNop().Sugar())
}

func TestStructureProblemIdempotent(t *testing.T) {
	client := okClassificationClient()
	svc := newTestService(t, client)
	ctx := context.Background()

	first, err := svc.StructureProblem(ctx, "Solve x + 1 = 2", "khan_academy")
	if err != nil {
		t.Fatalf("structure problem: %v", err)
	}
	if first.Topic != models.TopicAlgebra {
		t.Errorf("got topic %s", first.Topic)
	}
	if first.ID == "" || len(first.ID) != 12 {
		t.Errorf("unexpected id %q", first.ID)
	}

	// Same text from a different source is a cache hit.
	second, err := svc.StructureProblem(ctx, "Solve x + 1 = 2", "aops")
	if err != nil {
		t.Fatalf("structure problem again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if second.Source != "khan_academy" {
		t.Errorf("cached record source changed to %s", second.Source)
	}
	if client.calls != 1 {
		t.Errorf("gateway called %d times, want 1", client.calls)
	}

	stats := svc.Stats()
	if stats.CacheHits != 1 || stats.CacheMisses != 1 {
		t.Errorf("got hits=%d misses=%d", stats.CacheHits, stats.CacheMisses)
	}
	if stats.ProblemsProcessed != 1 {
		t.Errorf("got problemsProcessed=%d", stats.ProblemsProcessed)
	}
}

func TestClassifyHeuristicFallback(t *testing.T) {
	client := &stubClient{generate: func(_, _ string) (string, error) {
		return "I'd rather not produce JSON today.", nil
	}}
	svc := newTestService(t, client)

	c, err := svc.Classify(context.Background(), "Find the derivative of x^2", "test")
	if err != nil {
		t.Fatalf("expected heuristic fallback, got error: %v", err)
	}
	if c.MainTopic != models.TopicCalculus {
		t.Errorf("got topic %s, want calculus", c.MainTopic)
	}
	if c.DifficultyLevel != models.DifficultyIntermediate {
		t.Errorf("got difficulty %s", c.DifficultyLevel)
	}
}

func TestClassifyGatewayErrorPropagates(t *testing.T) {
	gatewayErr := errors.New("gateway unavailable")
	client := &stubClient{generate: func(_, _ string) (string, error) {
		return "", gatewayErr
	}}
	svc := newTestService(t, client)

	if _, err := svc.Classify(context.Background(), "Solve x + 1 = 2", "test"); !errors.Is(err, gatewayErr) {
		t.Fatalf("expected gateway error to propagate, got %v", err)
	}
}

func TestGenerateSolutionCaching(t *testing.T) {
	client := okClassificationClient()
	svc := newTestService(t, client)
	ctx := context.Background()

	problem, err := svc.StructureProblem(ctx, "Solve x + 1 = 2", "test")
	if err != nil {
		t.Fatalf("structure problem: %v", err)
	}

	low, err := svc.GenerateSolution(ctx, problem, models.ReasoningLow, true)
	if err != nil {
		t.Fatalf("generate solution: %v", err)
	}
	if low.FinalAnswer != "x = 1" {
		t.Errorf("got final answer %q", low.FinalAnswer)
	}
	if !strings.Contains(low.GeneratedBy, "low reasoning") {
		t.Errorf("got generatedBy %q", low.GeneratedBy)
	}

	// Different reasoning level misses the cache.
	callsBefore := client.calls
	if _, err := svc.GenerateSolution(ctx, problem, models.ReasoningHigh, true); err != nil {
		t.Fatalf("generate solution high: %v", err)
	}
	if client.calls != callsBefore+1 {
		t.Error("expected a fresh gateway call for a different reasoning level")
	}

	// Same key hits the cache.
	callsBefore = client.calls
	cached, err := svc.GenerateSolution(ctx, problem, models.ReasoningLow, true)
	if err != nil {
		t.Fatalf("generate solution cached: %v", err)
	}
	if client.calls != callsBefore {
		t.Error("expected cache hit, gateway was called")
	}
	if cached.ID != low.ID {
		t.Error("cache returned a different solution")
	}
}

func TestConfidenceScore(t *testing.T) {
	full := &generator.SolutionPayload{
		Steps:          []models.SolutionStep{{StepNumber: 1}},
		FinalAnswer:    "42",
		Explanation:    "direct computation",
		Verification:   &models.Verification{Method: "substitution", Result: "holds"},
		ChainOfThought: []models.ChainOfThoughtStep{{Thought: "compute"}},
	}
	if got := ConfidenceScore(full); got != 1.0 {
		t.Errorf("got %f, want 1.0", got)
	}

	partial := &generator.SolutionPayload{FinalAnswer: "42", Explanation: "done"}
	if got := ConfidenceScore(partial); got != 0.5 {
		t.Errorf("got %f, want 0.5", got)
	}

	if got := ConfidenceScore(&generator.SolutionPayload{}); got != 0.0 {
		t.Errorf("got %f, want 0", got)
	}
}

func TestGenerateHint(t *testing.T) {
	svc := newTestService(t, okClassificationClient())
	ctx := context.Background()

	problem, err := svc.StructureProblem(ctx, "Solve x + 1 = 2", "test")
	if err != nil {
		t.Fatalf("structure problem: %v", err)
	}

	hint, err := svc.GenerateHint(ctx, models.HintRequest{ProblemID: problem.ID, CurrentStep: 1, HintLevel: 3})
	if err != nil {
		t.Fatalf("generate hint: %v", err)
	}
	if !hint.IsReveal {
		t.Error("level 3 hint should be a reveal")
	}
	if hint.Content == "" {
		t.Error("empty hint content")
	}

	hints := svc.HintsForProblem(problem.ID)
	if len(hints) != 1 {
		t.Fatalf("expected 1 logged hint, got %d", len(hints))
	}
}

func TestGenerateHintUnknownProblem(t *testing.T) {
	svc := newTestService(t, okClassificationClient())

	_, err := svc.GenerateHint(context.Background(), models.HintRequest{ProblemID: "missing", CurrentStep: 1, HintLevel: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveProblemStructuresOnTheFly(t *testing.T) {
	svc := newTestService(t, okClassificationClient())

	problem, err := svc.ResolveProblem(context.Background(), "unknown-id", "Solve 2x = 4")
	if err != nil {
		t.Fatalf("resolve problem: %v", err)
	}
	if problem.Source != "api" {
		t.Errorf("got source %s, want api", problem.Source)
	}

	if _, err := svc.ResolveProblem(context.Background(), "unknown-id", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without raw content, got %v", err)
	}
}

func TestStreamSolution(t *testing.T) {
	svc := newTestService(t, okClassificationClient())

	var sb strings.Builder
	err := svc.StreamSolution(context.Background(), "Solve x + 1 = 2", models.ReasoningMedium, func(chunk string) error {
		sb.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("stream solution: %v", err)
	}
	if sb.Len() == 0 {
		t.Error("no streamed content")
	}
}
