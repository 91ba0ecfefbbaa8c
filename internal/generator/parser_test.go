package generator

import (
	"errors"
	"testing"

	"github.com/mathbeast/backend/internal/models"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"mainTopic": "algebra"}`,
			want:  `{"mainTopic": "algebra"}`,
		},
		{
			name:  "fenced json",
			input: "```json\n{\"mainTopic\": \"calculus\"}\n```",
			want:  `{"mainTopic": "calculus"}`,
		},
		{
			name:  "object inside prose",
			input: `Here is the classification: {"mainTopic": "geometry"} Hope that helps!`,
			want:  `{"mainTopic": "geometry"}`,
		},
		{
			name:  "nested objects",
			input: `{"outer": {"inner": 1}, "x": 2}`,
			want:  `{"outer": {"inner": 1}, "x": 2}`,
		},
		{
			name:  "braces inside string literal",
			input: `{"equation": "f(x) = {x} + \"}\""}`,
			want:  `{"equation": "f(x) = {x} + \"}\""}`,
		},
		{
			name:    "no object",
			input:   "I cannot classify this problem.",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			input:   `{"mainTopic": "algebra"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSON) {
					t.Fatalf("expected ErrNoJSON, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseClassificationDefaults(t *testing.T) {
	c, err := ParseClassification(`{"mainTopic": "not_a_topic", "estimatedSolveTime": 0}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.MainTopic != models.TopicAlgebra {
		t.Errorf("expected algebra default, got %s", c.MainTopic)
	}
	if c.DifficultyLevel != models.DifficultyIntermediate {
		t.Errorf("expected intermediate default, got %s", c.DifficultyLevel)
	}
	if c.ProblemType != models.ProblemFreeResponse {
		t.Errorf("expected free_response default, got %s", c.ProblemType)
	}
	if c.EstimatedSolveTime != 5 {
		t.Errorf("expected 5 minute default, got %d", c.EstimatedSolveTime)
	}
	if c.CompetitionLevel != models.CompetitionNone {
		t.Errorf("expected none competition level, got %s", c.CompetitionLevel)
	}
	if c.Subtopics == nil || c.Tags == nil || c.KeyConcepts == nil || c.PrerequisiteTopics == nil {
		t.Error("expected nil slices to be normalized to empty")
	}
}

func TestParseClassificationValidFields(t *testing.T) {
	body := "```json\n" + `{
		"mainTopic": "calculus",
		"subtopics": ["derivatives"],
		"difficultyLevel": "advanced",
		"estimatedSolveTime": 12,
		"tags": ["polynomial"],
		"problemType": "free_response",
		"competitionLevel": "AIME"
	}` + "\n```"

	c, err := ParseClassification(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.MainTopic != models.TopicCalculus {
		t.Errorf("got topic %s", c.MainTopic)
	}
	if c.DifficultyLevel != models.DifficultyAdvanced {
		t.Errorf("got difficulty %s", c.DifficultyLevel)
	}
	if c.EstimatedSolveTime != 12 {
		t.Errorf("got solve time %d", c.EstimatedSolveTime)
	}
	if c.CompetitionLevel != models.CompetitionAIME {
		t.Errorf("got competition level %s", c.CompetitionLevel)
	}
}

func TestParseClassificationNoJSON(t *testing.T) {
	_, err := ParseClassification("the model refused to answer")
	if !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}

func TestParseSolution(t *testing.T) {
	body := `{
		"steps": [{"stepNumber": 1, "description": "Factor", "explanation": "Split the quadratic", "equation": "(x-2)(x-3)=0"}],
		"finalAnswer": "x = 2 or x = 3",
		"explanation": "Factoring gives the roots directly.",
		"verification": {"method": "substitution", "result": "both roots satisfy the equation"}
	}`

	p, err := ParseSolution(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(p.Steps))
	}
	if p.FinalAnswer != "x = 2 or x = 3" {
		t.Errorf("got final answer %q", p.FinalAnswer)
	}
	if p.Verification == nil || p.Verification.Method != "substitution" {
		t.Error("verification not parsed")
	}
	if p.AlternativeMethods == nil || p.CommonMistakes == nil {
		t.Error("expected nil slices to be normalized to empty")
	}
}

func TestParseSolutionNoFallback(t *testing.T) {
	if _, err := ParseSolution("no json here"); err == nil {
		t.Fatal("expected error for unusable solution response")
	}
}

func TestParseChainOfThought(t *testing.T) {
	steps := ParseChainOfThought(`Reasoning follows: [{"thought": "factor", "action": "split", "observation": "roots found", "confidence": 0.9}]`)
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if steps[0].Confidence != 0.9 {
		t.Errorf("got confidence %f", steps[0].Confidence)
	}

	if got := ParseChainOfThought("nothing useful"); len(got) != 0 {
		t.Errorf("expected empty slice, got %d steps", len(got))
	}
}

func TestStripCodeFences(t *testing.T) {
	if got := stripCodeFences("```json\n{\"a\":1}\n```"); got != `{"a":1}` {
		t.Errorf("got %q", got)
	}
	if got := stripCodeFences("plain text"); got != "plain text" {
		t.Errorf("got %q", got)
	}
}
