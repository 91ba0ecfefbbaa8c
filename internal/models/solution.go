package models

import "time"

type ReasoningLevel string

const (
	ReasoningLow    ReasoningLevel = "low"
	ReasoningMedium ReasoningLevel = "medium"
	ReasoningHigh   ReasoningLevel = "high"
)

var ValidReasoningLevels = map[ReasoningLevel]bool{
	ReasoningLow:    true,
	ReasoningMedium: true,
	ReasoningHigh:   true,
}

type SolutionStep struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
	Explanation string `json:"explanation"`
	Equation    string `json:"equation,omitempty"`
}

type AlternativeMethod struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Verification struct {
	Method string `json:"method,omitempty"`
	Result string `json:"result,omitempty"`
}

type ChainOfThoughtStep struct {
	Thought     string  `json:"thought"`
	Action      string  `json:"action"`
	Observation string  `json:"observation"`
	Confidence  float64 `json:"confidence"`
}

// Solution gets a fresh ID per generation; the cache key is
// (problemId, reasoningLevel, includeAlternatives), not the ID.
type Solution struct {
	ID                 string               `json:"id"`
	ProblemID          string               `json:"problemId"`
	Steps              []SolutionStep       `json:"steps"`
	FinalAnswer        string               `json:"finalAnswer"`
	Explanation        string               `json:"explanation"`
	AlternativeMethods []AlternativeMethod  `json:"alternativeMethods"`
	CommonMistakes     []string             `json:"commonMistakes"`
	Verification       *Verification        `json:"verification"`
	ChainOfThought     []ChainOfThoughtStep `json:"chainOfThought,omitempty"`
	ConfidenceScore    float64              `json:"confidenceScore"`
	GeneratedBy        string               `json:"generatedBy"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

type SolutionRequest struct {
	ProblemID           string         `json:"problemId"`
	ReasoningLevel      ReasoningLevel `json:"reasoningLevel,omitempty"`
	IncludeAlternatives *bool          `json:"includeAlternatives,omitempty"`
	RawContent          string         `json:"rawContent,omitempty"`
}

type StreamSolutionRequest struct {
	ProblemContent string         `json:"problemContent"`
	ReasoningLevel ReasoningLevel `json:"reasoningLevel,omitempty"`
}
