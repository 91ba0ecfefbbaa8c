package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mathbeast/backend/internal/models"
)

// ErrNoJSON marks a gateway response with no decodable JSON object.
// Callers decide whether that is recoverable.
var ErrNoJSON = errors.New("no parseable JSON object in response")

// SolutionPayload is the model's raw solution object before scoring and
// identity assignment.
type SolutionPayload struct {
	Steps              []models.SolutionStep       `json:"steps"`
	FinalAnswer        string                      `json:"finalAnswer"`
	Explanation        string                      `json:"explanation"`
	AlternativeMethods []models.AlternativeMethod  `json:"alternativeMethods"`
	CommonMistakes     []string                    `json:"commonMistakes"`
	Verification       *models.Verification        `json:"verification"`
	ChainOfThought     []models.ChainOfThoughtStep `json:"chainOfThought"`
}

// ExtractJSONObject returns the first balanced JSON object embedded in
// free text, after stripping markdown code fences. String literals are
// honored so braces inside them don't unbalance the scan.
func ExtractJSONObject(text string) (string, error) {
	cleaned := stripCodeFences(text)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return cleaned[start : i+1], nil
				}
			}
		}
	}

	return "", ErrNoJSON
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// ParseClassification decodes a classification object out of the
// gateway's text response. A response with no balanced JSON object, or
// one that fails to decode, returns an error wrapping ErrNoJSON.
func ParseClassification(responseBody string) (*models.Classification, error) {
	obj, err := ExtractJSONObject(responseBody)
	if err != nil {
		return nil, err
	}

	var c models.Classification
	if err := json.Unmarshal([]byte(obj), &c); err != nil {
		return nil, fmt.Errorf("decode classification: %w", ErrNoJSON)
	}

	// Fill holes the model left rather than rejecting the response.
	if !models.ValidTopics[c.MainTopic] {
		c.MainTopic = models.TopicAlgebra
	}
	if !models.ValidDifficulties[c.DifficultyLevel] {
		c.DifficultyLevel = models.DifficultyIntermediate
	}
	if !models.ValidProblemTypes[c.ProblemType] {
		c.ProblemType = models.ProblemFreeResponse
	}
	if c.EstimatedSolveTime <= 0 {
		c.EstimatedSolveTime = 5
	}
	if c.CompetitionLevel == "" {
		c.CompetitionLevel = models.CompetitionNone
	}
	if c.Subtopics == nil {
		c.Subtopics = []string{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.KeyConcepts == nil {
		c.KeyConcepts = []string{}
	}
	if c.PrerequisiteTopics == nil {
		c.PrerequisiteTopics = []string{}
	}

	return &c, nil
}

// ParseSolution decodes a solution payload out of the gateway's text
// response. Unlike classification there is no fallback; an unusable
// response is the caller's error.
func ParseSolution(responseBody string) (*SolutionPayload, error) {
	obj, err := ExtractJSONObject(responseBody)
	if err != nil {
		return nil, fmt.Errorf("parse solution: %w", err)
	}

	var p SolutionPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("decode solution: %w", err)
	}

	if p.Steps == nil {
		p.Steps = []models.SolutionStep{}
	}
	if p.AlternativeMethods == nil {
		p.AlternativeMethods = []models.AlternativeMethod{}
	}
	if p.CommonMistakes == nil {
		p.CommonMistakes = []string{}
	}

	return &p, nil
}

// ParseChainOfThought pulls a JSON array of reasoning steps out of free
// text. Failures yield an empty slice, not an error.
func ParseChainOfThought(responseBody string) []models.ChainOfThoughtStep {
	cleaned := stripCodeFences(responseBody)
	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start < 0 || end <= start {
		return []models.ChainOfThoughtStep{}
	}

	var steps []models.ChainOfThoughtStep
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &steps); err != nil {
		return []models.ChainOfThoughtStep{}
	}
	return steps
}
