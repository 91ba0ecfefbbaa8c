package engine

import (
	"strings"

	"github.com/mathbeast/backend/internal/models"
)

// HeuristicClassification is the recovery path when the gateway's
// response carries no usable JSON. It scans the raw problem text for
// domain keywords and otherwise defaults to intermediate algebra.
func HeuristicClassification(rawContent string) *models.Classification {
	c := &models.Classification{
		MainTopic:          models.TopicAlgebra,
		Subtopics:          []string{},
		DifficultyLevel:    models.DifficultyIntermediate,
		EstimatedSolveTime: 5,
		Tags:               []string{},
		RequiresCalculator: false,
		RequiresDrawing:    false,
		ProblemType:        models.ProblemFreeResponse,
		KeyConcepts:        []string{},
		PrerequisiteTopics: []string{},
		CompetitionLevel:   models.CompetitionNone,
	}

	lower := strings.ToLower(rawContent)
	switch {
	case containsAny(lower, "calculus", "derivative", "integral"):
		c.MainTopic = models.TopicCalculus
	case containsAny(lower, "geometry", "triangle", "circle"):
		c.MainTopic = models.TopicGeometry
	case containsAny(lower, "probability", "statistics"):
		c.MainTopic = models.TopicStatistics
	case containsAny(lower, "proof", "prime", "divisible"):
		c.MainTopic = models.TopicNumberTheory
	}

	return c
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
