package engine

import "github.com/mathbeast/backend/internal/generator"

// Confidence weights per section of a generated solution. The total
// caps at 1.0.
const (
	weightSteps          = 0.3
	weightFinalAnswer    = 0.3
	weightExplanation    = 0.2
	weightVerification   = 0.1
	weightChainOfThought = 0.1
)

// ConfidenceScore rates a solution payload by which sections the model
// actually filled in. It is a structural heuristic, not a correctness
// check.
func ConfidenceScore(payload *generator.SolutionPayload) float64 {
	score := 0.0

	if len(payload.Steps) > 0 {
		score += weightSteps
	}
	if payload.FinalAnswer != "" {
		score += weightFinalAnswer
	}
	if payload.Explanation != "" {
		score += weightExplanation
	}
	if payload.Verification != nil && (payload.Verification.Method != "" || payload.Verification.Result != "") {
		score += weightVerification
	}
	if len(payload.ChainOfThought) > 0 {
		score += weightChainOfThought
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
