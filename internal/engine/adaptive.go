package engine

import "github.com/mathbeast/backend/internal/models"

// Defaults used when a user has no performance history yet.
const (
	defaultCorrectRate  = 0.5
	defaultAvgSolveTime = 300.0
)

// CorrectRate returns the fraction of correct results, defaulting to
// 0.5 on an empty history.
func CorrectRate(history []models.PerformanceRecord) float64 {
	if len(history) == 0 {
		return defaultCorrectRate
	}
	correct := 0
	for _, r := range history {
		if r.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(history))
}

// AvgSolveTime returns the mean time spent, defaulting to 300 seconds
// on an empty history.
func AvgSolveTime(history []models.PerformanceRecord) float64 {
	if len(history) == 0 {
		return defaultAvgSolveTime
	}
	total := 0.0
	for _, r := range history {
		total += r.TimeSpent
	}
	return total / float64(len(history))
}

// TrailingStreak counts consecutive correct results from the most
// recent entry backward, stopping at the first incorrect one.
func TrailingStreak(history []models.PerformanceRecord) int {
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Correct {
			break
		}
		streak++
	}
	return streak
}

// RecommendDifficulty applies the tier policy in precedence order:
// expert before advanced, so a user who qualifies for both gets the
// higher tier.
func RecommendDifficulty(correctRate float64, streak int) models.Difficulty {
	switch {
	case correctRate >= 0.95 && streak >= 10:
		return models.DifficultyExpert
	case correctRate >= 0.85 && streak >= 5:
		return models.DifficultyAdvanced
	case correctRate < 0.5:
		return models.DifficultyBeginner
	default:
		return models.DifficultyIntermediate
	}
}

// AssessDifficulty is a pure computation over the user's recent
// performance; no gateway call is involved. Topic suggestions come from
// the problems referenced in the history; unknown problem ids are
// skipped, not errored.
func (s *Service) AssessDifficulty(userID string, history []models.PerformanceRecord) models.AdaptiveAssessment {
	rate := CorrectRate(history)
	streak := TrailingStreak(history)

	seen := make(map[models.Topic]bool)
	suggestions := []string{}
	for _, record := range history {
		problem, err := s.store.GetProblem(record.ProblemID)
		if err != nil {
			continue
		}
		if !seen[problem.Topic] && len(suggestions) < 3 {
			seen[problem.Topic] = true
			suggestions = append(suggestions, string(problem.Topic))
		}
	}

	return models.AdaptiveAssessment{
		RecommendedDifficulty: RecommendDifficulty(rate, streak),
		UserPerformance: models.UserPerformance{
			CorrectRate:  rate,
			AvgSolveTime: AvgSolveTime(history),
			StreakLength: streak,
		},
		NextProblemSuggestions: suggestions,
	}
}
