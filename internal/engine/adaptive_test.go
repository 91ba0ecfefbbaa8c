package engine

import (
	"context"
	"testing"

	"github.com/mathbeast/backend/internal/models"
)

func record(correct bool, timeSpent float64) models.PerformanceRecord {
	return models.PerformanceRecord{ProblemID: "p", Correct: correct, TimeSpent: timeSpent}
}

func TestCorrectRate(t *testing.T) {
	history := []models.PerformanceRecord{
		record(true, 60), record(true, 90), record(false, 120), record(true, 30),
	}
	if got := CorrectRate(history); got != 0.75 {
		t.Errorf("got %f, want 0.75", got)
	}
}

func TestCorrectRateEmptyHistory(t *testing.T) {
	if got := CorrectRate(nil); got != 0.5 {
		t.Errorf("got %f, want default 0.5", got)
	}
}

func TestAvgSolveTimeEmptyHistory(t *testing.T) {
	if got := AvgSolveTime(nil); got != 300.0 {
		t.Errorf("got %f, want default 300", got)
	}
}

func TestTrailingStreak(t *testing.T) {
	tests := []struct {
		name    string
		history []models.PerformanceRecord
		want    int
	}{
		{
			name:    "streak broken mid-history",
			history: []models.PerformanceRecord{record(true, 1), record(true, 1), record(false, 1), record(true, 1)},
			want:    1,
		},
		{
			name:    "all correct",
			history: []models.PerformanceRecord{record(true, 1), record(true, 1), record(true, 1)},
			want:    3,
		},
		{
			name:    "most recent incorrect",
			history: []models.PerformanceRecord{record(true, 1), record(false, 1)},
			want:    0,
		},
		{
			name: "empty",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrailingStreak(tt.history); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecommendDifficulty(t *testing.T) {
	tests := []struct {
		name        string
		correctRate float64
		streak      int
		want        models.Difficulty
	}{
		{"expert tier", 0.96, 11, models.DifficultyExpert},
		{"expert rate without streak", 0.96, 4, models.DifficultyIntermediate},
		{"advanced tier", 0.90, 6, models.DifficultyAdvanced},
		{"qualifies for both tiers", 0.96, 10, models.DifficultyExpert},
		{"beginner tier", 0.40, 0, models.DifficultyBeginner},
		{"middle of the road", 0.70, 2, models.DifficultyIntermediate},
		{"boundary below beginner cutoff", 0.5, 0, models.DifficultyIntermediate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendDifficulty(tt.correctRate, tt.streak); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAssessDifficultyDefaults(t *testing.T) {
	svc := newTestService(t, okClassificationClient())

	assessment := svc.AssessDifficulty("user-1", []models.PerformanceRecord{})

	if assessment.RecommendedDifficulty != models.DifficultyIntermediate {
		t.Errorf("got %s", assessment.RecommendedDifficulty)
	}
	if assessment.UserPerformance.CorrectRate != 0.5 {
		t.Errorf("got correct rate %f", assessment.UserPerformance.CorrectRate)
	}
	if assessment.UserPerformance.AvgSolveTime != 300.0 {
		t.Errorf("got avg solve time %f", assessment.UserPerformance.AvgSolveTime)
	}
	if len(assessment.NextProblemSuggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", assessment.NextProblemSuggestions)
	}
}

func TestAssessDifficultySuggestionsSkipUnknownProblems(t *testing.T) {
	svc := newTestService(t, okClassificationClient())

	problem, err := svc.StructureProblem(context.Background(), "Solve x + 1 = 2", "test")
	if err != nil {
		t.Fatalf("structure problem: %v", err)
	}

	history := []models.PerformanceRecord{
		{ProblemID: problem.ID, Correct: true, TimeSpent: 45},
		{ProblemID: "does-not-exist", Correct: true, TimeSpent: 50},
	}

	assessment := svc.AssessDifficulty("user-1", history)

	if len(assessment.NextProblemSuggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %v", assessment.NextProblemSuggestions)
	}
	if assessment.NextProblemSuggestions[0] != string(problem.Topic) {
		t.Errorf("got suggestion %q", assessment.NextProblemSuggestions[0])
	}
}
