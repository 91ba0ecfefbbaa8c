package models

import "time"

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// BatchJob tracks a bulk structuring run. Only the job's own worker
// mutates it; pollers read snapshots.
type BatchJob struct {
	ID                string        `json:"id"`
	Status            BatchStatus   `json:"status"`
	TotalProblems     int           `json:"totalProblems"`
	ProcessedProblems int           `json:"processedProblems"`
	StartedAt         time.Time     `json:"startedAt"`
	CompletedAt       *time.Time    `json:"completedAt,omitempty"`
	Results           []BatchResult `json:"results"`
}

type BatchResult struct {
	ProblemID string       `json:"problemId"`
	Status    ResultStatus `json:"status"`
	Problem   *Problem     `json:"problem,omitempty"`
	Error     string       `json:"error,omitempty"`
}

type BatchItem struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

type BatchRequest struct {
	Problems []BatchItem `json:"problems"`
}

type BatchCreateResponse struct {
	JobID         string      `json:"jobId"`
	Status        BatchStatus `json:"status"`
	TotalProblems int         `json:"totalProblems"`
	Message       string      `json:"message"`
}

type BatchJobResponse struct {
	Job BatchJob `json:"job"`
}

// ── Adaptive Difficulty Types ─────────────────────────

type PerformanceRecord struct {
	ProblemID string  `json:"problemId"`
	Correct   bool    `json:"correct"`
	TimeSpent float64 `json:"timeSpent"`
}

type UserPerformance struct {
	CorrectRate  float64 `json:"correctRate"`
	AvgSolveTime float64 `json:"avgSolveTime"`
	StreakLength int     `json:"streakLength"`
}

type AdaptiveAssessment struct {
	RecommendedDifficulty  Difficulty      `json:"recommendedDifficulty"`
	UserPerformance        UserPerformance `json:"userPerformance"`
	NextProblemSuggestions []string        `json:"nextProblemSuggestions"`
}

type AdaptiveRequest struct {
	UserID            string              `json:"userId"`
	RecentPerformance []PerformanceRecord `json:"recentPerformance"`
}

type AdaptiveResponse struct {
	Assessment AdaptiveAssessment `json:"assessment"`
}
