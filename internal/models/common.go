package models

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

// EngineStats is a snapshot of the process-wide pipeline counters.
type EngineStats struct {
	ProblemsProcessed     int     `json:"problemsProcessed"`
	SolutionsGenerated    int     `json:"solutionsGenerated"`
	HintsGenerated        int     `json:"hintsGenerated"`
	CacheHits             int     `json:"cacheHits"`
	CacheMisses           int     `json:"cacheMisses"`
	BatchJobsCompleted    int     `json:"batchJobsCompleted"`
	AverageProcessingTime float64 `json:"averageProcessingTime"`
}

type MetricsResponse struct {
	ActiveConnections  int       `json:"activeConnections"`
	CacheHits          int       `json:"cacheHits"`
	CacheMisses        int       `json:"cacheMisses"`
	ProblemsProcessed  int       `json:"problemsProcessed"`
	SolutionsGenerated int       `json:"solutionsGenerated"`
	TotalProblems      int       `json:"totalProblems"`
	UptimeSeconds      float64   `json:"uptimeSeconds"`
	Timestamp          time.Time `json:"timestamp"`
}

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Services  map[string]bool `json:"services"`
	Version   string          `json:"version"`
}

// ModelCapabilities is the static capability descriptor served by the
// config endpoint.
type ModelCapabilities struct {
	MaxBatchSize    int      `json:"maxBatchSize"`
	SupportedTopics []Topic  `json:"supportedTopics"`
	ReasoningLevels []string `json:"reasoningLevels"`
	HintLevels      []int    `json:"hintLevels"`
}

type ModelConfigResponse struct {
	Model        map[string]interface{} `json:"model"`
	Stats        EngineStats            `json:"stats"`
	Capabilities ModelCapabilities      `json:"capabilities"`
}
