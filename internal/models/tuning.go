package models

import "time"

type FineTuneStatus string

const (
	FineTunePending    FineTuneStatus = "pending"
	FineTunePreparing  FineTuneStatus = "preparing"
	FineTuneTraining   FineTuneStatus = "training"
	FineTuneEvaluating FineTuneStatus = "evaluating"
	FineTuneCompleted  FineTuneStatus = "completed"
	FineTuneFailed     FineTuneStatus = "failed"
)

// LoRAConfig holds low-rank adaptation hyperparameters. They are
// configuration data for the simulated trainer, never executed.
type LoRAConfig struct {
	TaskType      string   `json:"taskType"`
	InferenceMode bool     `json:"inferenceMode"`
	Rank          int      `json:"rank"`
	Alpha         int      `json:"alpha"`
	Dropout       float64  `json:"dropout"`
	TargetModules []string `json:"targetModules"`
	Bias          string   `json:"bias"`
}

type TrainingConfig struct {
	OutputDir                 string  `json:"outputDir"`
	NumTrainEpochs            int     `json:"numTrainEpochs"`
	PerDeviceTrainBatchSize   int     `json:"perDeviceTrainBatchSize"`
	PerDeviceEvalBatchSize    int     `json:"perDeviceEvalBatchSize"`
	GradientAccumulationSteps int     `json:"gradientAccumulationSteps"`
	WarmupSteps               int     `json:"warmupSteps"`
	LoggingSteps              int     `json:"loggingSteps"`
	SaveStrategy              string  `json:"saveStrategy"`
	EvaluationStrategy        string  `json:"evaluationStrategy"`
	LearningRate              float64 `json:"learningRate"`
	FP16                      bool    `json:"fp16"`
	GradientCheckpointing     bool    `json:"gradientCheckpointing"`
	LRSchedulerType           string  `json:"lrSchedulerType"`
}

type TrainingMetrics struct {
	Epoch                 int     `json:"epoch"`
	Step                  int     `json:"step"`
	Loss                  float64 `json:"loss"`
	LearningRate          float64 `json:"learningRate"`
	EvalLoss              float64 `json:"evalLoss,omitempty"`
	EvalAccuracy          float64 `json:"evalAccuracy,omitempty"`
	Perplexity            float64 `json:"perplexity,omitempty"`
	TrainSamplesPerSecond float64 `json:"trainSamplesPerSecond,omitempty"`
	GPUUtilization        float64 `json:"gpuUtilization,omitempty"`
}

type DatasetRef struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Size   int    `json:"size"`
	Split  string `json:"split"`
	Format string `json:"format"`
}

type FineTuningJob struct {
	ID             string          `json:"id"`
	Status         FineTuneStatus  `json:"status"`
	BaseModel      string          `json:"baseModel"`
	Datasets       []DatasetRef    `json:"datasets"`
	LoRAConfig     LoRAConfig      `json:"loraConfig"`
	TrainingConfig TrainingConfig  `json:"trainingConfig"`
	Metrics        TrainingMetrics `json:"metrics"`
	Checkpoints    []string        `json:"checkpoints"`
	CreatedAt      time.Time       `json:"createdAt"`
	StartedAt      *time.Time      `json:"startedAt,omitempty"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// LoRAOverrides and TrainingOverrides carry caller-supplied knobs that
// merge onto the fixed defaults; nil fields keep the default.
type LoRAOverrides struct {
	Rank          *int     `json:"rank,omitempty"`
	Alpha         *int     `json:"alpha,omitempty"`
	Dropout       *float64 `json:"dropout,omitempty"`
	TargetModules []string `json:"targetModules,omitempty"`
}

type TrainingOverrides struct {
	Epochs               *int     `json:"epochs,omitempty"`
	BatchSize            *int     `json:"batchSize,omitempty"`
	LearningRate         *float64 `json:"learningRate,omitempty"`
	GradientAccumulation *int     `json:"gradientAccumulation,omitempty"`
}

type FineTuneRequest struct {
	Datasets       []DatasetRef       `json:"datasets"`
	LoraConfig     *LoRAOverrides     `json:"loraConfig,omitempty"`
	TrainingConfig *TrainingOverrides `json:"trainingConfig,omitempty"`
}

type FineTuneCreateResponse struct {
	Message string        `json:"message"`
	Job     FineTuningJob `json:"job"`
}

// DatasetProfile describes a training corpus offered for fine-tuning.
type DatasetProfile struct {
	Name                   string         `json:"name"`
	Source                 string         `json:"source"`
	ProblemCount           int            `json:"problemCount"`
	TopicDistribution      map[string]int `json:"topicDistribution"`
	DifficultyDistribution map[string]int `json:"difficultyDistribution"`
	AvgProblemLength       int            `json:"avgProblemLength"`
	AvgSolutionLength      int            `json:"avgSolutionLength"`
	HasChainOfThought      bool           `json:"hasChainOfThought"`
}

// ── Benchmark Types ───────────────────────────────────

type BenchmarkResult struct {
	Benchmark  string             `json:"benchmark"`
	Score      float64            `json:"score"`
	MaxScore   float64            `json:"maxScore"`
	Percentile float64            `json:"percentile"`
	Metrics    map[string]float64 `json:"metrics"`
	Timestamp  time.Time          `json:"timestamp"`
}

type BenchmarkInfo struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	MaxScore    float64 `json:"maxScore"`
}

type BenchmarkRequest struct {
	Benchmark string `json:"benchmark"`
}

// ── Competition Types ─────────────────────────────────

type CompetitionProblem struct {
	ID            string   `json:"id"`
	Competition   string   `json:"competition"`
	Year          int      `json:"year"`
	ProblemNumber int      `json:"problemNumber"`
	Content       string   `json:"content"`
	Solution      string   `json:"solution,omitempty"`
	Difficulty    int      `json:"difficulty"`
	Topics        []string `json:"topics"`
	Techniques    []string `json:"techniques"`
}

// HarmonySolution is the parsed form of a harmony-format model answer:
// reasoning, final answer, and a confidence score pulled from free text.
type HarmonySolution struct {
	Reasoning      string               `json:"reasoning"`
	Answer         string               `json:"answer"`
	Confidence     float64              `json:"confidence"`
	ChainOfThought []ChainOfThoughtStep `json:"chainOfThought"`
}

type CompetitionRequest struct {
	Problem        *CompetitionProblem `json:"problem"`
	ReasoningLevel ReasoningLevel      `json:"reasoningLevel,omitempty"`
}

type CompetitionResponse struct {
	Problem  CompetitionProblem     `json:"problem"`
	Solution HarmonySolution        `json:"solution"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ── Inference Stats ───────────────────────────────────

type InferenceStats struct {
	RequestsTotal   int     `json:"requestsTotal"`
	AverageLatency  float64 `json:"averageLatency"`
	P50Latency      float64 `json:"p50Latency"`
	P95Latency      float64 `json:"p95Latency"`
	P99Latency      float64 `json:"p99Latency"`
	TokensGenerated int     `json:"tokensGenerated"`
	TokensPerSecond float64 `json:"tokensPerSecond"`
	ActiveExperts   int     `json:"activeExperts"`
	CacheHitRate    float64 `json:"cacheHitRate"`
}
