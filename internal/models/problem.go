package models

import "time"

type Topic string

const (
	TopicAlgebra               Topic = "algebra"
	TopicCalculus              Topic = "calculus"
	TopicGeometry              Topic = "geometry"
	TopicStatistics            Topic = "statistics"
	TopicTrigonometry          Topic = "trigonometry"
	TopicNumberTheory          Topic = "number_theory"
	TopicCombinatorics         Topic = "combinatorics"
	TopicLinearAlgebra         Topic = "linear_algebra"
	TopicDifferentialEquations Topic = "differential_equations"
	TopicProbability           Topic = "probability"
)

var ValidTopics = map[Topic]bool{
	TopicAlgebra:               true,
	TopicCalculus:              true,
	TopicGeometry:              true,
	TopicStatistics:            true,
	TopicTrigonometry:          true,
	TopicNumberTheory:          true,
	TopicCombinatorics:         true,
	TopicLinearAlgebra:         true,
	TopicDifferentialEquations: true,
	TopicProbability:           true,
}

// AllTopics lists every topic in schema order, for prompts and capability
// descriptors.
var AllTopics = []Topic{
	TopicAlgebra, TopicCalculus, TopicGeometry, TopicStatistics,
	TopicTrigonometry, TopicNumberTheory, TopicCombinatorics,
	TopicLinearAlgebra, TopicDifferentialEquations, TopicProbability,
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyBeginner:     true,
	DifficultyIntermediate: true,
	DifficultyAdvanced:     true,
	DifficultyExpert:       true,
}

type ProblemType string

const (
	ProblemMultipleChoice ProblemType = "multiple_choice"
	ProblemFreeResponse   ProblemType = "free_response"
	ProblemProof          ProblemType = "proof"
	ProblemApplication    ProblemType = "application"
)

var ValidProblemTypes = map[ProblemType]bool{
	ProblemMultipleChoice: true,
	ProblemFreeResponse:   true,
	ProblemProof:          true,
	ProblemApplication:    true,
}

type CompetitionLevel string

const (
	CompetitionAMC   CompetitionLevel = "AMC"
	CompetitionAIME  CompetitionLevel = "AIME"
	CompetitionUSAMO CompetitionLevel = "USAMO"
	CompetitionIMO   CompetitionLevel = "IMO"
	CompetitionNone  CompetitionLevel = "none"
)

// ── Core Structs ───────────────────────────────────────

// Problem is a structured math problem. Its ID is derived from the raw
// content, so identical text always maps to the same record.
type Problem struct {
	ID                 string                 `json:"id"`
	RawContent         string                 `json:"rawContent"`
	Source             string                 `json:"source"`
	Difficulty         Difficulty             `json:"difficulty"`
	Topic              Topic                  `json:"topic"`
	Subtopics          []string               `json:"subtopics"`
	Tags               []string               `json:"tags"`
	EstimatedTime      int                    `json:"estimatedTime"`
	RequiresCalculator bool                   `json:"requiresCalculator"`
	RequiresDrawing    bool                   `json:"requiresDrawing"`
	StructuredFormat   *Classification        `json:"structuredFormat"`
	Metadata           map[string]interface{} `json:"metadata"`
	CreatedAt          time.Time              `json:"createdAt"`
	UpdatedAt          time.Time              `json:"updatedAt"`
}

// Classification is the model's structured read of a raw problem.
type Classification struct {
	MainTopic          Topic            `json:"mainTopic"`
	Subtopics          []string         `json:"subtopics"`
	DifficultyLevel    Difficulty       `json:"difficultyLevel"`
	EstimatedSolveTime int              `json:"estimatedSolveTime"`
	Tags               []string         `json:"tags"`
	RequiresCalculator bool             `json:"requiresCalculator"`
	RequiresDrawing    bool             `json:"requiresDrawing"`
	ProblemType        ProblemType      `json:"problemType"`
	KeyConcepts        []string         `json:"keyConcepts"`
	PrerequisiteTopics []string         `json:"prerequisiteTopics"`
	CompetitionLevel   CompetitionLevel `json:"competitionLevel,omitempty"`
}

// ── Request Types ─────────────────────────────────────

type CreateProblemRequest struct {
	RawContent string     `json:"rawContent"`
	Source     string     `json:"source"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Topic      Topic      `json:"topic,omitempty"`
}

type ClassifyRequest struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

type ClassifyResponse struct {
	Classification *Classification `json:"classification"`
}

// SearchFilters compose with AND semantics; Query matches raw content
// or tags as a case-insensitive substring.
type SearchFilters struct {
	Query      string
	Topic      Topic
	Difficulty Difficulty
	Source     string
	Limit      int
	Offset     int
}

// ProblemListResponse reports the pre-pagination total alongside the
// returned page.
type ProblemListResponse struct {
	Query     string                 `json:"query,omitempty"`
	Filters   map[string]interface{} `json:"filters"`
	Total     int                    `json:"total"`
	Problems  []Problem              `json:"problems"`
	Timestamp time.Time              `json:"timestamp"`
}
