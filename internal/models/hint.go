package models

// Hint is one entry in a problem's append-only hint log. Level 3 hints
// walk the opening of the solution and are flagged as reveals.
type Hint struct {
	ID        string `json:"id"`
	ProblemID string `json:"problemId"`
	StepNum   int    `json:"stepNumber"`
	HintLevel int    `json:"hintLevel"`
	Content   string `json:"content"`
	IsReveal  bool   `json:"isReveal"`
}

type HintRequest struct {
	ProblemID   string `json:"problemId"`
	CurrentStep int    `json:"currentStep,omitempty"`
	UserAnswer  string `json:"userAnswer,omitempty"`
	HintLevel   int    `json:"hintLevel"`
}

type HintResponse struct {
	Hint Hint `json:"hint"`
}

type HintListResponse struct {
	Hints []Hint `json:"hints"`
}
