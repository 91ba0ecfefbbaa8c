package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/models"
)

type Handler struct {
	service   *Service
	batches   *BatchManager
	log       *zap.SugaredLogger
	startTime time.Time
}

func NewHandler(service *Service, batches *BatchManager, log *zap.SugaredLogger) *Handler {
	return &Handler{
		service:   service,
		batches:   batches,
		log:       log,
		startTime: time.Now(),
	}
}

func (h *Handler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.RawContent == "" || req.Source == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "rawContent and source are required"})
		return
	}
	if req.Difficulty != "" && !models.ValidDifficulties[req.Difficulty] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid difficulty"})
		return
	}
	if req.Topic != "" && !models.ValidTopics[req.Topic] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid topic"})
		return
	}

	problem, err := h.service.StructureProblem(r.Context(), req.RawContent, req.Source)
	if err != nil {
		h.log.Errorw("create problem failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create problem"})
		return
	}

	// Caller-supplied overrides win over the classification on the
	// returned view; the stored record keeps the classified values.
	out := *problem
	if req.Difficulty != "" {
		out.Difficulty = req.Difficulty
	}
	if req.Topic != "" {
		out.Topic = req.Topic
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProblem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	problem, err := h.service.GetProblem(vars["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Problem not found"})
		return
	}

	writeJSON(w, http.StatusOK, problem)
}

func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	var req models.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "content is required"})
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	classification, err := h.service.Classify(r.Context(), req.Content, req.Source)
	if err != nil {
		h.log.Errorw("classification failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to classify problem"})
		return
	}

	writeJSON(w, http.StatusOK, models.ClassifyResponse{Classification: classification})
}

func (h *Handler) GenerateSolution(w http.ResponseWriter, r *http.Request) {
	var req models.SolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.ProblemID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "problemId is required"})
		return
	}
	if req.ReasoningLevel == "" {
		req.ReasoningLevel = models.ReasoningMedium
	}
	if !models.ValidReasoningLevels[req.ReasoningLevel] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "reasoningLevel must be low, medium, or high"})
		return
	}
	includeAlternatives := true
	if req.IncludeAlternatives != nil {
		includeAlternatives = *req.IncludeAlternatives
	}

	problem, err := h.service.ResolveProblem(r.Context(), req.ProblemID, req.RawContent)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate solution: " + err.Error()})
		return
	}

	solution, err := h.service.GenerateSolution(r.Context(), problem, req.ReasoningLevel, includeAlternatives)
	if err != nil {
		h.log.Errorw("solution generation failed", "problemId", problem.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate solution"})
		return
	}

	writeJSON(w, http.StatusOK, solution)
}

// StreamSolution writes generated text as a chunked plain-text stream.
func (h *Handler) StreamSolution(w http.ResponseWriter, r *http.Request) {
	var req models.StreamSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.ProblemContent == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "problemContent is required"})
		return
	}
	if req.ReasoningLevel == "" {
		req.ReasoningLevel = models.ReasoningMedium
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)

	err := h.service.StreamSolution(r.Context(), req.ProblemContent, req.ReasoningLevel, func(chunk string) error {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are gone; all we can do is log and cut the stream.
		h.log.Errorw("solution stream failed", "error", err)
	}
}

func (h *Handler) GenerateHint(w http.ResponseWriter, r *http.Request) {
	var req models.HintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.ProblemID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "problemId is required"})
		return
	}
	if req.HintLevel < 1 || req.HintLevel > 3 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "hintLevel must be 1, 2, or 3"})
		return
	}
	if req.CurrentStep <= 0 {
		req.CurrentStep = 1
	}

	hint, err := h.service.GenerateHint(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Problem not found"})
			return
		}
		h.log.Errorw("hint generation failed", "problemId", req.ProblemID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate hint"})
		return
	}

	writeJSON(w, http.StatusOK, models.HintResponse{Hint: *hint})
}

func (h *Handler) ListHints(w http.ResponseWriter, r *http.Request) {
	problemID := r.URL.Query().Get("problemId")
	if problemID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "problemId is required"})
		return
	}

	writeJSON(w, http.StatusOK, models.HintListResponse{Hints: h.service.HintsForProblem(problemID)})
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Problems == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "problems array is required"})
		return
	}

	job, err := h.batches.Create(req.Problems)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, models.BatchCreateResponse{
		JobID:         job.ID,
		Status:        job.Status,
		TotalProblems: job.TotalProblems,
		Message:       "Batch job created. Poll GET /api/v1/batch?jobId=<id> for status.",
	})
}

func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "jobId is required"})
		return
	}

	job, err := h.batches.Get(jobID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Job not found"})
		return
	}

	writeJSON(w, http.StatusOK, models.BatchJobResponse{Job: *job})
}

func (h *Handler) AssessDifficulty(w http.ResponseWriter, r *http.Request) {
	var req models.AdaptiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
		return
	}
	if req.RecentPerformance == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "recentPerformance array is required"})
		return
	}

	assessment := h.service.AssessDifficulty(req.UserID, req.RecentPerformance)
	writeJSON(w, http.StatusOK, models.AdaptiveResponse{Assessment: assessment})
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ModelConfigResponse{
		Model: map[string]interface{}{
			"modelId":        h.service.ModelName(),
			"reasoningLevel": models.ReasoningMedium,
			"description":    "GPT-OSS-120B inspired configuration for mathematical reasoning",
			"features": []string{
				"Chain-of-thought reasoning",
				"Configurable reasoning levels (low/medium/high)",
				"Competition math classification (AMC/AIME/USAMO/IMO)",
				"Adaptive difficulty assessment",
				"Batch processing support",
				"Streaming solution generation",
			},
		},
		Stats: h.service.Stats(),
		Capabilities: models.ModelCapabilities{
			MaxBatchSize:    MaxBatchSize,
			SupportedTopics: models.AllTopics,
			ReasoningLevels: []string{"low", "medium", "high"},
			HintLevels:      []int{1, 2, 3},
		},
	})
}

func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	stats := h.service.Stats()
	writeJSON(w, http.StatusOK, models.MetricsResponse{
		ActiveConnections:  0,
		CacheHits:          stats.CacheHits,
		CacheMisses:        stats.CacheMisses,
		ProblemsProcessed:  stats.ProblemsProcessed,
		SolutionsGenerated: stats.SolutionsGenerated,
		TotalProblems:      h.service.TotalProblems(),
		UptimeSeconds:      time.Since(h.startTime).Seconds(),
		Timestamp:          time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
