package gptoss

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mathbeast/backend/internal/models"
)

type Handler struct {
	service *Service
	log     *zap.SugaredLogger
}

func NewHandler(service *Service, log *zap.SugaredLogger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) GetModelConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"model":     h.service.ModelConfig(),
		"moe":       h.service.MoEConfig(),
		"inference": h.service.InferenceStats(),
		"capabilities": map[string]interface{}{
			"maxContextLength":       128000,
			"supportedQuantizations": []string{"mxfp4", "fp16", "bf16", "int8"},
			"supportedGPUs":          []string{"H100", "A100", "A10G"},
			"features": []string{
				"Chain-of-thought reasoning",
				"Competition math solving",
				"Step-by-step solutions",
				"Multiple solution approaches",
				"Real-time streaming",
				"Adaptive difficulty",
			},
			"benchmarks": map[string]string{
				"GSM8K":     "94.2%",
				"MATH":      "67.8%",
				"HumanEval": "89.5%",
				"AIME_2024": "11/15",
			},
		},
		"license": "Apache 2.0",
	})
}

// ── Fine-Tuning ───────────────────────────────────────

func (h *Handler) ListFineTuneJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":              h.service.ListJobs(),
		"availableDatasets": h.service.MathDatasets(),
		"defaultConfig": map[string]interface{}{
			"lora": map[string]interface{}{
				"rank":          16,
				"alpha":         32,
				"dropout":       0.1,
				"targetModules": []string{"q_proj", "v_proj", "k_proj", "o_proj"},
			},
			"training": map[string]interface{}{
				"epochs":               3,
				"batchSize":            2,
				"learningRate":         2e-4,
				"gradientAccumulation": 8,
			},
		},
	})
}

func (h *Handler) CreateFineTuneJob(w http.ResponseWriter, r *http.Request) {
	var req models.FineTuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if len(req.Datasets) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "At least one dataset is required"})
		return
	}

	job, err := h.service.CreateFineTuneJob(req)
	if err != nil {
		h.log.Errorw("fine-tune job creation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create fine-tuning job"})
		return
	}

	writeJSON(w, http.StatusOK, models.FineTuneCreateResponse{
		Message: "Fine-tuning job created",
		Job:     *job,
	})
}

func (h *Handler) GetFineTuneJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	job, err := h.service.GetJob(vars["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Job not found"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// ── Benchmarks ────────────────────────────────────────

func (h *Handler) GetBenchmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"availableBenchmarks": h.service.AvailableBenchmarks(),
		"modelInfo": map[string]string{
			"name":         "GPT-OSS-120B",
			"architecture": "Mixture-of-Experts",
			"totalParams":  "117B",
			"activeParams": "5.1B",
		},
	})
}

func (h *Handler) RunBenchmark(w http.ResponseWriter, r *http.Request) {
	var req models.BenchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Benchmark == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Benchmark name is required"})
		return
	}

	result := h.service.RunBenchmark(req.Benchmark)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Benchmark completed",
		"result":  result,
	})
}

// ── Competition Solving ───────────────────────────────

func (h *Handler) SolveCompetition(w http.ResponseWriter, r *http.Request) {
	var req models.CompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Problem == nil || req.Problem.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Problem content is required"})
		return
	}
	if req.ReasoningLevel != "" && !models.ValidReasoningLevels[req.ReasoningLevel] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "reasoningLevel must be low, medium, or high"})
		return
	}

	resp, err := h.service.SolveCompetition(r.Context(), req.Problem, req.ReasoningLevel)
	if err != nil {
		h.log.Errorw("competition solving failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to solve competition problem"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) StreamCompetition(w http.ResponseWriter, r *http.Request) {
	var req models.CompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.Problem == nil || req.Problem.Content == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Problem content is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")
	w.WriteHeader(http.StatusOK)

	err := h.service.StreamCompetition(r.Context(), req.Problem, func(chunk string) error {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Errorw("competition stream failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
