package aggregator

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

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

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Stats())
}

// TriggerAggregation syncs one source when sourceId is supplied and
// every enabled source otherwise. An empty body means sync all.
func (h *Handler) TriggerAggregation(w http.ResponseWriter, r *http.Request) {
	var req models.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.SourceID != "" {
		result := h.service.AggregateFromSource(r.Context(), req.SourceID)
		writeJSON(w, http.StatusOK, models.AggregateSourceResponse{
			Status:    "completed",
			Source:    req.SourceID,
			Count:     result.Count,
			Problems:  result.Problems,
			Timestamp: time.Now().UTC(),
		})
		return
	}

	writeJSON(w, http.StatusOK, h.service.AggregateAll(r.Context()))
}

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.SourceListResponse{Sources: h.service.Sources()})
}

func (h *Handler) ToggleSource(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.SourceID == "" || req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "sourceId and enabled (boolean) are required"})
		return
	}

	source, err := h.service.ToggleSource(req.SourceID, *req.Enabled)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Source not found"})
		return
	}

	writeJSON(w, http.StatusOK, source)
}

func (h *Handler) SearchProblems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := models.SearchFilters{
		Query:      query.Get("query"),
		Topic:      models.Topic(query.Get("topic")),
		Difficulty: models.Difficulty(query.Get("difficulty")),
		Source:     query.Get("source"),
		Limit:      intQueryParam(query, "limit", 50),
		Offset:     intQueryParam(query, "offset", 0),
	}

	problems, total := h.service.Search(filters)

	writeJSON(w, http.StatusOK, models.ProblemListResponse{
		Query: filters.Query,
		Filters: map[string]interface{}{
			"topic":      filters.Topic,
			"difficulty": filters.Difficulty,
			"source":     filters.Source,
		},
		Total:     total,
		Problems:  problems,
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
