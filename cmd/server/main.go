package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mathbeast/backend/internal/aggregator"
	"github.com/mathbeast/backend/internal/config"
	"github.com/mathbeast/backend/internal/engine"
	"github.com/mathbeast/backend/internal/generator"
	"github.com/mathbeast/backend/internal/gptoss"
	"github.com/mathbeast/backend/internal/logger"
	"github.com/mathbeast/backend/internal/models"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "mathbeast.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logg.Sync()

	gen, err := generator.NewGenerator(generator.Config{
		Provider: cfg.Gateway.Provider,
		Model:    cfg.Gateway.Model,
		APIKey:   cfg.Gateway.APIKey,
		BaseURL:  cfg.Gateway.BaseURL,
	})
	if err != nil {
		logg.Fatalw("failed to build generator", "error", err)
	}

	// Wire services
	store := engine.NewStore()
	stats := engine.NewStats()
	engineSvc := engine.NewService(store, gen, stats, logg)
	batches := engine.NewBatchManager(engineSvc, stats, logg)
	aggSvc := aggregator.NewService(engineSvc, logg)
	gptossSvc := gptoss.NewService(gen, logg)

	engineHandler := engine.NewHandler(engineSvc, batches, logg)
	aggHandler := aggregator.NewHandler(aggSvc, logg)
	gptossHandler := gptoss.NewHandler(gptossSvc, logg)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Problem pipeline
	api.HandleFunc("/problems", engineHandler.CreateProblem).Methods("POST")
	api.HandleFunc("/problems", aggHandler.SearchProblems).Methods("GET")
	api.HandleFunc("/problems/{id}", engineHandler.GetProblem).Methods("GET")
	api.HandleFunc("/classify", engineHandler.Classify).Methods("POST")

	// Solutions and hints
	api.HandleFunc("/solutions", engineHandler.GenerateSolution).Methods("POST")
	api.HandleFunc("/solutions/stream", engineHandler.StreamSolution).Methods("POST")
	api.HandleFunc("/hints", engineHandler.GenerateHint).Methods("POST")
	api.HandleFunc("/hints", engineHandler.ListHints).Methods("GET")

	// Batch and adaptive
	api.HandleFunc("/batch", engineHandler.CreateBatch).Methods("POST")
	api.HandleFunc("/batch", engineHandler.GetBatch).Methods("GET")
	api.HandleFunc("/adaptive", engineHandler.AssessDifficulty).Methods("POST")

	// Aggregation
	api.HandleFunc("/aggregate", aggHandler.GetStats).Methods("GET")
	api.HandleFunc("/aggregate", aggHandler.TriggerAggregation).Methods("POST")
	api.HandleFunc("/sources", aggHandler.ListSources).Methods("GET")
	api.HandleFunc("/sources", aggHandler.ToggleSource).Methods("PATCH")

	// Model descriptors
	api.HandleFunc("/config", engineHandler.GetConfig).Methods("GET")
	api.HandleFunc("/metrics", engineHandler.GetMetrics).Methods("GET")

	// Fine-tuning and benchmarks
	api.HandleFunc("/fine-tune", gptossHandler.ListFineTuneJobs).Methods("GET")
	api.HandleFunc("/fine-tune", gptossHandler.CreateFineTuneJob).Methods("POST")
	api.HandleFunc("/fine-tune/{id}", gptossHandler.GetFineTuneJob).Methods("GET")
	api.HandleFunc("/benchmark", gptossHandler.GetBenchmarks).Methods("GET")
	api.HandleFunc("/benchmark", gptossHandler.RunBenchmark).Methods("POST")

	// GPT-OSS surface
	api.HandleFunc("/gpt-oss/config", gptossHandler.GetModelConfig).Methods("GET")
	api.HandleFunc("/gpt-oss/competition", gptossHandler.SolveCompetition).Methods("POST")
	api.HandleFunc("/gpt-oss/competition/stream", gptossHandler.StreamCompetition).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Services: map[string]bool{
				"ai_engine":  true,
				"aggregator": true,
				"gpt_oss":    true,
			},
			Version: version,
		})
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logg.Infow("server starting", "addr", addr, "gateway", cfg.Gateway.Provider)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logg.Fatalw("server failed", "error", err)
	}
}
