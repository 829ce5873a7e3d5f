package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nicorenaldo/supercell-hackathon/internal/config"
	"github.com/nicorenaldo/supercell-hackathon/internal/director"
	"github.com/nicorenaldo/supercell-hackathon/internal/engine"
	"github.com/nicorenaldo/supercell-hackathon/internal/events"
	"github.com/nicorenaldo/supercell-hackathon/internal/handlers"
	"github.com/nicorenaldo/supercell-hackathon/internal/logger"
	"github.com/nicorenaldo/supercell-hackathon/internal/media"
	"github.com/nicorenaldo/supercell-hackathon/internal/middleware"
	"github.com/nicorenaldo/supercell-hackathon/internal/services"
	"github.com/nicorenaldo/supercell-hackathon/internal/storage"
	"github.com/nicorenaldo/supercell-hackathon/pkg/evidence"
	"github.com/nicorenaldo/supercell-hackathon/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Interrogation Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"storage_backend", cfg.StorageBackend)

	var llmService services.LLMService
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Error("OpenAI API key is required when using openai provider")
			os.Exit(1)
		}
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ModelName)
		log.Info("Using OpenAI LLM provider")
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	default:
		log.Error("Invalid LLM provider specified",
			"provider", cfg.LLMProvider, "supported", []string{"openai", "anthropic"})
		os.Exit(1)
	}

	var store storage.Storage
	switch cfg.StorageBackend {
	case "redis":
		redisStore, err := storage.NewRedisStore(cfg.RedisURL, log)
		if err != nil {
			log.Error("Failed to create Redis store", "error", err)
			os.Exit(1)
		}
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := redisStore.WaitForConnection(storageCtx); err != nil {
			storageCancel()
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		storageCancel()
		store = redisStore
	default:
		store = storage.NewMemoryStore()
		log.Warn("Using in-memory session storage, sessions are lost on restart")
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	library := scenario.NewLibrary(filepath.Join(cfg.DataDir, "scenarios"))
	if names, err := library.List(); err != nil {
		log.Error("Failed to read scenario library", "error", err)
		os.Exit(1)
	} else {
		log.Info("Scenario library loaded", "scenarios", names)
	}

	mediaManager, err := media.NewManager(cfg.RecordingsDir, log)
	if err != nil {
		log.Error("Failed to create recordings directory", "error", err)
		os.Exit(1)
	}

	policy := evidence.DefaultPolicy()
	policy.MinSegmentDuration = cfg.MinSegmentSeconds
	policy.FrameInterval = cfg.FrameIntervalSeconds
	policy.ConfidenceFloor = cfg.ConfidenceFloor
	policy.AdvancedMetrics = cfg.AdvancedMetrics

	aggregator := evidence.NewAggregator(
		services.NewTranscriberService(cfg.TranscriberURL),
		media.NewFFmpegSource(log),
		services.NewClassifierService(cfg.ClassifierURL),
		policy,
		log,
	)

	hub := events.NewHub(log)
	eng := engine.New(store, director.New(llmService, log), library, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, llmService, cfg.ModelName, log))

	sessionsHandler := handlers.NewSessionsHandler(eng, mediaManager, aggregator, hub, cfg.DefaultScenario, log)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)

	mux.Handle("/v1/ws", handlers.NewWSHandler(eng, hub, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
