package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nicorenaldo/supercell-hackathon/internal/services"
	"github.com/nicorenaldo/supercell-hackathon/internal/storage"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

type HealthHandler struct {
	store     storage.Storage
	llm       services.LLMService
	modelName string
	logger    *slog.Logger
}

func NewHealthHandler(store storage.Storage, llm services.LLMService, modelName string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		llm:       llm,
		modelName: modelName,
		logger:    logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	status := "healthy"

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = "unhealthy"
		status = "degraded"
	} else {
		components["storage"] = "healthy"
	}

	if ready, err := h.llm.IsModelReady(ctx, h.modelName); err != nil || !ready {
		h.logger.Warn("LLM health check failed", "error", err)
		components["llm"] = "unhealthy"
		status = "degraded"
	} else {
		components["llm"] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, code, HealthResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Service:    "interrogation-engine",
		Components: components,
	})
}
