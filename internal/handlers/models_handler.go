package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/services/llm"
)

type ModelsHandler struct {
	registry     *llm.Registry
	defaultModel string
	embedModel   string
	logger       arbor.ILogger
}

func NewModelsHandler(registry *llm.Registry, config *common.Config) *ModelsHandler {
	return &ModelsHandler{
		registry:     registry,
		defaultModel: config.LLM.DefaultModel,
		embedModel:   config.Indexing.EmbedModel,
		logger:       common.GetLogger(),
	}
}

// ListModelsHandler handles GET /api/models
func (h *ModelsHandler) ListModelsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"models":        h.registry.Models(),
		"default_model": h.defaultModel,
		"embed_model":   h.embedModel,
	})
}
