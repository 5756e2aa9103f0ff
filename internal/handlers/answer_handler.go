package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/voxlore/voxlore/internal/common"
	"github.com/voxlore/voxlore/internal/interfaces"
	"github.com/voxlore/voxlore/internal/models"
)

// answerRequest is the POST /api/answer body
type answerRequest struct {
	Question string `json:"question" validate:"required,min=1,max=4000"`
	Mode     string `json:"mode" validate:"omitempty,oneof=full rag"`
	Model    string `json:"model"`
	Tone     string `json:"tone" validate:"omitempty,oneof=creator analyst"`
	TopK     int    `json:"top_k" validate:"omitempty,gte=1,lte=200"`
}

type AnswerHandler struct {
	service  interfaces.AnswerService
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewAnswerHandler(service interfaces.AnswerService) *AnswerHandler {
	return &AnswerHandler{
		service:  service,
		validate: validator.New(),
		logger:   common.GetLogger(),
	}
}

// AnswerQuestionHandler handles POST /api/answer
func (h *AnswerHandler) AnswerQuestionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	tone, err := models.ParseTone(req.Tone)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := &models.Query{
		Question: req.Question,
		Mode:     mode,
		Model:    req.Model,
		Tone:     tone,
		TopK:     req.TopK,
	}

	answer, err := h.service.Answer(r.Context(), query)
	if err != nil {
		status := StatusForError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Str("mode", req.Mode).Msg("Answer request failed")
		}
		WriteError(w, status, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, answer)
}
