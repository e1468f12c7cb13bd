package emotion

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/companion/backend/internal/service/emotion"
	"github.com/zhouzirui/companion/backend/pkg/utils"
)

// Analyzer classifies a single text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (emotion.Result, error)
}

// Handler 情绪分析的HTTP处理器
type Handler struct {
	analyzer Analyzer
}

// New 创建情绪分析处理器
func New(analyzer Analyzer) *Handler {
	return &Handler{analyzer: analyzer}
}

// RegisterRoutes 注册 /emotion
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/emotion", h.handleAnalyze)
}

type analyzeResponse struct {
	Emotion    string          `json:"emotion"`
	Confidence float64         `json:"confidence"`
	AllScores  []emotion.Score `json:"all_scores"`
	Status     string          `json:"status"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), payload.Text)
	switch {
	case err == nil:
	case errors.Is(err, emotion.ErrEmptyText):
		utils.RespondError(w, http.StatusBadRequest, "No text provided")
		return
	case errors.Is(err, emotion.ErrClassifierUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, "Emotion model not available")
		return
	default:
		log.Error().Str("component", "emotion").Err(err).Msg("emotion analysis error")
		utils.RespondError(w, http.StatusInternalServerError, "Emotion analysis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, analyzeResponse{
		Emotion:    result.Label,
		Confidence: result.Confidence,
		AllScores:  result.Scores,
		Status:     "success",
	})
}
