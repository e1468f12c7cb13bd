package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/companion/backend/internal/model/chat"
	"github.com/zhouzirui/companion/backend/internal/model/persona"
	"github.com/zhouzirui/companion/backend/internal/service/ai"
	"github.com/zhouzirui/companion/backend/internal/service/companion"
	"github.com/zhouzirui/companion/backend/pkg/utils"
)

// Pipeline is the chat orchestration used by the handler.
type Pipeline interface {
	Chat(ctx context.Context, req chat.Request) (chat.Response, error)
	TestGeneration(ctx context.Context, message string) (string, bool, error)
}

// Handler 聊天服务的HTTP处理器
type Handler struct {
	pipeline            Pipeline
	geminiKeyConfigured bool
	now                 func() time.Time
}

// New 创建聊天处理器
func New(pipeline Pipeline, geminiKeyConfigured bool) *Handler {
	return &Handler{
		pipeline:            pipeline,
		geminiKeyConfigured: geminiKeyConfigured,
		now:                 time.Now,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/test-gemini", h.handleTestGeneration)
}

// handleChat 处理一次聊天请求
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.pipeline.Chat(r.Context(), req)
	if err != nil {
		status, message := ChatErrorStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error().Str("component", "chat").Err(err).Msg("chat request failed")
		}
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// ChatErrorStatus maps a pipeline error to the HTTP status and public message.
func ChatErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, companion.ErrEmptyMessage):
		return http.StatusBadRequest, "No message provided"
	case errors.Is(err, ai.ErrGeneratorUnavailable):
		return http.StatusInternalServerError, "Failed to initialize AI model with selected persona"
	case errors.Is(err, companion.ErrGenerationFailed):
		return http.StatusInternalServerError, "Failed to generate response"
	case errors.Is(err, persona.ErrNoPersonas):
		return http.StatusInternalServerError, "No personas configured"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

type testGenerationResponse struct {
	Status         string    `json:"status"`
	TestMessage    string    `json:"test_message"`
	GeminiResponse *string   `json:"gemini_response"`
	Timestamp      time.Time `json:"timestamp"`
}

// handleTestGeneration 用默认角色测试生成后端
func (h *Handler) handleTestGeneration(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := payload.Message
	if strings.TrimSpace(message) == "" {
		message = companion.DefaultTestMessage
	}

	reply, ok, err := h.pipeline.TestGeneration(r.Context(), message)
	if err != nil {
		if errors.Is(err, ai.ErrGeneratorUnavailable) {
			utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status":             "error",
				"message":            "Gemini model not initialized",
				"api_key_configured": h.geminiKeyConfigured,
			})
			return
		}
		log.Error().Str("component", "chat").Err(err).Msg("test generation failed")
		utils.RespondJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  "Internal server error",
		})
		return
	}

	resp := testGenerationResponse{
		Status:      "error",
		TestMessage: message,
		Timestamp:   h.now(),
	}
	if ok {
		resp.Status = chat.StatusSuccess
		resp.GeminiResponse = &reply
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}
