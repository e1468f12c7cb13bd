package status

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/companion/backend/internal/service/companion"
	"github.com/zhouzirui/companion/backend/pkg/utils"
)

// Reporter exposes model availability.
type Reporter interface {
	Status() companion.Status
}

// Environment carries the static facts reported by /health.
type Environment struct {
	Version             string
	GeminiKeyConfigured bool
}

// Handler 服务状态相关的HTTP处理器
type Handler struct {
	reporter Reporter
	env      Environment
	now      func() time.Time
}

// New 创建状态处理器
func New(reporter Reporter, env Environment) *Handler {
	return &Handler{reporter: reporter, env: env, now: time.Now}
}

// RegisterRoutes 注册 / 与 /health
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	status := h.reporter.Status()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "AI Companion Backend is running!",
		"status":  "success",
		"models": map[string]string{
			"gemini_model":  flag(status.GeneratorAvailable, "loaded", "failed"),
			"emotion_model": flag(status.ClassifierAvailable, "loaded", "failed"),
		},
		"version": h.env.Version,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.reporter.Status()
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now(),
		"models": map[string]string{
			"gemini_model":  flag(status.GeneratorAvailable, "available", "unavailable"),
			"emotion_model": flag(status.ClassifierAvailable, "available", "unavailable"),
		},
		"environment": map[string]any{
			"gemini_api_key_configured": h.env.GeminiKeyConfigured,
			"go_version":                runtime.Version(),
			"generator_backend":         status.GeneratorBackend,
			"emotion_backend":           status.ClassifierBackend,
		},
	})
}

func flag(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
