package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhouzirui/companion/backend/internal/handler/chat"
	emotionhandler "github.com/zhouzirui/companion/backend/internal/handler/emotion"
	"github.com/zhouzirui/companion/backend/internal/handler/persona"
	"github.com/zhouzirui/companion/backend/internal/handler/status"
	"github.com/zhouzirui/companion/backend/internal/handler/ws"
	"github.com/zhouzirui/companion/backend/internal/metrics"
	middlewarePkg "github.com/zhouzirui/companion/backend/internal/middleware"
	personaModel "github.com/zhouzirui/companion/backend/internal/model/persona"
	"github.com/zhouzirui/companion/backend/internal/service/companion"
	"github.com/zhouzirui/companion/backend/internal/service/emotion"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Personas    personaModel.Store
	Companion   *companion.Service
	Emotion     *emotion.Service
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Environment status.Environment
}

// NewRouter wires HTTP routes to core services.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	status.New(d.Companion, d.Environment).RegisterRoutes(r)
	chat.New(d.Companion, d.Environment.GeminiKeyConfigured).RegisterRoutes(r)
	emotionhandler.New(d.Emotion).RegisterRoutes(r)
	persona.New(d.Personas).RegisterRoutes(r)
	ws.New(d.Companion).RegisterRoutes(r)

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
