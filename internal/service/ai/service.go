package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/companion/backend/internal/config"
	"github.com/zhouzirui/companion/backend/internal/model/persona"
)

// ErrGeneratorUnavailable means the generation backend was never initialized,
// typically because its credential is missing.
var ErrGeneratorUnavailable = errors.New("generator not available")

// Params are the fixed decoding parameters applied to every generation call.
type Params struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// ParamsFromConfig extracts decoding parameters from the AI configuration.
func ParamsFromConfig(cfg config.AIConfig) Params {
	return Params{
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}

// Backend is an external text-generation capability. Every call is a fresh,
// history-less conversation conditioned on systemPrompt.
type Backend interface {
	Name() string
	Generate(ctx context.Context, systemPrompt string, params Params, message string) (string, error)
}

// Service encapsulates the generation backend shared by all requests. It holds
// no per-persona state; Configure hands out request-scoped bindings instead.
type Service struct {
	backend   Backend
	params    Params
	timeout   time.Duration
	chatModel model.BaseChatModel
}

// New wraps an initialized backend. A nil backend yields an unavailable service.
func New(backend Backend, params Params, timeout time.Duration) *Service {
	return &Service{backend: backend, params: params, timeout: timeout}
}

// NewService initializes the backend selected by cfg.Provider. On failure the
// returned service is non-nil but unavailable.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	svc := New(nil, ParamsFromConfig(cfg), cfg.Timeout)

	switch cfg.Provider {
	case config.ProviderGemini:
		if !cfg.GeminiEnabled() {
			return svc, fmt.Errorf("GEMINI_API_KEY not found in environment")
		}
		backend, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			return svc, fmt.Errorf("failed to create gemini client: %w", err)
		}
		svc.backend = backend
	case config.ProviderArk:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return svc, fmt.Errorf("failed to create chat model: %w", err)
		}
		backend, err := NewArk(ctx, chatModel)
		if err != nil {
			return svc, err
		}
		svc.backend = backend
		svc.chatModel = chatModel
	default:
		return svc, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
	return svc, nil
}

// Available reports whether a backend is ready.
func (s *Service) Available() bool {
	return s != nil && s.backend != nil
}

// BackendName returns the backend name reported as model_used.
func (s *Service) BackendName() string {
	if !s.Available() {
		return "none"
	}
	return s.backend.Name()
}

// ChatModel returns the underlying eino chat model, nil unless the Ark backend
// is active. The llm emotion classifier reuses it.
func (s *Service) ChatModel() model.BaseChatModel {
	if s == nil {
		return nil
	}
	return s.chatModel
}

// Configure binds the persona's system prompt and the fixed decoding params
// into an immutable value for one request.
func (s *Service) Configure(p persona.Persona) (*Binding, error) {
	if !s.Available() {
		return nil, ErrGeneratorUnavailable
	}

	return &Binding{
		backend:      s.backend,
		personaID:    p.ID,
		systemPrompt: p.Prompt(),
		params:       s.params,
		timeout:      s.timeout,
	}, nil
}

// Binding is a generation client configured for a single persona.
type Binding struct {
	backend      Backend
	personaID    string
	systemPrompt string
	params       Params
	timeout      time.Duration
}

// PersonaID returns the persona this binding was configured for.
func (b *Binding) PersonaID() string {
	return b.personaID
}

// SystemPrompt returns the conditioning text bound to this binding.
func (b *Binding) SystemPrompt() string {
	return b.systemPrompt
}

// Generate runs one history-less generation. It never returns an error: empty
// output and backend failures are logged and reported as ok == false.
func (b *Binding) Generate(ctx context.Context, message string) (string, bool) {
	if strings.TrimSpace(message) == "" {
		return "", false
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := b.backend.Generate(ctx, b.systemPrompt, b.params, message)
	if err != nil {
		log.Error().Str("component", "ai").Str("backend", b.backend.Name()).Str("persona", b.personaID).
			Err(err).Msg("generation failed")
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Warn().Str("component", "ai").Str("backend", b.backend.Name()).Str("persona", b.personaID).
			Msg("empty response from generator")
		return "", false
	}

	log.Info().Str("component", "ai").Str("backend", b.backend.Name()).Str("persona", b.personaID).
		Int("length", len(text)).Dur("elapsed", time.Since(start)).Msg("generated response")
	return text, true
}
