// Package companion runs the per-request chat pipeline: resolve persona, bind
// the generator, classify emotion, augment the message, generate, package.
package companion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/companion/backend/internal/metrics"
	"github.com/zhouzirui/companion/backend/internal/model/chat"
	"github.com/zhouzirui/companion/backend/internal/model/persona"
	"github.com/zhouzirui/companion/backend/internal/service/ai"
	"github.com/zhouzirui/companion/backend/internal/service/emotion"
)

// DefaultTestMessage is used by TestGeneration when no message is supplied.
const DefaultTestMessage = "Hello, are you working?"

var (
	ErrEmptyMessage     = errors.New("no message provided")
	ErrGenerationFailed = errors.New("failed to generate response")
)

// Generator hands out request-scoped generation bindings.
type Generator interface {
	Available() bool
	BackendName() string
	Configure(p persona.Persona) (*ai.Binding, error)
}

// Classifier is the best-effort emotion classifier.
type Classifier interface {
	Available() bool
	BackendName() string
	Classify(ctx context.Context, text string) (*emotion.Result, bool)
	Labels() emotion.LabelSet
}

// Service 编排单次聊天请求，不在请求之间保存任何状态。
type Service struct {
	personas   persona.Store
	generator  Generator
	classifier Classifier
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService wires the pipeline. classifier and m may be nil.
func NewService(personas persona.Store, generator Generator, classifier Classifier, m *metrics.Metrics) *Service {
	return &Service{
		personas:   personas,
		generator:  generator,
		classifier: classifier,
		metrics:    m,
		now:        time.Now,
	}
}

// Chat runs the pipeline for one request. Returned errors wrap ErrEmptyMessage,
// persona.ErrNoPersonas, ai.ErrGeneratorUnavailable or ErrGenerationFailed.
func (s *Service) Chat(ctx context.Context, req chat.Request) (chat.Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		s.metrics.ObserveChat(metrics.OutcomeInvalid)
		return chat.Response{}, ErrEmptyMessage
	}

	requestID := uuid.NewString()
	logger := log.With().Str("component", "companion").Str("request_id", requestID).Logger()
	logger.Info().Str("message", truncate(message, 100)).Str("persona", req.Persona).Msg("chat request")

	resolution, err := s.personas.Resolve(req.Persona)
	if err != nil {
		s.metrics.ObserveChat(metrics.OutcomeConfigError)
		return chat.Response{}, fmt.Errorf("resolve persona: %w", err)
	}
	if resolution.Fallback {
		s.metrics.ObservePersonaFallback()
	}

	binding, err := s.bind(resolution.Persona)
	if err != nil {
		s.metrics.ObserveChat(metrics.OutcomeGeneratorUnavailable)
		return chat.Response{}, err
	}

	result, ok := s.classify(ctx, message)

	start := time.Now()
	reply, generated := binding.Generate(ctx, s.augment(message, result))
	s.metrics.ObserveGeneration(s.generator.BackendName(), generated, time.Since(start))
	if !generated {
		s.metrics.ObserveChat(metrics.OutcomeGenerationFailed)
		return chat.Response{}, ErrGenerationFailed
	}

	resp := chat.Response{
		RequestID:       requestID,
		Response:        reply,
		Timestamp:       s.now(),
		Status:          chat.StatusSuccess,
		ModelUsed:       s.generator.BackendName(),
		Persona:         resolution.Persona.ID,
		PersonaFallback: resolution.Fallback,
	}
	if ok {
		label, confidence := result.Label, result.Confidence
		resp.EmotionDetected = &label
		resp.Confidence = &confidence
	}

	s.metrics.ObserveChat(metrics.OutcomeSuccess)
	logger.Info().Str("persona", resp.Persona).Bool("persona_fallback", resp.PersonaFallback).
		Str("emotion", valueOr(resp.EmotionDetected, "unknown")).Msg("AI response generated successfully")
	return resp, nil
}

// TestGeneration generates a reply under the default persona. ok is false when
// the generator produced nothing.
func (s *Service) TestGeneration(ctx context.Context, message string) (reply string, ok bool, err error) {
	if strings.TrimSpace(message) == "" {
		message = DefaultTestMessage
	}

	resolution, err := s.personas.Resolve("")
	if err != nil {
		return "", false, fmt.Errorf("resolve persona: %w", err)
	}

	binding, err := s.bind(resolution.Persona)
	if err != nil {
		return "", false, err
	}

	reply, ok = binding.Generate(ctx, message)
	return reply, ok, nil
}

// Status reports model availability. It reads only immutable wiring, so
// repeated calls return identical values.
func (s *Service) Status() Status {
	status := Status{
		GeneratorAvailable: s.generator != nil && s.generator.Available(),
		GeneratorBackend:   "none",
		ClassifierBackend:  "none",
	}
	if s.generator != nil {
		status.GeneratorBackend = s.generator.BackendName()
	}
	if s.classifier != nil {
		status.ClassifierAvailable = s.classifier.Available()
		status.ClassifierBackend = s.classifier.BackendName()
	}
	return status
}

// Status is the availability summary served by / and /health.
type Status struct {
	GeneratorAvailable  bool
	GeneratorBackend    string
	ClassifierAvailable bool
	ClassifierBackend   string
}

func (s *Service) bind(p persona.Persona) (*ai.Binding, error) {
	if s.generator == nil {
		return nil, ai.ErrGeneratorUnavailable
	}
	binding, err := s.generator.Configure(p)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI model with persona %q: %w", p.ID, err)
	}
	return binding, nil
}

func (s *Service) classify(ctx context.Context, message string) (*emotion.Result, bool) {
	if s.classifier == nil || !s.classifier.Available() {
		return nil, false
	}
	result, ok := s.classifier.Classify(ctx, message)
	if ok {
		s.metrics.ObserveClassification(result.Label, true)
	} else {
		s.metrics.ObserveClassification("", false)
	}
	return result, ok
}

func (s *Service) augment(message string, result *emotion.Result) string {
	if s.classifier == nil {
		return message
	}
	return Augment(message, result, s.classifier.Labels())
}

// Augment appends the bracketed sentiment hint for result to message. Without
// a result, or for a label with no hint, message is returned unchanged.
func Augment(message string, result *emotion.Result, labels emotion.LabelSet) string {
	if result == nil {
		return message
	}
	hint := labels.Hint(result.Label)
	if hint == "" {
		return message
	}
	return message + " " + hint
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
