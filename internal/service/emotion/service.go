package emotion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/companion/backend/internal/config"
)

var (
	ErrClassifierUnavailable = errors.New("emotion model not available")
	ErrEmptyText             = errors.New("no text provided")
	ErrNoResult              = errors.New("classifier returned no usable label")
)

// Score is one label probability as reported by a backend.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Result 表示一次情绪分类的结果。Scores 已归一化标签并按得分降序排列。
type Result struct {
	Label      string
	Confidence float64
	Scores     []Score
}

// Backend is an external text-classification capability.
type Backend interface {
	Name() string
	Classify(ctx context.Context, text string) ([]Score, error)
}

// Service 封装情绪分类能力。后端不可用时服务仍可构造，但 Available 返回 false。
type Service struct {
	backend Backend
	labels  LabelSet
	timeout time.Duration
}

// New wraps an already initialized backend. A nil backend yields an
// unavailable service.
func New(backend Backend, labels LabelSet, timeout time.Duration) *Service {
	return &Service{backend: backend, labels: labels, timeout: timeout}
}

// NewService acquires the classifier backend selected by cfg. chatModel is only
// used by the llm backend and may be nil. On failure the returned service is
// non-nil but unavailable, so callers can log the error and keep running.
func NewService(ctx context.Context, cfg config.EmotionConfig, chatModel model.BaseChatModel) (*Service, error) {
	labels := DefaultLabelSet()
	if len(cfg.LabelMap) > 0 {
		labels = NewLabelSet(cfg.LabelMap)
	}
	svc := New(nil, labels, cfg.Timeout)

	var (
		backend Backend
		err     error
	)
	switch provider := cfg.ResolvedProvider(); provider {
	case config.EmotionDisabled:
		return svc, nil
	case config.EmotionHuggingFace:
		backend, err = NewHuggingFace(cfg.HFBaseURL, cfg.HFModel, cfg.HFToken, &http.Client{Timeout: cfg.Timeout})
	case config.EmotionLLM:
		if chatModel == nil {
			return svc, fmt.Errorf("llm emotion backend requires a configured chat model")
		}
		backend, err = NewLLM(ctx, chatModel, labels.Labels())
	case config.EmotionLexicon:
		backend = Lexicon{}
	default:
		return svc, fmt.Errorf("unknown emotion provider %q", provider)
	}
	if err != nil {
		return svc, fmt.Errorf("initialize %s emotion backend: %w", cfg.ResolvedProvider(), err)
	}

	svc.backend = backend
	return svc, nil
}

// Available 返回情绪分类是否可用。
func (s *Service) Available() bool {
	return s != nil && s.backend != nil
}

// BackendName returns the active backend, or "none".
func (s *Service) BackendName() string {
	if !s.Available() {
		return "none"
	}
	return s.backend.Name()
}

// Labels exposes the configured label set.
func (s *Service) Labels() LabelSet {
	if s == nil {
		return DefaultLabelSet()
	}
	return s.labels
}

// Classify is the best-effort variant used by the chat pipeline: any failure
// is logged and reported as "emotion unknown".
func (s *Service) Classify(ctx context.Context, text string) (*Result, bool) {
	if !s.Available() {
		return nil, false
	}

	result, err := s.Analyze(ctx, text)
	if err != nil {
		log.Warn().Str("component", "emotion").Str("backend", s.backend.Name()).Err(err).Msg("emotion analysis failed")
		return nil, false
	}
	return &result, true
}

// Analyze classifies text and surfaces failures to the caller.
func (s *Service) Analyze(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmptyText
	}
	if !s.Available() {
		return Result{}, ErrClassifierUnavailable
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.backend.Classify(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("%s classify: %w", s.backend.Name(), err)
	}
	return s.normalize(raw)
}

// normalize maps raw labels to canonical ones, merges duplicates, rounds scores
// to two decimals and picks the top label.
func (s *Service) normalize(raw []Score) (Result, error) {
	merged := make(map[string]float64, len(raw))
	for _, score := range raw {
		label, ok := s.labels.Normalize(score.Label)
		if !ok {
			log.Debug().Str("component", "emotion").Str("label", score.Label).Msg("ignoring unknown label")
			continue
		}
		merged[label] += clamp01(score.Score)
	}
	if len(merged) == 0 {
		return Result{}, ErrNoResult
	}

	scores := make([]Score, 0, len(merged))
	for label, score := range merged {
		scores = append(scores, Score{Label: label, Score: round2(clamp01(score))})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score == scores[j].Score {
			return scores[i].Label < scores[j].Label
		}
		return scores[i].Score > scores[j].Score
	})

	return Result{Label: scores[0].Label, Confidence: scores[0].Score, Scores: scores}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
