package emotion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// LLM 使用通用大模型对文本做情感分类，要求模型只返回 JSON。
type LLM struct {
	classifier compose.Runnable[map[string]any, *schema.Message]
	labels     string
}

// NewLLM compiles the classification chain over chatModel.
func NewLLM(ctx context.Context, chatModel model.BaseChatModel, labels []string) (*LLM, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}

	return &LLM{classifier: runnable, labels: strings.Join(labels, "/")}, nil
}

// Name implements Backend.
func (l *LLM) Name() string { return "llm" }

// Classify implements Backend.
func (l *LLM) Classify(ctx context.Context, text string) ([]Score, error) {
	msg, err := l.classifier.Invoke(ctx, map[string]any{
		"labels": l.labels,
		"text":   strings.TrimSpace(text),
	})
	if err != nil {
		return nil, fmt.Errorf("classifier invoke: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return nil, ErrNoResult
	}

	payload, err := parseClassifierOutput(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("classifier output: %w", err)
	}

	if len(payload.Scores) > 0 {
		scores := make([]Score, 0, len(payload.Scores))
		for label, score := range payload.Scores {
			scores = append(scores, Score{Label: label, Score: score})
		}
		return scores, nil
	}
	if payload.Label == "" {
		return nil, ErrNoResult
	}

	confidence := payload.Confidence
	if confidence <= 0 {
		confidence = 0.6
	}
	return []Score{{Label: payload.Label, Score: confidence}}, nil
}

type classifierPayload struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// parseClassifierOutput 解析大模型返回的 JSON，容忍前后多余文本。
func parseClassifierOutput(content string) (*classifierPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

const classifierSystemPrompt = "You are a sentiment classifier. Read the user's message and decide its overall sentiment.\nReturn exactly one JSON object and nothing else, with the fields: label (one of {labels}), confidence (a number between 0 and 1), scores (an object mapping every label to a probability, summing to 1)."

const classifierUserPrompt = "Message:\n{text}"
