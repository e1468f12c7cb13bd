package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates text through the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API client. baseURL is optional.
func NewGemini(ctx context.Context, apiKey, modelName, baseURL string) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}

	return &Gemini{client: client, model: modelName}, nil
}

// Name implements Backend.
func (g *Gemini) Name() string { return "gemini" }

// Generate implements Backend. A new chat with empty history is created per
// call so nothing carries over between requests.
func (g *Gemini) Generate(ctx context.Context, systemPrompt string, params Params, message string) (string, error) {
	temperature := params.Temperature
	topP := params.TopP
	topK := float32(params.TopK)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temperature,
		TopP:              &topP,
		TopK:              &topK,
		MaxOutputTokens:   int32(params.MaxOutputTokens),
	}

	chat, err := g.client.Chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	res, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}

	return responseText(res), nil
}

// responseText joins the text parts of the first candidate. Blocked prompts
// come back without candidates and yield "".
func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
