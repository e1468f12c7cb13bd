package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxErrorBody = 512

// HuggingFace calls a hosted text-classification model on the Hugging Face
// inference API.
type HuggingFace struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// NewHuggingFace validates the endpoint settings. The token is optional for
// public models but unauthenticated calls are heavily rate limited.
func NewHuggingFace(baseURL, modelID, token string, httpClient *http.Client) (*HuggingFace, error) {
	modelID = strings.Trim(strings.TrimSpace(modelID), "/")
	if modelID == "" {
		return nil, fmt.Errorf("huggingface model is required")
	}

	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid huggingface base url %q", baseURL)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HuggingFace{
		endpoint:   base.String() + "/" + modelID,
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
	}, nil
}

// Name implements Backend.
func (h *HuggingFace) Name() string { return "huggingface" }

type inferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options inferenceOptions `json:"options"`
}

type inferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// Classify implements Backend.
func (h *HuggingFace) Classify(ctx context.Context, text string) ([]Score, error) {
	payload, err := json.Marshal(inferenceRequest{
		Inputs:  text,
		Options: inferenceOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("inference error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return parseInference(body)
}

// parseInference accepts both the batched [[{label,score}]] and the flat
// [{label,score}] response shapes.
func parseInference(body []byte) ([]Score, error) {
	var batched [][]Score
	if err := json.Unmarshal(body, &batched); err == nil {
		if len(batched) == 0 || len(batched[0]) == 0 {
			return nil, ErrNoResult
		}
		return batched[0], nil
	}

	var flat []Score
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(flat) == 0 {
		return nil, ErrNoResult
	}
	return flat, nil
}
