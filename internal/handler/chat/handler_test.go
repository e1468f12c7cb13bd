package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/companion/backend/internal/model/chat"
	"github.com/zhouzirui/companion/backend/internal/model/persona"
	"github.com/zhouzirui/companion/backend/internal/service/ai"
	"github.com/zhouzirui/companion/backend/internal/service/companion"
)

type fakePipeline struct {
	chatErr  error
	testErr  error
	testOK   bool
	lastReq  chat.Request
	lastTest string
}

func (f *fakePipeline) Chat(_ context.Context, req chat.Request) (chat.Response, error) {
	f.lastReq = req
	if f.chatErr != nil {
		return chat.Response{}, f.chatErr
	}
	label, confidence := "positive", 0.95
	return chat.Response{
		RequestID:       "req-1",
		Response:        "That's great!",
		EmotionDetected: &label,
		Confidence:      &confidence,
		Timestamp:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:          chat.StatusSuccess,
		ModelUsed:       "gemini",
		Persona:         "aria",
	}, nil
}

func (f *fakePipeline) TestGeneration(_ context.Context, message string) (string, bool, error) {
	f.lastTest = message
	if f.testErr != nil {
		return "", false, f.testErr
	}
	if !f.testOK {
		return "", false, nil
	}
	return "I'm working.", true, nil
}

func setupRouter(p *fakePipeline) *chi.Mux {
	r := chi.NewRouter()
	New(p, false).RegisterRoutes(r)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatSuccess(t *testing.T) {
	p := &fakePipeline{}
	resp := post(setupRouter(p), "/chat", `{"message":"I got the job!","persona":"ethan"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if p.lastReq.Message != "I got the job!" || p.lastReq.Persona != "ethan" {
		t.Fatalf("unexpected request forwarded: %+v", p.lastReq)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"request_id", "response", "emotion_detected", "confidence", "timestamp", "status", "model_used", "persona"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing field %q", key)
		}
	}
	if _, ok := body["persona_fallback"]; ok {
		t.Error("persona_fallback should be omitted when false")
	}
}

func TestChatErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{companion.ErrEmptyMessage, http.StatusBadRequest},
		{fmt.Errorf("bind: %w", ai.ErrGeneratorUnavailable), http.StatusInternalServerError},
		{companion.ErrGenerationFailed, http.StatusInternalServerError},
		{fmt.Errorf("resolve persona: %w", persona.ErrNoPersonas), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		resp := post(setupRouter(&fakePipeline{chatErr: tc.err}), "/chat", `{"message":"hi"}`)
		if resp.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, resp.Code)
		}

		var body map[string]string
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%v: expected error body, got %s", tc.err, resp.Body.String())
		}
	}
}

func TestChatInvalidBody(t *testing.T) {
	resp := post(setupRouter(&fakePipeline{}), "/chat", `{"message":`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTestGenerationDefaultsMessage(t *testing.T) {
	p := &fakePipeline{testOK: true}
	resp := post(setupRouter(p), "/test-gemini", `{}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if p.lastTest != companion.DefaultTestMessage {
		t.Fatalf("expected default message, got %q", p.lastTest)
	}

	var body testGenerationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "success" || body.GeminiResponse == nil || body.TestMessage != companion.DefaultTestMessage {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestTestGenerationEmptyReply(t *testing.T) {
	resp := post(setupRouter(&fakePipeline{}), "/test-gemini", `{"message":"ping"}`)

	var body testGenerationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "error" || body.GeminiResponse != nil || body.TestMessage != "ping" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestTestGenerationUnavailable(t *testing.T) {
	resp := post(setupRouter(&fakePipeline{testErr: ai.ErrGeneratorUnavailable}), "/test-gemini", `{"message":"ping"}`)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "error" || body["api_key_configured"] != false {
		t.Fatalf("unexpected body: %v", body)
	}
}
