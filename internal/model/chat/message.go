package chat

import "time"

// StatusSuccess marks a completed chat turn.
const StatusSuccess = "success"

// Request is one inbound chat turn. Persona is optional.
type Request struct {
	Message string `json:"message"`
	Persona string `json:"persona,omitempty"`
}

// Response is the packaged result of a chat turn. Emotion fields are nil when
// classification was unavailable or failed.
type Response struct {
	RequestID       string    `json:"request_id"`
	Response        string    `json:"response"`
	EmotionDetected *string   `json:"emotion_detected"`
	Confidence      *float64  `json:"confidence"`
	Timestamp       time.Time `json:"timestamp"`
	Status          string    `json:"status"`
	ModelUsed       string    `json:"model_used"`
	Persona         string    `json:"persona"`
	PersonaFallback bool      `json:"persona_fallback,omitempty"`
}
