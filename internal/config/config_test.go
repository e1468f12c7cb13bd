package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HF_API_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.GeminiModel)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-6)
	assert.InDelta(t, 0.8, cfg.AI.TopP, 1e-6)
	assert.Equal(t, 40, cfg.AI.TopK)
	assert.Equal(t, 500, cfg.AI.MaxOutputTokens)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.False(t, cfg.AI.GeminiEnabled())
	assert.Equal(t, "aria", cfg.Persona.Default)
	assert.Equal(t, EmotionLexicon, cfg.Emotion.ResolvedProvider())
	assert.Equal(t, map[string]string{
		"LABEL_0": "negative",
		"LABEL_1": "neutral",
		"LABEL_2": "positive",
	}, cfg.Emotion.LabelMap)
}

func TestLoadPortVariants(t *testing.T) {
	cases := map[string]string{
		"8080":           ":8080",
		":9090":          ":9090",
		"127.0.0.1:7000": "127.0.0.1:7000",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			t.Setenv("PORT", in)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Server.Addr)
		})
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "80 80")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownProviders(t *testing.T) {
	t.Setenv("GENERATOR_PROVIDER", "openai")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("GENERATOR_PROVIDER", "gemini")
	t.Setenv("EMOTION_PROVIDER", "magic")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsOutOfRangeSampling(t *testing.T) {
	t.Setenv("GENERATION_TOP_P", "1.5")
	_, err := Load()
	require.Error(t, err)
}

func TestEmotionResolvedProvider(t *testing.T) {
	cfg := EmotionConfig{Provider: EmotionAuto, HFToken: "hf_xxx"}
	assert.Equal(t, EmotionHuggingFace, cfg.ResolvedProvider())

	cfg.Provider = EmotionDisabled
	assert.Equal(t, EmotionDisabled, cfg.ResolvedProvider())
}

func TestArkEnabled(t *testing.T) {
	assert.False(t, AIConfig{APIKey: "k"}.Enabled())
	assert.True(t, AIConfig{APIKey: "k", Model: "m"}.Enabled())
	assert.True(t, AIConfig{AccessKey: "a", SecretKey: "s", Model: "m"}.Enabled())
	assert.False(t, AIConfig{AccessKey: "a", Model: "m"}.Enabled())
}
