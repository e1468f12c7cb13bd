package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Version is reported by the status endpoints.
const Version = "2.7.0-multi-persona-emotion"

// Generator backends.
const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// Emotion classifier backends.
const (
	EmotionAuto        = "auto"
	EmotionHuggingFace = "huggingface"
	EmotionLLM         = "llm"
	EmotionLexicon     = "lexicon"
	EmotionDisabled    = "disabled"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Emotion EmotionConfig
	Persona PersonaConfig
	Log     LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderArk:
	default:
		return fmt.Errorf("invalid GENERATOR_PROVIDER value %q (valid: gemini, ark)", c.AI.Provider)
	}

	switch c.Emotion.Provider {
	case EmotionAuto, EmotionHuggingFace, EmotionLLM, EmotionLexicon, EmotionDisabled:
	default:
		return fmt.Errorf("invalid EMOTION_PROVIDER value %q", c.Emotion.Provider)
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("invalid GENERATION_TEMPERATURE value %v", c.AI.Temperature)
	}
	if c.AI.TopP < 0 || c.AI.TopP > 1 {
		return fmt.Errorf("invalid GENERATION_TOP_P value %v", c.AI.TopP)
	}
	if c.AI.MaxOutputTokens <= 0 {
		return fmt.Errorf("invalid GENERATION_MAX_OUTPUT_TOKENS value %d", c.AI.MaxOutputTokens)
	}
	return nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port              string        `env:"PORT" envDefault:"5000"`
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" envDefault:"5s"`
	IdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Addr is derived from Port.
	Addr string
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// AIConfig 描述文本生成服务相关配置。
type AIConfig struct {
	Provider string `env:"GENERATOR_PROVIDER" envDefault:"gemini"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	// GeminiBaseURL overrides the Gemini API endpoint, mainly for tests and proxies.
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	APIKey    string `env:"ARK_API_KEY"`
	AccessKey string `env:"ARK_ACCESS_KEY"`
	SecretKey string `env:"ARK_SECRET_KEY"`
	Model     string `env:"ARK_MODEL"`
	BaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region    string `env:"ARK_REGION" envDefault:"cn-beijing"`

	Temperature     float32       `env:"GENERATION_TEMPERATURE" envDefault:"0.7"`
	TopP            float32       `env:"GENERATION_TOP_P" envDefault:"0.8"`
	TopK            int           `env:"GENERATION_TOP_K" envDefault:"40"`
	MaxOutputTokens int           `env:"GENERATION_MAX_OUTPUT_TOKENS" envDefault:"500"`
	Timeout         time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`
}

// GeminiEnabled 表示是否提供了 Gemini 密钥。
func (c AIConfig) GeminiEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// Enabled 表示是否提供了 Ark 所需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	temperature := c.Temperature
	topP := c.TopP
	maxTokens := c.MaxOutputTokens

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

// EmotionConfig 描述情绪分类服务配置。
type EmotionConfig struct {
	Provider string `env:"EMOTION_PROVIDER" envDefault:"auto"`

	HFToken   string `env:"HF_API_TOKEN"`
	HFModel   string `env:"HF_MODEL" envDefault:"cardiffnlp/twitter-roberta-base-sentiment-latest"`
	HFBaseURL string `env:"HF_BASE_URL" envDefault:"https://router.huggingface.co/hf-inference/models"`

	// LabelMap maps raw classifier labels to canonical sentiment labels.
	LabelMap map[string]string `env:"EMOTION_LABEL_MAP" envKeyValSeparator:":" envDefault:"LABEL_0:negative,LABEL_1:neutral,LABEL_2:positive"`
	Timeout  time.Duration     `env:"EMOTION_TIMEOUT" envDefault:"10s"`
}

// ResolvedProvider turns "auto" into a concrete backend: the hosted model when a
// token is configured, otherwise the local lexicon.
func (c EmotionConfig) ResolvedProvider() string {
	if c.Provider != EmotionAuto {
		return c.Provider
	}
	if strings.TrimSpace(c.HFToken) != "" {
		return EmotionHuggingFace
	}
	return EmotionLexicon
}

// PersonaConfig 描述角色定义来源。
type PersonaConfig struct {
	// Dir overrides the embedded persona definitions when set.
	Dir     string `env:"PERSONA_DIR"`
	Default string `env:"DEFAULT_PERSONA" envDefault:"aria"`
}

// LogConfig 描述日志输出。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}
