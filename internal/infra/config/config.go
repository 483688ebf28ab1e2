// Package config provides application-wide configuration loaded from env vars,
// optionally overlaid with a YAML policy file for the tunable pipeline limits.
// All fields have safe defaults so the binary runs locally without any env setup.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/matiasleandrokruk/soksol/internal/infra/llm"
)

// Config holds runtime configuration for Soksol.
type Config struct {
	// HTTP
	Host string // HOST: default: "0.0.0.0"
	Port int    // PORT: default: 8080

	// Logging
	LogLevel  slog.Level // LOG_LEVEL: default: INFO
	LogFormat string     // LOG_FORMAT: "text" (default) or "json"
	LogFile   string     // LOG_FILE: optional JSON sink

	// LLM
	LLM llm.Settings

	// Policy
	PolicyFile string // SOKSOL_POLICY_FILE: optional YAML overlay
	Policy     Policy
}

const (
	envKeyHost       = "HOST"
	envKeyPort       = "PORT"
	envKeyLogLevel   = "LOG_LEVEL"
	envKeyLogFormat  = "LOG_FORMAT"
	envKeyLogFile    = "LOG_FILE"
	envKeyPolicyFile = "SOKSOL_POLICY_FILE"

	envKeyLLMProvider     = "LLM_PROVIDER"
	envKeyGeminiAPIKey    = "GEMINI_API_KEY"
	envKeyGenAIAPIKey     = "GENAI_API_KEY"
	envKeyGenModel        = "GEN_MODEL"
	envKeyGeminiBaseURL   = "GEMINI_BASE_URL"
	envKeyOpenAIAPIKey    = "OPENAI_API_KEY"
	envKeyOpenAIModel     = "OPENAI_MODEL"
	envKeyOpenAIBaseURL   = "OPENAI_BASE_URL"
	envKeyAnthropicAPIKey = "ANTHROPIC_API_KEY"
	envKeyAnthropicModel  = "ANTHROPIC_MODEL"
	envKeyOllamaBaseURL   = "OLLAMA_BASE_URL"
	envKeyOllamaChatModel = "OLLAMA_CHAT_MODEL"

	defaultPort = 8080
)

// Load reads configuration from environment variables, applying defaults for
// missing values. It fails only when SOKSOL_POLICY_FILE names a file that
// cannot be read or parsed.
func Load() (Config, error) {
	cfg := Config{
		Host:       envOr(envKeyHost, "0.0.0.0"),
		Port:       envIntOr(envKeyPort, defaultPort),
		LogLevel:   ParseLogLevel(envOr(envKeyLogLevel, "INFO")),
		LogFormat:  strings.ToLower(envOr(envKeyLogFormat, "text")),
		LogFile:    os.Getenv(envKeyLogFile),
		PolicyFile: os.Getenv(envKeyPolicyFile),
		LLM: llm.Settings{
			Provider:        strings.ToLower(envOr(envKeyLLMProvider, "gemini")),
			GeminiAPIKey:    envOr(envKeyGeminiAPIKey, os.Getenv(envKeyGenAIAPIKey)),
			GeminiModel:     envOr(envKeyGenModel, llm.DefaultGeminiModel),
			GeminiBaseURL:   envOr(envKeyGeminiBaseURL, llm.DefaultGeminiBaseURL),
			OpenAIAPIKey:    os.Getenv(envKeyOpenAIAPIKey),
			OpenAIModel:     envOr(envKeyOpenAIModel, llm.DefaultOpenAIModel),
			OpenAIBaseURL:   os.Getenv(envKeyOpenAIBaseURL),
			AnthropicAPIKey: os.Getenv(envKeyAnthropicAPIKey),
			AnthropicModel:  envOr(envKeyAnthropicModel, llm.DefaultAnthropicModel),
			OllamaBaseURL:   envOr(envKeyOllamaBaseURL, llm.DefaultOllamaBaseURL),
			OllamaModel:     envOr(envKeyOllamaChatModel, llm.DefaultOllamaModel),
		},
		Policy: DefaultPolicy(),
	}

	if cfg.PolicyFile != "" {
		p, err := LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return cfg, err
		}
		cfg.Policy = p
	}
	return cfg, nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses key as a positive int, or returns fallback.
func envIntOr(key string, fallback int) int {
	n, err := strconv.Atoi(envOr(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// ParseLogLevel maps DEBUG/INFO/WARN/ERROR (any case) to a slog level.
// Unknown values yield INFO.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
