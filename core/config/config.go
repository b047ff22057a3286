package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel         OTelConfig
	PrimaryLLM   LLMConfig
	SecondaryLLM LLMConfig
	Compile      CompileConfig
	Env          string
	NodeID       int64
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	BaseURL  string // Optional: for custom endpoints
	Model    string
	MaxTokens int
}

type CompileConfig struct {
	PolicyLevel      string // "basic", "standard" or "advanced"
	MaxParallelCalls int    // Concurrency cap for extraction fan-out
	FlowThreshold    int    // Minimum question count before flow refinement considers segmentation
}

// Load loads configuration from environment variables.
// In development it also loads from a local .env file when present.
func Load() (Config, error) {
	if getEnv("CATALOG_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:    getEnv("CATALOG_ENV", "development"),
		NodeID: int64(getEnvInt("CATALOG_NODE_ID", 1)),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "catalog-compiler"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		PrimaryLLM: LLMConfig{
			Provider:  getEnv("CATALOG_LLM_PROVIDER", "openai"),
			APIKey:    getEnv("CATALOG_LLM_API_KEY", ""),
			BaseURL:   getEnv("CATALOG_LLM_BASE_URL", ""),
			Model:     getEnv("CATALOG_LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvInt("CATALOG_LLM_MAX_TOKENS", 4096),
		},
		SecondaryLLM: LLMConfig{
			Provider:  getEnv("CATALOG_FALLBACK_LLM_PROVIDER", "anthropic"),
			APIKey:    getEnv("CATALOG_FALLBACK_LLM_API_KEY", ""),
			BaseURL:   getEnv("CATALOG_FALLBACK_LLM_BASE_URL", ""),
			Model:     getEnv("CATALOG_FALLBACK_LLM_MODEL", "claude-sonnet-4-5-20250514"),
			MaxTokens: getEnvInt("CATALOG_FALLBACK_LLM_MAX_TOKENS", 4096),
		},
		Compile: CompileConfig{
			PolicyLevel:      getEnv("CATALOG_POLICY_LEVEL", "standard"),
			MaxParallelCalls: getEnvInt("CATALOG_MAX_PARALLEL_CALLS", 3),
			FlowThreshold:    getEnvInt("CATALOG_FLOW_THRESHOLD", 5),
		},
	}

	switch cfg.Compile.PolicyLevel {
	case "basic", "standard", "advanced":
	default:
		return Config{}, fmt.Errorf("CATALOG_POLICY_LEVEL must be basic, standard or advanced, got %q", cfg.Compile.PolicyLevel)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
