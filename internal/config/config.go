// Package config loads Roam configuration from a YAML file and the
// environment. Environment variables win over the file; the file wins
// over built-in defaults.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider selects the completion backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBAccess    string

	// Admin credentials, used only by `roam init` to install the schema.
	SurrealDBAdminUser string
	SurrealDBAdminPass string

	// Completion endpoint
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	BedrockRegion   string
	Temperature     float64
	MaxTokens       int

	// Auth token persistence
	TokenFile string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the YAML shape of ~/.config/roam/config.yaml. Only
// non-secret settings belong here; API keys come from the environment.
type fileConfig struct {
	SurrealDBURL       string  `yaml:"surrealdb_url"`
	SurrealDBNamespace string  `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string  `yaml:"surrealdb_database"`
	SurrealDBAccess    string  `yaml:"surrealdb_access"`
	LLMProvider        string  `yaml:"llm_provider"`
	LLMModel           string  `yaml:"llm_model"`
	OllamaHost         string  `yaml:"ollama_host"`
	BedrockRegion      string  `yaml:"bedrock_region"`
	Temperature        float64 `yaml:"temperature"`
	MaxTokens          int     `yaml:"max_tokens"`
	LogFile            string  `yaml:"log_file"`
	LogLevel           string  `yaml:"log_level"`
}

// Load reads configuration from the config file and environment.
func Load() Config {
	cfg := Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "roam",
		SurrealDBDatabase:  "chat",
		SurrealDBAccess:    "account",
		SurrealDBAdminUser: "root",
		SurrealDBAdminPass: "root",

		LLMProvider: ProviderOpenAI,
		LLMModel:    "gpt-4-turbo",
		OllamaHost:  "http://localhost:11434",
		Temperature: 0.7,
		MaxTokens:   500,

		TokenFile: filepath.Join(configDir(), "token"),
		LogFile:   filepath.Join(os.TempDir(), "roam.log"),
		LogLevel:  slog.LevelInfo,
	}

	applyFile(&cfg, filepath.Join(configDir(), "config.yaml"))
	applyEnv(&cfg)
	return cfg
}

// configDir returns the Roam config directory, honoring XDG conventions.
func configDir() string {
	if dir := os.Getenv("ROAM_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "roam")
	}
	return ".roam"
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		slog.Warn("ignoring malformed config file", "file", path, "error", err)
		return
	}

	setString(&cfg.SurrealDBURL, fc.SurrealDBURL)
	setString(&cfg.SurrealDBNamespace, fc.SurrealDBNamespace)
	setString(&cfg.SurrealDBDatabase, fc.SurrealDBDatabase)
	setString(&cfg.SurrealDBAccess, fc.SurrealDBAccess)
	if fc.LLMProvider != "" {
		cfg.LLMProvider = Provider(fc.LLMProvider)
	}
	setString(&cfg.LLMModel, fc.LLMModel)
	setString(&cfg.OllamaHost, fc.OllamaHost)
	setString(&cfg.BedrockRegion, fc.BedrockRegion)
	if fc.Temperature != 0 {
		cfg.Temperature = fc.Temperature
	}
	if fc.MaxTokens != 0 {
		cfg.MaxTokens = fc.MaxTokens
	}
	setString(&cfg.LogFile, fc.LogFile)
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
}

func applyEnv(cfg *Config) {
	cfg.SurrealDBURL = getEnv("SURREALDB_URL", cfg.SurrealDBURL)
	cfg.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDBNamespace)
	cfg.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", cfg.SurrealDBDatabase)
	cfg.SurrealDBAccess = getEnv("SURREALDB_ACCESS", cfg.SurrealDBAccess)
	cfg.SurrealDBAdminUser = getEnv("SURREALDB_USER", cfg.SurrealDBAdminUser)
	cfg.SurrealDBAdminPass = getEnv("SURREALDB_PASS", cfg.SurrealDBAdminPass)

	if v := os.Getenv("ROAM_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = Provider(strings.ToLower(v))
	}
	cfg.LLMModel = getEnv("ROAM_LLM_MODEL", cfg.LLMModel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.BedrockRegion = getEnv("AWS_REGION", cfg.BedrockRegion)
	if v := os.Getenv("ROAM_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = f
		}
	}
	if v := os.Getenv("ROAM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}

	cfg.TokenFile = getEnv("ROAM_TOKEN_FILE", cfg.TokenFile)
	cfg.LogFile = getEnv("ROAM_LOG_FILE", cfg.LogFile)
	if v := os.Getenv("ROAM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
