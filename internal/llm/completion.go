// Package llm adapts conversation history to a remote completion
// endpoint: one request, one reply, no retries and no streaming.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roamchat/roam/internal/config"
	"github.com/roamchat/roam/internal/metrics"
	"github.com/roamchat/roam/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client sends ordered message history to the configured completion
// backend and returns the reply text.
type Client struct {
	llm         llms.Model
	modelName   string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
	metrics     *metrics.Collector
}

// NewClient creates a completion client based on configuration.
func NewClient(ctx context.Context, cfg config.Config, logger *slog.Logger, collector *metrics.Collector) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderBedrock:
		model, err = newBedrockModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Client{
		llm:         model,
		modelName:   cfg.LLMModel,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
		metrics:     collector,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.modelName
}

// Complete sends the ordered history and returns the reply with
// surrounding whitespace trimmed. User messages map to the "user"
// role, everything else to "assistant". Any failure, whether transport,
// API or empty response, collapses into ErrCompletionFailed; the cause is
// logged here and discarded.
func (c *Client) Complete(ctx context.Context, history []models.Message) (string, error) {
	messages := historyToContent(history)

	start := time.Now()
	response, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		c.logger.Error("completion request failed",
			"model", c.modelName, "turns", len(messages), "error", err)
		return "", ErrCompletionFailed
	}

	if len(response.Choices) == 0 {
		c.logger.Error("completion returned no choices", "model", c.modelName)
		return "", ErrCompletionFailed
	}
	choice := response.Choices[0]

	if c.metrics != nil {
		c.metrics.RecordCompletion(time.Since(start),
			infoTokens(choice.GenerationInfo, "PromptTokens"),
			infoTokens(choice.GenerationInfo, "CompletionTokens"))
	}

	return strings.TrimSpace(choice.Content), nil
}

// historyToContent maps conversation turns onto the endpoint's
// role-tagged format.
func historyToContent(history []models.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		role := llms.ChatMessageTypeAI
		if m.Sender == models.SenderUser {
			role = llms.ChatMessageTypeHuman
		}
		messages = append(messages, llms.TextParts(role, m.Text))
	}
	return messages
}

// infoTokens extracts a token count from GenerationInfo, which not
// every provider populates.
func infoTokens(info map[string]any, key string) int64 {
	if info == nil {
		return 0
	}
	switch v := info[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
