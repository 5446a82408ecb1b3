package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/roamchat/roam/internal/metrics"
	"github.com/roamchat/roam/internal/models"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel captures requests and plays back a canned response.
type fakeModel struct {
	calls    int
	received []llms.MessageContent
	response *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.received = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return "", errors.New("not implemented")
}

func newTestClient(model llms.Model, collector *metrics.Collector) *Client {
	return &Client{
		llm:         model,
		modelName:   "test-model",
		temperature: 0.7,
		maxTokens:   500,
		logger:      slog.Default(),
		metrics:     collector,
	}
}

func reply(text string, info map[string]any) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: text, GenerationInfo: info},
		},
	}
}

func TestCompleteMapsRolesAndTrims(t *testing.T) {
	fake := &fakeModel{response: reply("  Sure, here is an idea.\n", nil)}
	c := newTestClient(fake, nil)

	history := []models.Message{
		models.NewMessage(models.SenderAssistant, "Hello! Ask me anything."),
		models.NewMessage(models.SenderUser, "Hello"),
	}

	got, err := c.Complete(context.Background(), history)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Sure, here is an idea." {
		t.Errorf("expected trimmed reply, got %q", got)
	}

	if len(fake.received) != 2 {
		t.Fatalf("expected 2 turns sent, got %d", len(fake.received))
	}
	if fake.received[0].Role != llms.ChatMessageTypeAI {
		t.Errorf("assistant turn mapped to %v, want AI role", fake.received[0].Role)
	}
	if fake.received[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("user turn mapped to %v, want human role", fake.received[1].Role)
	}
}

func TestCompleteFailureIsGenericAndSingleAttempt(t *testing.T) {
	fake := &fakeModel{err: errors.New("dial tcp: connection refused")}
	c := newTestClient(fake, nil)

	_, err := c.Complete(context.Background(), []models.Message{
		models.NewMessage(models.SenderUser, "Hello"),
	})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
	// The cause stays out of the returned error; it is only logged.
	if err.Error() != ErrCompletionFailed.Error() {
		t.Errorf("underlying cause leaked into error: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", fake.calls)
	}
}

func TestCompleteEmptyResponse(t *testing.T) {
	fake := &fakeModel{response: &llms.ContentResponse{}}
	c := newTestClient(fake, nil)

	_, err := c.Complete(context.Background(), []models.Message{
		models.NewMessage(models.SenderUser, "Hello"),
	})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Errorf("expected ErrCompletionFailed on empty choices, got %v", err)
	}
}

func TestCompleteRecordsTokenUsage(t *testing.T) {
	collector := metrics.NewCollector()
	fake := &fakeModel{response: reply("ok", map[string]any{
		"PromptTokens":     12,
		"CompletionTokens": 3,
	})}
	c := newTestClient(fake, collector)

	if _, err := c.Complete(context.Background(), []models.Message{
		models.NewMessage(models.SenderUser, "Hello"),
	}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	snap := collector.Snapshot()
	if snap.Completion == nil || snap.Completion.Count != 1 {
		t.Fatal("expected one recorded completion")
	}
	if snap.Completion.TotalInputTokens == nil || *snap.Completion.TotalInputTokens != 12 {
		t.Errorf("unexpected input tokens: %v", snap.Completion.TotalInputTokens)
	}
	if snap.Completion.TotalOutputTokens == nil || *snap.Completion.TotalOutputTokens != 3 {
		t.Errorf("unexpected output tokens: %v", snap.Completion.TotalOutputTokens)
	}
}

func TestInfoTokens(t *testing.T) {
	tests := []struct {
		name string
		info map[string]any
		want int64
	}{
		{"nil map", nil, 0},
		{"missing key", map[string]any{}, 0},
		{"int", map[string]any{"PromptTokens": 7}, 7},
		{"int64", map[string]any{"PromptTokens": int64(8)}, 8},
		{"float64", map[string]any{"PromptTokens": 9.0}, 9},
		{"wrong type", map[string]any{"PromptTokens": "9"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := infoTokens(tt.info, "PromptTokens"); got != tt.want {
				t.Errorf("infoTokens = %d, want %d", got, tt.want)
			}
		})
	}
}
