package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mbella-dev/questforge/internal/question"
)

// Client produces question items from a text chunk. Implementations call
// an external generation service and may fail transiently.
type Client interface {
	Generate(ctx context.Context, chunk, topic string, count int) ([]question.Item, error)
}

// ErrNoItems means the service responded but the response contained no
// parseable, well-formed items. It is retryable: the next attempt may
// produce valid output.
var ErrNoItems = errors.New("response contained no valid items")

// RetryableError indicates a transient service failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable reports whether an error should be retried. Transport
// errors flagged retryable and parse failures both qualify.
func IsRetryable(err error) bool {
	var r *RetryableError
	return errors.As(err, &r) || errors.Is(err, ErrNoItems)
}

// OpenAIClient generates questions through the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string

	// Stats collects per-call latency for the stats endpoint.
	Stats *CallStats
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		Stats:  NewCallStats(time.Hour),
	}
}

func (c *OpenAIClient) Model() string {
	return c.model
}

// Generate asks the model for count questions about topic grounded in
// chunk. The response is expected to be a JSON array of items, possibly
// wrapped in a markdown code fence.
func (c *OpenAIClient) Generate(ctx context.Context, chunk, topic string, count int) ([]question.Item, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   4096,
		Temperature: 0.7,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(chunk, topic, count),
			},
		},
	})
	if c.Stats != nil {
		c.Stats.Record(time.Since(start).Milliseconds())
	}
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500) {
			return nil, &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("generation api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model: %w", ErrNoItems)
	}

	return ParseItems(resp.Choices[0].Message.Content)
}

var codeFenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeFence unwraps a response wrapped in markdown formatting
// delimiters.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ParseItems decodes response text into items, dropping entries that are
// structurally unusable (missing question, options not exactly A-D, or an
// answer outside A-D). It returns ErrNoItems when nothing survives, which
// callers treat as a retryable call failure.
func ParseItems(text string) ([]question.Item, error) {
	text = stripCodeFence(text)

	var raw []question.Item
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parse items json: %v (raw: %s): %w", err, truncate(text, 200), ErrNoItems)
	}

	items := make([]question.Item, 0, len(raw))
	for _, it := range raw {
		if wellFormed(it) {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

// wellFormed is the acceptance check for raw service output. It is a
// looser gate than validation: the full content checks run later.
func wellFormed(it question.Item) bool {
	if strings.TrimSpace(it.Question) == "" {
		return false
	}
	if !it.Options.HasAllKeys() {
		return false
	}
	switch it.Answer {
	case "A", "B", "C", "D":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
