package summary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Summarizer on any OpenAI-compatible chat API.
type OpenAIClient struct {
	client *openai.Client
	config Config
	logger *slog.Logger
}

// NewOpenAIClient builds a client from cfg. It does not contact the provider.
func NewOpenAIClient(cfg Config, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("summary: api key is required")
	}
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaults.MaxRows
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		config: cfg,
		logger: logger,
	}, nil
}

// Summarize sends the analyst prompt and splits the answer into lines.
func (c *OpenAIClient) Summarize(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.TotalRows == 0 {
		req.TotalRows = len(req.Rows)
	}
	if len(req.Rows) > c.config.MaxRows {
		c.logger.Debug("truncating rows for summary prompt",
			slog.Int("rows", len(req.Rows)),
			slog.Int("max", c.config.MaxRows),
		)
		req.Rows = req.Rows[:c.config.MaxRows]
	}

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(req)},
		},
		MaxTokens: c.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summary: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	lines := SplitLines(resp.Choices[0].Message.Content)
	if len(lines) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Result{
		Lines:    lines,
		Model:    c.config.Model,
		Duration: time.Since(start),
	}, nil
}
