package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	altai "github.com/sashabaranov/go-openai"

	"filedesk/internal/model"
)

// ErrDisabled is returned when no API key is configured or the client runs offline.
var ErrDisabled = errors.New("openai disabled")

// OpenAIClient explains analysis results in plain language.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

func (c *OpenAIClient) Enabled() bool { return c != nil && c.apiKey != "" }

func (c *OpenAIClient) ExplainAnalysis(ctx context.Context, rec model.FileRecord, r model.AnalysisResult) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if r.Unavailable {
		return "", errors.New("no analysis to explain")
	}
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	out, err := c.callAlt(ctx2, buildExplainPrompt(rec, r))
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (c *OpenAIClient) callAlt(ctx context.Context, prompt string) (string, error) {
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You summarize tabular statistics for a non-technical reader. Answer in at most six short bullet points. No code fences."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildExplainPrompt(rec model.FileRecord, r model.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (%s)\n", rec.Filename, rec.DisplayTitle())
	if rec.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	}
	fmt.Fprintf(&b, "Columns total: %d, selected: %s\n", r.ColumnsTotal, r.ColumnsSelected)
	b.WriteString("Per-column statistics (column, sum, average, max):\n")
	for _, c := range r.PerColumn {
		fmt.Fprintf(&b, "- %s: %g, %g, %g\n", c.Column, c.Sum, c.Average, c.Max)
	}
	// Limit preview to 20 lines
	lines := strings.Split(r.Preview, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	b.WriteString("Preview:\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
