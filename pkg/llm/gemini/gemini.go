// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package gemini implements llm.Client on Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/leseb/docprep/pkg/llm"
)

func init() {
	llm.Providers.Register("gemini", func(ctx context.Context, params map[string]string) (llm.Client, error) {
		return New(ctx, params["api_key"])
	})
}

// compile-time check
var _ llm.Client = (*Client)(nil)

// Client wraps a genai client. Each Invoke builds its own model handle, so
// one Client serves every model ID.
type Client struct {
	client *genai.Client
}

// New creates a Gemini client. An empty apiKey falls back to GEMINI_API_KEY.
func New(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: cl}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Invoke sends earlier turns as chat history and the last user turn as the
// new message.
func (c *Client) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	m := c.client.GenerativeModel(req.ModelID)
	m.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	history, last := splitTurns(req.Turns())
	cs := m.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	out := &llm.Response{Model: req.ModelID}
	if resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	cand := resp.Candidates[0]
	out.StopReason = cand.FinishReason.String()

	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	out.Text = b.String()
	return out, nil
}

// splitTurns maps all but the last turn to genai history. Gemini calls the
// assistant role "model".
func splitTurns(turns []llm.Message) ([]*genai.Content, string) {
	last := turns[len(turns)-1].Content
	history := make([]*genai.Content, 0, len(turns)-1)
	for _, t := range turns[:len(turns)-1] {
		role := "user"
		if t.Role == llm.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return history, last
}
