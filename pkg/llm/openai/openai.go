// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package openai implements llm.Client using the official OpenAI Go SDK.
// It works with OpenAI, Ollama, vLLM and other OpenAI-compatible backends.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/leseb/docprep/pkg/llm"
)

func init() {
	llm.Providers.Register("openai", func(_ context.Context, params map[string]string) (llm.Client, error) {
		return New(params["base_url"], params["api_key"]), nil
	})
}

// compile-time check
var _ llm.Client = (*Client)(nil)

// Client calls the chat completions endpoint.
type Client struct {
	client openai.Client
}

// New creates a new OpenAI-compatible client.
// The baseURL parameter allows connecting to OpenAI-compatible backends like Ollama and vLLM.
func New(baseURL, apiKey string) *Client {
	opts := []option.RequestOption{}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// Local backends such as Ollama do not check the key.
		opts = append(opts, option.WithAPIKey("dummy"))
	}

	return &Client{
		client: openai.NewClient(opts...),
	}
}

// Invoke implements llm.Client.
func (c *Client) Invoke(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Turns() {
		if m.Role == llm.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(req.ModelID),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	choice := completion.Choices[0]
	return &llm.Response{
		Text:       choice.Message.Content,
		Model:      completion.Model,
		StopReason: string(choice.FinishReason),
		Usage: llm.Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
	}, nil
}
