// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
	"strings"
)

func init() {
	Providers.Register("mock", func(_ context.Context, _ map[string]string) (Client, error) {
		return NewMockClient(), nil
	})
}

// MockClient is a mock implementation for testing and offline runs.
// It generates predictable responses based on the input.
type MockClient struct{}

// NewMockClient creates a new mock client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Invoke echoes the last user turn.
func (m *MockClient) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userMessage := ""
	for _, msg := range req.Turns() {
		if msg.Role == RoleUser {
			userMessage = msg.Content
		}
	}
	text := fmt.Sprintf("Mock response to: %s", userMessage)

	return &Response{
		Text:       text,
		Model:      req.ModelID,
		StopReason: "end_turn",
		Usage: Usage{
			InputTokens:  estimateTokens(userMessage),
			OutputTokens: estimateTokens(text),
		},
	}, nil
}

// estimateTokens approximates token usage as one token per word.
func estimateTokens(text string) int {
	return len(strings.Fields(text))
}
